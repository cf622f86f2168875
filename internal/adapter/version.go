// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package adapter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"

	"github.com/holomush/textbridge/internal/host"
)

// Host namespaces.
const (
	craftBukkitPackage = "org.bukkit.craftbukkit"
	minecraftPackage   = "net.minecraft.server"
	serverClassName    = "CraftServer"
)

// Version is the package qualifier of a running host, such as "v1_8_R3.".
// The zero value is an unversioned host.
type Version struct {
	qualifier string
}

// ResolveVersion classifies the host from the concrete class of its
// server instance.
func ResolveVersion(server *host.Class) (Version, error) {
	if server == nil {
		return Version{}, errIncompatibleHost("", "no server instance")
	}
	pkg := server.Package()
	if !strings.HasPrefix(pkg, craftBukkitPackage) {
		return Version{}, errIncompatibleHost(server.Name, "server is not in the CraftBukkit namespace")
	}
	if server.SimpleName() != serverClassName {
		return Version{}, errIncompatibleHost(server.Name, "server is not a "+serverClassName)
	}
	return ParseQualifier(strings.TrimPrefix(pkg, craftBukkitPackage))
}

// ParseQualifier normalizes the package fragment that follows the
// CraftBukkit namespace: "" stays unversioned and ".v1_8_R3" becomes
// "v1_8_R3.".
func ParseQualifier(fragment string) (Version, error) {
	switch {
	case fragment == "":
		return Version{}, nil
	case fragment[0] == '.':
		return Version{qualifier: fragment[1:] + "."}, nil
	default:
		return Version{}, errUnknownVersion(fragment)
	}
}

// Qualifier returns the raw qualifier, including its trailing separator.
func (v Version) Qualifier() string {
	return v.qualifier
}

// Unversioned reports whether the host uses unqualified package names.
func (v Version) Unversioned() bool {
	return v.qualifier == ""
}

// CraftBukkitClass returns the qualified name of a CraftBukkit class.
func (v Version) CraftBukkitClass(name string) string {
	return craftBukkitPackage + "." + v.qualifier + name
}

// MinecraftClass returns the qualified name of a server internal class.
func (v Version) MinecraftClass(name string) string {
	return minecraftPackage + "." + v.qualifier + name
}

func (v Version) String() string {
	if v.qualifier == "" {
		return "unversioned"
	}
	return strings.TrimSuffix(v.qualifier, ".")
}

var qualifierPattern = regexp.MustCompile(`^v(\d+)_(\d+)_R(\d+)\.$`)

// Semver maps a qualifier such as "v1_8_R3." to 1.8.0+R3. Unversioned hosts
// and unconventional qualifiers have no semantic version.
func (v Version) Semver() (*semver.Version, error) {
	m := qualifierPattern.FindStringSubmatch(v.qualifier)
	if m == nil {
		return nil, oops.In("adapter").
			Code(CodeUnknownVersion).
			With("qualifier", v.qualifier).
			Errorf("no semantic version for %s host", v)
	}
	sv, err := semver.NewVersion(fmt.Sprintf("%s.%s.0+R%s", m[1], m[2], m[3]))
	if err != nil {
		return nil, oops.In("adapter").With("qualifier", v.qualifier).Wrap(err)
	}
	return sv, nil
}

// checkConstraint rejects hosts outside constraint. A nil constraint
// accepts every host.
func checkConstraint(v Version, constraint *semver.Constraints) error {
	if constraint == nil {
		return nil
	}
	sv, err := v.Semver()
	if err != nil {
		return oops.In("adapter").
			Code(CodeVersionRejected).
			With("constraint", constraint.String()).
			Wrap(fmt.Errorf("%w: %w", ErrIncompatibleHost, err))
	}
	if !constraint.Check(sv) {
		return oops.In("adapter").
			Code(CodeVersionRejected).
			With("constraint", constraint.String()).
			With("version", sv.String()).
			Wrapf(ErrIncompatibleHost, "host %s does not satisfy %s", sv, constraint)
	}
	return nil
}
