// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	"context"
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/oops"
)

//go:embed profiles/*.lua
var bundled embed.FS

const profileExt = ".lua"

// Bundled returns the names of the profiles shipped with the binary.
func Bundled() []string {
	entries, err := fs.ReadDir(bundled, "profiles")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), profileExt))
	}
	slices.Sort(names)
	return names
}

// LoadBundled runs a profile shipped with the binary.
func LoadBundled(ctx context.Context, name string) (*Profile, error) {
	src, err := bundled.ReadFile(path.Join("profiles", name+profileExt))
	if err != nil {
		return nil, oops.In("lua").Code(CodeProfileLoad).
			With("profile", name).
			With("bundled", Bundled()).
			Errorf("no bundled profile named %q", name)
	}
	return LoadString(ctx, name, string(src))
}

// Open resolves ref to a profile. A path to an existing file is loaded
// directly; otherwise each of dirs is searched for ref+".lua" before
// falling back to the bundled profile named ref.
func Open(ctx context.Context, ref string, dirs ...string) (*Profile, error) {
	if isFile(ref) || strings.HasSuffix(ref, profileExt) {
		return Load(ctx, ref)
	}
	for _, d := range dirs {
		if p := filepath.Join(d, ref+profileExt); isFile(p) {
			return Load(ctx, p)
		}
	}
	return LoadBundled(ctx, ref)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
