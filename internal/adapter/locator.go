// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package adapter

import (
	"slices"
	"strings"

	"github.com/samber/oops"

	"github.com/holomush/textbridge/internal/host"
)

// jsonDeserializer marks the component serializer among the nested classes
// of the component base class.
const jsonDeserializer = "com.google.gson.JsonDeserializer"

// siblingSerializer is the top-level serializer class of older hosts.
const siblingSerializer = "ChatSerializer"

// Locator finds host symbols under one version's naming scheme.
// Required lookups fail when the symbol is absent; optional lookups
// report absence instead.
type Locator struct {
	rt      host.Runtime
	version Version
}

// NewLocator creates a locator for rt.
func NewLocator(rt host.Runtime, version Version) *Locator {
	return &Locator{rt: rt, version: version}
}

// Class looks up a class by fully-qualified name.
func (l *Locator) Class(name string) (*host.Class, error) {
	c, err := l.rt.ClassForName(name)
	if err != nil {
		return nil, errSymbol(err)
	}
	return c, nil
}

// OptionalClass looks up a class, returning false when it is absent.
func (l *Locator) OptionalClass(name string) (*host.Class, bool) {
	c, err := l.rt.ClassForName(name)
	if err != nil {
		return nil, false
	}
	return c, true
}

// MinecraftClass looks up a version-qualified server internal class.
func (l *Locator) MinecraftClass(name string) (*host.Class, error) {
	return l.Class(l.version.MinecraftClass(name))
}

// OptionalMinecraftClass looks up a version-qualified server internal class
// that older hosts may lack.
func (l *Locator) OptionalMinecraftClass(name string) (*host.Class, bool) {
	return l.OptionalClass(l.version.MinecraftClass(name))
}

// CraftBukkitClass looks up a version-qualified CraftBukkit class.
func (l *Locator) CraftBukkitClass(name string) (*host.Class, error) {
	return l.Class(l.version.CraftBukkitClass(name))
}

// Method looks up a method by exact signature.
func (l *Locator) Method(c *host.Class, name string, params ...string) (*host.Method, error) {
	m, err := c.Method(name, params...)
	if err != nil {
		return nil, errSymbol(err)
	}
	return m, nil
}

// Field looks up a field by name.
func (l *Locator) Field(c *host.Class, name string) (*host.Field, error) {
	f, err := c.Field(name)
	if err != nil {
		return nil, errSymbol(err)
	}
	return f, nil
}

// Constructor looks up a constructor by exact signature.
func (l *Locator) Constructor(c *host.Class, params ...string) (*host.Constructor, error) {
	ctor, err := c.Constructor(params...)
	if err != nil {
		return nil, errSymbol(err)
	}
	return ctor, nil
}

// Serializer finds the class that converts JSON into components: a nested
// class of component implementing the JSON deserializer capability, else
// the sibling ChatSerializer class.
func (l *Locator) Serializer(component *host.Class) (*host.Class, error) {
	for _, nested := range component.Nested {
		if nested.AssignableTo(jsonDeserializer) {
			return nested, nil
		}
	}
	return l.Class(qualifiedSibling(component, siblingSerializer))
}

// SerializeMethod picks the serialization entry point: a static method
// taking one string and returning component. Hosts ship several such
// methods under short generated names; the lexicographically smallest one
// is the serializer by convention.
func (l *Locator) SerializeMethod(serializer, component *host.Class) (*host.Method, error) {
	var candidates []*host.Method
	for _, m := range serializer.StaticMethods() {
		if m.Returns == component.Name && slices.Equal(m.Params, []string{host.TypeString}) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil, oops.In("adapter").
			Code(CodeNoSerializeMethod).
			With("class", serializer.Name).
			Wrapf(ErrSymbolNotFound, "no serialize method found on %s", serializer.Name)
	}
	return slices.MinFunc(candidates, func(a, b *host.Method) int {
		return strings.Compare(a.Name, b.Name)
	}), nil
}

// qualifiedSibling names a class in the same package as c.
func qualifiedSibling(c *host.Class, name string) string {
	if pkg := c.Package(); pkg != "" {
		return pkg + "." + name
	}
	return name
}
