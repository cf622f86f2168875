// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package host models the internals of a running host server as
// introspectable classes, members, and instances.
//
// Names follow the host's own conventions: packages are dot separated and
// nested classes are joined to their outer class with '$'
// (for example "net.minecraft.server.v1_8_R3.IChatBaseComponent$ChatSerializer").
package host

import (
	"slices"
	"strings"
)

// Built-in type names used in member signatures.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeBool   = "bool"
	TypeVoid   = "void"
)

// Class describes one host class.
type Class struct {
	Name         string
	Implements   []string
	Nested       []*Class
	Methods      []*Method
	Fields       []*Field
	Constructors []*Constructor
	Enum         []*EnumConstant
}

// Package returns the dotted package the class lives in.
func (c *Class) Package() string {
	i := strings.LastIndexByte(c.Name, '.')
	if i < 0 {
		return ""
	}
	return c.Name[:i]
}

// SimpleName returns the class name without package or outer classes.
func (c *Class) SimpleName() string {
	name := c.Name[strings.LastIndexByte(c.Name, '.')+1:]
	return name[strings.LastIndexByte(name, '$')+1:]
}

// AssignableTo reports whether instances of c may be used where typeName is expected.
func (c *Class) AssignableTo(typeName string) bool {
	return c.Name == typeName || slices.Contains(c.Implements, typeName)
}

// Method returns the method with the exact name and parameter types.
func (c *Class) Method(name string, params ...string) (*Method, error) {
	for _, m := range c.Methods {
		if m.Name == name && slices.Equal(m.Params, params) {
			return m, nil
		}
	}
	return nil, ErrMemberNotFound(c.Name, "method", name, params)
}

// StaticMethods returns every static method declared on the class.
func (c *Class) StaticMethods() []*Method {
	var out []*Method
	for _, m := range c.Methods {
		if m.Static {
			out = append(out, m)
		}
	}
	return out
}

// Field returns the named field.
func (c *Class) Field(name string) (*Field, error) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, ErrMemberNotFound(c.Name, "field", name, nil)
}

// Constructor returns the constructor with the exact parameter types.
func (c *Class) Constructor(params ...string) (*Constructor, error) {
	for _, ctor := range c.Constructors {
		if slices.Equal(ctor.Params, params) {
			return ctor, nil
		}
	}
	return nil, ErrMemberNotFound(c.Name, "constructor", "<init>", params)
}

// EnumConstants returns the enum constants in ordinal order.
func (c *Class) EnumConstants() []*EnumConstant {
	return c.Enum
}

// EnumConstant returns the constant with the exact, case-sensitive name.
func (c *Class) EnumConstant(name string) (*EnumConstant, bool) {
	for _, e := range c.Enum {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// bind links members back to their declaring class.
func (c *Class) bind() {
	for _, m := range c.Methods {
		m.owner = c
	}
	for _, f := range c.Fields {
		f.owner = c
	}
	for _, ctor := range c.Constructors {
		ctor.owner = c
	}
	for i, e := range c.Enum {
		e.class = c
		e.Ordinal = i
	}
}

// EnumConstant is one constant of an enumerated host type.
type EnumConstant struct {
	Name    string
	Ordinal int
	class   *Class
}

// Class returns the enum type declaring the constant.
func (e *EnumConstant) Class() *Class {
	return e.class
}

func (e *EnumConstant) String() string {
	return e.Name
}
