// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"fmt"
	"strings"
)

// MethodFunc implements a method. recv is nil for static methods.
type MethodFunc func(recv *Object, args []any) (any, error)

// ConstructorFunc returns the initial field values of a new instance.
type ConstructorFunc func(args []any) (map[string]any, error)

// Method is a callable member of a class.
type Method struct {
	Name    string
	Static  bool
	Params  []string
	Returns string
	Func    MethodFunc
	owner   *Class
}

// Owner returns the declaring class.
func (m *Method) Owner() *Class {
	return m.owner
}

func (m *Method) String() string {
	return memberName(m.owner, m.Name) + "(" + strings.Join(m.Params, ", ") + ")"
}

// Invoke calls the method. Argument types are checked against the
// signature and panics raised by the implementation are returned as errors.
func (m *Method) Invoke(recv *Object, args ...any) (out any, err error) {
	name := m.String()
	defer recoverInvocation(name, &err)

	if m.Func == nil {
		return nil, errInvocation(name).New("method has no implementation")
	}
	if !m.Static {
		if recv == nil {
			return nil, errInvocation(name).New("instance method invoked without receiver")
		}
		if m.owner != nil && !recv.Class().AssignableTo(m.owner.Name) {
			return nil, errInvocation(name).
				With("receiver", recv.Class().Name).
				New("receiver is not an instance of the declaring class")
		}
	}
	if err := checkArgs(name, m.Params, args); err != nil {
		return nil, err
	}

	out, err = m.Func(recv, args)
	if err != nil {
		return nil, errInvocation(name).Wrap(err)
	}
	return out, nil
}

// Field is a named slot on instances of a class.
type Field struct {
	Name  string
	Type  string
	owner *Class
}

// Owner returns the declaring class.
func (f *Field) Owner() *Class {
	return f.owner
}

// Get reads the field from obj. Reading an unset field is an error.
func (f *Field) Get(obj *Object) (any, error) {
	name := memberName(f.owner, f.Name)
	if obj == nil {
		return nil, errInvocation(name).New("field read without receiver")
	}
	v, ok := obj.Get(f.Name)
	if !ok || v == nil {
		return nil, errInvocation(name).With("receiver", obj.Class().Name).New("field is not set")
	}
	return v, nil
}

// Constructor creates instances of its declaring class.
type Constructor struct {
	Params []string
	Func   ConstructorFunc
	owner  *Class
}

// Owner returns the class the constructor instantiates.
func (c *Constructor) Owner() *Class {
	return c.owner
}

func (c *Constructor) String() string {
	return memberName(c.owner, "<init>") + "(" + strings.Join(c.Params, ", ") + ")"
}

// NewInstance constructs a new object.
func (c *Constructor) NewInstance(args ...any) (obj *Object, err error) {
	name := c.String()
	defer recoverInvocation(name, &err)

	if c.owner == nil {
		return nil, errInvocation(name).New("constructor is not attached to a class")
	}
	if err := checkArgs(name, c.Params, args); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if c.Func != nil {
		fields, err = c.Func(args)
		if err != nil {
			return nil, errInvocation(name).Wrap(err)
		}
	}
	return NewObject(c.owner, fields), nil
}

func memberName(owner *Class, name string) string {
	if owner == nil {
		return name
	}
	return owner.Name + "." + name
}

func recoverInvocation(name string, err *error) {
	if r := recover(); r != nil {
		*err = errInvocation(name).With("panic", fmt.Sprint(r)).Errorf("panic during invocation: %v", r)
	}
}

func checkArgs(name string, params []string, args []any) error {
	if len(args) != len(params) {
		return errInvocation(name).
			With("want", len(params)).
			With("got", len(args)).
			New("wrong number of arguments")
	}
	for i, p := range params {
		if !assignable(args[i], p) {
			return errInvocation(name).
				With("index", i).
				With("param", p).
				With("arg", fmt.Sprintf("%T", args[i])).
				New("argument type mismatch")
		}
	}
	return nil
}

// assignable reports whether v can be passed where typeName is declared.
// nil is accepted for class types only.
func assignable(v any, typeName string) bool {
	switch typeName {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeInt:
		_, ok := v.(int)
		return ok
	case TypeBool:
		_, ok := v.(bool)
		return ok
	}
	switch val := v.(type) {
	case nil:
		return true
	case *Object:
		return val.Class().AssignableTo(typeName)
	case *EnumConstant:
		return val.Class() != nil && val.Class().Name == typeName
	default:
		return false
	}
}
