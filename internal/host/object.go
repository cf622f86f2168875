// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"maps"
	"sync"
)

// Object is a host-native instance.
type Object struct {
	class  *Class
	mu     sync.RWMutex
	fields map[string]any
}

// NewObject creates an instance of class with a copy of fields.
func NewObject(class *Class, fields map[string]any) *Object {
	f := make(map[string]any, len(fields))
	maps.Copy(f, fields)
	return &Object{class: class, fields: f}
}

// Class returns the object's concrete class.
func (o *Object) Class() *Class {
	return o.class
}

// Get returns the value of a field.
func (o *Object) Get(name string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.fields[name]
	return v, ok
}

// Set assigns a field.
func (o *Object) Set(name string, v any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fields[name] = v
}

// Fields returns a snapshot of all fields.
func (o *Object) Fields() map[string]any {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return maps.Clone(o.fields)
}

func (o *Object) String() string {
	return o.class.Name + "@" + o.class.SimpleName()
}
