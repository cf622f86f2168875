// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"sync"

	"github.com/samber/oops"
)

// Runtime is the introspection surface of a running host.
type Runtime interface {
	// Server returns the running server instance.
	Server() *Object
	// ClassForName looks up a class by fully-qualified name.
	ClassForName(name string) (*Class, error)
}

// Compile-time interface check.
var _ Runtime = (*Registry)(nil)

// Registry is an in-memory Runtime.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*Class
	server  *Object
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class)}
}

// Register adds classes and, recursively, their nested classes.
func (r *Registry) Register(classes ...*Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range classes {
		if err := r.registerLocked(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) registerLocked(c *Class) error {
	if c == nil || c.Name == "" {
		return oops.In("host").New("class must have a name")
	}
	if existing, ok := r.classes[c.Name]; ok {
		if existing == c {
			return nil
		}
		return oops.In("host").Code(CodeDuplicateClass).With("class", c.Name).Errorf("class already registered: %s", c.Name)
	}
	c.bind()
	r.classes[c.Name] = c
	for _, n := range c.Nested {
		if err := r.registerLocked(n); err != nil {
			return err
		}
	}
	return nil
}

// ClassForName implements Runtime.
func (r *Registry) ClassForName(name string) (*Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.classes[name]
	if !ok {
		return nil, ErrClassNotFound(name)
	}
	return c, nil
}

// SetServer records the running server instance.
func (r *Registry) SetServer(server *Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.server = server
}

// Server implements Runtime.
func (r *Registry) Server() *Object {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.server
}

// Classes returns the number of registered classes.
func (r *Registry) Classes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.classes)
}
