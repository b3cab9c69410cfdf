// Copyright 2026 The corectl Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package components provides a name-sorted registry of the machine's
// running state machines, for diagnostics only. It is never consulted by
// the reaction function itself; TopLevel/MachineRunner hold their
// components directly and call their Update methods in the fixed order
// the control logic requires.
//
// Grounded on periph.go's Driver/Register/MustRegister pattern, trimmed
// to the read-only subset this module needs: there is no Prerequisites
// ordering and no concurrent Init, since every component here is
// constructed directly by its owner rather than late-bound through a
// package init().
package components

import (
	"fmt"
	"sort"
)

// Component is anything that can report a name and a human-readable
// state string. Feeder1st, Feeder2nd, Feeder3rd, ServoInitializer and
// ServoMover all implement it.
type Component interface {
	Name() string
	State() string
}

// Registry holds a name-sorted, duplicate-free set of Components.
type Registry struct {
	byName map[string]Component
	all    []Component
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]Component{}}
}

// Register adds c to the registry. It returns an error if a component
// with the same name is already registered.
func (r *Registry) Register(c Component) error {
	n := c.Name()
	if _, ok := r.byName[n]; ok {
		return fmt.Errorf("components: component with same name %q was already registered", n)
	}
	r.byName[n] = c
	r.all = append(r.all, c)
	return nil
}

// MustRegister calls Register and panics if registration fails. This is
// the call to make while wiring up a machine at startup, where a
// duplicate name is a programming error, not a runtime condition.
func (r *Registry) MustRegister(c Component) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// All returns every registered component, sorted by name.
func (r *Registry) All() []Component {
	out := make([]Component, len(r.all))
	copy(out, r.all)
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
