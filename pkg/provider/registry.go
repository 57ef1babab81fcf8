// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package provider implements a generic factory registry for pluggable backends.
//
// Each subsystem (job platforms, diagnostics sinks) creates a typed Registry
// and implementations self-register via init(). This follows the
// database/sql driver pattern: blank-import an implementation package to
// activate it, then call Registry.New(ctx, name, deps, params) to instantiate.
//
// D carries shared runtime dependencies (HTTP clients, completion client,
// logger) that cannot be expressed as strings; params carries the
// per-instance string settings from configuration.
package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Factory creates a backend instance. Implementations extract the params
// keys they need and ignore the rest.
type Factory[T, D any] func(ctx context.Context, deps D, params map[string]string) (T, error)

// Registry is a thread-safe registry of named factory functions for a
// given backend interface T built from dependencies D.
type Registry[T, D any] struct {
	subsystem string
	mu        sync.RWMutex
	factories map[string]Factory[T, D]
}

// NewRegistry creates a new Registry. The subsystem name is used in error
// messages (e.g. "platform", "diagnostics").
func NewRegistry[T, D any](subsystem string) *Registry[T, D] {
	return &Registry[T, D]{
		subsystem: subsystem,
		factories: make(map[string]Factory[T, D]),
	}
}

// Register adds a named factory. Panics if the name is already registered
// (catches duplicate init() registrations at startup).
func (r *Registry[T, D]) Register(name string, f Factory[T, D]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("provider: %s backend %q already registered", r.subsystem, name))
	}
	r.factories[name] = f
}

// Has reports whether name is registered.
func (r *Registry[T, D]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// New creates a backend instance by name. Returns an error if the name
// is not registered or the factory fails.
func (r *Registry[T, D]) New(ctx context.Context, name string, deps D, params map[string]string) (T, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown %s provider: %q (available: %v)", r.subsystem, name, r.Available())
	}
	if params == nil {
		params = map[string]string{}
	}
	return f(ctx, deps, params)
}

// Available returns the sorted list of registered backend names.
func (r *Registry[T, D]) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
