// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tasks

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry errors.
var (
	// ErrUnknownFunction is returned when a task names a function that
	// was never registered. Callers should resolve every configured
	// function before scheduling so this fails at startup, not mid-batch.
	ErrUnknownFunction = errors.New("unknown task function")

	// ErrAlreadyRegistered is returned for duplicate registrations.
	ErrAlreadyRegistered = errors.New("task function already registered")

	// ErrNilFunction is returned when registering a nil function.
	ErrNilFunction = errors.New("task function must not be nil")
)

// Registry maps function identifiers to bound task callables.
//
// Description:
//
//	Built once at startup; the executor resolves task descriptors
//	against it. An explicit registry replaces dynamic name lookup so an
//	unknown identifier fails fast instead of surfacing as a late
//	missing-symbol fault inside a worker.
//
// Thread Safety: Safe for concurrent use via read-write mutex.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{functions: make(map[string]Func)}
}

// Register binds a function name to a task callable.
//
// Outputs:
//   - error: nil on success, ErrNilFunction for nil fn,
//     ErrAlreadyRegistered for duplicate names.
func (r *Registry) Register(name string, fn Func) error {
	if fn == nil {
		return fmt.Errorf("%w: %s", ErrNilFunction, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.functions[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	r.functions[name] = fn
	return nil
}

// MustRegister registers and panics on error. For startup wiring only.
func (r *Registry) MustRegister(name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		panic(fmt.Sprintf("tasks: failed to register %s: %v", name, err))
	}
}

// Resolve returns the callable bound to name.
//
// Outputs:
//   - Func: the bound callable.
//   - error: ErrUnknownFunction if name was never registered.
func (r *Registry) Resolve(name string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.functions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return fn, nil
}

// Names returns all registered function names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
