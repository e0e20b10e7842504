// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"log/slog"
	"sort"
	"sync"
)

// Registry maps normalized labels to command bindings.
// It is thread-safe for concurrent access; registration is expected to
// happen before dispatch traffic but does not have to.
type Registry struct {
	commands map[string]Binding
	mu       sync.RWMutex
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Binding),
	}
}

// Register stores binding under its key.
// If a binding with the same key exists, it is overwritten and a warning is
// logged: last registration wins.
func (r *Registry) Register(binding Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.commands[binding.Key]; ok {
		slog.Warn("command conflict: overwriting existing binding",
			"label", binding.Key,
			"previous_owner", typeName(existing.Owner),
			"new_owner", typeName(binding.Owner))
	}

	r.commands[binding.Key] = binding
}

// Get retrieves a binding by normalized key.
func (r *Registry) Get(key string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	binding, ok := r.commands[key]
	return binding, ok
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// All returns all registered bindings ordered by key.
// The returned slice is a copy and safe to modify.
func (r *Registry) All() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bindings := make([]Binding, 0, len(r.commands))
	for _, b := range r.commands {
		bindings = append(bindings, b)
	}
	sort.Slice(bindings, func(i, j int) bool {
		return bindings[i].Key < bindings[j].Key
	})
	return bindings
}

// Len returns the number of stored keys, namespaced duplicates included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}
