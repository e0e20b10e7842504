// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"context"
	"strings"
	"sync"
)

// BaseEntry carries the help text every entry shares. Embed a *BaseEntry to
// implement the descriptive half of Entry.
type BaseEntry struct {
	name        string
	description string
	usage       string
	mu          sync.RWMutex
}

// NewBaseEntry creates a BaseEntry for name. The name is lowercased.
func NewBaseEntry(name string) *BaseEntry {
	return &BaseEntry{name: strings.ToLower(name)}
}

// Name returns the entry's lowercase name.
func (e *BaseEntry) Name() string {
	return e.name
}

// Description returns the one-line help text.
func (e *BaseEntry) Description() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.description
}

// Usage returns the usage pattern.
func (e *BaseEntry) Usage() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.usage
}

// SetDescription replaces the one-line help text.
func (e *BaseEntry) SetDescription(description string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.description = description
}

// SetUsage replaces the usage pattern.
func (e *BaseEntry) SetUsage(usage string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.usage = usage
}

// ExecuteFunc runs a host-owned entry.
type ExecuteFunc func(ctx context.Context, sender Sender, label string, args []string) bool

// PluginEntry is an entry owned by the host itself rather than by a command
// framework. Its completer slot accepts any completer.
type PluginEntry struct {
	*BaseEntry
	execute   ExecuteFunc
	completer Completer
	slotMu    sync.RWMutex
}

// NewPluginEntry creates a host-owned entry. A nil execute reports every
// invocation as unhandled.
func NewPluginEntry(name string, execute ExecuteFunc) *PluginEntry {
	return &PluginEntry{
		BaseEntry: NewBaseEntry(name),
		execute:   execute,
	}
}

// Execute runs the entry's function.
func (e *PluginEntry) Execute(ctx context.Context, sender Sender, label string, args []string) bool {
	if e.execute == nil {
		return false
	}
	return e.execute(ctx, sender, label, args)
}

// Completer returns the installed completer, or nil.
func (e *PluginEntry) Completer() Completer {
	e.slotMu.RLock()
	defer e.slotMu.RUnlock()
	return e.completer
}

// SetCompleter installs c unconditionally.
func (e *PluginEntry) SetCompleter(c Completer) error {
	e.slotMu.Lock()
	defer e.slotMu.Unlock()
	e.completer = c
	return nil
}

// Verify interfaces are satisfied.
var (
	_ Entry         = (*PluginEntry)(nil)
	_ CompleterSlot = (*PluginEntry)(nil)
)
