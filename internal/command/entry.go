// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"sync"

	"github.com/holomush/cmdtree/internal/host"
)

// TopLevelEntry is the host-visible command a framework installs for each
// distinct first label segment. Executing it dispatches through the owning
// framework; its completer slot only ever holds a CompleterSet.
type TopLevelEntry struct {
	*host.BaseEntry
	dispatcher *Dispatcher
	completer  host.Completer
	mu         sync.RWMutex
}

// NewTopLevelEntry creates an entry named root that dispatches through d.
func NewTopLevelEntry(root string, d *Dispatcher) *TopLevelEntry {
	return &TopLevelEntry{
		BaseEntry:  host.NewBaseEntry(root),
		dispatcher: d,
	}
}

// Execute dispatches the invocation. It always reports it as handled.
func (e *TopLevelEntry) Execute(ctx context.Context, sender host.Sender, label string, args []string) bool {
	return e.dispatcher.Dispatch(ctx, sender, e, label, args)
}

// Completer returns the attached completer set, or nil.
func (e *TopLevelEntry) Completer() host.Completer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.completer
}

// CompleterSet returns the attached set, or nil.
func (e *TopLevelEntry) CompleterSet() *CompleterSet {
	set, _ := e.Completer().(*CompleterSet)
	return set
}

// SetCompleter attaches c. Only framework completer sets are accepted;
// anything else is refused with ErrCompleterConflict and leaves the slot
// untouched.
func (e *TopLevelEntry) SetCompleter(c host.Completer) error {
	set, ok := c.(*CompleterSet)
	if !ok || set == nil {
		return ErrCompleterConflict(e.Name())
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completer = set
	return nil
}

// Verify interfaces are satisfied.
var (
	_ host.Entry         = (*TopLevelEntry)(nil)
	_ host.CompleterSlot = (*TopLevelEntry)(nil)
)
