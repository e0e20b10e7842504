// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package host defines the collaborators a command framework plugs into:
// the sender issuing a command, the host command table that owns top-level
// entries, and the completer slot each entry exposes.
//
// CommandMap is an in-memory Table suitable for embedding the framework in a
// server; Console is the non-interactive sender used by the CLI.
package host

import (
	"context"
)

// Sender issues commands and receives their messages.
type Sender interface {
	// Name identifies the sender in messages and logs.
	Name() string
	// HasPermission reports whether the sender holds permission.
	HasPermission(permission string) bool
	// IsInteractive reports whether the sender is in a live session that can
	// receive prompts, as opposed to a console or script.
	IsInteractive() bool
	// SendMessage delivers text containing translated color codes.
	SendMessage(message string)
}

// Completer produces candidate suggestions for partially typed input.
// A nil result means no suggestions.
type Completer interface {
	Complete(ctx context.Context, sender Sender, label string, args []string) []string
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, sender Sender, label string, args []string) []string

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, sender Sender, label string, args []string) []string {
	return f(ctx, sender, label, args)
}

// Entry is a top-level command known to the host table.
type Entry interface {
	Name() string
	Description() string
	Usage() string
	SetDescription(description string)
	SetUsage(usage string)
	// Execute runs the entry. label is the name the sender typed, args the
	// remaining tokens. It reports whether the invocation was handled.
	Execute(ctx context.Context, sender Sender, label string, args []string) bool
}

// CompleterSlot is implemented by entries that accept a tab completer.
type CompleterSlot interface {
	Completer() Completer
	// SetCompleter installs c. Implementations may refuse.
	SetCompleter(c Completer) error
}

// Table is the host command table.
type Table interface {
	// Entry looks up an entry by bare or namespace-qualified name.
	Entry(name string) (Entry, bool)
	// Register installs entry under namespace. It reports whether the bare
	// name was claimed; the qualified name is always claimed.
	Register(namespace string, entry Entry) bool
}
