// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package hosttest provides test helpers for host collaborators.
package hosttest

import (
	"sync"

	"github.com/holomush/cmdtree/internal/host"
)

// Sender records every message it receives and answers permission checks
// from an explicit grant set.
type Sender struct {
	name        string
	interactive bool
	grants      map[string]bool
	messages    []string
	mu          sync.Mutex
}

// NewSender creates a recording sender holding the given permissions.
func NewSender(name string, interactive bool, permissions ...string) *Sender {
	grants := make(map[string]bool, len(permissions))
	for _, p := range permissions {
		grants[p] = true
	}
	return &Sender{name: name, interactive: interactive, grants: grants}
}

// Name returns the sender's name.
func (s *Sender) Name() string { return s.name }

// IsInteractive returns the configured flag.
func (s *Sender) IsInteractive() bool { return s.interactive }

// HasPermission reports whether permission was granted.
func (s *Sender) HasPermission(permission string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grants[permission]
}

// Grant adds a permission.
func (s *Sender) Grant(permission string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[permission] = true
}

// SendMessage records message verbatim.
func (s *Sender) SendMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
}

// Messages returns a copy of the recorded messages.
func (s *Sender) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}

// Last returns the most recent message, or "".
func (s *Sender) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1]
}

var _ host.Sender = (*Sender)(nil)
