// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package testutil wires command providers into a host table for tests.
package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holomush/cmdtree/internal/command"
	"github.com/holomush/cmdtree/internal/host"
	"github.com/holomush/cmdtree/internal/host/hosttest"
)

// Harness is a host table with one framework registered on it.
type Harness struct {
	Table     *host.CommandMap
	Framework *command.Framework
}

// NewHarness creates a table and a "core" framework and registers every
// provider, failing the test on any rejected registration.
func NewHarness(t *testing.T, providers ...command.Provider) *Harness {
	t.Helper()
	table := host.NewCommandMap()
	fw, err := command.New("core", table)
	require.NoError(t, err)

	for _, p := range providers {
		require.Empty(t, fw.RegisterAll(p))
	}
	return &Harness{Table: table, Framework: fw}
}

// Run dispatches line as sender.
func (h *Harness) Run(sender host.Sender, line string) bool {
	return h.Table.Dispatch(context.Background(), sender, line)
}

// Complete returns completion candidates for line.
func (h *Harness) Complete(sender host.Sender, line string) []string {
	return h.Table.Complete(context.Background(), sender, line)
}

// Player returns an interactive sender holding permissions.
func Player(name string, permissions ...string) *Sender {
	return &Sender{Sender: hosttest.NewSender(name, true, permissions...)}
}

// Console returns a non-interactive sender holding permissions.
func Console(permissions ...string) *Sender {
	return &Sender{Sender: hosttest.NewSender(host.ConsoleName, false, permissions...)}
}

// Sender is a recording sender that can also be disconnected.
type Sender struct {
	*hosttest.Sender

	mu     sync.Mutex
	reason string
	closed bool
}

// Disconnect records the reason.
func (s *Sender) Disconnect(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.reason = reason
}

// Disconnected reports whether Disconnect was called and with what reason.
func (s *Sender) Disconnected() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed, s.reason
}
