// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holomush/cmdtree/internal/host"
)

// noopHandler is a test helper that does nothing.
func noopHandler(_ context.Context, _ *Invocation) error {
	return nil
}

// captured records the last invocation a handler saw.
type captured struct {
	calls int
	inv   Invocation
}

func (c *captured) handler() Handler {
	return func(_ context.Context, inv *Invocation) error {
		c.calls++
		c.inv = *inv
		return nil
	}
}

// newTestFramework creates a framework for namespace over a fresh command map.
func newTestFramework(t *testing.T, namespace string, opts ...DispatcherOption) (*Framework, *host.CommandMap) {
	t.Helper()
	table := host.NewCommandMap()
	fw, err := New(namespace, table, opts...)
	require.NoError(t, err)
	return fw, table
}

// captureLogs routes the default slog logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(old) })
	return &buf
}

// specProvider is a Provider backed by fixed slices.
type specProvider struct {
	commands   []CommandSpec
	completers []CompleterSpec
}

func (p *specProvider) Commands() []CommandSpec     { return p.commands }
func (p *specProvider) Completers() []CompleterSpec { return p.completers }
