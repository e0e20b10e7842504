// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package accesstest provides Checker doubles for tests.
package accesstest

import (
	"context"
	"sync"

	"github.com/holomush/cmdtree/internal/access"
)

var (
	_ access.Checker = AllowAll{}
	_ access.Checker = DenyAll{}
	_ access.Checker = (*MockChecker)(nil)
)

// AllowAll grants every permission.
type AllowAll struct{}

func (AllowAll) Check(context.Context, string, string) bool { return true }

// DenyAll grants nothing.
type DenyAll struct{}

func (DenyAll) Check(context.Context, string, string) bool { return false }

type grant struct{ subject, permission string }

// MockChecker grants exact subject/permission pairs and records every
// query it answers.
type MockChecker struct {
	mu      sync.Mutex
	grants  map[grant]bool
	queries []string
}

// NewMockChecker returns a checker with no grants.
func NewMockChecker() *MockChecker {
	return &MockChecker{grants: make(map[grant]bool)}
}

// Grant gives subject the permission. Patterns are not expanded.
func (m *MockChecker) Grant(subject, permission string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grants[grant{subject, permission}] = true
}

// Revoke removes a grant.
func (m *MockChecker) Revoke(subject, permission string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.grants, grant{subject, permission})
}

// Check implements access.Checker.
func (m *MockChecker) Check(_ context.Context, subject, permission string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, subject+" "+permission)
	return m.grants[grant{subject, permission}]
}

// Queries returns "subject permission" for each Check call, in order.
func (m *MockChecker) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}
