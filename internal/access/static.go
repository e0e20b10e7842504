// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Static implements Checker with static role definitions and a mutable
// subject to role assignment.
//
// Thread-safety: roles is immutable after construction and requires no
// synchronization. Only subjects is mutable and protected by mu.
type Static struct {
	roles       map[string][]compiledPermission // roleName → compiled patterns (immutable)
	subjects    map[string]string               // subject → roleName (mutable, protected by mu)
	defaultRole string
	bound       sync.Map     // subject-bound pattern → glob.Glob
	mu          sync.RWMutex // protects subjects only
}

// selfToken in a pattern stands for the checking subject.
const selfToken = "$self"

// compiledPermission holds a permission pattern and its compiled glob.
type compiledPermission struct {
	pattern string
	glob    glob.Glob
}

// StaticOption configures a Static checker.
type StaticOption func(*Static)

// WithDefaultRole assigns role to every subject without an explicit
// assignment. The role must exist.
func WithDefaultRole(role string) StaticOption {
	return func(s *Static) { s.defaultRole = role }
}

// NewStatic creates a checker over roles.
//
// Returns error if any permission pattern fails to compile (invalid glob
// syntax) or the default role is unknown.
func NewStatic(roles map[string][]string, opts ...StaticOption) (*Static, error) {
	compiledRoles := make(map[string][]compiledPermission, len(roles))
	for role, perms := range roles {
		compiled := make([]compiledPermission, 0, len(perms))
		for _, p := range perms {
			g, err := glob.Compile(p, '.')
			if err != nil {
				return nil, oops.In("access").
					Code("INVALID_PERMISSION_PATTERN").
					With("role", role).
					With("pattern", p).
					Wrap(err)
			}
			compiled = append(compiled, compiledPermission{pattern: p, glob: g})
		}
		compiledRoles[role] = compiled
	}

	s := &Static{
		roles:    compiledRoles,
		subjects: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultRole != "" {
		if _, ok := s.roles[s.defaultRole]; !ok {
			return nil, oops.In("access").Code("UNKNOWN_ROLE").With("role", s.defaultRole).New("unknown default role")
		}
	}
	return s, nil
}

// NewDefaultStatic creates a checker with DefaultRoles, assigning
// RoleGuest to unknown subjects.
//
// Panics if default roles contain invalid permission patterns (configuration bug).
func NewDefaultStatic() *Static {
	s, err := NewStatic(DefaultRoles(), WithDefaultRole(RoleGuest))
	if err != nil {
		panic("invalid permission pattern in DefaultRoles: " + err.Error())
	}
	return s
}

// Check implements Checker.
func (s *Static) Check(_ context.Context, subject, permission string) bool {
	switch {
	case subject == SubjectSystem:
		return true
	case subject == "" || permission == "":
		return false
	}

	role := s.Role(subject)
	if role == "" {
		return false
	}
	for _, perm := range s.roles[role] {
		if s.matches(perm, subject, permission) {
			return true
		}
	}
	return false
}

// matches reports whether perm grants permission to subject. Patterns
// holding $self are bound to the subject and compiled once per binding.
func (s *Static) matches(perm compiledPermission, subject, permission string) bool {
	if !strings.Contains(perm.pattern, selfToken) {
		return perm.glob.Match(permission)
	}

	bound := strings.ReplaceAll(perm.pattern, selfToken, strings.ToLower(subject))
	if g, ok := s.bound.Load(bound); ok {
		return g.(glob.Glob).Match(permission)
	}
	g, err := glob.Compile(bound, '.')
	if err != nil {
		slog.Warn("subject-bound permission pattern does not compile",
			"subject", subject,
			"pattern", perm.pattern,
			"bound", bound,
			"error", err)
		return false
	}
	s.bound.Store(bound, g)
	return g.Match(permission)
}

// subjectKey folds subject case. Session names are unique regardless of
// case, so assignments are too.
func subjectKey(subject string) string { return strings.ToLower(subject) }

// AssignRole sets the role for a subject.
// Returns error if subject or role is empty, or role is unknown.
func (s *Static) AssignRole(subject, role string) error {
	if subject == "" {
		return oops.In("access").Code("INVALID_SUBJECT").New("subject cannot be empty")
	}
	if role == "" {
		return oops.In("access").Code("INVALID_ROLE").New("role cannot be empty")
	}
	if _, ok := s.roles[role]; !ok {
		return oops.In("access").Code("UNKNOWN_ROLE").With("role", role).New("unknown role")
	}

	s.mu.Lock()
	s.subjects[subjectKey(subject)] = role
	s.mu.Unlock()

	return nil
}

// RevokeRole removes a subject's role assignment.
// Returns error if subject is empty.
func (s *Static) RevokeRole(subject string) error {
	if subject == "" {
		return oops.In("access").Code("INVALID_SUBJECT").New("subject cannot be empty")
	}

	s.mu.Lock()
	delete(s.subjects, subjectKey(subject))
	s.mu.Unlock()

	return nil
}

// Role returns the role that applies to subject: its assignment, else the
// default role, else "".
func (s *Static) Role(subject string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if role, ok := s.subjects[subjectKey(subject)]; ok {
		return role
	}
	return s.defaultRole
}

// Roles returns the defined role names in order.
func (s *Static) Roles() []string {
	names := make([]string, 0, len(s.roles))
	for name := range s.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ Checker = (*Static)(nil)
