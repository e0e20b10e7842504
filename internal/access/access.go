// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package access decides which permissions a named subject holds.
//
// Permissions are dot-separated names such as "cmdtree.admin.shutdown".
// Roles grant glob patterns over those names: "*" matches within one
// segment and "**" across segments.
package access

import (
	"context"
	"strings"
)

// SubjectSystem is always allowed.
const SubjectSystem = "system"

// IsReserved reports whether subject names the system subject, in any case.
// Hosts that take subjects from user input must refuse reserved names.
func IsReserved(subject string) bool {
	return strings.EqualFold(subject, SubjectSystem)
}

// Checker answers permission checks for subjects.
type Checker interface {
	// Check returns true if subject holds permission.
	// Returns false for unknown subjects (deny by default).
	Check(ctx context.Context, subject, permission string) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, subject, permission string) bool

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context, subject, permission string) bool {
	return f(ctx, subject, permission)
}
