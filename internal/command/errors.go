// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"fmt"

	"github.com/samber/oops"
)

// Error codes for registration and dispatch failures.
const (
	CodeInvalidSignature  = "INVALID_SIGNATURE"
	CodeInvalidReturnType = "INVALID_RETURN_TYPE"
	CodeInvalidLabel      = "INVALID_LABEL"
	CodeInvalidNamespace  = "INVALID_NAMESPACE"
	CodeCompleterConflict = "COMPLETER_CONFLICT"
	CodeNoCompleterSlot   = "NO_COMPLETER_SLOT"
	CodeNilTable          = "NIL_TABLE"
	CodeNilRegistry       = "NIL_REGISTRY"
	CodeHandlerFailed     = "HANDLER_FAILED"
	CodeHandlerPanic      = "HANDLER_PANIC"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeContextRestricted = "CONTEXT_RESTRICTED"
	CodeUnresolved        = "UNRESOLVED"
	CodeRateLimited       = "RATE_LIMITED"
)

// Sentinel errors for constructor validation.
var (
	ErrNilTable    = oops.Code(CodeNilTable).Errorf("host table cannot be nil")
	ErrNilRegistry = oops.Code(CodeNilRegistry).Errorf("registry cannot be nil")
)

// ErrInvalidSignature reports a handler whose shape does not accept a single
// invocation context.
func ErrInvalidSignature(kind, label string, handler any) error {
	return oops.Code(CodeInvalidSignature).
		With("kind", kind).
		With("label", label).
		With("handler_type", typeName(handler)).
		Errorf("unable to register %s %s: unexpected method arguments", kind, label)
}

// ErrInvalidReturnType reports a completer whose parameters fit but whose
// results do not.
func ErrInvalidReturnType(label string, handler any) error {
	return oops.Code(CodeInvalidReturnType).
		With("kind", "completer").
		With("label", label).
		With("handler_type", typeName(handler)).
		Errorf("unable to register tab completer %s: unexpected return type", label)
}

// ErrInvalidLabel reports a label that cannot be stored.
func ErrInvalidLabel(label, reason string) error {
	return oops.Code(CodeInvalidLabel).
		With("label", label).
		Errorf("invalid label %q: %s", label, reason)
}

// ErrCompleterConflict reports an entry whose completer slot already holds a
// completer this framework does not own.
func ErrCompleterConflict(label string) error {
	return oops.Code(CodeCompleterConflict).
		With("label", label).
		Errorf("unable to register tab completer %s: a tab completer is already registered for that command", label)
}

// ErrNoCompleterSlot reports an entry that cannot hold a completer at all.
func ErrNoCompleterSlot(label, entryType string) error {
	return oops.Code(CodeNoCompleterSlot).
		With("label", label).
		With("entry_type", entryType).
		Errorf("unable to register tab completer %s: entry does not accept completers", label)
}

// ErrHandlerFailed wraps an error returned by a handler or completer.
func ErrHandlerFailed(key string, cause error) error {
	return oops.Code(CodeHandlerFailed).
		With("label", key).
		Wrapf(cause, "handler for %s failed", key)
}

// ErrHandlerPanic converts a recovered handler panic into an error.
func ErrHandlerPanic(key string, recovered any) error {
	return oops.Code(CodeHandlerPanic).
		With("label", key).
		With("panic", fmt.Sprint(recovered)).
		Errorf("handler for %s panicked: %v", key, recovered)
}

// ErrPermissionDenied records a sender lacking a binding's permission.
func ErrPermissionDenied(key, permission string) error {
	return oops.Code(CodePermissionDenied).
		With("label", key).
		With("permission", permission).
		Errorf("permission denied for %s", key)
}

// ErrContextRestricted records a non-interactive sender invoking an
// interactive-only command.
func ErrContextRestricted(key string) error {
	return oops.Code(CodeContextRestricted).
		With("label", key).
		Errorf("%s requires an interactive sender", key)
}

// ErrUnresolved records an invocation that matched no registered label.
func ErrUnresolved(label string) error {
	return oops.Code(CodeUnresolved).
		With("label", label).
		Errorf("%s isn't handled", label)
}

// ErrRateLimited records a dispatch refused by the rate limiter.
func ErrRateLimited(cooldownMs int64) error {
	return oops.Code(CodeRateLimited).
		With("cooldown_ms", cooldownMs).
		Errorf("too many commands")
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", v)
}
