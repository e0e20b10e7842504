// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holomush/cmdtree/pkg/errutil"
)

func TestErrorConstructors(t *testing.T) {
	cause := errors.New("disk on fire")

	tests := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{
			name:    "invalid signature",
			err:     ErrInvalidSignature("tab completer", "build", 42),
			code:    CodeInvalidSignature,
			message: "unable to register tab completer build: unexpected method arguments",
		},
		{
			name:    "invalid return type",
			err:     ErrInvalidReturnType("build", func(*Invocation) {}),
			code:    CodeInvalidReturnType,
			message: "unable to register tab completer build: unexpected return type",
		},
		{
			name:    "completer conflict",
			err:     ErrCompleterConflict("build"),
			code:    CodeCompleterConflict,
			message: "a tab completer is already registered for that command",
		},
		{
			name:    "no completer slot",
			err:     ErrNoCompleterSlot("build", "*host.Other"),
			code:    CodeNoCompleterSlot,
			message: "entry does not accept completers",
		},
		{
			name:    "handler failed",
			err:     ErrHandlerFailed("build.wall", cause),
			code:    CodeHandlerFailed,
			message: "disk on fire",
		},
		{
			name:    "handler panic",
			err:     ErrHandlerPanic("build.wall", "kaboom"),
			code:    CodeHandlerPanic,
			message: "handler for build.wall panicked: kaboom",
		},
		{
			name:    "permission denied",
			err:     ErrPermissionDenied("build.wall", "build.walls"),
			code:    CodePermissionDenied,
			message: "permission denied for build.wall",
		},
		{
			name:    "context restricted",
			err:     ErrContextRestricted("quit"),
			code:    CodeContextRestricted,
			message: "quit requires an interactive sender",
		},
		{
			name:    "unresolved",
			err:     ErrUnresolved("nope"),
			code:    CodeUnresolved,
			message: "nope isn't handled",
		},
		{
			name:    "rate limited",
			err:     ErrRateLimited(500),
			code:    CodeRateLimited,
			message: "too many commands",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errutil.AssertErrorCode(t, tt.err, tt.code)
			assert.Contains(t, tt.err.Error(), tt.message)
		})
	}
}

func TestErrInvalidSignature_Context(t *testing.T) {
	err := ErrInvalidSignature("command", "look", "not a func")
	errutil.AssertErrorContext(t, err, "label", "look")
	errutil.AssertErrorContext(t, err, "handler_type", "string")
}

func TestErrHandlerFailed_Unwraps(t *testing.T) {
	cause := errors.New("disk on fire")
	err := ErrHandlerFailed("build", cause)
	assert.ErrorIs(t, err, cause)
}

func TestSentinelErrors(t *testing.T) {
	errutil.AssertErrorCode(t, ErrNilTable, CodeNilTable)
	errutil.AssertErrorCode(t, ErrNilRegistry, CodeNilRegistry)
}
