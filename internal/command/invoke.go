// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
)

// callHandler runs h, converting a panic into ErrHandlerPanic.
func callHandler(ctx context.Context, h Handler, inv *Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrHandlerPanic(inv.Matched, r)
		}
	}()
	return h(ctx, inv)
}

// callCompleter runs c, converting a panic into ErrHandlerPanic.
func callCompleter(ctx context.Context, c CompleteFunc, inv *Invocation) (suggestions []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			suggestions = nil
			err = ErrHandlerPanic(inv.Matched, r)
		}
	}()
	return c(ctx, inv)
}
