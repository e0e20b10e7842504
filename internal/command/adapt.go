// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"reflect"
)

var (
	invocationType = reflect.TypeOf((*Invocation)(nil))
	contextType    = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// adaptHandler converts an enumerated command handler into a Handler.
// Accepted shapes all take exactly one invocation context, optionally
// preceded by a context.Context.
func adaptHandler(label string, h any) (Handler, error) {
	switch fn := h.(type) {
	case Handler:
		if fn != nil {
			return fn, nil
		}
	case func(context.Context, *Invocation) error:
		if fn != nil {
			return fn, nil
		}
	case func(*Invocation) error:
		if fn != nil {
			return func(_ context.Context, inv *Invocation) error { return fn(inv) }, nil
		}
	case func(*Invocation):
		if fn != nil {
			return func(_ context.Context, inv *Invocation) error {
				fn(inv)
				return nil
			}, nil
		}
	}
	return nil, ErrInvalidSignature("command", label, h)
}

// adaptCompleter converts an enumerated completer into a CompleteFunc.
func adaptCompleter(label string, h any) (CompleteFunc, error) {
	switch fn := h.(type) {
	case CompleteFunc:
		if fn != nil {
			return fn, nil
		}
	case func(context.Context, *Invocation) ([]string, error):
		if fn != nil {
			return fn, nil
		}
	case func(*Invocation) []string:
		if fn != nil {
			return func(_ context.Context, inv *Invocation) ([]string, error) { return fn(inv), nil }, nil
		}
	}
	if acceptsInvocation(h) {
		return nil, ErrInvalidReturnType(label, h)
	}
	return nil, ErrInvalidSignature("tab completer", label, h)
}

// acceptsInvocation reports whether h is a function whose parameters match
// an accepted completer, regardless of its results.
func acceptsInvocation(h any) bool {
	if h == nil {
		return false
	}
	t := reflect.TypeOf(h)
	if t.Kind() != reflect.Func || reflect.ValueOf(h).IsNil() {
		return false
	}
	switch t.NumIn() {
	case 1:
		return t.In(0) == invocationType
	case 2:
		return t.In(0) == contextType && t.In(1) == invocationType
	default:
		return false
	}
}
