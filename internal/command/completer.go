// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/cmdtree/internal/host"
	"github.com/holomush/cmdtree/pkg/errutil"
)

// CompleterSet aggregates the completers registered beneath one top-level
// entry. It is the completer a framework installs into an entry's slot and
// is thread-safe for concurrent access.
//
// Completion is advisory: no permission or sender gating applies, and
// failures yield no suggestions instead of an error.
type CompleterSet struct {
	entry      host.Entry
	completers map[string]CompleterBinding
	mu         sync.RWMutex
}

// NewCompleterSet creates an empty completer set for entry. entry is passed
// through to completers as Invocation.Entry and may be nil.
func NewCompleterSet(entry host.Entry) *CompleterSet {
	return &CompleterSet{
		entry:      entry,
		completers: make(map[string]CompleterBinding),
	}
}

// Add stores binding under its key, overwriting any earlier binding.
func (s *CompleterSet) Add(binding CompleterBinding) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.completers[binding.Key]; ok {
		slog.Warn("completer conflict: overwriting existing binding",
			"label", binding.Key,
			"previous_owner", typeName(existing.Owner),
			"new_owner", typeName(binding.Owner))
	}
	s.completers[binding.Key] = binding
}

// Get retrieves a completer binding by normalized key.
func (s *CompleterSet) Get(key string) (CompleterBinding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	binding, ok := s.completers[key]
	return binding, ok
}

// Keys returns the registered keys in order.
func (s *CompleterSet) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.completers))
	for k := range s.completers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Complete resolves label and args against the set, ignoring blank tokens,
// and returns the matched completer's suggestions. It returns nil when
// nothing matches or the completer fails.
func (s *CompleterSet) Complete(ctx context.Context, sender host.Sender, label string, args []string) []string {
	ctx, span := tracer.Start(ctx, "command.complete",
		trace.WithAttributes(
			attribute.String("command.label", label),
			attribute.Int("command.arg_count", len(args)),
		),
	)
	defer span.End()

	var binding CompleterBinding
	match, ok := Resolve(func(key string) bool {
		b, found := s.Get(key)
		if found {
			binding = b
		}
		return found
	}, label, args, true)
	if !ok {
		RecordCompletion(NormalizeLabel(label), "", StatusUnresolved)
		return nil
	}

	span.SetAttributes(
		attribute.String("command.matched", match.Key),
		attribute.Int("command.depth", match.Depth),
		attribute.String("command.namespace", binding.Source),
	)

	inv := &Invocation{
		Sender:   sender,
		Entry:    s.entry,
		Label:    label,
		Args:     args,
		Depth:    match.Depth,
		Matched:  match.Key,
		consumed: match.Consumed,
	}
	suggestions, err := callCompleter(ctx, binding.Complete, inv)
	if err != nil {
		if errutil.Code(err) != CodeHandlerPanic {
			err = ErrHandlerFailed(match.Key, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		errutil.LogErrorContext(ctx, slog.Default(), "tab completer failed", err)
		RecordCompletion(match.Key, binding.Source, StatusError)
		return nil
	}

	RecordCompletion(match.Key, binding.Source, StatusSuccess)
	return suggestions
}

var _ host.Completer = (*CompleterSet)(nil)
