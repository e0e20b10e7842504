// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/cmdtree/internal/host"
	"github.com/holomush/cmdtree/pkg/chatcolor"
	"github.com/holomush/cmdtree/pkg/errutil"
)

var tracer = otel.Tracer("cmdtree/command")

// InteractiveOnlyMessage is sent when a non-interactive sender invokes an
// interactive-only command.
const InteractiveOnlyMessage = "This command can only be used from an interactive session"

// Dispatcher resolves invocations against a registry, applies gating and
// runs the bound handler. Every failure ends in a log entry, a message to
// the sender, or both; nothing is returned to the host.
type Dispatcher struct {
	registry  *Registry
	namespace string
	fallback  Handler
	rateLimit *RateLimitMiddleware // optional, can be nil
}

// DispatcherOption configures a Dispatcher during construction.
type DispatcherOption func(*Dispatcher)

// WithFallback replaces the handler run when no label matches.
func WithFallback(h Handler) DispatcherOption {
	return func(d *Dispatcher) {
		if h != nil {
			d.fallback = h
		}
	}
}

// WithRateLimiter enables per-sender rate limiting.
// If not provided, rate limiting is disabled.
func WithRateLimiter(rl *RateLimiter) DispatcherOption {
	return func(d *Dispatcher) {
		d.rateLimit = NewRateLimitMiddleware(rl)
	}
}

// WithNamespace sets the namespace reported in metrics and spans.
func WithNamespace(namespace string) DispatcherOption {
	return func(d *Dispatcher) {
		d.namespace = namespace
	}
}

// NewDispatcher creates a dispatcher over registry.
// Returns an error if registry is nil.
func NewDispatcher(registry *Registry, opts ...DispatcherOption) (*Dispatcher, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	d := &Dispatcher{
		registry: registry,
		fallback: DefaultFallback,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// DefaultFallback tells the sender the label isn't handled.
func DefaultFallback(_ context.Context, inv *Invocation) error {
	inv.Sender.SendMessage(chatcolor.Red + inv.Label + " isn't handled!")
	return nil
}

// Dispatch resolves label and args, gates and runs the matched handler.
// entry is the top-level entry that received the call and may be nil.
// It always reports the invocation as handled.
func (d *Dispatcher) Dispatch(ctx context.Context, sender host.Sender, entry host.Entry, label string, args []string) bool {
	ctx, span := tracer.Start(ctx, "command.dispatch",
		trace.WithAttributes(
			attribute.String("command.label", label),
			attribute.Int("command.arg_count", len(args)),
			attribute.String("command.namespace", d.namespace),
			attribute.String("sender.name", sender.Name()),
		),
	)
	defer span.End()

	metrics := NewMetricsRecorder(d.namespace)
	defer metrics.Record()
	metrics.SetLabel(NormalizeLabel(label))

	if err := d.rateLimit.Enforce(ctx, sender, label); err != nil {
		metrics.SetStatus(StatusRateLimited)
		sender.SendMessage(chatcolor.Translate(chatcolor.DefaultAlt, RateLimitedMessage))
		return true
	}

	var binding Binding
	match, ok := Resolve(func(key string) bool {
		b, found := d.registry.Get(key)
		if found {
			binding = b
		}
		return found
	}, label, args, false)

	if !ok {
		span.SetAttributes(attribute.Bool("command.unresolved", true))
		slog.DebugContext(ctx, "command unresolved",
			"label", label,
			"sender", sender.Name(),
			"error", ErrUnresolved(label))
		metrics.SetStatus(StatusUnresolved)
		inv := &Invocation{Sender: sender, Entry: entry, Label: label, Args: args}
		d.invoke(ctx, span, d.fallback, inv)
		return true
	}

	metrics.SetLabel(match.Key)
	span.SetAttributes(
		attribute.String("command.matched", match.Key),
		attribute.Int("command.depth", match.Depth),
	)

	if binding.Permission != "" && !sender.HasPermission(binding.Permission) {
		slog.DebugContext(ctx, "command denied",
			"label", match.Key,
			"sender", sender.Name(),
			"error", ErrPermissionDenied(match.Key, binding.Permission))
		span.SetAttributes(attribute.Bool("command.permission_denied", true))
		metrics.SetStatus(StatusPermissionDenied)
		sender.SendMessage(chatcolor.Translate(chatcolor.DefaultAlt, binding.DeniedMessage))
		return true
	}

	if binding.InteractiveOnly && !sender.IsInteractive() {
		slog.DebugContext(ctx, "command restricted",
			"label", match.Key,
			"sender", sender.Name(),
			"error", ErrContextRestricted(match.Key))
		span.SetAttributes(attribute.Bool("command.context_restricted", true))
		metrics.SetStatus(StatusContextRestricted)
		sender.SendMessage(InteractiveOnlyMessage)
		return true
	}

	inv := &Invocation{
		Sender:   sender,
		Entry:    entry,
		Label:    label,
		Args:     args,
		Depth:    match.Depth,
		Matched:  match.Key,
		consumed: match.Consumed,
	}
	if d.invoke(ctx, span, binding.Handler, inv) {
		metrics.SetStatus(StatusSuccess)
	} else {
		metrics.SetStatus(StatusError)
	}
	return true
}

// invoke runs h and logs any failure. It reports whether h succeeded.
func (d *Dispatcher) invoke(ctx context.Context, span trace.Span, h Handler, inv *Invocation) bool {
	err := callHandler(ctx, h, inv)
	if err == nil {
		return true
	}

	if errutil.Code(err) != CodeHandlerPanic {
		key := inv.Matched
		if key == "" {
			key = NormalizeLabel(inv.Label)
		}
		err = ErrHandlerFailed(key, err)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	errutil.LogErrorContext(ctx, slog.Default(), "command handler failed", err)
	return false
}
