// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/cmdtree/internal/host"
)

// RateLimitedMessage is sent to senders refused by the rate limiter.
const RateLimitedMessage = "&cToo many commands. Please slow down."

// RateLimitMiddleware gates dispatch on a RateLimiter. The zero value, a
// nil middleware and a nil limiter all allow everything.
type RateLimitMiddleware struct {
	limiter *RateLimiter
}

// NewRateLimitMiddleware wraps limiter.
func NewRateLimitMiddleware(limiter *RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Enforce spends one of sender's tokens. Without one it annotates the span
// in ctx and returns ErrRateLimited. Holders of PermissionRateLimitBypass
// spend nothing.
func (r *RateLimitMiddleware) Enforce(ctx context.Context, sender host.Sender, label string) error {
	if r == nil || r.limiter == nil || sender.HasPermission(PermissionRateLimitBypass) {
		return nil
	}

	allowed, cooldownMs := r.limiter.Allow(sender.Name())
	if allowed {
		return nil
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Bool("command.rate_limited", true),
		attribute.Int64("command.cooldown_ms", cooldownMs),
	)
	slog.DebugContext(ctx, "command rate limited",
		"sender", sender.Name(),
		"label", label,
		"cooldown_ms", cooldownMs)
	return ErrRateLimited(cooldownMs)
}
