// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holomush/cmdtree/internal/host/hosttest"
	"github.com/holomush/cmdtree/pkg/errutil"
)

func TestRateLimitMiddleware_Enforce(t *testing.T) {
	ctx := context.Background()
	alice := func() *hosttest.Sender { return hosttest.NewSender("alice", true) }

	t.Run("nil middleware allows", func(t *testing.T) {
		var mw *RateLimitMiddleware
		assert.NoError(t, mw.Enforce(ctx, alice(), "look"))
	})

	t.Run("nil limiter allows", func(t *testing.T) {
		assert.NoError(t, NewRateLimitMiddleware(nil).Enforce(ctx, alice(), "look"))
	})

	t.Run("limits after burst", func(t *testing.T) {
		mw := NewRateLimitMiddleware(newTestLimiter(t, RateLimiterConfig{BurstCapacity: 1, SustainedRate: 0.1}))
		sender := alice()

		assert.NoError(t, mw.Enforce(ctx, sender, "look"))
		err := mw.Enforce(ctx, sender, "look")
		errutil.AssertErrorCode(t, err, CodeRateLimited)
	})

	t.Run("bypass permission", func(t *testing.T) {
		limiter := newTestLimiter(t, RateLimiterConfig{BurstCapacity: 1, SustainedRate: 0.1})
		mw := NewRateLimitMiddleware(limiter)
		sender := hosttest.NewSender("root", true, PermissionRateLimitBypass)

		for i := 0; i < 10; i++ {
			assert.NoError(t, mw.Enforce(ctx, sender, "look"))
		}
		assert.Zero(t, limiter.SenderCount(), "bypassing senders are not tracked")
	})
}
