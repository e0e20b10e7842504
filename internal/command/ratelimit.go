// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"math"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Rate limiting defaults and bounds.
const (
	DefaultBurstCapacity   = 10
	DefaultSustainedRate   = 2.0
	DefaultCleanupInterval = 5 * time.Minute
	DefaultIdleMaxAge      = time.Hour

	MinBurstCapacity = 1
	MinSustainedRate = 0.1

	// PermissionRateLimitBypass exempts a sender from rate limiting.
	PermissionRateLimitBypass = "cmdtree.ratelimit.bypass"
)

// RateLimiterConfig configures a RateLimiter. Zero or negative fields take
// the defaults above; burst and rate are raised to their minimums.
type RateLimiterConfig struct {
	// BurstCapacity is how many commands a fresh sender may issue at once.
	BurstCapacity int
	// SustainedRate is the refill rate in commands per second.
	SustainedRate float64
	// CleanupInterval is how often idle senders are forgotten.
	CleanupInterval time.Duration
	// IdleMaxAge is how long a silent sender's bucket is kept.
	IdleMaxAge time.Duration
}

func (c RateLimiterConfig) normalized() RateLimiterConfig {
	if c.BurstCapacity <= 0 {
		c.BurstCapacity = DefaultBurstCapacity
	}
	c.BurstCapacity = max(c.BurstCapacity, MinBurstCapacity)
	if c.SustainedRate <= 0 {
		c.SustainedRate = DefaultSustainedRate
	}
	c.SustainedRate = math.Max(c.SustainedRate, MinSustainedRate)
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
	if c.IdleMaxAge <= 0 {
		c.IdleMaxAge = DefaultIdleMaxAge
	}
	return c
}

// bucket is one sender's token bucket.
type bucket struct {
	tokens float64
	seen   time.Time
}

// take refills b for the time since it was last seen and consumes a token
// when one is available. Otherwise it returns the wait until the next one.
func (b *bucket) take(now time.Time, burst, rate float64) (bool, time.Duration) {
	b.tokens = math.Min(burst, b.tokens+now.Sub(b.seen).Seconds()*rate)
	b.seen = now
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	return false, time.Duration((1 - b.tokens) / rate * float64(time.Second))
}

// RateLimiter is a per-sender token bucket keyed by sender name. It is safe
// for concurrent use. A background goroutine forgets idle senders until
// Close is called.
type RateLimiter struct {
	cfg     RateLimiterConfig
	now     func() time.Time
	senders map[string]*bucket
	gauge   prometheus.Gauge
	mu      sync.Mutex

	stop      chan struct{}
	stopOnce  sync.Once
	cleanupWG sync.WaitGroup
}

// NewRateLimiter creates a rate limiter and starts its cleanup goroutine.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return newRateLimiter(cfg, nil, time.Now)
}

// NewRateLimiterWithRegistry is NewRateLimiter plus a
// cmdtree_ratelimiter_senders gauge registered with reg. A nil reg
// registers nothing.
func NewRateLimiterWithRegistry(cfg RateLimiterConfig, reg prometheus.Registerer) *RateLimiter {
	return newRateLimiter(cfg, reg, time.Now)
}

func newRateLimiter(cfg RateLimiterConfig, reg prometheus.Registerer, now func() time.Time) *RateLimiter {
	rl := &RateLimiter{
		cfg:     cfg.normalized(),
		now:     now,
		senders: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if reg != nil {
		rl.gauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cmdtree_ratelimiter_senders",
			Help: "Current number of senders tracked by the rate limiter",
		})
		reg.MustRegister(rl.gauge)
	}

	rl.cleanupWG.Add(1)
	go rl.cleanupLoop()
	return rl
}

// Allow consumes one token for sender. When none is left it reports the
// cooldown in milliseconds, rounded up. New senders start with a full burst.
func (rl *RateLimiter) Allow(sender string) (allowed bool, cooldownMs int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.senders[sender]
	if !ok {
		b = &bucket{tokens: float64(rl.cfg.BurstCapacity), seen: now}
		rl.senders[sender] = b
		rl.updateGauge()
	}

	allowed, wait := b.take(now, float64(rl.cfg.BurstCapacity), rl.cfg.SustainedRate)
	if allowed {
		return true, 0
	}
	return false, int64(math.Ceil(float64(wait) / float64(time.Millisecond)))
}

// SenderCount returns the number of tracked senders.
func (rl *RateLimiter) SenderCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.senders)
}

// Cleanup forgets senders silent for longer than maxAge.
func (rl *RateLimiter) Cleanup(maxAge time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := rl.now().Add(-maxAge)
	for name, b := range rl.senders {
		if b.seen.Before(threshold) {
			delete(rl.senders, name)
		}
	}
	rl.updateGauge()
}

// updateGauge requires rl.mu.
func (rl *RateLimiter) updateGauge() {
	if rl.gauge != nil {
		rl.gauge.Set(float64(len(rl.senders)))
	}
}

func (rl *RateLimiter) cleanupLoop() {
	defer rl.cleanupWG.Done()

	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.Cleanup(rl.cfg.IdleMaxAge)
		}
	}
}

// Close stops the cleanup goroutine and waits for it. It is safe to call
// more than once.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
	rl.cleanupWG.Wait()
}
