// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/holomush/cmdtree/internal/command"
)

// maxShutdownDelay is the largest delay in seconds a time.Duration holds.
const maxShutdownDelay = math.MaxInt64 / int64(time.Second)

// shutdownCommand initiates a graceful server shutdown.
// Usage: shutdown [delay_seconds]
// If delay is 0 or omitted, shutdown is immediate. Connected sessions are
// warned before the host is asked to stop.
func (b *Builtins) shutdownCommand(inv *command.Invocation) {
	if b.shutdown == nil {
		inv.Reply("&cShutdown is not available here.")
		return
	}

	var delaySeconds int64
	if arg := inv.Arg(0); arg != "" {
		parsed, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || parsed < 0 || parsed > maxShutdownDelay {
			inv.Reply("&cUsage: shutdown [delay_seconds]")
			return
		}
		delaySeconds = parsed
	}

	if b.sessions != nil {
		b.sessions.Broadcast(formatShutdownMessage(delaySeconds))
	}

	slog.Info("admin shutdown",
		"sender", inv.Sender.Name(),
		"delay_seconds", delaySeconds)

	if delaySeconds == 0 {
		inv.Reply("Initiating server shutdown...")
	} else {
		inv.Replyf("Initiating server shutdown in %d seconds...", delaySeconds)
	}
	b.shutdown(time.Duration(delaySeconds) * time.Second)
}

// formatShutdownMessage creates the shutdown warning broadcast to sessions.
func formatShutdownMessage(delaySeconds int64) string {
	if delaySeconds == 0 {
		return "&c[SHUTDOWN] Server shutting down NOW."
	}
	return fmt.Sprintf("&c[SHUTDOWN] Server shutting down in %d seconds...", delaySeconds)
}
