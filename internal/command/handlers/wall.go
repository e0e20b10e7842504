// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"log/slog"
	"strings"

	"github.com/holomush/cmdtree/internal/command"
)

// WallUrgency represents the urgency level of a wall message.
type WallUrgency string

// Wall urgency levels. Each has its own sub-label: "wall warning <msg>".
const (
	WallUrgencyInfo     WallUrgency = "info"
	WallUrgencyWarning  WallUrgency = "warning"
	WallUrgencyCritical WallUrgency = "critical"
)

var urgencyPrefixes = map[WallUrgency]string{
	WallUrgencyInfo:     "&b[ANNOUNCEMENT]",
	WallUrgencyWarning:  "&e[WARNING]",
	WallUrgencyCritical: "&c&l[CRITICAL]",
}

func (b *Builtins) wall(urgency WallUrgency) func(*command.Invocation) {
	return func(inv *command.Invocation) {
		message := strings.TrimSpace(strings.Join(inv.Rest(), " "))
		if message == "" {
			inv.Reply("&cUsage: wall [warning|critical] <message>")
			return
		}
		if b.sessions == nil {
			inv.Reply("&cNo sessions to broadcast to.")
			return
		}

		announcement := urgencyPrefixes[urgency] + "&r " + inv.Sender.Name() + ": " + message
		delivered := b.sessions.Broadcast(announcement)

		slog.Info("admin wall",
			"sender", inv.Sender.Name(),
			"urgency", string(urgency),
			"message", message,
			"session_count", delivered)

		word := "sessions"
		if delivered == 1 {
			word = "session"
		}
		inv.Replyf("Announcement sent to %d %s.", delivered, word)
	}
}

func (b *Builtins) completeWall(inv *command.Invocation) []string {
	if inv.Depth > 0 || len(inv.Rest()) > 1 {
		return nil
	}
	prefix := strings.ToLower(inv.Arg(0))
	var out []string
	for _, level := range []string{"warning", "critical"} {
		if strings.HasPrefix(level, prefix) {
			out = append(out, level)
		}
	}
	return out
}
