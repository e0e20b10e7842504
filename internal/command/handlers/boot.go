// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"log/slog"
	"strings"

	"github.com/holomush/cmdtree/internal/command"
)

// boot disconnects another session by name.
// Usage: boot <name> [reason]
func (b *Builtins) boot(inv *command.Invocation) {
	target := inv.Arg(0)
	if target == "" {
		inv.Reply("&cUsage: boot <name> [reason]")
		return
	}
	if b.sessions == nil {
		inv.Replyf("&cNo session named %s.", target)
		return
	}

	reason := strings.TrimSpace(strings.Join(inv.Rest()[1:], " "))
	if reason == "" {
		reason = "booted by " + inv.Sender.Name()
	}

	if !b.sessions.Disconnect(target, reason) {
		inv.Replyf("&cNo session named %s.", target)
		return
	}

	slog.Info("admin boot",
		"sender", inv.Sender.Name(),
		"target", target,
		"reason", reason)
	inv.Replyf("&aBooted %s.", target)
}

// completeBoot suggests connected session names.
func (b *Builtins) completeBoot(inv *command.Invocation) []string {
	if b.sessions == nil || len(inv.Rest()) > 1 {
		return nil
	}
	prefix := strings.ToLower(inv.Arg(0))

	var names []string
	for _, s := range b.sessions.List() {
		if strings.HasPrefix(strings.ToLower(s.Name), prefix) {
			names = append(names, s.Name)
		}
	}
	return names
}
