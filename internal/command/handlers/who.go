// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/holomush/cmdtree/internal/command"
)

// who lists sessions, optionally only those whose name starts with the
// first argument.
func (b *Builtins) who(inv *command.Invocation) {
	var prefix string
	if rest := inv.Rest(); len(rest) > 0 {
		prefix = strings.ToLower(rest[0])
	}

	var shown []Session
	if b.sessions != nil {
		for _, s := range b.sessions.List() {
			if strings.HasPrefix(strings.ToLower(s.Name), prefix) {
				shown = append(shown, s)
			}
		}
	}
	if len(shown) == 0 {
		if prefix != "" {
			inv.Replyf("No sessions match %q.", prefix)
			return
		}
		inv.Reply("No sessions connected.")
		return
	}

	slices.SortFunc(shown, func(x, y Session) int {
		return cmp.Compare(strings.ToLower(x.Name), strings.ToLower(y.Name))
	})
	width := 0
	for _, s := range shown {
		width = max(width, len(s.Name))
	}

	inv.Replyf("&6Sessions Online (%d):", len(shown))
	for _, s := range shown {
		inv.Replyf("  %-*s  idle %s", width, s.Name, formatIdleTime(s.Idle))
	}
}

// formatIdleTime renders d at whole-second precision, dropping seconds
// once it reaches an hour.
func formatIdleTime(d time.Duration) string {
	d = d.Truncate(time.Second)
	h, m, s := int(d/time.Hour), int(d%time.Hour/time.Minute), int(d%time.Minute/time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
