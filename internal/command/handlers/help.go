// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"strings"

	"github.com/holomush/cmdtree/internal/command"
)

func (b *Builtins) help(inv *command.Invocation) {
	if name := inv.Arg(0); name != "" {
		b.describe(inv, name)
		return
	}

	inv.Reply("&6Available commands:")
	for _, entry := range b.entries.Entries() {
		if desc := entry.Description(); desc != "" {
			inv.Replyf("  &e%s&r - %s", entry.Name(), desc)
		} else {
			inv.Replyf("  &e%s", entry.Name())
		}
	}
}

func (b *Builtins) describe(inv *command.Invocation, name string) {
	entry, ok := b.entries.Entry(name)
	if !ok {
		inv.Replyf("&cNo help for %s.", name)
		return
	}

	if desc := entry.Description(); desc != "" {
		inv.Replyf("&e%s&r: %s", entry.Name(), desc)
	} else {
		inv.Replyf("&e%s", entry.Name())
	}
	if usage := entry.Usage(); usage != "" {
		inv.Replyf("&7Usage: %s", usage)
	}
}

// completeHelp suggests entry names for the word being typed.
func (b *Builtins) completeHelp(inv *command.Invocation) []string {
	rest := inv.Rest()
	if len(rest) > 1 {
		return nil
	}
	prefix := strings.ToLower(inv.Arg(0))

	var names []string
	for _, entry := range b.entries.Entries() {
		if strings.HasPrefix(entry.Name(), prefix) {
			names = append(names, entry.Name())
		}
	}
	return names
}
