// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"strings"

	"github.com/holomush/cmdtree/internal/command"
)

func (b *Builtins) echo(inv *command.Invocation) {
	text := strings.Join(inv.Rest(), " ")
	if strings.TrimSpace(text) == "" {
		inv.Reply("&cUsage: echo <text>")
		return
	}
	inv.Reply(text)
}

func (b *Builtins) whoami(inv *command.Invocation) {
	kind := "console"
	if inv.Sender.IsInteractive() {
		kind = "interactive"
	}
	inv.Replyf("You are &e%s&r (%s).", inv.Sender.Name(), kind)
}

func (b *Builtins) perms(inv *command.Invocation) {
	inv.Reply("&7Usage: perms check <permission>")
}

func (b *Builtins) permsCheck(inv *command.Invocation) {
	permission := inv.Arg(0)
	if permission == "" {
		inv.Reply("&cUsage: perms check <permission>")
		return
	}
	if inv.Sender.HasPermission(permission) {
		inv.Replyf("&a%s: granted", permission)
		return
	}
	inv.Replyf("&c%s: denied", permission)
}

func (b *Builtins) listPlugins(inv *command.Invocation) {
	var plugins []PluginInfo
	if b.plugins != nil {
		plugins = b.plugins()
	}
	if len(plugins) == 0 {
		inv.Reply("No plugins loaded.")
		return
	}

	inv.Replyf("&6Plugins (%d):", len(plugins))
	for _, p := range plugins {
		if p.Description != "" {
			inv.Replyf("  &e%s&r %s - %s", p.Name, p.Version, p.Description)
		} else {
			inv.Replyf("  &e%s&r %s", p.Name, p.Version)
		}
	}
}
