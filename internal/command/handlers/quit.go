// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"github.com/samber/oops"

	"github.com/holomush/cmdtree/internal/command"
)

// CodeNotDisconnectable marks a quit from a sender that cannot be disconnected.
const CodeNotDisconnectable = "NOT_DISCONNECTABLE"

// quit ends the sender's session gracefully.
func (b *Builtins) quit(inv *command.Invocation) error {
	d, ok := inv.Sender.(Disconnecter)
	if !ok {
		return oops.Code(CodeNotDisconnectable).
			With("sender", inv.Sender.Name()).
			Errorf("sender cannot be disconnected")
	}

	inv.Reply("Goodbye!")
	d.Disconnect("quit")
	return nil
}
