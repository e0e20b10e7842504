// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package command provides the hierarchical command framework: label
// resolution, the command and completer registries, the dispatcher and the
// bridge that installs top-level entries into a host command table.
//
// A command registered as "build.wall.stone" is reached by typing
// "build wall stone". Resolution always prefers the longest registered
// label, so a general "build" handler and specialised sub-handlers coexist
// without the general handler parsing sub-verbs itself.
package command

import (
	"context"
	"fmt"

	"github.com/holomush/cmdtree/internal/host"
	"github.com/holomush/cmdtree/pkg/chatcolor"
)

// Handler executes a resolved command.
type Handler func(ctx context.Context, inv *Invocation) error

// CompleteFunc returns suggestions for a resolved completion request.
type CompleteFunc func(ctx context.Context, inv *Invocation) ([]string, error)

// DefaultDeniedMessage is sent when a command lacks its own denial text.
const DefaultDeniedMessage = "&cYou do not have permission to perform that action"

// CommandSpec describes one command produced by handler enumeration.
//
// Handler is untyped because enumeration sources (Go providers, scripts)
// may yield anything; registration accepts only the shapes adaptHandler
// knows and rejects the rest.
type CommandSpec struct {
	Label           string   // dot-joined label, e.g. "build.wall"
	Aliases         []string // alternative labels bound to the same handler
	Permission      string   // required permission; empty means unrestricted
	DeniedMessage   string   // sent with '&' codes translated when permission is missing
	InteractiveOnly bool     // refuse non-interactive senders
	Description     string   // one-line help, attached only to root labels
	Usage           string   // usage pattern, attached only to root labels
	Handler         any
	Owner           any // the handler-owning object
}

// CompleterSpec describes one tab completer produced by handler enumeration.
type CompleterSpec struct {
	Label   string
	Aliases []string
	Handler any
	Owner   any
}

// Provider is a handler-owning object that enumerates its commands and
// completers.
type Provider interface {
	Commands() []CommandSpec
	Completers() []CompleterSpec
}

// Binding is a registered command.
type Binding struct {
	Key             string // normalized key the binding is stored under
	Handler         Handler
	Owner           any
	Permission      string
	DeniedMessage   string
	InteractiveOnly bool
	Description     string
	Usage           string
	Source          string // namespace of the registering framework
}

// CompleterBinding is a registered tab completer.
type CompleterBinding struct {
	Key      string
	Complete CompleteFunc
	Owner    any
	Source   string
}

// Invocation is the context a handler or completer runs against. It is
// built per call and must not be retained after the handler returns.
type Invocation struct {
	Sender  host.Sender
	Entry   host.Entry // top-level entry that received the call
	Label   string     // label as typed by the sender
	Args    []string   // raw argument tokens
	Depth   int        // dot-segments of Matched beyond the base label
	Matched string     // registered key that was resolved; empty for the fallback

	consumed int
}

// Rest returns the argument tokens after those consumed into the matched
// label.
func (inv *Invocation) Rest() []string {
	if inv.consumed >= len(inv.Args) {
		return nil
	}
	return inv.Args[inv.consumed:]
}

// Arg returns the i-th token of Rest, or "" when out of range.
func (inv *Invocation) Arg(i int) string {
	rest := inv.Rest()
	if i < 0 || i >= len(rest) {
		return ""
	}
	return rest[i]
}

// Reply sends message to the sender with '&' color codes translated.
func (inv *Invocation) Reply(message string) {
	inv.Sender.SendMessage(chatcolor.Translate(chatcolor.DefaultAlt, message))
}

// Replyf formats and sends a message like Reply.
func (inv *Invocation) Replyf(format string, args ...any) {
	inv.Reply(fmt.Sprintf(format, args...))
}
