// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package handlers provides the built-in commands every cmdtree host
// registers under its core namespace.
package handlers

import (
	"time"

	"github.com/holomush/cmdtree/internal/command"
	"github.com/holomush/cmdtree/internal/host"
)

// Permissions required by the administrative built-ins.
const (
	PermissionShutdown = "cmdtree.admin.shutdown"
	PermissionWall     = "cmdtree.admin.wall"
	PermissionBoot     = "cmdtree.admin.boot"
)

// EntryLister exposes the host entries help describes.
type EntryLister interface {
	Entry(name string) (host.Entry, bool)
	Entries() []host.Entry
}

// Session describes one connected sender.
type Session struct {
	Name string
	Idle time.Duration
}

// Sessions is the connection registry the session commands act on.
type Sessions interface {
	List() []Session
	Broadcast(message string) int
	Disconnect(name, reason string) bool
}

// Disconnecter is implemented by senders that can end their own session.
type Disconnecter interface {
	Disconnect(reason string)
}

// PluginInfo describes a loaded plugin for the plugins command.
type PluginInfo struct {
	Name        string
	Version     string
	Description string
}

// ShutdownFunc asks the host to stop after delay.
type ShutdownFunc func(delay time.Duration)

// Builtins is the provider of the built-in commands.
type Builtins struct {
	entries  EntryLister
	sessions Sessions
	plugins  func() []PluginInfo
	shutdown ShutdownFunc
}

// Option configures Builtins.
type Option func(*Builtins)

// WithSessions enables who, wall and boot against sessions.
func WithSessions(s Sessions) Option {
	return func(b *Builtins) { b.sessions = s }
}

// WithPlugins sets the source of the plugins listing.
func WithPlugins(list func() []PluginInfo) Option {
	return func(b *Builtins) { b.plugins = list }
}

// WithShutdown sets the function shutdown calls.
func WithShutdown(fn ShutdownFunc) Option {
	return func(b *Builtins) { b.shutdown = fn }
}

// New creates the built-in provider. entries is usually the host table.
func New(entries EntryLister, opts ...Option) *Builtins {
	b := &Builtins{entries: entries}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Commands enumerates the built-in commands.
func (b *Builtins) Commands() []command.CommandSpec {
	return []command.CommandSpec{
		{
			Label:       "help",
			Aliases:     []string{"?"},
			Description: "List commands or describe one",
			Usage:       "help [command]",
			Handler:     b.help,
			Owner:       b,
		},
		{
			Label:       "echo",
			Description: "Repeat text back, with & color codes",
			Usage:       "echo <text>",
			Handler:     b.echo,
			Owner:       b,
		},
		{
			Label:       "whoami",
			Description: "Show who you are",
			Usage:       "whoami",
			Handler:     b.whoami,
			Owner:       b,
		},
		{
			Label:       "perms",
			Description: "Inspect your permissions",
			Usage:       "perms check <permission>",
			Handler:     b.perms,
			Owner:       b,
		},
		{
			Label:   "perms.check",
			Handler: b.permsCheck,
			Owner:   b,
		},
		{
			Label:       "plugins",
			Description: "List loaded plugins",
			Usage:       "plugins",
			Handler:     b.listPlugins,
			Owner:       b,
		},
		{
			Label:       "who",
			Description: "List connected sessions",
			Usage:       "who [prefix]",
			Handler:     b.who,
			Owner:       b,
		},
		{
			Label:         "wall",
			Permission:    PermissionWall,
			DeniedMessage: "&cOnly administrators can broadcast announcements.",
			Description:   "Broadcast an announcement",
			Usage:         "wall [warning|critical] <message>",
			Handler:       b.wall(WallUrgencyInfo),
			Owner:         b,
		},
		{
			Label:         "wall.warning",
			Aliases:       []string{"wall.warn"},
			Permission:    PermissionWall,
			DeniedMessage: "&cOnly administrators can broadcast announcements.",
			Handler:       b.wall(WallUrgencyWarning),
			Owner:         b,
		},
		{
			Label:         "wall.critical",
			Aliases:       []string{"wall.crit"},
			Permission:    PermissionWall,
			DeniedMessage: "&cOnly administrators can broadcast announcements.",
			Handler:       b.wall(WallUrgencyCritical),
			Owner:         b,
		},
		{
			Label:         "boot",
			Permission:    PermissionBoot,
			DeniedMessage: "&cOnly administrators can boot other sessions.",
			Description:   "Disconnect a session",
			Usage:         "boot <name> [reason]",
			Handler:       b.boot,
			Owner:         b,
		},
		{
			Label:           "quit",
			InteractiveOnly: true,
			Description:     "Disconnect",
			Usage:           "quit",
			Handler:         b.quit,
			Owner:           b,
		},
		{
			Label:         "shutdown",
			Permission:    PermissionShutdown,
			DeniedMessage: "&cOnly administrators can shut down the server.",
			Description:   "Stop the server",
			Usage:         "shutdown [delay_seconds]",
			Handler:       b.shutdownCommand,
			Owner:         b,
		},
	}
}

// Completers enumerates the built-in tab completers.
func (b *Builtins) Completers() []command.CompleterSpec {
	return []command.CompleterSpec{
		{Label: "help", Aliases: []string{"?"}, Handler: b.completeHelp, Owner: b},
		{Label: "boot", Handler: b.completeBoot, Owner: b},
		{Label: "wall", Handler: b.completeWall, Owner: b},
	}
}

var _ command.Provider = (*Builtins)(nil)
