// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers_test

import (
	"bytes"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/cmdtree/internal/command"
	"github.com/holomush/cmdtree/internal/command/handlers"
	"github.com/holomush/cmdtree/internal/command/handlers/testutil"
	"github.com/holomush/cmdtree/internal/host"
	"github.com/holomush/cmdtree/internal/host/hosttest"
	"github.com/holomush/cmdtree/pkg/chatcolor"
)

// fakeSessions is an in-memory session registry.
type fakeSessions struct {
	mu         sync.Mutex
	sessions   []handlers.Session
	broadcasts []string
	booted     map[string]string
}

func newFakeSessions(names ...string) *fakeSessions {
	f := &fakeSessions{booted: make(map[string]string)}
	for i, n := range names {
		f.sessions = append(f.sessions, handlers.Session{Name: n, Idle: time.Duration(i) * time.Minute})
	}
	return f
}

func (f *fakeSessions) List() []handlers.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]handlers.Session(nil), f.sessions...)
}

func (f *fakeSessions) Broadcast(message string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, message)
	return len(f.sessions)
}

func (f *fakeSessions) Disconnect(name, reason string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.sessions {
		if strings.EqualFold(s.Name, name) {
			f.booted[s.Name] = reason
			f.sessions = append(f.sessions[:i], f.sessions[i+1:]...)
			return true
		}
	}
	return false
}

// plain strips color codes from every message a sender received.
func plain(s interface{ Messages() []string }) []string {
	msgs := s.Messages()
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = chatcolor.Strip(m)
	}
	return out
}

func newBuiltins(t *testing.T, opts ...handlers.Option) *testutil.Harness {
	t.Helper()
	table := host.NewCommandMap()
	fw, err := command.New("core", table)
	require.NoError(t, err)
	require.Empty(t, fw.RegisterAll(handlers.New(table, opts...)))
	return &testutil.Harness{Table: table, Framework: fw}
}

func TestBuiltins_RegisterCleanly(t *testing.T) {
	b := handlers.New(host.NewCommandMap())
	h := testutil.NewHarness(t, b)

	for _, name := range []string{"help", "?", "echo", "whoami", "perms", "plugins", "who", "wall", "boot", "quit", "shutdown"} {
		_, ok := h.Table.Entry(name)
		assert.True(t, ok, name)
	}
	assert.True(t, h.Framework.Registry().Has("perms.check"))
	assert.True(t, h.Framework.Registry().Has("wall.warn"))
	assert.True(t, h.Framework.Registry().Has("core:wall.critical"))
}

func TestHelp_ListsEntries(t *testing.T) {
	h := newBuiltins(t)
	sender := testutil.Player("alice")

	require.True(t, h.Run(sender, "help"))

	msgs := plain(sender)
	require.NotEmpty(t, msgs)
	assert.Equal(t, "Available commands:", msgs[0])
	assert.Contains(t, msgs, "  echo - Repeat text back, with & color codes")
	assert.Contains(t, msgs, "  help - List commands or describe one")
	assert.Contains(t, msgs, "  ?")

	// Listing follows the table's name order.
	names := msgs[1:]
	assert.True(t, sort.SliceIsSorted(names, func(i, j int) bool { return names[i] < names[j] }))
}

func TestHelp_DescribesOneEntry(t *testing.T) {
	h := newBuiltins(t)
	sender := testutil.Player("alice")

	h.Run(sender, "help shutdown")
	assert.Equal(t, []string{"shutdown: Stop the server", "Usage: shutdown [delay_seconds]"}, plain(sender))
}

func TestHelp_UnknownEntry(t *testing.T) {
	h := newBuiltins(t)
	sender := testutil.Player("alice")

	h.Run(sender, "? nothing")
	assert.Equal(t, []string{"No help for nothing."}, plain(sender))
}

func TestHelp_Completion(t *testing.T) {
	h := newBuiltins(t)
	sender := testutil.Player("alice")

	assert.Equal(t, []string{"perms", "plugins"}, h.Complete(sender, "help p"))
	assert.Equal(t, []string{"perms", "plugins"}, h.Complete(sender, "? P"))
	assert.Nil(t, h.Complete(sender, "help perms x"))
}

func TestEcho(t *testing.T) {
	h := newBuiltins(t)

	t.Run("translates colors", func(t *testing.T) {
		sender := testutil.Player("alice")
		h.Run(sender, "echo &aHello  world")
		assert.Equal(t, []string{"§aHello  world"}, sender.Messages())
	})

	t.Run("usage without text", func(t *testing.T) {
		sender := testutil.Player("alice")
		h.Run(sender, "echo")
		assert.Equal(t, []string{"Usage: echo <text>"}, plain(sender))
	})
}

func TestWhoami(t *testing.T) {
	h := newBuiltins(t)

	player := testutil.Player("alice")
	h.Run(player, "whoami")
	assert.Equal(t, []string{"You are alice (interactive)."}, plain(player))

	console := testutil.Console()
	h.Run(console, "WHOAMI")
	assert.Equal(t, []string{"You are CONSOLE (console)."}, plain(console))
}

func TestPerms(t *testing.T) {
	h := newBuiltins(t)
	sender := testutil.Player("alice", "build.walls")

	h.Run(sender, "perms")
	h.Run(sender, "perms check build.walls")
	h.Run(sender, "perms check build.roofs")
	h.Run(sender, "perms check")

	assert.Equal(t, []string{
		"Usage: perms check <permission>",
		"build.walls: granted",
		"build.roofs: denied",
		"Usage: perms check <permission>",
	}, plain(sender))
}

func TestPlugins(t *testing.T) {
	t.Run("none loaded", func(t *testing.T) {
		h := newBuiltins(t)
		sender := testutil.Player("alice")
		h.Run(sender, "plugins")
		assert.Equal(t, []string{"No plugins loaded."}, plain(sender))
	})

	t.Run("lists plugins", func(t *testing.T) {
		h := newBuiltins(t, handlers.WithPlugins(func() []handlers.PluginInfo {
			return []handlers.PluginInfo{
				{Name: "greeter", Version: "1.2.0", Description: "Says hello"},
				{Name: "dice", Version: "0.1.0"},
			}
		}))
		sender := testutil.Player("alice")
		h.Run(sender, "plugins")
		assert.Equal(t, []string{
			"Plugins (2):",
			"  greeter 1.2.0 - Says hello",
			"  dice 0.1.0",
		}, plain(sender))
	})
}

func TestWho(t *testing.T) {
	t.Run("no sessions", func(t *testing.T) {
		h := newBuiltins(t)
		sender := testutil.Player("alice")
		h.Run(sender, "who")
		assert.Equal(t, []string{"No sessions connected."}, plain(sender))
	})

	t.Run("lists sorted sessions", func(t *testing.T) {
		h := newBuiltins(t, handlers.WithSessions(newFakeSessions("zed", "alice")))
		sender := testutil.Player("alice")
		h.Run(sender, "who")

		assert.Equal(t, []string{
			"Sessions Online (2):",
			"  alice  idle 1m0s",
			"  zed    idle 0s",
		}, plain(sender))
	})

	t.Run("prefix filter", func(t *testing.T) {
		h := newBuiltins(t, handlers.WithSessions(newFakeSessions("zed", "alice", "Zoe")))
		sender := testutil.Player("alice")

		h.Run(sender, "who z")
		assert.Equal(t, []string{
			"Sessions Online (2):",
			"  zed  idle 0s",
			"  Zoe  idle 2m0s",
		}, plain(sender))

		sender = testutil.Player("alice")
		h.Run(sender, "who q")
		assert.Equal(t, []string{`No sessions match "q".`}, plain(sender))
	})
}

func TestWall(t *testing.T) {
	sessions := newFakeSessions("alice", "bob")
	h := newBuiltins(t, handlers.WithSessions(sessions))

	t.Run("denied without permission", func(t *testing.T) {
		sender := testutil.Player("bob")
		h.Run(sender, "wall hello")
		assert.Equal(t, []string{"Only administrators can broadcast announcements."}, plain(sender))
		assert.Empty(t, sessions.broadcasts)
	})

	t.Run("info by default", func(t *testing.T) {
		admin := testutil.Player("admin", handlers.PermissionWall)
		h.Run(admin, "wall server restarts soon")
		require.Len(t, sessions.broadcasts, 1)
		assert.Equal(t, "&b[ANNOUNCEMENT]&r admin: server restarts soon", sessions.broadcasts[0])
		assert.Equal(t, []string{"Announcement sent to 2 sessions."}, plain(admin))
	})

	t.Run("urgency sub-label", func(t *testing.T) {
		admin := testutil.Player("admin", handlers.PermissionWall)
		h.Run(admin, "wall CRIT disk full")
		assert.Equal(t, "&c&l[CRITICAL]&r admin: disk full", sessions.broadcasts[len(sessions.broadcasts)-1])
	})

	t.Run("usage", func(t *testing.T) {
		admin := testutil.Player("admin", handlers.PermissionWall)
		h.Run(admin, "wall warning")
		assert.Equal(t, []string{"Usage: wall [warning|critical] <message>"}, plain(admin))
	})

	t.Run("completion", func(t *testing.T) {
		admin := testutil.Player("admin")
		assert.Equal(t, []string{"warning"}, h.Complete(admin, "wall w"))
		assert.Equal(t, []string{"warning", "critical"}, h.Complete(admin, "wall "))
	})
}

func TestBoot(t *testing.T) {
	var logs bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(old) })

	sessions := newFakeSessions("alice", "bob", "bert")
	h := newBuiltins(t, handlers.WithSessions(sessions))
	admin := testutil.Player("admin", handlers.PermissionBoot)

	assert.Equal(t, []string{"bob", "bert"}, h.Complete(admin, "boot b"))

	h.Run(admin, "boot bob spamming the channel")
	assert.Equal(t, "spamming the channel", sessions.booted["bob"])
	assert.Equal(t, []string{"Booted bob."}, plain(admin))
	assert.Contains(t, logs.String(), "admin boot")

	h.Run(admin, "boot alice")
	assert.Equal(t, "booted by admin", sessions.booted["alice"])

	h.Run(admin, "boot nobody")
	assert.Equal(t, "No session named nobody.", chatcolor.Strip(admin.Last()))

	player := testutil.Player("bert")
	h.Run(player, "boot admin")
	assert.Equal(t, "Only administrators can boot other sessions.", chatcolor.Strip(player.Last()))
}

func TestQuit(t *testing.T) {
	h := newBuiltins(t)

	t.Run("disconnects interactive sender", func(t *testing.T) {
		sender := testutil.Player("alice")
		h.Run(sender, "quit")
		closed, reason := sender.Disconnected()
		assert.True(t, closed)
		assert.Equal(t, "quit", reason)
		assert.Equal(t, []string{"Goodbye!"}, sender.Messages())
	})

	t.Run("refused for console", func(t *testing.T) {
		console := testutil.Console()
		h.Run(console, "quit")
		closed, _ := console.Disconnected()
		assert.False(t, closed)
		assert.Equal(t, []string{command.InteractiveOnlyMessage}, console.Messages())
	})

	t.Run("sender that cannot disconnect", func(t *testing.T) {
		sender := hosttest.NewSender("ghost", true)
		assert.True(t, h.Run(sender, "quit"))
		assert.Empty(t, sender.Messages())
	})
}

func TestShutdown(t *testing.T) {
	t.Run("denied without permission", func(t *testing.T) {
		called := false
		h := newBuiltins(t, handlers.WithShutdown(func(time.Duration) { called = true }))
		sender := testutil.Player("alice")
		h.Run(sender, "shutdown")
		assert.False(t, called)
		assert.Equal(t, []string{"Only administrators can shut down the server."}, plain(sender))
	})

	t.Run("immediate", func(t *testing.T) {
		var delay = time.Hour
		sessions := newFakeSessions("alice")
		h := newBuiltins(t,
			handlers.WithSessions(sessions),
			handlers.WithShutdown(func(d time.Duration) { delay = d }))
		admin := testutil.Player("admin", handlers.PermissionShutdown)

		h.Run(admin, "shutdown")
		assert.Equal(t, time.Duration(0), delay)
		assert.Equal(t, []string{"&c[SHUTDOWN] Server shutting down NOW."}, sessions.broadcasts)
		assert.Equal(t, []string{"Initiating server shutdown..."}, plain(admin))
	})

	t.Run("delayed", func(t *testing.T) {
		var delay time.Duration
		h := newBuiltins(t, handlers.WithShutdown(func(d time.Duration) { delay = d }))
		console := testutil.Console(handlers.PermissionShutdown)

		h.Run(console, "shutdown 30")
		assert.Equal(t, 30*time.Second, delay)
		assert.Equal(t, []string{"Initiating server shutdown in 30 seconds..."}, plain(console))
	})

	t.Run("invalid delay", func(t *testing.T) {
		called := false
		h := newBuiltins(t, handlers.WithShutdown(func(time.Duration) { called = true }))
		admin := testutil.Player("admin", handlers.PermissionShutdown)

		h.Run(admin, "shutdown -5")
		h.Run(admin, "shutdown soon")
		assert.False(t, called)
		assert.Equal(t, []string{"Usage: shutdown [delay_seconds]", "Usage: shutdown [delay_seconds]"}, plain(admin))
	})

	t.Run("delay beyond duration range", func(t *testing.T) {
		var delays []time.Duration
		sessions := newFakeSessions("alice")
		h := newBuiltins(t,
			handlers.WithSessions(sessions),
			handlers.WithShutdown(func(d time.Duration) { delays = append(delays, d) }))
		admin := testutil.Player("admin", handlers.PermissionShutdown)

		h.Run(admin, "shutdown 9223372037")
		assert.Empty(t, delays)
		assert.Empty(t, sessions.broadcasts)
		assert.Equal(t, []string{"Usage: shutdown [delay_seconds]"}, plain(admin))

		h.Run(admin, "shutdown 9223372036")
		require.Len(t, delays, 1)
		assert.Equal(t, 9223372036*time.Second, delays[0])
		assert.Positive(t, delays[0])
	})

	t.Run("unavailable", func(t *testing.T) {
		h := newBuiltins(t)
		admin := testutil.Player("admin", handlers.PermissionShutdown)
		h.Run(admin, "shutdown")
		assert.Equal(t, []string{"Shutdown is not available here."}, plain(admin))
	})
}
