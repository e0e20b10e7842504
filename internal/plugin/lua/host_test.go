// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/cmdtree/internal/host"
	"github.com/holomush/cmdtree/internal/host/hosttest"
	"github.com/holomush/cmdtree/internal/plugin"
	pluginlua "github.com/holomush/cmdtree/internal/plugin/lua"
	"github.com/holomush/cmdtree/pkg/errutil"
)

const greeterScript = `
commands.register{
  label = "greet",
  aliases = {"hi"},
  description = "Greets someone",
  usage = "/greet <name>",
  handler = function(inv)
    local who = inv.rest[1] or inv.sender
    inv.reply("&aHello, " .. who .. "!")
  end,
}

commands.register{
  label = "greet.loud",
  handler = function(inv)
    return string.upper("hello " .. (inv.rest[1] or "")) .. " depth=" .. inv.depth
  end,
}

commands.register{
  label = "greet.secret",
  permission = "greeter.secret",
  denied = "&cNo secrets for you",
  handler = function(inv) inv.reply("psst") end,
}

commands.register{
  label = "greet.check",
  handler = function(inv)
    if inv.has_permission("greeter.secret") then
      inv.reply("yes")
    else
      inv.reply("no")
    end
  end,
}

commands.register{
  label = "greet.fail",
  handler = function(inv) error("boom") end,
}

commands.register{ label = "broken", handler = "not a function" }

commands.completer{
  label = "greet",
  handler = function(inv) return {"alice", "bob"} end,
}

commands.completer{
  label = "greet.loud",
  handler = function(inv) return 42 end,
}

commands.log("greeter ready")
`

func writePlugin(t *testing.T, name, script string) (*plugin.Manifest, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.lua"), []byte(script), 0o600))
	return &plugin.Manifest{Name: name, Version: "1.0.0", Entry: "main.lua"}, dir
}

func loadGreeter(t *testing.T) (*pluginlua.Host, *host.CommandMap) {
	t.Helper()
	table := host.NewCommandMap()
	h := pluginlua.NewHost(table)
	t.Cleanup(func() { _ = h.Close(context.Background()) })

	manifest, dir := writePlugin(t, "greeter", greeterScript)
	require.NoError(t, h.Load(context.Background(), manifest, dir))
	return h, table
}

func TestHost_LoadRegistersCommands(t *testing.T) {
	h, table := loadGreeter(t)
	assert.Equal(t, "lua", h.Runtime())
	assert.Equal(t, []string{"greeter"}, h.Plugins())

	for _, name := range []string{"greet", "greeter:greet", "hi", "greeter:hi"} {
		_, ok := table.Entry(name)
		assert.True(t, ok, "entry %q", name)
	}
	_, ok := table.Entry("broken")
	assert.False(t, ok, "non-function handler must be rejected")

	entry, _ := table.Entry("greet")
	assert.Equal(t, "Greets someone", entry.Description())
	assert.Equal(t, "/greet <name>", entry.Usage())

	fw, ok := h.Framework("greeter")
	require.True(t, ok)
	assert.Equal(t, "greeter", fw.Namespace())
}

func TestHost_Dispatch(t *testing.T) {
	_, table := loadGreeter(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		line  string
		perms []string
		want  string
	}{
		{"root handler", "greet bob", nil, "§aHello, bob!"},
		{"sender default", "greet", nil, "§aHello, alice!"},
		{"alias", "hi carol", nil, "§aHello, carol!"},
		{"sub label returns reply", "greet loud bob", nil, "HELLO BOB depth=1"},
		{"case insensitive", "GREET Loud bob", nil, "HELLO BOB depth=1"},
		{"denied", "greet secret", nil, "§cNo secrets for you"},
		{"granted", "greet secret", []string{"greeter.secret"}, "psst"},
		{"has_permission false", "greet check", nil, "no"},
		{"has_permission true", "greet check", []string{"greeter.secret"}, "yes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := hosttest.NewSender("alice", true, tt.perms...)
			assert.True(t, table.Dispatch(ctx, sender, tt.line))
			assert.Equal(t, tt.want, sender.Last())
		})
	}
}

func TestHost_ScriptErrorIsContained(t *testing.T) {
	_, table := loadGreeter(t)
	sender := hosttest.NewSender("alice", true)

	assert.True(t, table.Dispatch(context.Background(), sender, "greet fail"))
	assert.Empty(t, sender.Messages())

	// The state survives a failed call.
	assert.True(t, table.Dispatch(context.Background(), sender, "greet bob"))
	assert.Equal(t, "§aHello, bob!", sender.Last())
}

func TestHost_Complete(t *testing.T) {
	_, table := loadGreeter(t)
	sender := hosttest.NewSender("alice", true)

	assert.Equal(t, []string{"alice", "bob"}, table.Complete(context.Background(), sender, "greet "))
	assert.Nil(t, table.Complete(context.Background(), sender, "greet loud "), "non-table result yields nothing")
}

func TestHost_LoadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("syntax error", func(t *testing.T) {
		h := pluginlua.NewHost(host.NewCommandMap())
		manifest, dir := writePlugin(t, "bad", `commands.register{`)
		err := h.Load(ctx, manifest, dir)
		errutil.AssertErrorDomain(t, err, "lua")
		errutil.AssertErrorContext(t, err, "plugin", "bad")
		assert.Empty(t, h.Plugins())
	})

	t.Run("missing entry", func(t *testing.T) {
		h := pluginlua.NewHost(host.NewCommandMap())
		manifest := &plugin.Manifest{Name: "ghost", Version: "1.0.0", Entry: "main.lua"}
		require.Error(t, h.Load(ctx, manifest, t.TempDir()))
	})

	t.Run("duplicate", func(t *testing.T) {
		h := pluginlua.NewHost(host.NewCommandMap())
		manifest, dir := writePlugin(t, "dup", ``)
		require.NoError(t, h.Load(ctx, manifest, dir))
		require.Error(t, h.Load(ctx, manifest, dir))
	})

	t.Run("closed host", func(t *testing.T) {
		h := pluginlua.NewHost(host.NewCommandMap())
		require.NoError(t, h.Close(ctx))
		manifest, dir := writePlugin(t, "late", ``)
		require.Error(t, h.Load(ctx, manifest, dir))
	})

	t.Run("canceled context", func(t *testing.T) {
		h := pluginlua.NewHost(host.NewCommandMap())
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		manifest, dir := writePlugin(t, "spin", `while true do end`)
		require.Error(t, h.Load(canceled, manifest, dir))
	})
}

func TestHost_Unload(t *testing.T) {
	h, table := loadGreeter(t)
	ctx := context.Background()

	require.NoError(t, h.Unload(ctx, "greeter"))
	assert.Empty(t, h.Plugins())
	require.Error(t, h.Unload(ctx, "greeter"))

	sender := hosttest.NewSender("alice", true)
	assert.True(t, table.Dispatch(ctx, sender, "greet bob"))
	assert.Empty(t, sender.Messages(), "unloaded plugin handlers fail without replying")
}
