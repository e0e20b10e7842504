// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/cmdtree/internal/command"
	"github.com/holomush/cmdtree/internal/host"
	"github.com/holomush/cmdtree/internal/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Host      = (*Host)(nil)
	_ command.Provider = (*luaPlugin)(nil)
)

// Host runs Lua plugins against a host command table.
type Host struct {
	table   host.Table
	factory *StateFactory
	opts    []command.DispatcherOption
	plugins map[string]*luaPlugin
	mu      sync.RWMutex
	closed  bool
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithStateFactory sets the factory plugin states are created from.
func WithStateFactory(f *StateFactory) HostOption {
	return func(h *Host) { h.factory = f }
}

// WithDispatcherOptions applies opts to every plugin's framework.
func WithDispatcherOptions(opts ...command.DispatcherOption) HostOption {
	return func(h *Host) { h.opts = append(h.opts, opts...) }
}

// NewHost creates a Lua plugin host registering into table.
func NewHost(table host.Table, opts ...HostOption) *Host {
	h := &Host{
		table:   table,
		plugins: make(map[string]*luaPlugin),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.factory == nil {
		h.factory = NewStateFactory()
	}
	return h
}

// Runtime implements plugin.Host.
func (h *Host) Runtime() string { return "lua" }

// Load runs the plugin's entry script and registers what it declared
// under the plugin name as namespace.
func (h *Host) Load(ctx context.Context, manifest *plugin.Manifest, dir string) error {
	errb := oops.In("lua").With("plugin", manifest.Name).With("operation", "load")

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return errb.New("host is closed")
	}
	if _, ok := h.plugins[manifest.Name]; ok {
		return errb.Errorf("plugin %s already loaded", manifest.Name)
	}

	entryPath := filepath.Join(dir, manifest.Entry)
	code, err := os.ReadFile(filepath.Clean(entryPath))
	if err != nil {
		return errb.With("path", entryPath).Hint("failed to read entry file").Wrap(err)
	}

	L, err := h.factory.NewState(manifest.Name)
	if err != nil {
		return errb.Wrap(err)
	}

	p := &luaPlugin{
		manifest: manifest,
		state:    L,
		logger:   slog.Default().With("plugin", manifest.Name),
	}
	p.installAPI()

	L.SetContext(ctx)
	err = L.DoString(string(code))
	L.RemoveContext()
	if err != nil {
		L.Close()
		return errb.With("entry", manifest.Entry).Hint("entry script failed").Wrap(err)
	}

	fw, err := command.New(manifest.Name, h.table, h.opts...)
	if err != nil {
		L.Close()
		return errb.Wrap(err)
	}
	p.framework = fw

	if errs := fw.RegisterAll(p); len(errs) > 0 {
		p.logger.WarnContext(ctx, "plugin declared handlers that were rejected", "rejected", len(errs))
	}

	h.plugins[manifest.Name] = p
	return nil
}

// Unload stops a plugin. Its entries stay in the host table; calling them
// afterwards fails with an unloaded error.
func (h *Host) Unload(_ context.Context, name string) error {
	h.mu.Lock()
	p, ok := h.plugins[name]
	delete(h.plugins, name)
	h.mu.Unlock()

	if !ok {
		return oops.In("lua").With("plugin", name).With("operation", "unload").New("plugin not loaded")
	}
	p.close()
	return nil
}

// Plugins returns names of loaded plugins, sorted.
func (h *Host) Plugins() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.plugins))
	for name := range h.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Framework returns the command framework of a loaded plugin.
func (h *Host) Framework(name string) (*command.Framework, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	p, ok := h.plugins[name]
	if !ok {
		return nil, false
	}
	return p.framework, true
}

// Close shuts down the host and every plugin state.
func (h *Host) Close(_ context.Context) error {
	h.mu.Lock()
	plugins := h.plugins
	h.plugins = make(map[string]*luaPlugin)
	h.closed = true
	h.mu.Unlock()

	for _, p := range plugins {
		p.close()
	}
	return nil
}

// luaPlugin owns one Lua state. The state is not goroutine safe, so every
// call into it holds mu.
type luaPlugin struct {
	manifest   *plugin.Manifest
	state      *lua.LState
	framework  *command.Framework
	logger     *slog.Logger
	commands   []command.CommandSpec
	completers []command.CompleterSpec
	mu         sync.Mutex
	closed     bool
}

func (p *luaPlugin) Commands() []command.CommandSpec     { return p.commands }
func (p *luaPlugin) Completers() []command.CompleterSpec { return p.completers }

func (p *luaPlugin) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.state.Close()
}

// call runs fn with args under the plugin lock and returns its single result.
func (p *luaPlugin) call(ctx context.Context, label string, fn *lua.LFunction, build func(L *lua.LState) lua.LValue) (lua.LValue, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	errb := oops.In("lua").With("plugin", p.manifest.Name).With("label", label)
	if p.closed {
		return lua.LNil, errb.New("plugin unloaded")
	}

	L := p.state
	L.SetContext(ctx)
	defer L.RemoveContext()

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, build(L)); err != nil {
		return lua.LNil, errb.Wrap(err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

func (p *luaPlugin) handler(fn *lua.LFunction) command.Handler {
	return func(ctx context.Context, inv *command.Invocation) error {
		ret, err := p.call(ctx, inv.Matched, fn, func(L *lua.LState) lua.LValue {
			return invocationTable(L, inv)
		})
		if err != nil {
			return err
		}
		// A returned string is sent to the sender.
		if s, ok := ret.(lua.LString); ok && s != "" {
			inv.Reply(string(s))
		}
		return nil
	}
}

func (p *luaPlugin) completer(fn *lua.LFunction) command.CompleteFunc {
	return func(ctx context.Context, inv *command.Invocation) ([]string, error) {
		ret, err := p.call(ctx, inv.Matched, fn, func(L *lua.LState) lua.LValue {
			return invocationTable(L, inv)
		})
		if err != nil {
			return nil, err
		}
		return stringList(ret, inv.Matched)
	}
}

// stringList converts a completer result into suggestions. nil means none.
func stringList(v lua.LValue, label string) ([]string, error) {
	if v == lua.LNil {
		return nil, nil
	}
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil, oops.In("lua").
			With("label", label).
			With("type", v.Type().String()).
			New("completer must return a table of strings")
	}
	out := make([]string, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		s, ok := t.RawGetInt(i).(lua.LString)
		if !ok {
			return nil, oops.In("lua").
				With("label", label).
				With("index", i).
				New("completer must return a table of strings")
		}
		out = append(out, string(s))
	}
	return out, nil
}

// invocationTable exposes inv to a script.
func invocationTable(L *lua.LState, inv *command.Invocation) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("label", lua.LString(inv.Label))
	t.RawSetString("matched", lua.LString(inv.Matched))
	t.RawSetString("depth", lua.LNumber(inv.Depth))
	t.RawSetString("args", toTable(L, inv.Args))
	t.RawSetString("rest", toTable(L, inv.Rest()))
	t.RawSetString("sender", lua.LString(inv.Sender.Name()))
	t.RawSetString("interactive", lua.LBool(inv.Sender.IsInteractive()))
	t.RawSetString("reply", L.NewFunction(func(L *lua.LState) int {
		inv.Reply(L.CheckString(1))
		return 0
	}))
	t.RawSetString("has_permission", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(inv.Sender.HasPermission(L.CheckString(1))))
		return 1
	}))
	return t
}

func toTable(L *lua.LState, items []string) *lua.LTable {
	t := L.CreateTable(len(items), 0)
	for _, s := range items {
		t.Append(lua.LString(s))
	}
	return t
}
