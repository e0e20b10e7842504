// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package lua hosts script plugins in sandboxed Lua states. Each plugin
// registers its commands and completers through a "commands" global and
// gets its own command framework namespace.
package lua

import (
	"log/slog"
	"strings"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
)

// library is a Lua standard library the sandbox opens.
type library struct {
	name string
	open lua.LGFunction
}

// sandboxLibraries are the libraries opened in every state.
// os, io, debug, package and coroutine stay closed.
func sandboxLibraries() []library {
	return []library{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
}

// blockedGlobals are base library functions that reach the filesystem or
// compile arbitrary chunks.
var blockedGlobals = []string{"dofile", "loadfile", "loadstring", "load", "require", "module"}

const (
	defaultCallStackSize = 256
	defaultRegistryMax   = 64 * 1024
)

// StateFactory creates sandboxed Lua states.
type StateFactory struct {
	libraries     []library
	callStackSize int
	registryMax   int
	logger        *slog.Logger
}

// StateOption configures a StateFactory.
type StateOption func(*StateFactory)

// WithCallStackSize bounds recursion depth inside a state.
func WithCallStackSize(n int) StateOption {
	return func(f *StateFactory) { f.callStackSize = n }
}

// WithRegistryMax bounds the value registry a state may grow to.
func WithRegistryMax(n int) StateOption {
	return func(f *StateFactory) { f.registryMax = n }
}

// WithLogger sets the logger print output is routed to.
func WithLogger(l *slog.Logger) StateOption {
	return func(f *StateFactory) { f.logger = l }
}

// NewStateFactory creates a new state factory.
func NewStateFactory(opts ...StateOption) *StateFactory {
	f := &StateFactory{
		libraries:     sandboxLibraries(),
		callStackSize: defaultCallStackSize,
		registryMax:   defaultRegistryMax,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewState creates a state for the named plugin with only sandbox libraries
// loaded. print writes to the log instead of stdout.
func (f *StateFactory) NewState(plugin string) (*lua.LState, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:        true,
		CallStackSize:       f.callStackSize,
		RegistryMaxSize:     f.registryMax,
		IncludeGoStackTrace: false,
	})

	for _, lib := range f.libraries {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, oops.In("lua").
				With("plugin", plugin).
				With("library", lib.name).
				Wrapf(err, "open library %s", lib.name)
		}
	}

	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	logger := f.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("plugin", plugin)
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		logger.Info(strings.Join(parts, "\t"), "source", "print")
		return 0
	}))

	return L, nil
}
