// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	luavm "github.com/yuin/gopher-lua"

	pluginlua "github.com/holomush/cmdtree/internal/plugin/lua"
)

func newState(t *testing.T, opts ...pluginlua.StateOption) *luavm.LState {
	t.Helper()
	L, err := pluginlua.NewStateFactory(opts...).NewState("test")
	require.NoError(t, err)
	t.Cleanup(L.Close)
	return L
}

func TestNewState_Sandbox(t *testing.T) {
	L := newState(t)

	for _, lib := range []string{"table", "string", "math"} {
		assert.NotEqual(t, luavm.LTNil, L.GetGlobal(lib).Type(), "library %q should be loaded", lib)
	}
	for _, name := range []string{"os", "io", "debug", "package", "coroutine",
		"dofile", "loadfile", "loadstring", "load", "require", "module"} {
		assert.Equal(t, luavm.LTNil, L.GetGlobal(name).Type(), "global %q should be blocked", name)
	}
}

func TestNewState_RunsScripts(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"arithmetic", `result = 1 + 1`, "2"},
		{"string library", `result = string.upper("hello")`, "HELLO"},
		{"table library", `t = {3, 1, 2}; table.sort(t); result = t[1]`, "1"},
		{"math library", `result = math.abs(-42)`, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L := newState(t)
			require.NoError(t, L.DoString(tt.script))
			assert.Equal(t, tt.want, L.GetGlobal("result").String())
		})
	}
}

func TestNewState_Independent(t *testing.T) {
	L1 := newState(t)
	L2 := newState(t)

	require.NoError(t, L1.DoString(`foo = "bar"`))
	assert.Equal(t, luavm.LTNil, L2.GetGlobal("foo").Type())
}

func TestNewState_PrintGoesToLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	L := newState(t, pluginlua.WithLogger(logger))

	require.NoError(t, L.DoString(`print("hello", 42)`))

	out := buf.String()
	assert.Contains(t, out, "hello\t42")
	assert.Contains(t, out, "plugin=test")
	assert.Contains(t, out, "source=print")
}

func TestNewState_CallStackBounded(t *testing.T) {
	L := newState(t, pluginlua.WithCallStackSize(64))

	err := L.DoString(`local function f(n) return 1 + f(n + 1) end; f(1)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stack overflow")
}
