// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/cmdtree/internal/command"
)

// Non-function handlers are passed through untouched so registration
// rejects them with the offending type.
func commandSpecFromTable(t *lua.LTable) command.CommandSpec {
	return command.CommandSpec{
		Label:           stringField(t, "label"),
		Aliases:         stringsField(t, "aliases"),
		Permission:      stringField(t, "permission"),
		DeniedMessage:   stringField(t, "denied"),
		InteractiveOnly: lua.LVAsBool(t.RawGetString("interactive_only")),
		Description:     stringField(t, "description"),
		Usage:           stringField(t, "usage"),
	}
}

func completerSpecFromTable(t *lua.LTable) command.CompleterSpec {
	return command.CompleterSpec{
		Label:   stringField(t, "label"),
		Aliases: stringsField(t, "aliases"),
	}
}

func stringField(t *lua.LTable, key string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// stringsField accepts a single string or an array of strings.
func stringsField(t *lua.LTable, key string) []string {
	switch v := t.RawGetString(key).(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		out := make([]string, 0, v.Len())
		for i := 1; i <= v.Len(); i++ {
			if s, ok := v.RawGetInt(i).(lua.LString); ok {
				out = append(out, string(s))
			}
		}
		return out
	default:
		return nil
	}
}
