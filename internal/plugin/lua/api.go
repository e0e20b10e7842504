// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// installAPI exposes the "commands" global:
//
//	commands.register{label=..., aliases={...}, permission=..., denied=...,
//	                  interactive_only=bool, description=..., usage=..., handler=fn}
//	commands.completer{label=..., aliases={...}, handler=fn}
//	commands.log(message)
//
// Declarations are collected while the entry script runs and registered
// once it returns.
func (p *luaPlugin) installAPI() {
	L := p.state
	api := L.NewTable()
	L.SetFuncs(api, map[string]lua.LGFunction{
		"register":  p.luaRegister,
		"completer": p.luaCompleter,
		"log":       p.luaLog,
	})
	L.SetGlobal("commands", api)
}

func (p *luaPlugin) luaRegister(L *lua.LState) int {
	t := L.CheckTable(1)
	spec := commandSpecFromTable(t)
	spec.Owner = p
	switch h := t.RawGetString("handler").(type) {
	case *lua.LFunction:
		spec.Handler = p.handler(h)
	default:
		spec.Handler = h
	}
	p.commands = append(p.commands, spec)
	return 0
}

func (p *luaPlugin) luaCompleter(L *lua.LState) int {
	t := L.CheckTable(1)
	spec := completerSpecFromTable(t)
	spec.Owner = p
	switch h := t.RawGetString("handler").(type) {
	case *lua.LFunction:
		spec.Handler = p.completer(h)
	default:
		spec.Handler = h
	}
	p.completers = append(p.completers, spec)
	return 0
}

func (p *luaPlugin) luaLog(L *lua.LState) int {
	p.logger.Info(L.CheckString(1), "source", "script")
	return 0
}
