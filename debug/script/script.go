// Package script implements the Lua scripting front-end used to automate
// input sequences and assert on emulator state, built on gopher-lua.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"github.com/retropix/psxcore/emulator"
)

// Engine binds a Console's registers and pads into a Lua global table
// named "psx", exposing step/poke/peek/button functions a script can call.
type Engine struct {
	L       *lua.LState
	console *emulator.Console
}

func NewEngine(c *emulator.Console) *Engine {
	e := &Engine{L: lua.NewState(), console: c}
	e.registerAPI()
	return e
}

func (e *Engine) Close() { e.L.Close() }

// RunFile executes a script file to completion; a script drives the
// Console entirely through the bound functions, so there is nothing else
// for the caller to do afterward besides inspect state.
func (e *Engine) RunFile(path string) error {
	if err := e.L.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

func (e *Engine) registerAPI() {
	psx := e.L.NewTable()
	e.L.SetGlobal("psx", psx)

	e.L.SetField(psx, "step", e.L.NewFunction(func(L *lua.LState) int {
		e.console.CPU.Step(e.console.Bus)
		return 0
	}))
	e.L.SetField(psx, "run_frame", e.L.NewFunction(func(L *lua.LState) int {
		e.console.RunFrame()
		return 0
	}))
	e.L.SetField(psx, "peek", e.L.NewFunction(func(L *lua.LState) int {
		addr := uint32(L.CheckNumber(1))
		L.Push(lua.LNumber(e.console.Bus.Read32(addr)))
		return 1
	}))
	e.L.SetField(psx, "poke", e.L.NewFunction(func(L *lua.LState) int {
		addr := uint32(L.CheckNumber(1))
		val := uint32(L.CheckNumber(2))
		e.console.Bus.Write32(addr, val)
		return 0
	}))
	e.L.SetField(psx, "pc", e.L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(e.console.CPU.PC()))
		return 1
	}))
	e.L.SetField(psx, "press", e.L.NewFunction(func(L *lua.LState) int {
		mask := uint16(L.CheckNumber(1))
		e.console.Pad1.ButtonMask |= mask
		return 0
	}))
	e.L.SetField(psx, "release", e.L.NewFunction(func(L *lua.LState) int {
		mask := uint16(L.CheckNumber(1))
		e.console.Pad1.ButtonMask &^= mask
		return 0
	}))
}
