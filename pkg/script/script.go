// Package script drives a machine from Lua during headless runs. A script
// defines on_frame(n), called before every slice, and uses the bound
// functions to press keys and inspect state.
package script

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"gochip8/pkg/chip8"
)

const frameHook = "on_frame"

var ErrScript = errors.New("script error")

type Runner struct {
	L       *lua.LState
	machine *chip8.Machine
	stopped bool
}

func New(m *chip8.Machine) *Runner {
	r := &Runner{
		L:       lua.NewState(lua.Options{SkipOpenLibs: true}),
		machine: m,
	}
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.MathLibName, lua.OpenMath},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
	} {
		r.L.Push(r.L.NewFunction(lib.fn))
		r.L.Push(lua.LString(lib.name))
		r.L.Call(1, 0)
	}

	r.register("press", r.luaKey(true))
	r.register("release", r.luaKey(false))
	r.register("reg", r.luaReg)
	r.register("peek", r.luaPeek)
	r.register("pc", func(L *lua.LState) int {
		L.Push(lua.LNumber(r.machine.PC))
		return 1
	})
	r.register("index", func(L *lua.LState) int {
		L.Push(lua.LNumber(r.machine.I))
		return 1
	})
	r.register("pixel", r.luaPixel)
	r.register("lit", func(L *lua.LState) int {
		L.Push(lua.LNumber(r.machine.Display.Lit()))
		return 1
	})
	r.register("stop", func(L *lua.LState) int {
		r.stopped = true
		return 0
	})
	return r
}

func (r *Runner) register(name string, fn lua.LGFunction) {
	r.L.SetGlobal(name, r.L.NewFunction(fn))
}

func (r *Runner) Close() {
	r.L.Close()
}

// Load runs the top level of src.
func (r *Runner) Load(src string) error {
	if err := r.L.DoString(src); err != nil {
		return fmt.Errorf("%w: %w", ErrScript, err)
	}
	return nil
}

func (r *Runner) LoadFile(path string) error {
	if err := r.L.DoFile(path); err != nil {
		return fmt.Errorf("%w: %w", ErrScript, err)
	}
	return nil
}

// Frame calls on_frame(n) if the script defines it.
func (r *Runner) Frame(n uint64) error {
	hook := r.L.GetGlobal(frameHook)
	if hook.Type() != lua.LTFunction {
		return nil
	}
	err := r.L.CallByParam(lua.P{Fn: hook, NRet: 0, Protect: true}, lua.LNumber(n))
	if err != nil {
		return fmt.Errorf("%w: frame %d: %w", ErrScript, n, err)
	}
	return nil
}

// Stopped reports whether the script called stop().
func (r *Runner) Stopped() bool {
	return r.stopped
}

func (r *Runner) luaKey(down bool) lua.LGFunction {
	return func(L *lua.LState) int {
		k := L.CheckInt(1)
		if k < 0 || k >= chip8.KeyCount {
			L.ArgError(1, "key out of range")
			return 0
		}
		r.machine.SetKey(uint8(k), down)
		return 0
	}
}

func (r *Runner) luaReg(L *lua.LState) int {
	x := L.CheckInt(1)
	if x < 0 || x >= chip8.RegisterCount {
		L.ArgError(1, "register out of range")
		return 0
	}
	L.Push(lua.LNumber(r.machine.V[x]))
	return 1
}

func (r *Runner) luaPeek(L *lua.LState) int {
	addr := L.CheckInt(1)
	if addr < 0 || addr >= chip8.MemorySize {
		L.ArgError(1, "address out of range")
		return 0
	}
	L.Push(lua.LNumber(r.machine.Memory[addr]))
	return 1
}

func (r *Runner) luaPixel(L *lua.LState) int {
	x, y := L.CheckInt(1), L.CheckInt(2)
	L.Push(lua.LBool(r.machine.Display.Pixel(x, y)))
	return 1
}
