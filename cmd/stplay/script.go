// script.go - Lua register bench over a machine without a CPU
//
// The script drives the sound hardware directly through the bus:
//
//	ym(7, 0x3E)            -- select + data write to a YM2149 register
//	write8(0xFF8901, 1)    -- any bus write, write16 for words
//	print(read8(0xFFFA19)) -- any bus read, read16 for words
//	render(rate() / 50)    -- mix samples into the output buffer

package main

import (
	"fmt"
	"io"

	"github.com/intuitionamiga/stsound"
	lua "github.com/yuin/gopher-lua"
)

type scriptBench struct {
	machine *stsound.Machine
	samples []int16
	peak    int
}

func newScriptBench(rate int) (*scriptBench, error) {
	m := stsound.NewMachine(nil)
	if err := m.Startup(uint32(rate)); err != nil {
		return nil, err
	}
	return &scriptBench{machine: m}, nil
}

func (b *scriptBench) register(L *lua.LState) {
	fns := map[string]lua.LGFunction{
		"write8": func(L *lua.LState) int {
			b.machine.Write8(uint32(L.CheckInt64(1)), uint8(L.CheckInt(2)))
			return 0
		},
		"write16": func(L *lua.LState) int {
			b.machine.Write16(uint32(L.CheckInt64(1)), uint16(L.CheckInt(2)))
			return 0
		},
		"read8": func(L *lua.LState) int {
			L.Push(lua.LNumber(b.machine.Read8(uint32(L.CheckInt64(1)))))
			return 1
		},
		"read16": func(L *lua.LState) int {
			L.Push(lua.LNumber(b.machine.Read16(uint32(L.CheckInt64(1)))))
			return 1
		},
		"ym": func(L *lua.LState) int {
			b.machine.Write8(stsound.YM_SELECT, uint8(L.CheckInt(1)))
			b.machine.Write8(stsound.YM_DATA, uint8(L.CheckInt(2)))
			return 0
		},
		"render": func(L *lua.LState) int {
			n := L.CheckInt(1)
			if n < 0 {
				L.ArgError(1, "sample count must not be negative")
				return 0
			}
			out := make([]int16, n)
			if _, err := b.machine.Render(out, nil); err != nil {
				L.RaiseError("render: %v", err)
				return 0
			}
			for _, s := range out {
				b.peak = max(b.peak, abs(int(s)))
			}
			b.samples = append(b.samples, out...)
			L.Push(lua.LNumber(len(b.samples)))
			return 1
		},
		"rate": func(L *lua.LState) int {
			L.Push(lua.LNumber(b.machine.HostRate()))
			return 1
		},
	}
	for name, fn := range fns {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// runScriptSource executes Lua source against a fresh bench.
func runScriptSource(rate int, load func(L *lua.LState) error) (*scriptBench, error) {
	b, err := newScriptBench(rate)
	if err != nil {
		return nil, err
	}
	L := lua.NewState()
	defer L.Close()
	b.register(L)
	if err := load(L); err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	return b, nil
}

func runScript(opts options, stdout io.Writer) error {
	b, err := runScriptSource(opts.rate, func(L *lua.LState) error {
		return L.DoFile(opts.script)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Script rendered %d samples, peak %d\n", len(b.samples), b.peak)
	if opts.wavPath == "" {
		return nil
	}
	return writeWAV(opts.wavPath, opts.rate, b.samples)
}
