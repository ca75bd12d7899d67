// st_core_fake_test.go - Scripted 68000 subset used by the machine tests

package stsound

import "encoding/binary"

// scriptCore interprets the handful of 68000 instructions the tests emit.
// Every instruction costs four cycles.
type scriptCore struct {
	host    CoreHost
	pc      uint32
	sp      uint32
	sr      uint16
	d       [8]uint32
	a       [8]uint32
	stopped bool
	resets  int
}

func newScriptCore(host CoreHost) Core {
	return &scriptCore{host: host}
}

func (c *scriptCore) Reset() {
	c.pc, c.sp, c.sr = 0, 0, 0x2700
	c.d, c.a = [8]uint32{}, [8]uint32{}
	c.resets++
}

func (c *scriptCore) PC() uint32                 { return c.pc }
func (c *scriptCore) SetPC(pc uint32)            { c.pc = pc }
func (c *scriptCore) SP() uint32                 { return c.sp }
func (c *scriptCore) SetSP(sp uint32)            { c.sp = sp }
func (c *scriptCore) SetSR(sr uint16)            { c.sr = sr }
func (c *scriptCore) DataReg(n int) uint32       { return c.d[n] }
func (c *scriptCore) SetDataReg(n int, v uint32) { c.d[n] = v }
func (c *scriptCore) AddrReg(n int) uint32       { return c.a[n] }
func (c *scriptCore) SetAddrReg(n int, v uint32) { c.a[n] = v }
func (c *scriptCore) StopExecution()             { c.stopped = true }

func (c *scriptCore) fetch16() uint16 {
	v := c.host.Read16(c.pc)
	c.pc += 2
	return v
}

func (c *scriptCore) fetch32() uint32 {
	v := c.host.Read32(c.pc)
	c.pc += 4
	return v
}

func (c *scriptCore) Execute(cycles int) int {
	c.stopped = false
	used := 0
	for used < cycles && !c.stopped {
		used += 4
		start := c.pc
		op := c.fetch16()
		switch {
		case op == 0x4E71: // NOP
		case op == 0x4E75: // RTS
			c.pc = c.host.Read32(c.sp)
			c.sp += 4
		case op == 0x4E73: // RTE
			c.sr = c.host.Read16(c.sp)
			c.pc = c.host.Read32(c.sp + 2)
			c.sp += 6
		case op == OPCODE_RESET:
			c.host.OnResetInstruction()
		case op&0xFFF0 == 0x4E40: // TRAP #n
			c.host.OnSysCall(int(op & 0x0F))
		case op == 0x13FC: // MOVE.B #imm,abs.L
			imm := c.fetch16()
			c.host.Write8(c.fetch32(), uint8(imm))
		case op == 0x33FC: // MOVE.W #imm,abs.L
			imm := c.fetch16()
			c.host.Write16(c.fetch32(), imm)
		case op == 0x23FC: // MOVE.L #imm,abs.L
			imm := c.fetch32()
			c.host.Write32(c.fetch32(), imm)
		case op == 0x23C0: // MOVE.L D0,abs.L
			c.host.Write32(c.fetch32(), c.d[0])
		case op == 0x5279: // ADDQ.W #1,abs.L
			addr := c.fetch32()
			c.host.Write16(addr, c.host.Read16(addr)+1)
		case op == 0x3F3C: // MOVE.W #imm,-(SP)
			c.sp -= 2
			c.host.Write16(c.sp, c.fetch16())
		case op == 0x2F3C: // MOVE.L #imm,-(SP)
			c.sp -= 4
			c.host.Write32(c.sp, c.fetch32())
		case op == 0x4FEF: // LEA d16(SP),SP
			c.sp = uint32(int32(c.sp) + int32(int16(c.fetch16())))
		case op&0xFF00 == 0x6000: // BRA
			base := c.pc
			disp := int32(int8(op))
			if disp == 0 {
				disp = int32(int16(c.fetch16()))
			}
			c.pc = uint32(int32(base) + disp)
		default:
			c.pc = start
			c.host.OnIllegalInstruction(op)
		}
	}
	return used
}

// asm68k emits the opcodes scriptCore understands.
type asm68k struct {
	code []byte
}

func (a *asm68k) w(v uint16) *asm68k {
	a.code = binary.BigEndian.AppendUint16(a.code, v)
	return a
}

func (a *asm68k) l(v uint32) *asm68k {
	a.code = binary.BigEndian.AppendUint32(a.code, v)
	return a
}

func (a *asm68k) nop() *asm68k     { return a.w(0x4E71) }
func (a *asm68k) rts() *asm68k     { return a.w(0x4E75) }
func (a *asm68k) rte() *asm68k     { return a.w(0x4E73) }
func (a *asm68k) illegal() *asm68k { return a.w(0x4AFC) }
func (a *asm68k) trap(n int) *asm68k {
	return a.w(0x4E40 | uint16(n&0x0F))
}
func (a *asm68k) moveB(imm uint8, addr uint32) *asm68k  { return a.w(0x13FC).w(uint16(imm)).l(addr) }
func (a *asm68k) moveW(imm uint16, addr uint32) *asm68k { return a.w(0x33FC).w(imm).l(addr) }
func (a *asm68k) moveL(imm uint32, addr uint32) *asm68k { return a.w(0x23FC).l(imm).l(addr) }
func (a *asm68k) storeD0(addr uint32) *asm68k           { return a.w(0x23C0).l(addr) }
func (a *asm68k) incW(addr uint32) *asm68k              { return a.w(0x5279).l(addr) }
func (a *asm68k) pushW(v uint16) *asm68k                { return a.w(0x3F3C).w(v) }
func (a *asm68k) pushL(v uint32) *asm68k                { return a.w(0x2F3C).l(v) }
func (a *asm68k) popArgs(n int16) *asm68k               { return a.w(0x4FEF).w(uint16(n)) }
func (a *asm68k) loopForever() *asm68k                  { return a.w(0x60FE) }

// ymWrite emits the select/data pair a replay uses to set one register.
func (a *asm68k) ymWrite(reg, value uint8) *asm68k {
	return a.moveB(reg, YM_SELECT).moveB(value, YM_DATA)
}

// newTestMachine returns a started machine with the scripted core.
func newTestMachine(hostRate uint32) (*Machine, *scriptCore) {
	var core *scriptCore
	m := NewMachine(func(host CoreHost) Core {
		c := newScriptCore(host).(*scriptCore)
		core = c
		return c
	})
	if err := m.Startup(hostRate); err != nil {
		panic(err)
	}
	return m, core
}
