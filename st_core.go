// st_core.go - Contract between the machine and an external 68000 core

package stsound

// Core is a 68000 instruction core. The machine never looks inside it: it
// sets registers, runs it for a cycle budget and reads registers back.
type Core interface {
	Reset()
	PC() uint32
	SetPC(pc uint32)
	SP() uint32 // supervisor A7
	SetSP(sp uint32)
	SetSR(sr uint16)
	DataReg(n int) uint32
	SetDataReg(n int, v uint32)
	AddrReg(n int) uint32
	SetAddrReg(n int, v uint32)

	// Execute runs until at least cycles have elapsed or StopExecution is
	// called from a host callback, and returns the cycles consumed.
	Execute(cycles int) int
	StopExecution()
}

// CoreHost is the side of the machine visible to a core. Memory access goes
// through it, and so do the three instructions the machine intercepts.
type CoreHost interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, value uint8)
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)

	// OnResetInstruction is called for the RESET opcode.
	OnResetInstruction()
	// OnIllegalInstruction is called for any opcode the core cannot execute.
	OnIllegalInstruction(opcode uint16)
	// OnSysCall is called for TRAP #n instead of taking the exception. The
	// arguments are on the stack at SP, the result goes to D0.
	OnSysCall(trap int)
}

// CoreFactory builds a core bound to its host.
type CoreFactory func(host CoreHost) Core
