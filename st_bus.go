// st_bus.go - Atari ST address space: RAM, sound/timer windows, OS call stubs

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package stsound

import (
	"encoding/binary"
	"fmt"
)

type runStatus int

const (
	statusIdle runStatus = iota
	statusRunning
	statusReturned
	statusFault
)

// Bus routes 24-bit CPU addresses to RAM or to one of the sound peripherals.
// Unmapped reads return all ones and unmapped writes are dropped.
type Bus struct {
	ram     []byte
	ym      *YM2149
	mfp     *MFP68901
	dac     *STEDac
	heapPtr uint32

	status runStatus
	fault  error
}

func newBus(ym *YM2149, mfp *MFP68901, dac *STEDac) *Bus {
	return &Bus{
		ram:     make([]byte, ST_RAM_SIZE),
		ym:      ym,
		mfp:     mfp,
		dac:     dac,
		heapPtr: ST_HEAP_BASE,
	}
}

func (b *Bus) reset() {
	clear(b.ram)
	b.heapPtr = ST_HEAP_BASE
	b.status = statusIdle
	b.fault = nil
}

// RAM exposes main memory. The slice stays valid across Startup calls.
func (b *Bus) RAM() []byte {
	return b.ram
}

// HeapPointer returns the next address the allocator will hand out.
func (b *Bus) HeapPointer() uint32 {
	return b.heapPtr
}

func (b *Bus) Read8(addr uint32) uint8 {
	addr &= ST_ADDR_MASK
	if addr < ST_RAM_SIZE {
		return b.ram[addr]
	}
	switch {
	case addr >= YM_BASE && addr <= YM_END:
		if addr&1 != 0 {
			return 0xFF
		}
		return b.ym.ReadPort((addr - YM_BASE) & 3)
	case addr >= DAC_BASE && addr <= DAC_END:
		return b.dac.Read8(addr - DAC_BASE)
	case addr >= MFP_BASE && addr <= MFP_END:
		return b.mfp.Read8(addr - MFP_BASE)
	}
	return 0xFF
}

func (b *Bus) Write8(addr uint32, value uint8) {
	addr &= ST_ADDR_MASK
	if addr < ST_RAM_SIZE {
		b.ram[addr] = value
		return
	}
	switch {
	case addr >= YM_BASE && addr <= YM_END:
		// The YM2149 sits on the upper data byte
		if addr&1 == 0 {
			b.ym.WritePort((addr-YM_BASE)&3, value)
		}
	case addr >= DAC_BASE && addr <= DAC_END:
		b.dac.Write8(addr-DAC_BASE, value)
	case addr >= MFP_BASE && addr <= MFP_END:
		b.mfp.Write8(addr-MFP_BASE, value)
	}
}

func (b *Bus) Read16(addr uint32) uint16 {
	addr &= ST_ADDR_MASK
	if addr+1 < ST_RAM_SIZE {
		return binary.BigEndian.Uint16(b.ram[addr:])
	}
	return uint16(b.Read8(addr))<<8 | uint16(b.Read8(addr+1))
}

func (b *Bus) Write16(addr uint32, value uint16) {
	addr &= ST_ADDR_MASK
	if addr+1 < ST_RAM_SIZE {
		binary.BigEndian.PutUint16(b.ram[addr:], value)
		return
	}
	b.Write8(addr, uint8(value>>8))
	b.Write8(addr+1, uint8(value))
}

func (b *Bus) Read32(addr uint32) uint32 {
	return uint32(b.Read16(addr))<<16 | uint32(b.Read16(addr+2))
}

func (b *Bus) Write32(addr uint32, value uint32) {
	b.Write16(addr, uint16(value>>16))
	b.Write16(addr+2, uint16(value))
}

// Upload copies blob into RAM at addr and moves the allocator past it.
func (b *Bus) Upload(blob []byte, addr uint32) error {
	end := uint64(addr) + uint64(len(blob))
	if end > ST_RAM_SIZE {
		return fmt.Errorf("%w: %d bytes at 0x%06X", ErrUploadOverflow, len(blob), addr)
	}
	copy(b.ram[addr:], blob)
	if top := alignEven(uint32(end)); top > b.heapPtr {
		b.heapPtr = top
	}
	return nil
}

func alignEven(v uint32) uint32 {
	return (v + 1) &^ 1
}

// gemdos services TRAP #1. Only Malloc is provided.
func (b *Bus) gemdos(sp uint32) (uint32, error) {
	fn := b.Read16(sp)
	switch fn {
	case GEMDOS_MALLOC:
		return b.malloc(b.Read32(sp + 2)), nil
	}
	return 0, fmt.Errorf("%w: GEMDOS 0x%02X", ErrUnimplementedSysCall, fn)
}

func (b *Bus) malloc(size uint32) uint32 {
	free := uint32(ST_RAM_SIZE) - b.heapPtr
	if size == 0xFFFFFFFF {
		return free
	}
	if size > free {
		debugf("Malloc(%d) failed, %d bytes free", size, free)
		return 0
	}
	addr := b.heapPtr
	b.heapPtr = alignEven(addr + size)
	debugf("Malloc(%d) = 0x%06X", size, addr)
	return addr
}

// xbios services TRAP #14. Only Xbtimer is provided.
func (b *Bus) xbios(sp uint32) (uint32, error) {
	fn := b.Read16(sp)
	switch fn {
	case XBIOS_XBTIMER:
		timer := b.Read16(sp + 2)
		control := uint8(b.Read16(sp + 4))
		data := uint8(b.Read16(sp + 6))
		vector := b.Read32(sp + 8)
		return 0, b.xbtimer(timer, control, data, vector)
	}
	return 0, fmt.Errorf("%w: XBIOS %d", ErrUnimplementedSysCall, fn)
}

// xbtimer installs vector for an MFP timer and starts it with the given
// control and data values, using the same register writes TOS performs.
func (b *Bus) xbtimer(timer uint16, control, data uint8, vector uint32) error {
	if timer > uint16(TimerD) {
		return fmt.Errorf("%w: Xbtimer timer %d", ErrUnimplementedSysCall, timer)
	}
	id := TimerID(timer)
	debugf("Xbtimer(%s, ctrl=%d, data=%d, vector=0x%06X)", id, control, data, vector)

	b.Write32(id.VectorAddress(), vector)

	switch id {
	case TimerA, TimerB:
		cr := uint32(MFP_TACR)
		dr := uint32(MFP_TADR)
		if id == TimerB {
			cr, dr = MFP_TBCR, MFP_TBDR
		}
		b.Write8(MFP_BASE+cr, 0)
		b.Write8(MFP_BASE+dr, data)
		b.Write8(MFP_BASE+cr, control)
	case TimerC, TimerD:
		cur := b.Read8(MFP_BASE + MFP_TCDCR)
		keep, shift, dr := cur&0x07, 4, uint32(MFP_TCDR)
		if id == TimerD {
			keep, shift, dr = cur&0x70, 0, MFP_TDDR
		}
		b.Write8(MFP_BASE+MFP_TCDCR, keep)
		b.Write8(MFP_BASE+dr, data)
		b.Write8(MFP_BASE+MFP_TCDCR, keep|(control&0x07)<<shift)
	}

	bits := mfpTimerBits[id]
	ier, imr := uint32(MFP_IERA), uint32(MFP_IMRA)
	if bits.bank == 1 {
		ier, imr = MFP_IERB, MFP_IMRB
	}
	b.Write8(MFP_BASE+ier, b.Read8(MFP_BASE+ier)|bits.bit)
	b.Write8(MFP_BASE+imr, b.Read8(MFP_BASE+imr)|bits.bit)
	return nil
}
