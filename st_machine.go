// st_machine.go - Sample-accurate Atari ST sound machine driving an external 68000 core

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
	"errors"
	"fmt"
)

var (
	ErrNotStarted           = errors.New("machine not started")
	ErrNoCore               = errors.New("no 68000 core attached")
	ErrUploadOverflow       = errors.New("upload exceeds RAM")
	ErrUnimplementedSysCall = errors.New("unimplemented system call")
	ErrIllegalInstruction   = errors.New("illegal instruction")
)

// SubSongInfo describes the tick schedule of the song being rendered.
type SubSongInfo struct {
	TickCount      int // ticks before the song loops, 0 if unknown
	TickRate       int // player calls per second
	SamplesPerTick int
	Title          string
	Author         string
	Year           string
}

// Machine owns the bus, the three sound peripherals and the core. One Machine
// is one playback session; it is not safe for concurrent use.
type Machine struct {
	bus  *Bus
	ym   *YM2149
	mfp  *MFP68901
	dac  *STEDac
	core Core

	hostRate   uint32
	started    bool
	tickCycles int

	playAddr      uint32
	subSong       SubSongInfo
	samplesToTick int
	tickPos       int
	loopCount     int
}

// NewMachine builds a machine. newCore may be nil for sessions that only
// drive the sound registers directly.
func NewMachine(newCore CoreFactory) *Machine {
	m := &Machine{
		ym:         &YM2149{},
		mfp:        &MFP68901{},
		dac:        &STEDac{},
		tickCycles: TICK_CYCLES_DEFAULT,
	}
	m.bus = newBus(m.ym, m.mfp, m.dac)
	if newCore != nil {
		m.core = newCore(m)
	}
	return m
}

func (m *Machine) Bus() *Bus            { return m.bus }
func (m *Machine) YM() *YM2149          { return m.ym }
func (m *Machine) MFP() *MFP68901       { return m.mfp }
func (m *Machine) DAC() *STEDac         { return m.dac }
func (m *Machine) HostRate() uint32     { return m.hostRate }
func (m *Machine) HasCore() bool        { return m.core != nil }
func (m *Machine) Fault() error         { return m.bus.fault }
func (m *Machine) LoopCount() int       { return m.loopCount }
func (m *Machine) SubSong() SubSongInfo { return m.subSong }

// Startup clears RAM, installs the exception vectors and trampolines and
// resets every peripheral for the given output rate.
func (m *Machine) Startup(hostRate uint32) error {
	if hostRate == 0 {
		return fmt.Errorf("startup: host rate must be positive")
	}
	m.hostRate = hostRate
	m.bus.reset()
	m.ym.Reset(hostRate, YM_CLOCK_ST)
	m.mfp.Reset(hostRate)
	m.dac.Reset(hostRate)

	m.bus.Write32(0, ST_STACK_TOP)
	m.bus.Write32(4, ST_RESET_TRAMPOLINE)
	for v := uint32(2); v < ST_VECTOR_COUNT; v++ {
		m.bus.Write32(v*4, ST_RTE_TRAMPOLINE)
	}
	m.bus.Write16(ST_RESET_TRAMPOLINE, OPCODE_RESET)
	m.bus.Write16(ST_RTE_TRAMPOLINE, OPCODE_RTE)

	if m.core != nil {
		m.core.Reset()
	}
	m.tickCycles = TICK_CYCLES_DEFAULT
	m.playAddr = 0
	m.subSong = SubSongInfo{}
	m.samplesToTick = 0
	m.tickPos = 0
	m.loopCount = 0
	m.started = true
	return nil
}

// Upload copies a blob into RAM.
func (m *Machine) Upload(blob []byte, addr uint32) error {
	if !m.started {
		return ErrNotStarted
	}
	return m.bus.Upload(blob, addr)
}

func (m *Machine) ready() error {
	if !m.started {
		return ErrNotStarted
	}
	if m.bus.fault != nil {
		return m.bus.fault
	}
	return nil
}

// CallAndWait runs the routine at entry with arg in D0 until it returns or
// timeoutTicks player ticks worth of cycles have elapsed. A timeout is not an
// error; a fault is, and it ends the session.
func (m *Machine) CallAndWait(entry, arg uint32, timeoutTicks int) (bool, error) {
	if err := m.ready(); err != nil {
		return false, err
	}
	if m.core == nil {
		return false, ErrNoCore
	}
	m.core.SetSR(ST_DISPATCH_SR)
	m.core.SetSP(ST_STACK_TOP)
	m.push32(ST_RESET_TRAMPOLINE)
	m.core.SetDataReg(0, arg)
	m.core.SetPC(entry)
	return m.run(timeoutTicks*m.tickCycles, m.tickCycles)
}

// dispatchInterrupt runs the handler installed for a fired timer, with an
// exception frame that returns into the reset trampoline.
func (m *Machine) dispatchInterrupt(id TimerID) error {
	if m.core == nil {
		return nil
	}
	vector := m.bus.Read32(id.VectorAddress()) & ST_ADDR_MASK
	if vector == ST_RTE_TRAMPOLINE || vector == 0 || vector >= ST_RAM_SIZE {
		return nil
	}
	m.core.SetSR(ST_DISPATCH_SR)
	m.core.SetSP(ST_STACK_TOP)
	m.push32(ST_RESET_TRAMPOLINE)
	m.push16(ST_DISPATCH_SR)
	m.core.SetPC(vector)
	if ok, err := m.run(IRQ_CYCLE_BUDGET, IRQ_CYCLE_BUDGET); err != nil {
		return err
	} else if !ok {
		debugf("timer %s handler at 0x%06X exceeded %d cycles", id, vector, IRQ_CYCLE_BUDGET)
	}
	return nil
}

func (m *Machine) push16(v uint16) {
	sp := m.core.SP() - 2
	m.bus.Write16(sp, v)
	m.core.SetSP(sp)
}

func (m *Machine) push32(v uint32) {
	sp := m.core.SP() - 4
	m.bus.Write32(sp, v)
	m.core.SetSP(sp)
}

// run executes the core in slices until it hits the reset trampoline, faults
// or spends budget cycles.
func (m *Machine) run(budget, slice int) (bool, error) {
	m.bus.status = statusRunning
	for budget > 0 && m.bus.status == statusRunning {
		n := min(slice, budget)
		used := m.core.Execute(n)
		if used <= 0 {
			used = n
		}
		budget -= used
	}

	switch m.bus.status {
	case statusReturned:
		m.bus.status = statusIdle
		return true, nil
	case statusFault:
		return false, m.bus.fault
	}
	m.bus.status = statusIdle
	return false, nil
}

func (m *Machine) fail(err error) {
	if m.bus.fault == nil {
		m.bus.fault = err
		debugf("fault: %v", err)
	}
	m.bus.status = statusFault
	if m.core != nil {
		m.core.StopExecution()
	}
}

// CoreHost

func (m *Machine) Read8(addr uint32) uint8           { return m.bus.Read8(addr) }
func (m *Machine) Read16(addr uint32) uint16         { return m.bus.Read16(addr) }
func (m *Machine) Read32(addr uint32) uint32         { return m.bus.Read32(addr) }
func (m *Machine) Write8(addr uint32, value uint8)   { m.bus.Write8(addr, value) }
func (m *Machine) Write16(addr uint32, value uint16) { m.bus.Write16(addr, value) }
func (m *Machine) Write32(addr uint32, value uint32) { m.bus.Write32(addr, value) }

func (m *Machine) OnResetInstruction() {
	if m.bus.status == statusRunning {
		m.bus.status = statusReturned
	}
	m.core.StopExecution()
}

func (m *Machine) OnIllegalInstruction(opcode uint16) {
	m.fail(fmt.Errorf("%w: opcode 0x%04X at 0x%06X", ErrIllegalInstruction, opcode, m.core.PC()))
}

func (m *Machine) OnSysCall(trap int) {
	sp := m.core.SP()
	var (
		result uint32
		err    error
	)
	switch trap {
	case TRAP_GEMDOS:
		result, err = m.bus.gemdos(sp)
	case TRAP_XBIOS:
		result, err = m.bus.xbios(sp)
	default:
		err = fmt.Errorf("%w: TRAP #%d", ErrUnimplementedSysCall, trap)
	}
	if err != nil {
		m.fail(err)
		return
	}
	m.core.SetDataReg(0, result)
}

// ComputeNextSample services timer interrupts for one host sample and returns
// the mixed, clamped output. vis, when non-nil, receives the three YM voice
// levels in bytes 0-2 and the DMA level in byte 3.
func (m *Machine) ComputeNextSample(vis *uint32) (int16, error) {
	if err := m.ready(); err != nil {
		return 0, err
	}
	var fired [timerCount]bool
	for id := TimerID(0); id < timerCount; id++ {
		fired[id] = m.mfp.Tick(id)
	}
	for id := TimerID(0); id < timerCount; id++ {
		if fired[id] {
			if err := m.dispatchInterrupt(id); err != nil {
				return 0, err
			}
		}
	}

	var word uint32
	ym := m.ym.ComputeNextSample(&word)
	dac := m.dac.ComputeNextSample(m.bus.ram, m.mfp)
	if vis != nil {
		*vis = word&0x00FFFFFF | uint32(uint8(m.dac.Level()))<<24
	}
	return clampSample(int32(ym) + int32(dac)), nil
}

func clampSample(v int32) int16 {
	if v > SAMPLE_MAX_S16 {
		return SAMPLE_MAX_S16
	}
	if v < SAMPLE_MIN_S16 {
		return SAMPLE_MIN_S16
	}
	return int16(v)
}

// SetSubSong installs the per-tick player routine used by Render.
func (m *Machine) SetSubSong(info SubSongInfo, playAddr uint32) {
	if info.TickRate <= 0 {
		info.TickRate = 50
	}
	if info.SamplesPerTick <= 0 {
		info.SamplesPerTick = max(1, int(m.hostRate)/info.TickRate)
	}
	m.subSong = info
	m.playAddr = playAddr
	m.tickCycles = ST_CPU_CLOCK / info.TickRate
	m.samplesToTick = 0
	m.tickPos = 0
	m.loopCount = 0
}

// Render fills out with samples, calling the player routine once every
// SamplesPerTick samples. It returns how many times the song has looped.
func (m *Machine) Render(out []int16, vis []uint32) (int, error) {
	for i := range out {
		if m.playAddr != 0 && m.samplesToTick <= 0 {
			if _, err := m.CallAndWait(m.playAddr, 0, 1); err != nil {
				return m.loopCount, err
			}
			m.samplesToTick += m.subSong.SamplesPerTick
			m.tickPos++
			if m.subSong.TickCount > 0 && m.tickPos >= m.subSong.TickCount {
				m.tickPos = 0
				m.loopCount++
			}
		}
		m.samplesToTick--

		var w *uint32
		if i < len(vis) {
			w = &vis[i]
		}
		s, err := m.ComputeNextSample(w)
		if err != nil {
			return m.loopCount, err
		}
		out[i] = s
	}
	return m.loopCount, nil
}
