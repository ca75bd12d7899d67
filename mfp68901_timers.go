// mfp68901_timers.go - MC68901 MFP timer and interrupt-control emulation

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

// MFP register offsets from MFP_BASE. Registers sit on odd addresses.
const (
	MFP_GPIP  = 0x01
	MFP_AER   = 0x03
	MFP_DDR   = 0x05
	MFP_IERA  = 0x07
	MFP_IERB  = 0x09
	MFP_IPRA  = 0x0B
	MFP_IPRB  = 0x0D
	MFP_ISRA  = 0x0F
	MFP_ISRB  = 0x11
	MFP_IMRA  = 0x13
	MFP_IMRB  = 0x15
	MFP_VR    = 0x17
	MFP_TACR  = 0x19
	MFP_TBCR  = 0x1B
	MFP_TCDCR = 0x1D
	MFP_TADR  = 0x1F
	MFP_TBDR  = 0x21
	MFP_TCDR  = 0x23
	MFP_TDDR  = 0x25

	MFP_REG_SPAN   = 0x26
	MFP_EVENT_MODE = 0x08
	MFP_VR_RESET   = 0x40
)

// mfpPrescaler gives the MFP clock divider for control values 1..7.
var mfpPrescaler = [8]uint32{0, 4, 10, 16, 50, 64, 100, 200}

// mfpTimerBits locates each timer's enable/mask/pending bit: bank 0 is the A
// register set (IERA, IPRA, IMRA), bank 1 the B set.
var mfpTimerBits = [timerCount]struct {
	bank int
	bit  uint8
}{
	TimerA:    {0, 1 << 5},
	TimerB:    {0, 1 << 0},
	TimerC:    {1, 1 << 5},
	TimerD:    {1, 1 << 4},
	TimerGPI7: {0, 1 << 7},
}

type mfpTimer struct {
	control       uint8 // 0 stopped, 1-7 delay prescaler, bit 3 event count
	data          uint8 // live countdown
	reload        uint8
	enabled       bool
	unmasked      bool
	innerClock    uint64
	externalEvent bool
	eventOnly     bool
}

func (t *mfpTimer) eventMode() bool {
	return t.eventOnly || t.control&MFP_EVENT_MODE != 0
}

// countDown decrements the counter and reloads it when it reaches zero.
func (t *mfpTimer) countDown() bool {
	t.data--
	if t.data == 0 {
		t.data = t.reload
		return true
	}
	return false
}

// MFP68901 holds the four MFP timers plus the GPIP7 event source.
type MFP68901 struct {
	regs     [MFP_REG_SPAN]uint8
	timers   [timerCount]mfpTimer
	hostRate uint32
}

// NewMFP68901 returns an MFP reset for the given host sample rate.
func NewMFP68901(hostRate uint32) *MFP68901 {
	m := &MFP68901{}
	m.Reset(hostRate)
	return m
}

// Reset clears all registers and timers.
func (m *MFP68901) Reset(hostRate uint32) {
	*m = MFP68901{hostRate: hostRate}
	m.regs[MFP_VR] = MFP_VR_RESET
	gpi := &m.timers[TimerGPI7]
	gpi.eventOnly = true
	gpi.reload = 1
	gpi.data = 1
}

func (m *MFP68901) enableReg(bank int) uint32 {
	if bank == 0 {
		return MFP_IERA
	}
	return MFP_IERB
}

func (m *MFP68901) pendingReg(bank int) uint32 {
	if bank == 0 {
		return MFP_IPRA
	}
	return MFP_IPRB
}

func (m *MFP68901) maskReg(bank int) uint32 {
	if bank == 0 {
		return MFP_IMRA
	}
	return MFP_IMRB
}

// Write8 writes one MFP register. offset is relative to MFP_BASE.
func (m *MFP68901) Write8(offset uint32, value uint8) {
	if offset >= MFP_REG_SPAN || offset&1 == 0 {
		return
	}

	switch offset {
	case MFP_IERA, MFP_IERB:
		m.regs[offset] = value
		m.syncEnables(offset)
	case MFP_IMRA, MFP_IMRB:
		m.regs[offset] = value
		m.syncMasks(offset)
	case MFP_IPRA, MFP_IPRB, MFP_ISRA, MFP_ISRB:
		// Bits can only be cleared from the CPU side
		m.regs[offset] &= value
	case MFP_TACR:
		m.regs[offset] = value & 0x1F
		m.setControl(TimerA, value&0x0F)
	case MFP_TBCR:
		m.regs[offset] = value & 0x1F
		m.setControl(TimerB, value&0x0F)
	case MFP_TCDCR:
		m.regs[offset] = value & 0x77
		m.setControl(TimerC, (value>>4)&0x07)
		m.setControl(TimerD, value&0x07)
	case MFP_TADR:
		m.setData(TimerA, value)
	case MFP_TBDR:
		m.setData(TimerB, value)
	case MFP_TCDR:
		m.setData(TimerC, value)
	case MFP_TDDR:
		m.setData(TimerD, value)
	default:
		m.regs[offset] = value
	}
}

// Read8 reads one MFP register. Data registers return the live count.
func (m *MFP68901) Read8(offset uint32) uint8 {
	if offset >= MFP_REG_SPAN || offset&1 == 0 {
		return 0xFF
	}
	switch offset {
	case MFP_TADR:
		return m.timers[TimerA].data
	case MFP_TBDR:
		return m.timers[TimerB].data
	case MFP_TCDR:
		return m.timers[TimerC].data
	case MFP_TDDR:
		return m.timers[TimerD].data
	}
	return m.regs[offset]
}

func (m *MFP68901) syncEnables(reg uint32) {
	for id := TimerID(0); id < timerCount; id++ {
		bits := mfpTimerBits[id]
		if m.enableReg(bits.bank) != reg {
			continue
		}
		m.setEnable(id, m.regs[reg]&bits.bit != 0)
		if m.regs[reg]&bits.bit == 0 {
			m.regs[m.pendingReg(bits.bank)] &^= bits.bit
		}
	}
}

func (m *MFP68901) syncMasks(reg uint32) {
	for id := TimerID(0); id < timerCount; id++ {
		bits := mfpTimerBits[id]
		if m.maskReg(bits.bank) == reg {
			m.timers[id].unmasked = m.regs[reg]&bits.bit != 0
		}
	}
}

func (m *MFP68901) setEnable(id TimerID, on bool) {
	t := &m.timers[id]
	if !on {
		t.enabled = false
		return
	}
	if t.enabled {
		return
	}
	t.enabled = true
	if !t.eventMode() {
		t.data = t.reload
		t.innerClock = 0
	}
}

func (m *MFP68901) setControl(id TimerID, mode uint8) {
	t := &m.timers[id]
	if t.control == 0 || mode == 0 {
		t.innerClock = 0
	}
	t.control = mode
}

func (m *MFP68901) setData(id TimerID, value uint8) {
	t := &m.timers[id]
	t.reload = value
	if t.control == 0 {
		t.data = value
	}
}

// SignalExternalEvent raises the event input of a timer for the next tick.
func (m *MFP68901) SignalExternalEvent(id TimerID) {
	if id >= 0 && id < timerCount {
		m.timers[id].externalEvent = true
	}
}

// ExternalEventPending reports whether an event is waiting to be counted.
func (m *MFP68901) ExternalEventPending(id TimerID) bool {
	if id < 0 || id >= timerCount {
		return false
	}
	return m.timers[id].externalEvent
}

// Tick advances one timer by one host sample. It reports true when the timer
// reached zero during this sample and its interrupt is not masked.
func (m *MFP68901) Tick(id TimerID) bool {
	if id < 0 || id >= timerCount {
		return false
	}
	t := &m.timers[id]
	fired := false

	if t.enabled {
		if t.eventMode() {
			if t.externalEvent {
				fired = t.countDown()
			}
		} else if prescale := mfpPrescaler[t.control&0x07]; prescale != 0 && m.hostRate != 0 {
			t.innerClock += MFP_CLOCK
			threshold := uint64(prescale) * uint64(m.hostRate)
			for t.innerClock >= threshold {
				t.innerClock -= threshold
				if t.countDown() {
					fired = true
				}
			}
		}
	}
	t.externalEvent = false

	if !fired {
		return false
	}
	bits := mfpTimerBits[id]
	m.regs[m.pendingReg(bits.bank)] |= bits.bit
	return t.unmasked
}
