// ste_dac.go - STE DMA sound playback and LMC1992 master volume via microwire

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

// DMA sound register offsets from DAC_BASE
const (
	DAC_CONTROL   = 0x01 // bit 0 play, bit 1 loop
	DAC_START_HI  = 0x03
	DAC_START_MID = 0x05
	DAC_START_LO  = 0x07
	DAC_COUNT_HI  = 0x09
	DAC_COUNT_MID = 0x0B
	DAC_COUNT_LO  = 0x0D
	DAC_END_HI    = 0x0F
	DAC_END_MID   = 0x11
	DAC_END_LO    = 0x13
	DAC_MODE      = 0x21 // bits 0-1 rate, bit 7 mono
	DAC_MW_DATA   = 0x22
	DAC_MW_MASK   = 0x24
	DAC_WINDOW    = DAC_END - DAC_BASE + 1

	DAC_PLAY      = 0x01
	DAC_LOOP      = 0x02
	DAC_MODE_MONO = 0x80

	DAC_MASTER_VOLUME_MAX = 64
	DAC_MW_SHIFT_STEPS    = 16

	lmcAddress      = 2 // 2-bit tag of the LMC1992 on the microwire bus
	lmcMasterVolume = 3
)

// dacRates lists the DMA playback frequencies selected by the mode register.
var dacRates = [4]uint32{6258, 12517, 25033, 50066}

// dacMasterVolumeTable maps the LMC1992 master volume (0..40, 2 dB steps
// from -80 dB to 0 dB) to a 0..64 linear factor.
var dacMasterVolumeTable = [41]int32{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 1,
	1, 1, 1, 1, 2, 2, 3, 3, 4, 5,
	6, 8, 10, 13, 16, 20, 25, 32, 40, 51,
	64,
}

// STEDac fetches 8-bit PCM from RAM and plays it at the selected DMA rate.
type STEDac struct {
	regs [DAC_REG_COUNT]uint8

	samplePtr    uint32
	sampleEndPtr uint32

	mwData  uint16
	mwMask  uint16
	mwShift int

	masterVolume int32

	hostRate   uint32
	innerClock uint32
	accum      int32
	parity     bool
	level      int32
}

// NewSTEDac returns a DAC reset for the given host sample rate.
func NewSTEDac(hostRate uint32) *STEDac {
	d := &STEDac{}
	d.Reset(hostRate)
	return d
}

// Reset stops playback and restores full master volume.
func (d *STEDac) Reset(hostRate uint32) {
	*d = STEDac{hostRate: hostRate}
	d.masterVolume = DAC_MASTER_VOLUME_MAX
}

// MasterVolume returns the current 0..64 volume factor.
func (d *STEDac) MasterVolume() int32 {
	return d.masterVolume
}

// Playing reports whether the play bit is set.
func (d *STEDac) Playing() bool {
	return d.regs[DAC_CONTROL]&DAC_PLAY != 0
}

// Level returns the last output as a signed byte for visualisation.
func (d *STEDac) Level() int8 {
	return int8(d.output() >> 8)
}

func (d *STEDac) fetchPointers() {
	d.samplePtr = uint32(d.regs[DAC_START_HI])<<16 | uint32(d.regs[DAC_START_MID])<<8 | uint32(d.regs[DAC_START_LO]&0xFE)
	d.sampleEndPtr = uint32(d.regs[DAC_END_HI])<<16 | uint32(d.regs[DAC_END_MID])<<8 | uint32(d.regs[DAC_END_LO]&0xFE)
}

// Write8 writes one DMA sound register. offset is relative to DAC_BASE.
func (d *STEDac) Write8(offset uint32, value uint8) {
	if offset >= DAC_WINDOW {
		return
	}
	switch offset {
	case DAC_CONTROL:
		old := d.regs[DAC_CONTROL]
		value &= DAC_PLAY | DAC_LOOP
		d.regs[DAC_CONTROL] = value
		if old&DAC_PLAY == 0 && value&DAC_PLAY != 0 {
			d.fetchPointers()
			d.innerClock = 0
			d.accum = 0
			d.parity = false
		}
		if value&DAC_PLAY == 0 {
			d.level = 0
		}
	case DAC_START_LO, DAC_END_LO:
		d.regs[offset] = value & 0xFE
	case DAC_COUNT_HI, DAC_COUNT_MID, DAC_COUNT_LO:
		// read-only
	case DAC_MODE:
		d.regs[offset] = value & (DAC_MODE_MONO | 0x03)
	case DAC_MW_DATA:
		d.regs[offset] = value
	case DAC_MW_DATA + 1:
		d.regs[offset] = value
		d.mwData = uint16(d.regs[DAC_MW_DATA])<<8 | uint16(value)
		d.mwShift = DAC_MW_SHIFT_STEPS
		d.decodeMicrowire()
	case DAC_MW_MASK:
		d.regs[offset] = value
	case DAC_MW_MASK + 1:
		d.regs[offset] = value
		d.mwMask = uint16(d.regs[DAC_MW_MASK])<<8 | uint16(value)
	default:
		d.regs[offset] = value
	}
}

// Read8 reads one DMA sound register. The counter registers return the live
// fetch pointer; a read of the mask high byte rotates the mask while a
// microwire shift is in progress.
func (d *STEDac) Read8(offset uint32) uint8 {
	if offset >= DAC_WINDOW {
		return 0xFF
	}
	switch offset {
	case DAC_COUNT_HI:
		return uint8(d.samplePtr >> 16)
	case DAC_COUNT_MID:
		return uint8(d.samplePtr >> 8)
	case DAC_COUNT_LO:
		return uint8(d.samplePtr)
	case DAC_MW_DATA:
		return uint8(d.mwData >> 8)
	case DAC_MW_DATA + 1:
		return uint8(d.mwData)
	case DAC_MW_MASK:
		if d.mwShift > 0 {
			d.mwMask = d.mwMask<<1 | d.mwMask>>15
			d.mwShift--
		}
		return uint8(d.mwMask >> 8)
	case DAC_MW_MASK + 1:
		return uint8(d.mwMask)
	}
	return d.regs[offset]
}

// decodeMicrowire extracts the bits selected by the mask, most significant
// first, and applies an LMC1992 master volume command.
func (d *STEDac) decodeMicrowire() {
	var cmd uint32
	bits := 0
	for i := 15; i >= 0; i-- {
		if d.mwMask&(1<<i) == 0 {
			continue
		}
		cmd = cmd<<1 | uint32(d.mwData>>i)&1
		bits++
	}
	if bits != 11 || cmd>>9 != lmcAddress {
		debugf("microwire: ignored %d-bit command %03X", bits, cmd)
		return
	}
	if (cmd>>6)&7 != lmcMasterVolume {
		debugf("microwire: ignored LMC1992 register %d", (cmd>>6)&7)
		return
	}
	vol := cmd & 0x3F
	if vol > 40 {
		vol = 40
	}
	d.masterVolume = dacMasterVolumeTable[vol]
}

func (d *STEDac) output() int32 {
	return d.level * d.masterVolume >> 6
}

func readPCM(ram []byte, addr uint32) int32 {
	if addr >= uint32(len(ram)) {
		return -1
	}
	return int32(int8(ram[addr]))
}

// ComputeNextSample advances DMA playback by one host sample. When the end of
// the frame is reached the MFP Timer A and GPIP7 event inputs are pulsed.
func (d *STEDac) ComputeNextSample(ram []byte, mfp *MFP68901) int16 {
	if !d.Playing() || d.hostRate == 0 {
		return 0
	}

	mode := d.regs[DAC_MODE]
	rate := mode & 0x03
	d.innerClock += dacRates[rate]
	for d.innerClock >= d.hostRate {
		d.innerClock -= d.hostRate

		var s int32
		if mode&DAC_MODE_MONO != 0 {
			s = readPCM(ram, d.samplePtr) << 8
			d.samplePtr++
		} else {
			s = (readPCM(ram, d.samplePtr) + readPCM(ram, d.samplePtr+1)) << 7
			d.samplePtr += 2
		}

		if rate == 3 {
			d.accum += s
			d.parity = !d.parity
			if !d.parity {
				d.level = d.accum / 2
				d.accum = 0
			}
		} else {
			d.level = s
		}

		if d.samplePtr >= d.sampleEndPtr {
			if mfp != nil {
				mfp.SignalExternalEvent(TimerA)
				mfp.SignalExternalEvent(TimerGPI7)
			}
			d.fetchPointers()
			if d.regs[DAC_CONTROL]&DAC_LOOP == 0 {
				d.regs[DAC_CONTROL] &^= DAC_PLAY
				d.level = 0
				d.accum = 0
				d.parity = false
				break
			}
		}
	}

	return int16(d.output())
}
