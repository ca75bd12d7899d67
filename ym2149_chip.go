// ym2149_chip.go - YM2149 sound chip emulation (tone, noise, envelope, mixer)

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

const (
	YM_ENV_STEPS     = 96 // three 32-step cycles per shape
	YM_ENV_LOOP      = 32 // position the envelope returns to after the third cycle
	YM_DC_BUFFER_LEN = 512

	ymVoiceBits = 5
	ymLaneMask  = 0x1F
	ymAllLanes  = 0x7FFF
)

// ymRegMask keeps only the bits each register implements
var ymRegMask = [YM_REG_COUNT]uint8{
	0xFF, 0x0F, 0xFF, 0x0F, 0xFF, 0x0F, // tone periods A, B, C
	0x1F,             // noise period
	0xFF,             // mixer, bits 6-7 are port directions
	0x1F, 0x1F, 0x1F, // volumes
	0xFF, 0xFF,       // envelope period
	0x0F,             // envelope shape
	0xFF, 0xFF,       // I/O ports A and B
}

// dcFilter removes the DC offset with a moving average over the last samples.
type dcFilter struct {
	buffer [YM_DC_BUFFER_LEN]int32
	pos    int
	sum    int32
}

// apply returns raw minus the running average, then records raw.
func (f *dcFilter) apply(raw int32) int32 {
	out := raw - f.sum/YM_DC_BUFFER_LEN
	f.sum += raw - f.buffer[f.pos]
	f.buffer[f.pos] = raw
	f.pos = (f.pos + 1) & (YM_DC_BUFFER_LEN - 1)
	return out
}

// YM2149 models the Atari ST sound chip at one eighth of its input clock.
type YM2149 struct {
	regs     [YM_REG_COUNT]uint8
	selected uint8

	tonePeriod  [3]uint32
	toneCounter [3]uint32
	edges       uint16 // 3 x 5-bit lanes, all ones while the square is high

	noisePeriod  uint32
	noiseCounter uint32
	noiseLFSR    uint32
	noiseMask    uint16
	noiseHalf    bool

	envPeriod  uint32
	envCounter uint32
	envPos     int
	envShape   uint8

	toneDisable  uint16
	noiseDisable uint16
	envLanes     uint16 // lanes whose level comes from the envelope
	fixedLevels  uint16 // 5-bit fixed levels for non-envelope lanes

	hostRate   uint32
	tickRate   uint32
	innerCycle uint32

	dc dcFilter
}

// NewYM2149 returns a chip reset for the given host sample rate and input clock.
func NewYM2149(hostRate, chipClock uint32) *YM2149 {
	ym := &YM2149{}
	ym.Reset(hostRate, chipClock)
	return ym
}

// Reset zeroes every register and counter.
func (ym *YM2149) Reset(hostRate, chipClock uint32) {
	*ym = YM2149{}
	ym.hostRate = max(hostRate, 1)
	ym.tickRate = chipClock / 8
	if ym.tickRate == 0 {
		ym.tickRate = 1
	}
	ym.noiseLFSR = 1
	for v := 0; v < 3; v++ {
		ym.tonePeriod[v] = 1
	}
	ym.noisePeriod = 1
	ym.envPeriod = 1
	ym.updateMixer()
	ym.updateLevels()
}

// WritePort handles a CPU write. Port 0 selects a register, port 2 writes it.
func (ym *YM2149) WritePort(port uint32, value uint8) {
	if port&2 == 0 {
		ym.selected = value & 0x0F
		return
	}
	ym.WriteRegister(ym.selected, value)
}

// ReadPort returns the selected register on port 0 and open bus elsewhere.
func (ym *YM2149) ReadPort(port uint32) uint8 {
	if port&2 == 0 {
		return ym.regs[ym.selected]
	}
	return 0xFF
}

// Selected returns the register number latched by the last select write.
func (ym *YM2149) Selected() uint8 {
	return ym.selected
}

// ReadRegister returns the stored (masked) value of a register.
func (ym *YM2149) ReadRegister(reg uint8) uint8 {
	if int(reg) >= YM_REG_COUNT {
		return 0xFF
	}
	return ym.regs[reg]
}

// WriteRegister stores a register and updates the derived generator state.
func (ym *YM2149) WriteRegister(reg uint8, value uint8) {
	if int(reg) >= YM_REG_COUNT {
		return
	}
	value &= ymRegMask[reg]
	ym.regs[reg] = value

	switch reg {
	case 0, 1, 2, 3, 4, 5:
		v := reg / 2
		ym.tonePeriod[v] = nonZeroPeriod(uint32(ym.regs[v*2]) | uint32(ym.regs[v*2+1])<<8)
	case 6:
		ym.noisePeriod = nonZeroPeriod(uint32(value))
	case 7:
		ym.updateMixer()
	case 8, 9, 10:
		ym.updateLevels()
	case 11, 12:
		ym.envPeriod = nonZeroPeriod(uint32(ym.regs[11]) | uint32(ym.regs[12])<<8)
	case 13:
		ym.envShape = value
		ym.envPos = 0
		ym.envCounter = 0
	}
}

func nonZeroPeriod(p uint32) uint32 {
	if p == 0 {
		return 1
	}
	return p
}

func (ym *YM2149) updateMixer() {
	mixer := ym.regs[7]
	ym.toneDisable = 0
	ym.noiseDisable = 0
	for v := 0; v < 3; v++ {
		lane := uint16(ymLaneMask) << (ymVoiceBits * v)
		if mixer&(1<<v) != 0 {
			ym.toneDisable |= lane
		}
		if mixer&(1<<(v+3)) != 0 {
			ym.noiseDisable |= lane
		}
	}
}

func (ym *YM2149) updateLevels() {
	ym.envLanes = 0
	ym.fixedLevels = 0
	for v := 0; v < 3; v++ {
		vol := ym.regs[8+v]
		shift := ymVoiceBits * v
		if vol&0x10 != 0 {
			ym.envLanes |= uint16(ymLaneMask) << shift
			continue
		}
		ym.fixedLevels |= (uint16(vol&0x0F)<<1 | 1) << shift
	}
}

// Tick advances the generators by one chip tick and returns the tone edge word.
func (ym *YM2149) Tick() uint16 {
	for v := 0; v < 3; v++ {
		ym.toneCounter[v]++
		if ym.toneCounter[v] >= ym.tonePeriod[v] {
			ym.toneCounter[v] = 0
			ym.edges ^= uint16(ymLaneMask) << (ymVoiceBits * v)
		}
	}

	ym.noiseHalf = !ym.noiseHalf
	if ym.noiseHalf {
		ym.noiseCounter++
		if ym.noiseCounter >= ym.noisePeriod {
			ym.noiseCounter = 0
			bit := (ym.noiseLFSR ^ ym.noiseLFSR>>3) & 1
			ym.noiseLFSR = ym.noiseLFSR>>1 | bit<<16
			if ym.noiseLFSR&1 != 0 {
				ym.noiseMask = ymAllLanes
			} else {
				ym.noiseMask = 0
			}
		}
	}

	ym.envCounter++
	if ym.envCounter >= ym.envPeriod {
		ym.envCounter = 0
		ym.envPos++
		if ym.envPos >= YM_ENV_STEPS {
			ym.envPos = YM_ENV_LOOP
		}
	}

	return ym.edges
}

// EnvelopeLevel returns the current 5-bit envelope output.
func (ym *YM2149) EnvelopeLevel() uint8 {
	return ymEnvelopeShapes[ym.envShape][ym.envPos]
}

// NoiseMask returns the current noise gate, all lanes set or clear.
func (ym *YM2149) NoiseMask() uint16 {
	return ym.noiseMask
}

// ComputeNextSample advances the chip by one host sample and returns the
// DC-filtered mix of the three voices. When debug is non-nil the low three
// bytes receive a signed level per voice.
func (ym *YM2149) ComputeNextSample(debug *uint32) int16 {
	ym.innerCycle += ym.tickRate
	for ym.innerCycle >= ym.hostRate {
		ym.innerCycle -= ym.hostRate
		ym.Tick()
	}

	env := uint16(ym.EnvelopeLevel())
	envAll := env | env<<ymVoiceBits | env<<(2*ymVoiceBits)
	levels := (envAll & ym.envLanes) | ym.fixedLevels
	gate := (ym.edges | ym.toneDisable) & (ym.noiseMask | ym.noiseDisable)
	levels &= gate

	var raw int32
	for v := 0; v < 3; v++ {
		raw += int32(ymVolumeTable[(levels>>(ymVoiceBits*v))&ymLaneMask])
	}

	if debug != nil {
		var word uint32
		for v := 0; v < 3; v++ {
			lvl := int8(((levels >> (ymVoiceBits * v)) & ymLaneMask) << 2)
			if ym.edges&(1<<(ymVoiceBits*v)) == 0 && ym.toneDisable&(1<<(ymVoiceBits*v)) == 0 {
				lvl = -lvl
			}
			word |= uint32(uint8(lvl)) << (8 * v)
		}
		*debug = *debug&0xFF000000 | word
	}

	return int16(ym.dc.apply(raw))
}
