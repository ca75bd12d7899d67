// ym_dump_player.go - Replays YM register dumps through the machine's bus

package stsound

// YMDumpPlayer writes one dump frame to the YM2149 ports per tick and mixes
// the result through a Machine, so the register path is the one a CPU uses.
type YMDumpPlayer struct {
	machine   *Machine
	dump      *YMDump
	frame     int
	toTick    int
	perTick   int
	loopCount int
}

// NewYMDumpPlayer starts a core-less machine for dump at hostRate.
func NewYMDumpPlayer(dump *YMDump, hostRate uint32) (*YMDumpPlayer, error) {
	m := NewMachine(nil)
	if err := m.Startup(hostRate); err != nil {
		return nil, err
	}
	if dump.ClockHz != 0 && dump.ClockHz != YM_CLOCK_ST {
		m.ym.Reset(hostRate, dump.ClockHz)
	}
	rate := dump.FrameRate
	if rate <= 0 {
		rate = 50
	}
	return &YMDumpPlayer{
		machine: m,
		dump:    dump,
		perTick: max(1, int(hostRate)/rate),
	}, nil
}

func (p *YMDumpPlayer) Machine() *Machine { return p.machine }
func (p *YMDumpPlayer) Frame() int        { return p.frame }

// Info returns the dump's schedule in the same shape as an SNDH subsong.
func (p *YMDumpPlayer) Info() SubSongInfo {
	return SubSongInfo{
		TickCount:      len(p.dump.Frames),
		TickRate:       p.dump.FrameRate,
		SamplesPerTick: p.perTick,
		Title:          p.dump.Title,
		Author:         p.dump.Author,
	}
}

func (p *YMDumpPlayer) writeFrame(regs *[YM_REG_COUNT]uint8) {
	bus := p.machine.bus
	for r := 0; r < YM_PLAY_REGS; r++ {
		// 0xFF in the shape register means the envelope keeps running
		if r == 13 && regs[r] == 0xFF {
			continue
		}
		bus.Write8(YM_SELECT, uint8(r))
		bus.Write8(YM_DATA, regs[r])
	}
}

// Render fills out and returns how many times the dump has looped.
func (p *YMDumpPlayer) Render(out []int16, vis []uint32) (int, error) {
	if len(p.dump.Frames) == 0 {
		clear(out)
		return p.loopCount, nil
	}
	for i := range out {
		if p.toTick <= 0 {
			p.writeFrame(&p.dump.Frames[p.frame])
			p.frame++
			if p.frame >= len(p.dump.Frames) {
				p.frame = p.dump.LoopFrame
				p.loopCount++
			}
			p.toTick += p.perTick
		}
		p.toTick--

		var w *uint32
		if i < len(vis) {
			w = &vis[i]
		}
		s, err := p.machine.ComputeNextSample(w)
		if err != nil {
			return p.loopCount, err
		}
		out[i] = s
	}
	return p.loopCount, nil
}
