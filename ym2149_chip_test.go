package stsound

import "testing"

func newTestYM() *YM2149 {
	return NewYM2149(44100, YM_CLOCK_ST)
}

func TestYM2149_ToneEdgeTogglesEveryPeriod(t *testing.T) {
	for _, period := range []uint16{1, 2, 5, 17, 0x123} {
		ym := newTestYM()
		ym.WriteRegister(0, uint8(period))
		ym.WriteRegister(1, uint8(period>>8))

		prev := uint16(0)
		for tick := 1; tick <= 4*int(period)+3; tick++ {
			edgeA := ym.Tick() & ymLaneMask
			toggled := edgeA != prev
			want := tick%int(period) == 0
			if toggled != want {
				t.Fatalf("period %d tick %d: toggled=%v, want %v", period, tick, toggled, want)
			}
			prev = edgeA
		}
	}
}

func TestYM2149_ZeroPeriodActsAsOne(t *testing.T) {
	ym := newTestYM()
	ym.WriteRegister(2, 0)
	ym.WriteRegister(3, 0)

	prev := ym.edges >> ymVoiceBits & ymLaneMask
	for tick := 0; tick < 8; tick++ {
		edgeB := ym.Tick() >> ymVoiceBits & ymLaneMask
		if edgeB == prev {
			t.Fatalf("tick %d: voice B did not toggle with period 0", tick)
		}
		prev = edgeB
	}
}

func TestYM2149_RegisterMasksRoundTrip(t *testing.T) {
	ym := newTestYM()
	for reg := 0; reg < YM_REG_COUNT; reg++ {
		ym.WritePort(0, uint8(reg))
		ym.WritePort(2, 0xFF)
		ym.WritePort(0, uint8(reg))
		if got := ym.ReadPort(0); got != ymRegMask[reg] {
			t.Errorf("register %d reads 0x%02X after writing 0xFF, want 0x%02X", reg, got, ymRegMask[reg])
		}
	}
	if got := ym.ReadPort(2); got != 0xFF {
		t.Errorf("data port read = 0x%02X, want open bus 0xFF", got)
	}
}

func TestYM2149_SelectUsesLowNibble(t *testing.T) {
	ym := newTestYM()
	ym.WritePort(0, 0x18)
	if ym.Selected() != 8 {
		t.Fatalf("Selected = %d, want 8", ym.Selected())
	}
}

func TestYM2149_FixedVolumeThroughOpenGate(t *testing.T) {
	tests := []struct {
		vol  uint8
		want int16
	}{
		{0x0F, 10922},
		{0x08, int16(ymVolumeTable[17])},
		{0x00, 0},
	}
	for _, tc := range tests {
		ym := newTestYM()
		ym.WriteRegister(7, 0x3F) // tone and noise off: gate stays open
		ym.WriteRegister(8, tc.vol)
		// The DC filter is empty on the first sample, so the raw level passes
		if got := ym.ComputeNextSample(nil); got != tc.want {
			t.Errorf("volume 0x%X: sample = %d, want %d", tc.vol, got, tc.want)
		}
	}
}

func TestYM2149_DCFilterSettlesToZero(t *testing.T) {
	ym := newTestYM()
	ym.WriteRegister(7, 0x3F)
	ym.WriteRegister(8, 0x0F)
	ym.WriteRegister(9, 0x0F)

	var s int16
	for i := 0; i < YM_DC_BUFFER_LEN+10; i++ {
		s = ym.ComputeNextSample(nil)
	}
	if s != 0 {
		t.Fatalf("constant input after %d samples = %d, want 0", YM_DC_BUFFER_LEN+10, s)
	}
}

func TestYM2149_OutputStaysInRange(t *testing.T) {
	ym := newTestYM()
	ym.WriteRegister(0, 3)
	ym.WriteRegister(2, 7)
	ym.WriteRegister(4, 11)
	ym.WriteRegister(6, 1)
	ym.WriteRegister(7, 0x00)
	ym.WriteRegister(8, 0x0F)
	ym.WriteRegister(9, 0x0F)
	ym.WriteRegister(10, 0x10)
	ym.WriteRegister(11, 0x10)
	ym.WriteRegister(13, 0x0E)

	for i := 0; i < 10000; i++ {
		s := int32(ym.ComputeNextSample(nil))
		if s > 3*10922 || s < -3*10922 {
			t.Fatalf("sample %d = %d outside the three-voice range", i, s)
		}
	}
}

func TestYM2149_EnvelopeShapes(t *testing.T) {
	tests := []struct {
		name  string
		shape uint8
		ticks int
		want  uint8
	}{
		{"saw down start", 0x08, 0, 31},
		{"saw down step", 0x08, 1, 30},
		{"saw down wraps", 0x08, 32, 31},
		{"decay holds zero", 0x00, 40, 0},
		{"decay holds after loop", 0x09, 200, 0},
		{"attack start", 0x0C, 0, 0},
		{"attack top", 0x0C, 31, 31},
		{"attack hold high", 0x0D, 100, 31},
		{"triangle down then up", 0x0A, 32, 0},
		{"triangle up top", 0x0A, 63, 31},
		{"triangle second down", 0x0A, 64, 31},
		{"triangle loops to up", 0x0A, 96, 0},
		{"inverted triangle", 0x0E, 32, 31},
		{"attack then silence", 0x0F, 32, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ym := newTestYM()
			ym.WriteRegister(11, 1)
			ym.WriteRegister(12, 0)
			ym.WriteRegister(13, tc.shape)
			for i := 0; i < tc.ticks; i++ {
				ym.Tick()
			}
			if got := ym.EnvelopeLevel(); got != tc.want {
				t.Fatalf("shape 0x%X after %d ticks = %d, want %d", tc.shape, tc.ticks, got, tc.want)
			}
		})
	}
}

func TestYM2149_EnvelopeRestartsOnShapeWrite(t *testing.T) {
	ym := newTestYM()
	ym.WriteRegister(11, 1)
	ym.WriteRegister(13, 0x08)
	for i := 0; i < 10; i++ {
		ym.Tick()
	}
	ym.WriteRegister(13, 0x08)
	if got := ym.EnvelopeLevel(); got != 31 {
		t.Fatalf("level after rewrite = %d, want 31", got)
	}
}

func TestYM2149_EnvelopePeriodScalesStep(t *testing.T) {
	ym := newTestYM()
	ym.WriteRegister(11, 4)
	ym.WriteRegister(13, 0x08)
	for i := 0; i < 3; i++ {
		ym.Tick()
	}
	if got := ym.EnvelopeLevel(); got != 31 {
		t.Fatalf("level after 3 of 4 ticks = %d, want 31", got)
	}
	ym.Tick()
	if got := ym.EnvelopeLevel(); got != 30 {
		t.Fatalf("level after 4 ticks = %d, want 30", got)
	}
}

func TestYM2149_NoiseMaskIsAllOrNothing(t *testing.T) {
	ym := newTestYM()
	ym.WriteRegister(6, 1)

	seen := map[uint16]bool{}
	for i := 0; i < 2000; i++ {
		ym.Tick()
		mask := ym.NoiseMask()
		if mask != 0 && mask != ymAllLanes {
			t.Fatalf("tick %d: noise mask 0x%04X is neither empty nor full", i, mask)
		}
		seen[mask] = true
	}
	if !seen[0] || !seen[ymAllLanes] {
		t.Fatalf("noise never changed state: %v", seen)
	}
}

func TestYM2149_NoiseRunsAtHalfRate(t *testing.T) {
	ym := newTestYM()
	ym.WriteRegister(6, 1)
	lfsr := ym.noiseLFSR
	ym.Tick()
	if ym.noiseLFSR == lfsr {
		t.Fatal("LFSR did not step on the first tick")
	}
	lfsr = ym.noiseLFSR
	ym.Tick()
	if ym.noiseLFSR != lfsr {
		t.Fatal("LFSR stepped on a half-rate tick")
	}
}

func TestYM2149_ToneGateSilencesLowEdge(t *testing.T) {
	ym := NewYM2149(250000, YM_CLOCK_ST) // one chip tick per sample
	ym.WriteRegister(0, 2)
	ym.WriteRegister(7, 0x3E) // tone A on, noise off
	ym.WriteRegister(8, 0x0F)

	var debug uint32
	levels := make([]int8, 8)
	for i := range levels {
		ym.ComputeNextSample(&debug)
		levels[i] = int8(debug)
	}
	// Period 2: the edge is low for ticks 1 and high for ticks 2-3, and so on
	want := []int8{0, 124, 124, 0, 0, 124, 124, 0}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("voice A levels = %v, want %v", levels, want)
		}
	}
}

func TestYM2149_ResetZeroesState(t *testing.T) {
	ym := newTestYM()
	ym.WriteRegister(8, 0x0F)
	ym.WriteRegister(13, 0x0A)
	ym.ComputeNextSample(nil)

	ym.Reset(48000, YM_CLOCK_ST)
	for reg := uint8(0); reg < YM_REG_COUNT; reg++ {
		if got := ym.ReadRegister(reg); got != 0 {
			t.Errorf("register %d = 0x%02X after reset", reg, got)
		}
	}
	if ym.innerCycle != 0 || ym.hostRate != 48000 {
		t.Errorf("resampler not reset: inner=%d rate=%d", ym.innerCycle, ym.hostRate)
	}
}

// The chip runs at clock/8 whatever the host rate, including host rates above
// the chip tick rate where some samples advance no ticks at all.
func TestYM2149_TickRateIndependentOfHostRate(t *testing.T) {
	tests := []struct {
		hostRate  uint32
		chipClock uint32
	}{
		{44100, YM_CLOCK_ST},
		{192000, YM_CLOCK_ST},
		{384000, YM_CLOCK_ST},
		{192000, 1000000},
	}
	const period = 10
	for _, tc := range tests {
		ym := NewYM2149(tc.hostRate, tc.chipClock)
		ym.WriteRegister(0, period)

		toggles := 0
		prev := ym.edges & ymLaneMask
		for i := uint32(0); i < tc.hostRate; i++ {
			ym.ComputeNextSample(nil)
			if edge := ym.edges & ymLaneMask; edge != prev {
				toggles++
				prev = edge
			}
		}
		if want := int(tc.chipClock / 8 / period); toggles != want {
			t.Errorf("host %d Hz, clock %d Hz: %d edges in one second, want %d", tc.hostRate, tc.chipClock, toggles, want)
		}
	}
}
