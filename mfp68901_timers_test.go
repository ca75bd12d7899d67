package stsound

import "testing"

// At this rate prescaler 200 (control 7) counts exactly once per sample.
const mfpOneCountRate = MFP_CLOCK / 200

func armTimerA(m *MFP68901, control, data uint8) {
	m.Write8(MFP_TADR, data)
	m.Write8(MFP_IERA, m.Read8(MFP_IERA)|0x20)
	m.Write8(MFP_IMRA, m.Read8(MFP_IMRA)|0x20)
	m.Write8(MFP_TACR, control)
}

func tickUntil(m *MFP68901, id TimerID, n int) []int {
	var fired []int
	for i := 1; i <= n; i++ {
		if m.Tick(id) {
			fired = append(fired, i)
		}
	}
	return fired
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMFP_DelayModeFiresEveryNCounts(t *testing.T) {
	m := NewMFP68901(mfpOneCountRate)
	armTimerA(m, 7, 5)

	got := tickUntil(m, TimerA, 20)
	if want := []int{5, 10, 15, 20}; !equalInts(got, want) {
		t.Fatalf("fired on %v, want %v", got, want)
	}
}

func TestMFP_FireTimingFollowsPrescalerAndRate(t *testing.T) {
	tests := []struct {
		control  uint8
		data     uint8
		hostRate uint32
		samples  int
	}{
		{1, 100, 44100, 2000},
		{4, 12, 48000, 3000},
		{7, 1, 44100, 500},
		{5, 0, 22050, 4000}, // data 0 counts 256
	}
	for _, tc := range tests {
		m := NewMFP68901(tc.hostRate)
		armTimerA(m, tc.control, tc.data)

		period := uint64(mfpPrescaler[tc.control]) * uint64(tc.hostRate)
		counts := uint64(tc.data)
		if counts == 0 {
			counts = 256
		}
		fires := 0
		for i := 1; i <= tc.samples; i++ {
			got := m.Tick(TimerA)
			// A fire happens on the sample where the total count crosses a multiple of data
			before := uint64(i-1) * MFP_CLOCK / period / counts
			after := uint64(i) * MFP_CLOCK / period / counts
			if want := after > before; got != want {
				t.Fatalf("control %d data %d rate %d: sample %d fired=%v, want %v",
					tc.control, tc.data, tc.hostRate, i, got, want)
			}
			if got {
				fires++
			}
		}
		if fires == 0 {
			t.Errorf("control %d data %d: never fired in %d samples", tc.control, tc.data, tc.samples)
		}
	}
}

func TestMFP_MaskSuppressesReportButSetsPending(t *testing.T) {
	m := NewMFP68901(mfpOneCountRate)
	m.Write8(MFP_TADR, 2)
	m.Write8(MFP_IERA, 0x20)
	m.Write8(MFP_TACR, 7)

	if got := tickUntil(m, TimerA, 10); len(got) != 0 {
		t.Fatalf("masked timer reported fires %v", got)
	}
	if m.Read8(MFP_IPRA)&0x20 == 0 {
		t.Fatal("pending bit not set")
	}
	m.Write8(MFP_IPRA, ^uint8(0x20))
	if m.Read8(MFP_IPRA)&0x20 != 0 {
		t.Fatal("writing zero did not clear the pending bit")
	}
}

func TestMFP_ReenableWhileEnabledDoesNotRestart(t *testing.T) {
	m := NewMFP68901(mfpOneCountRate)
	armTimerA(m, 7, 5)
	tickUntil(m, TimerA, 3)

	m.Write8(MFP_IERA, 0x20)
	if got := m.Read8(MFP_TADR); got != 2 {
		t.Fatalf("count after re-enable = %d, want 2", got)
	}
	if got := tickUntil(m, TimerA, 2); !equalInts(got, []int{2}) {
		t.Fatalf("fired on %v after re-enable, want [2]", got)
	}
}

func TestMFP_DisableEnableRestartsFromReload(t *testing.T) {
	m := NewMFP68901(mfpOneCountRate)
	armTimerA(m, 7, 5)
	tickUntil(m, TimerA, 3)

	m.Write8(MFP_IERA, 0)
	if m.Tick(TimerA) {
		t.Fatal("disabled timer fired")
	}
	m.Write8(MFP_IERA, 0x20)
	if got := m.Read8(MFP_TADR); got != 5 {
		t.Fatalf("count after enable = %d, want reload 5", got)
	}
	if got := tickUntil(m, TimerA, 10); !equalInts(got, []int{5, 10}) {
		t.Fatalf("fired on %v, want [5 10]", got)
	}
}

func TestMFP_DataWriteWhileRunningOnlySetsReload(t *testing.T) {
	m := NewMFP68901(mfpOneCountRate)
	armTimerA(m, 7, 5)
	tickUntil(m, TimerA, 2)

	m.Write8(MFP_TADR, 9)
	if got := m.Read8(MFP_TADR); got != 3 {
		t.Fatalf("live count = %d, want 3", got)
	}
	if got := tickUntil(m, TimerA, 12); !equalInts(got, []int{3, 12}) {
		t.Fatalf("fired on %v, want [3 12]", got)
	}
}

func TestMFP_DataWriteWhileStoppedLoadsCounter(t *testing.T) {
	m := NewMFP68901(mfpOneCountRate)
	m.Write8(MFP_TADR, 42)
	if got := m.Read8(MFP_TADR); got != 42 {
		t.Fatalf("TADR = %d, want 42", got)
	}
	if m.Tick(TimerA) {
		t.Fatal("stopped timer fired")
	}
}

func TestMFP_EventCountMode(t *testing.T) {
	m := NewMFP68901(44100)
	armTimerA(m, MFP_EVENT_MODE, 2)

	if got := tickUntil(m, TimerA, 50); len(got) != 0 {
		t.Fatalf("event timer fired without events: %v", got)
	}

	m.SignalExternalEvent(TimerA)
	if !m.ExternalEventPending(TimerA) {
		t.Fatal("event not pending after signal")
	}
	if m.Tick(TimerA) {
		t.Fatal("fired on first of two events")
	}
	if m.ExternalEventPending(TimerA) {
		t.Fatal("tick did not consume the event")
	}
	m.SignalExternalEvent(TimerA)
	if !m.Tick(TimerA) {
		t.Fatal("did not fire on second event")
	}
}

func TestMFP_GPI7CountsEveryEvent(t *testing.T) {
	m := NewMFP68901(44100)
	m.Write8(MFP_IERA, 0x80)
	m.Write8(MFP_IMRA, 0x80)

	for i := 0; i < 3; i++ {
		m.SignalExternalEvent(TimerGPI7)
		if !m.Tick(TimerGPI7) {
			t.Fatalf("event %d did not fire GPI7", i)
		}
		if m.Tick(TimerGPI7) {
			t.Fatalf("GPI7 fired without an event after %d", i)
		}
	}
}

func TestMFP_TimerCDShareControlRegister(t *testing.T) {
	m := NewMFP68901(mfpOneCountRate)
	m.Write8(MFP_TCDR, 2)
	m.Write8(MFP_TDDR, 3)
	m.Write8(MFP_IERB, 0x30)
	m.Write8(MFP_IMRB, 0x30)
	m.Write8(MFP_TCDCR, 0x77)

	if got := m.Read8(MFP_TCDCR); got != 0x77 {
		t.Fatalf("TCDCR = 0x%02X, want 0x77", got)
	}
	if got := tickUntil(m, TimerC, 6); !equalInts(got, []int{2, 4, 6}) {
		t.Errorf("timer C fired on %v", got)
	}
	if got := tickUntil(m, TimerD, 6); !equalInts(got, []int{3, 6}) {
		t.Errorf("timer D fired on %v", got)
	}
}

func TestMFP_RegisterReadback(t *testing.T) {
	m := NewMFP68901(44100)
	if got := m.Read8(MFP_VR); got != MFP_VR_RESET {
		t.Errorf("VR after reset = 0x%02X, want 0x%02X", got, MFP_VR_RESET)
	}

	writes := []struct {
		reg   uint32
		value uint8
		want  uint8
	}{
		{MFP_IERA, 0xA1, 0xA1},
		{MFP_IMRB, 0x30, 0x30},
		{MFP_VR, 0x48, 0x48},
		{MFP_TACR, 0xFF, 0x1F},
		{MFP_TBCR, 0x03, 0x03},
		{MFP_TCDCR, 0xFF, 0x77},
		{MFP_AER, 0x12, 0x12},
	}
	for _, w := range writes {
		m.Write8(w.reg, w.value)
		if got := m.Read8(w.reg); got != w.want {
			t.Errorf("register 0x%02X = 0x%02X, want 0x%02X", w.reg, got, w.want)
		}
	}
	if got := m.Read8(0x18); got != 0xFF {
		t.Errorf("even offset read = 0x%02X, want 0xFF", got)
	}
	if got := m.Read8(0x40); got != 0xFF {
		t.Errorf("out of window read = 0x%02X, want 0xFF", got)
	}
}

func TestMFP_HighHostRateKeepsTiming(t *testing.T) {
	const hostRate = 48000000
	m := NewMFP68901(hostRate)
	armTimerA(m, 7, 1)

	const samples = hostRate / 10
	fired := 0
	for i := 0; i < samples; i++ {
		if m.Tick(TimerA) {
			fired++
		}
	}
	if want := int(int64(samples) * MFP_CLOCK / (200 * hostRate)); fired != want {
		t.Fatalf("fired %d times in 0.1 s, want %d", fired, want)
	}
}

func TestMFP_TickIgnoresUnknownTimer(t *testing.T) {
	m := NewMFP68901(mfpOneCountRate)
	for _, id := range []TimerID{-1, timerCount, timerCount + 7} {
		if m.Tick(id) {
			t.Errorf("Tick(%d) = true, want false", id)
		}
	}
}
