package platform

import (
	"errors"
	"math"
	"testing"
)

// echoBus answers the HS300x with a fixed valid frame and the TMP117
// temperature register with 25.0 °C.
type echoBus struct{}

func (echoBus) Tx(addr uint16, w, r []byte) error {
	switch {
	case addr == 0x44 && len(r) == 4:
		// humidity raw 0x1FFF (~50 %), temperature raw 0x6666 >> 2
		copy(r, []byte{0x1F, 0xFF, 0x66, 0x64})
	case addr == 0x48 && len(r) == 2:
		copy(r, []byte{0x0C, 0x80})
	}
	return nil
}

func TestHS300xAdapter(t *testing.T) {
	a := newHS300x(echoBus{}, 0x44)
	if err := a.Configure(); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	tc, rh, err := a.ReadAmbient()
	if err != nil {
		t.Fatalf("ReadAmbient: %v", err)
	}
	if rh < 49 || rh > 51 {
		t.Fatalf("rh = %v", rh)
	}
	if tc < 25 || tc > 26 {
		t.Fatalf("t = %v", tc)
	}
}

func TestTMP117Adapter(t *testing.T) {
	e := newTMP117(echoBus{}, 0x48)
	if got := e.ReadTemperature(); got != 25 {
		t.Fatalf("ReadTemperature = %v, want 25", got)
	}
}

func TestFailingBus(t *testing.T) {
	boom := errors.New("no adapter")
	a := newHS300x(failingBus{err: boom}, 0)
	if err := a.Configure(); !errors.Is(err, boom) {
		t.Fatalf("Configure = %v", err)
	}
	e := newTMP117(failingBus{err: boom}, 0)
	if v := e.ReadTemperature(); !math.IsNaN(float64(v)) {
		t.Fatalf("ReadTemperature = %v, want NaN", v)
	}
}
