package hs300x

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeBus)(nil)

// Scripted HS300x-like fake.
type fakeBus struct {
	mu         sync.Mutex
	addr       uint16
	readyAt    time.Time
	hraw, traw uint16
	failWith   error
	triggers   int
	stuck      bool // never leaves the stale state
}

func newFake() *fakeBus {
	// ~25.0 °C, ~50.0 %RH
	return &fakeBus{addr: Address, hraw: 8192, traw: 6454}
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if addr != f.addr {
		return errors.New("nack")
	}
	now := time.Now()
	switch {
	case len(w) == 0 && len(r) == 0:
		f.triggers++
		f.readyAt = now.Add(20 * time.Millisecond)
		if f.stuck {
			f.readyAt = now.Add(time.Hour)
		}
		return nil
	case len(w) == 0 && len(r) == 4:
		var status byte
		if now.Before(f.readyAt) {
			status = statusStale
		}
		r[0] = status | byte(f.hraw>>8)&0x3F
		r[1] = byte(f.hraw)
		t := f.traw << 2
		r[2] = byte(t >> 8)
		r[3] = byte(t)
		return nil
	}
	return errors.New("unexpected transaction")
}

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 0.01 }

func TestTwoPhase(t *testing.T) {
	bus := newFake()
	d := New(bus)

	if err := d.Trigger(); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	var s Sample
	if err := d.Collect(&s); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady right after trigger, got %v", err)
	}

	time.Sleep(d.TriggerHint())
	if err := d.Collect(&s); err != nil {
		t.Fatalf("collect after hint: %v", err)
	}
	if s.RawTemp != 6454 || s.RawHumidity != 8192 {
		t.Fatalf("raw = %d/%d", s.RawTemp, s.RawHumidity)
	}
	if !near(s.Celsius(), 25.0) {
		t.Fatalf("Celsius = %v, want ~25.0", s.Celsius())
	}
	if !near(s.RelHumidity(), 50.0) {
		t.Fatalf("RelHumidity = %v, want ~50.0", s.RelHumidity())
	}
}

func TestConfigureRunsMeasurement(t *testing.T) {
	bus := newFake()
	d := New(bus)
	if err := d.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if bus.triggers != 1 {
		t.Fatalf("triggers = %d, want 1", bus.triggers)
	}
	tc, rh, err := d.ReadTemperatureHumidity()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !near(tc, 25.0) || !near(rh, 50.0) {
		t.Fatalf("read = %v °C %v %%", tc, rh)
	}
}

func TestConfigureCustomAddressAndBusError(t *testing.T) {
	bus := newFake()
	bus.addr = 0x45
	d := New(bus)
	if err := d.Configure(); err == nil {
		t.Fatal("expected nack on default address")
	}
	if err := d.Configure(Config{Address: 0x45}); err != nil {
		t.Fatalf("configure on 0x45: %v", err)
	}

	boom := errors.New("bus fault")
	bus.failWith = boom
	if _, _, err := d.ReadTemperatureHumidity(); !errors.Is(err, boom) {
		t.Fatalf("expected bus error, got %v", err)
	}
}

func TestConversionEndpoints(t *testing.T) {
	if got := (Sample{RawTemp: 0}).Celsius(); got != -40 {
		t.Fatalf("raw 0 = %v °C, want -40", got)
	}
	if got := (Sample{RawTemp: fullScale}).Celsius(); !near(got, 125) {
		t.Fatalf("raw max = %v °C, want 125", got)
	}
	if got := (Sample{RawHumidity: fullScale}).RelHumidity(); !near(got, 100) {
		t.Fatalf("raw max = %v %%RH, want 100", got)
	}
}

func TestReadBlocksAtMostTriggerPlusTimeout(t *testing.T) {
	bus := newFake()
	d := New(bus)
	if err := d.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	bus.mu.Lock()
	bus.stuck = true
	bus.mu.Unlock()

	start := time.Now()
	err := d.Read()
	took := time.Since(start)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Read = %v, want ErrTimeout", err)
	}
	// 35 ms hint + 100 ms collect timeout + one 5 ms poll.
	if took < 135*time.Millisecond || took > 140*time.Millisecond+100*time.Millisecond {
		t.Fatalf("Read blocked for %v", took)
	}
}
