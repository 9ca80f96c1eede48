package i2cscan

import (
	"errors"
	"testing"
)

type fakeBus struct {
	present map[uint16]bool
	probed  []uint16
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	f.probed = append(f.probed, addr)
	if len(w) != 0 || len(r) != 0 {
		return errors.New("probe must be zero-length")
	}
	if f.present[addr] {
		return nil
	}
	return errors.New("nack")
}

func TestScanFindsPresentDevices(t *testing.T) {
	bus := &fakeBus{present: map[uint16]bool{0x44: true, 0x48: true, 0x6A: true}}
	r := Scan(bus)
	if r.Count() != 3 {
		t.Fatalf("Count = %d, want 3 (%v)", r.Count(), r.Addresses)
	}
	for _, a := range []uint16{0x44, 0x48, 0x6A} {
		if !r.Has(a) {
			t.Fatalf("missing %#x in %v", a, r.Addresses)
		}
	}
	if len(bus.probed) != 126 || bus.probed[0] != 1 || bus.probed[125] != 126 {
		t.Fatalf("probed %d addresses from %#x to %#x", len(bus.probed), bus.probed[0], bus.probed[len(bus.probed)-1])
	}
}

func TestScanEmptyBus(t *testing.T) {
	r := Scan(&fakeBus{})
	if r.Count() != 0 || r.Has(0x48) {
		t.Fatalf("expected empty result, got %v", r.Addresses)
	}
}

func TestProbeAbsentDoesNotStopScan(t *testing.T) {
	bus := &fakeBus{present: map[uint16]bool{0x7E: true}}
	if Probe(bus, 0x10) {
		t.Fatal("absent address reported present")
	}
	var seen []uint16
	r := ScanRange(bus, 0x10, 0x7E, func(a uint16) { seen = append(seen, a) })
	if r.Count() != 1 || len(seen) != 1 || seen[0] != 0x7E {
		t.Fatalf("result %v, callback %v", r.Addresses, seen)
	}
}
