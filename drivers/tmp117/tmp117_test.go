package tmp117

import (
	"errors"
	"math"
	"testing"

	"tinygo.org/x/drivers"
)

var _ drivers.I2C = (*fakeBus)(nil)

type fakeBus struct {
	regs  map[byte]uint16
	fail  error
	lastW []byte
	addr  uint16
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	f.addr = addr
	f.lastW = append([]byte(nil), w...)
	if f.fail != nil {
		return f.fail
	}
	if len(w) != 1 || len(r) != 2 {
		return errors.New("unexpected transaction")
	}
	v := f.regs[w[0]]
	r[0], r[1] = byte(v>>8), byte(v)
	return nil
}

// shortBus answers with fewer bytes than requested, Wire-style.
type shortBus struct {
	fakeBus
	n int
}

func (s *shortBus) TxN(addr uint16, w, r []byte) (int, error) {
	if err := s.Tx(addr, w, r); err != nil {
		return 0, err
	}
	return s.n, nil
}

func TestCelsiusScale(t *testing.T) {
	cases := []struct {
		raw  uint16
		want float32
	}{
		{0x0000, 0},
		{0x0C80, 25.0},     // 3200 * 0.0078125
		{0x0001, 0.0078125},
		{0xFFFF, -0.0078125},
		{0xEC00, -40.0}, // -5120
		{0x7FFF, 255.9921875},
	}
	for _, c := range cases {
		if got := Celsius(int16(c.raw)); got != c.want {
			t.Fatalf("Celsius(%#04x) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestReadTemperature(t *testing.T) {
	bus := &fakeBus{regs: map[byte]uint16{RegTemperature: 0x0C80}}
	d := New(bus)
	if got := d.ReadTemperature(); got != 25.0 {
		t.Fatalf("ReadTemperature = %v, want 25", got)
	}
	if bus.addr != Address || len(bus.lastW) != 1 || bus.lastW[0] != RegTemperature {
		t.Fatalf("unexpected transaction addr=%#x w=%v", bus.addr, bus.lastW)
	}
}

func TestReadTemperatureNaNOnBusError(t *testing.T) {
	bus := &fakeBus{fail: errors.New("nack")}
	d := New(bus)
	if got := d.ReadTemperature(); !math.IsNaN(float64(got)) {
		t.Fatalf("ReadTemperature on nack = %v, want NaN", got)
	}
	if _, err := d.Read(); err == nil || err.Error() != "nack" {
		t.Fatalf("Read err = %v", err)
	}

	// The next call is an independent transaction.
	bus.fail = nil
	bus.regs = map[byte]uint16{RegTemperature: 0x0080}
	if got := d.ReadTemperature(); got != 1.0 {
		t.Fatalf("recovered read = %v, want 1.0", got)
	}
}

func TestShortRead(t *testing.T) {
	bus := &shortBus{fakeBus: fakeBus{regs: map[byte]uint16{RegTemperature: 0x0C80}}, n: 1}
	d := New(bus)
	if _, err := d.Read(); !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
	if got := d.ReadTemperature(); !math.IsNaN(float64(got)) {
		t.Fatalf("short read = %v, want NaN", got)
	}
	bus.n = 2
	if got := d.ReadTemperature(); got != 25.0 {
		t.Fatalf("full read = %v, want 25", got)
	}
}

func TestConfigureAddressAndDeviceID(t *testing.T) {
	bus := &fakeBus{regs: map[byte]uint16{RegDeviceID: 0x0117}}
	d := New(bus)
	d.Configure(Config{Address: 0x49})
	id, err := d.DeviceID()
	if err != nil || id != 0x0117 {
		t.Fatalf("DeviceID = %#x, %v", id, err)
	}
	if bus.addr != 0x49 {
		t.Fatalf("addr = %#x, want 0x49", bus.addr)
	}
}

func TestIdentify(t *testing.T) {
	cases := []struct {
		name string
		bus  *fakeBus
		want error
	}{
		{"rev 0", &fakeBus{regs: map[byte]uint16{RegDeviceID: 0x0117}}, nil},
		{"rev 1", &fakeBus{regs: map[byte]uint16{RegDeviceID: 0x1117}}, nil},
		{"other part", &fakeBus{regs: map[byte]uint16{RegDeviceID: 0x0190}}, ErrPartID},
	}
	for _, tc := range cases {
		d := New(tc.bus)
		if err := d.Identify(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: Identify = %v, want %v", tc.name, err, tc.want)
		}
	}

	nack := errors.New("nack")
	d := New(&fakeBus{fail: nack})
	if err := d.Identify(); !errors.Is(err, nack) {
		t.Fatalf("Identify on failing bus = %v", err)
	}
}
