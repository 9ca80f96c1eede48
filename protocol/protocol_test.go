package protocol

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"nanosense-go/types"
)

var nan32 = float32(math.NaN())

func TestCentiTruncates(t *testing.T) {
	cases := []struct {
		in   float32
		want int16
	}{
		{23.456, 2345},
		{45.678, 4567},
		{-12.345, -1234},
		{0.009, 0},
		{-0.009, 0},
		{0, 0},
		{300.5, 30050},
		{-273.15, -27315},
	}
	for _, c := range cases {
		if got := Centi(c.in); got != c.want {
			t.Fatalf("Centi(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestCentiOutOfRangeWraps(t *testing.T) {
	cases := []struct {
		in   float32
		want int16
	}{
		{400, -25536},  // 40000 wraps
		{-400, 25536},  // -40000 wraps
		{1e30, -1},     // clamped to MaxInt32 (0x7FFFFFFF) then narrowed
		{-1e30, 0},     // clamped to MinInt32 (0x80000000) then narrowed
		{nan32, 0},
		{float32(math.Inf(1)), 0},
		{float32(math.Inf(-1)), 0},
	}
	for _, c := range cases {
		if got := Centi(c.in); got != c.want {
			t.Fatalf("Centi(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestEncodeReferenceScenario(t *testing.T) {
	s := types.Sample{
		AmbientC:    23.456,
		HumidityPct: 45.678,
		External:    types.FromSentinel(nan32),
		Accel:       types.Vector3{X: 0.0, Y: -9.81, Z: 1.0},
		AccelOK:     true,
	}
	f := Encode(s)
	if f.Temperature != 2345 || f.Humidity != 4567 || f.External != 0 {
		t.Fatalf("encoded scalars = %d/%d/%d", f.Temperature, f.Humidity, f.External)
	}
	want := []byte{
		0x00, 0x00, 0x00, 0x00,
		0xC3, 0xF5, 0x1C, 0xC1,
		0x00, 0x00, 0x80, 0x3F,
	}
	if !f.HasAccel || !bytes.Equal(f.Accel[:], want) {
		t.Fatalf("accel bytes = % X, want % X", f.Accel, want)
	}
}

func TestExternalZeroAmbiguity(t *testing.T) {
	missing := Encode(types.Sample{External: types.Missing()})
	zero := Encode(types.Sample{External: types.Valid(0)})
	nanValid := Encode(types.Sample{External: types.Reading{Value: nan32, OK: true}})
	if missing.External != 0 || zero.External != 0 || nanValid.External != 0 {
		t.Fatalf("external = %d/%d/%d, want all 0", missing.External, zero.External, nanValid.External)
	}
}

func TestEncodeWithoutAccel(t *testing.T) {
	f := Encode(types.Sample{AmbientC: 20, Accel: types.Vector3{X: 1}})
	if f.HasAccel || f.Accel != [AccelerationLen]byte{} {
		t.Fatalf("accel must be empty when not available: %+v", f)
	}
}

func TestPayloadLittleEndian(t *testing.T) {
	f := Frame{Temperature: 2345, Humidity: -2, External: 0x0102}
	var buf [AccelerationLen]byte
	cases := []struct {
		a    Attribute
		want []byte
	}{
		{AttrTemperature, []byte{0x29, 0x09}},
		{AttrHumidity, []byte{0xFE, 0xFF}},
		{AttrExternalTemperature, []byte{0x02, 0x01}},
	}
	for _, c := range cases {
		if got := f.Payload(c.a, buf[:]); !bytes.Equal(got, c.want) {
			t.Fatalf("%s payload = % X, want % X", c.a, got, c.want)
		}
	}
	if got := f.Payload(AttrAcceleration, buf[:]); len(got) != AccelerationLen {
		t.Fatalf("acceleration payload len = %d", len(got))
	}
}

func TestDecodeRoundTripsClientView(t *testing.T) {
	s := types.Sample{
		AmbientC:    -5.678,
		HumidityPct: 99.99,
		External:    types.Valid(25.0),
		Accel:       types.Vector3{X: 0.5, Y: -1, Z: 0.25},
		AccelOK:     true,
	}
	f := Encode(s)
	var r Reading
	var buf [AccelerationLen]byte
	for _, a := range Attributes {
		if err := r.Decode(a, f.Payload(a, buf[:])); err != nil {
			t.Fatalf("decode %s: %v", a, err)
		}
	}
	if r.TemperatureC != -5.67 || r.ExternalC != 25 {
		t.Fatalf("decoded temps = %v / %v", r.TemperatureC, r.ExternalC)
	}
	if r.Accel != s.Accel {
		t.Fatalf("decoded accel = %+v", r.Accel)
	}
}

func TestDecodeLengthErrors(t *testing.T) {
	if _, err := DecodeCenti([]byte{1}); !errors.Is(err, ErrLength) {
		t.Fatalf("DecodeCenti short: %v", err)
	}
	if _, err := DecodeVector(make([]byte, 8)); !errors.Is(err, ErrLength) {
		t.Fatalf("DecodeVector short: %v", err)
	}
}

func TestAttributeTable(t *testing.T) {
	for _, a := range Attributes {
		got, ok := AttributeByUUID(a.UUID16())
		if !ok || got != a {
			t.Fatalf("AttributeByUUID(%#04x) = %v, %v", a.UUID16(), got, ok)
		}
	}
	if _, ok := AttributeByUUID(0x2A19); ok {
		t.Fatal("unexpected attribute for battery level UUID")
	}
	if AttrAcceleration.Len() != 12 || AttrExternalTemperature.Len() != 2 {
		t.Fatal("unexpected attribute widths")
	}
}
