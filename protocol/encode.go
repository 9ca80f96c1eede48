package protocol

import (
	"encoding/binary"
	"math"

	"nanosense-go/types"
)

// Frame is the encoded form of one sample, ready to be written to the four
// attributes.
type Frame struct {
	Temperature int16
	Humidity    int16
	External    int16
	Accel       [AccelerationLen]byte
	HasAccel    bool
}

// Encode converts a sample into its wire form. It is pure and deterministic.
func Encode(s types.Sample) Frame {
	f := Frame{
		Temperature: Centi(s.AmbientC),
		Humidity:    Centi(s.HumidityPct),
		External:    Centi(s.External.Float()),
		HasAccel:    s.AccelOK,
	}
	if s.AccelOK {
		f.Accel = EncodeVector(s.Accel)
	}
	return f
}

// Centi returns int16(v×100) with truncation toward zero.
//
// The product is computed in float32. NaN and ±Inf encode as 0. Values
// outside the int16 range are not representable: the product is first clamped to int32 and then wraps to int16 (two's
// complement), so 400.00 encodes as -25536.
func Centi(v float32) int16 {
	p := v * 100
	if p != p || math.IsInf(float64(p), 0) {
		return 0
	}
	var i int32
	switch {
	case p >= math.MaxInt32:
		i = math.MaxInt32
	case p <= math.MinInt32:
		i = math.MinInt32
	default:
		i = int32(p)
	}
	return int16(i)
}

// EncodeVector lays out x, y, z as little-endian IEEE-754 float32.
func EncodeVector(v types.Vector3) [AccelerationLen]byte {
	var b [AccelerationLen]byte
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:8], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:12], math.Float32bits(v.Z))
	return b
}

// PutCenti writes v little-endian into b[0:2].
func PutCenti(b []byte, v int16) {
	binary.LittleEndian.PutUint16(b, uint16(v))
}

// Payload writes the bytes for attribute a into dst and returns the used
// slice. dst must hold at least a.Len() bytes.
func (f *Frame) Payload(a Attribute, dst []byte) []byte {
	switch a {
	case AttrTemperature:
		PutCenti(dst, f.Temperature)
	case AttrHumidity:
		PutCenti(dst, f.Humidity)
	case AttrExternalTemperature:
		PutCenti(dst, f.External)
	case AttrAcceleration:
		copy(dst, f.Accel[:])
	}
	return dst[:a.Len()]
}
