package protocol

import (
	"encoding/binary"
	"errors"
	"math"

	"nanosense-go/types"
)

// ErrLength is returned when a payload does not have the attribute's width.
var ErrLength = errors.New("protocol: bad payload length")

// DecodeCenti reads a 2-byte little-endian int16 and divides by 100.
func DecodeCenti(p []byte) (float32, error) {
	if len(p) != ScalarLen {
		return 0, ErrLength
	}
	return float32(int16(binary.LittleEndian.Uint16(p))) / 100, nil
}

// DecodeVector reads three little-endian float32 values.
func DecodeVector(p []byte) (types.Vector3, error) {
	if len(p) != AccelerationLen {
		return types.Vector3{}, ErrLength
	}
	return types.Vector3{
		X: math.Float32frombits(binary.LittleEndian.Uint32(p[0:4])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(p[4:8])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(p[8:12])),
	}, nil
}

// Reading is a decoded set of attribute values as seen by a client.
type Reading struct {
	TemperatureC float32
	HumidityPct  float32
	ExternalC    float32 // 0 also means "sensor unavailable"
	Accel        types.Vector3
}

// Decode fills r from a payload for attribute a.
func (r *Reading) Decode(a Attribute, p []byte) error {
	var err error
	switch a {
	case AttrTemperature:
		r.TemperatureC, err = DecodeCenti(p)
	case AttrHumidity:
		r.HumidityPct, err = DecodeCenti(p)
	case AttrExternalTemperature:
		r.ExternalC, err = DecodeCenti(p)
	case AttrAcceleration:
		r.Accel, err = DecodeVector(p)
	default:
		err = ErrLength
	}
	return err
}
