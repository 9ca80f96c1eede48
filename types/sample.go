package types

import "math"

// Reading is one scalar measurement that may be missing.
// A failed read is carried as OK=false rather than as a magic value.
type Reading struct {
	Value float32
	OK    bool
}

// Valid wraps a successful measurement.
func Valid(v float32) Reading { return Reading{Value: v, OK: true} }

// Missing is a failed measurement.
func Missing() Reading { return Reading{} }

// FromSentinel treats NaN as a missing reading, the convention used by
// drivers that signal failure in-band.
func FromSentinel(v float32) Reading {
	if v != v {
		return Reading{}
	}
	return Reading{Value: v, OK: true}
}

// Float returns the value, or NaN when the reading is missing.
func (r Reading) Float() float32 {
	if !r.OK {
		return float32(math.NaN())
	}
	return r.Value
}

// Vector3 is an acceleration in g.
type Vector3 struct {
	X, Y, Z float32
}

// Sample is one tick's worth of sensor data. It is never persisted.
type Sample struct {
	AmbientC    float32 `json:"ambient_c"`    // NaN when the ambient read failed
	HumidityPct float32 `json:"humidity_pct"` // NaN when the ambient read failed
	External    Reading `json:"external"`
	Accel       Vector3 `json:"accel"`
	AccelOK     bool    `json:"accel_ok"`
}
