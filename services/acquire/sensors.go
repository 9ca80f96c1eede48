package acquire

import (
	"errors"
	"math"

	"nanosense-go/drivers/hs300x"
	"nanosense-go/drivers/tmp117"
	"nanosense-go/errcode"
	"nanosense-go/types"
)

// Ambient is the onboard temperature/humidity sensor.
type Ambient interface {
	Configure() error
	ReadAmbient() (tempC, rh float32, err error)
}

// Accelerometer is the onboard inertial sensor. Readings are in g.
type Accelerometer interface {
	Configure() error
	ReadAcceleration() (x, y, z float32, err error)
}

// External is the external temperature probe. It has no init step and
// reports a failed read as NaN.
type External interface {
	ReadTemperature() float32
}

// Sensors groups the loop's sensor collaborators. Accel and External may be
// nil when the platform does not fit them.
type Sensors struct {
	Ambient  Ambient
	Accel    Accelerometer
	External External
}

// configure initialises the sensors that need it, returning the name of the
// failed component with its error.
func (s Sensors) configure() (string, error) {
	if s.Ambient == nil {
		return "ambient", errNoAmbient
	}
	if err := s.Ambient.Configure(); err != nil {
		return "ambient", err
	}
	if s.Accel != nil {
		if err := s.Accel.Configure(); err != nil {
			return "accel", err
		}
	}
	return "", nil
}

// externalReader is implemented by probes that can report why a read failed.
type externalReader interface {
	Read() (float32, error)
}

// identifier is implemented by probes that can check their part number.
type identifier interface {
	Identify() error
}

// faults records which reads failed in a sample.
type faults struct {
	ambient, external, accel errcode.Code
}

// readCode classifies a driver read error.
func readCode(err error) errcode.Code {
	switch {
	case errors.Is(err, tmp117.ErrShortRead):
		return errcode.ShortRead
	case errors.Is(err, hs300x.ErrTimeout):
		return errcode.Timeout
	}
	return errcode.ReadFailed
}

// sample reads every sensor once. Failures degrade individual fields and
// never abort the sample.
func (s Sensors) sample() (types.Sample, faults) {
	var out types.Sample
	var f faults

	t, rh, err := s.Ambient.ReadAmbient()
	if err != nil {
		nan := float32(math.NaN())
		t, rh = nan, nan
		f.ambient = readCode(err)
	}
	out.AmbientC, out.HumidityPct = t, rh

	switch ext := s.External.(type) {
	case nil:
	case externalReader:
		if v, err := ext.Read(); err != nil {
			f.external = readCode(err)
		} else {
			out.External = types.FromSentinel(v)
		}
	default:
		out.External = types.FromSentinel(ext.ReadTemperature())
		if !out.External.OK {
			f.external = errcode.ReadFailed
		}
	}

	if s.Accel != nil {
		if x, y, z, err := s.Accel.ReadAcceleration(); err == nil {
			out.Accel = types.Vector3{X: x, Y: y, Z: z}
			out.AccelOK = true
		} else {
			f.accel = readCode(err)
		}
	}
	return out, f
}
