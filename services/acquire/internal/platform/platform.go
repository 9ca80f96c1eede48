// Package platform builds the sensor set for the board the binary is
// compiled for. Each build provides Open; the adapters here are shared.
package platform

import (
	"errors"

	"tinygo.org/x/drivers"

	"nanosense-go/drivers/hs300x"
	"nanosense-go/drivers/tmp117"
)

var errNoBus = errors.New("platform: no i2c bus on this build")

// Ambient, Accelerometer and External mirror the acquire interfaces.
type Ambient interface {
	Configure() error
	ReadAmbient() (tempC, rh float32, err error)
}

type Accelerometer interface {
	Configure() error
	ReadAcceleration() (x, y, z float32, err error)
}

type External interface {
	ReadTemperature() float32
}

// Board is what a platform provides to the loop. Nil fields are absent.
type Board struct {
	Ambient  Ambient
	Accel    Accelerometer
	External External

	// ScanBus is the bus swept at boot, normally the external sensor bus.
	ScanBus  drivers.I2C
	ScanName string
}

// Config carries the bus parameters from the node configuration.
type Config struct {
	BusHz        uint32
	AmbientAddr  uint16 // onboard HS300x
	ExternalAddr uint16
	BMEAddr      uint16 // BME280 ambient on linux hosts
}

// ---- HS300x ----

type hs300xAmbient struct {
	dev  hs300x.Device
	addr uint16
}

func newHS300x(bus drivers.I2C, addr uint16) *hs300xAmbient {
	return &hs300xAmbient{dev: hs300x.New(bus), addr: addr}
}

func (a *hs300xAmbient) Configure() error {
	return a.dev.Configure(hs300x.Config{Address: a.addr})
}

func (a *hs300xAmbient) ReadAmbient() (float32, float32, error) {
	return a.dev.ReadTemperatureHumidity()
}

// ---- TMP117 ----

func newTMP117(bus drivers.I2C, addr uint16) *tmp117.Device {
	d := tmp117.New(bus)
	d.Configure(tmp117.Config{Address: addr})
	return &d
}

// ---- missing bus ----

// failingBus stands in for a bus that could not be opened; every
// transaction returns the open error.
type failingBus struct{ err error }

func (b failingBus) Tx(uint16, []byte, []byte) error { return b.err }
