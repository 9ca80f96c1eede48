// Package hs300x provides a driver for the Renesas HS300x temperature/humidity
// sensor family. It exposes a two-phase measurement API:
//
//	d.Trigger()              // start a measurement (fast)
//	err := d.Collect(&s)     // fetch when ready; returns ErrNotReady while stale
//
// For convenience, d.Read() performs trigger + bounded polling until ready.
//
// The device has no registers on the measurement path: a zero-length write
// starts a conversion and a 4-byte read returns status, humidity and
// temperature. Only 14-bit resolution (the power-on default) is used.
package hs300x

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// I2C address.
const Address = 0x44

const (
	statusMask  = 0xC0
	statusStale = 0x40
	fullScale   = 16383 // 2^14 - 1
)

// Errors returned by the driver.
var (
	ErrTimeout  = errors.New("hs300x: timeout")
	ErrNotReady = errors.New("hs300x: not ready")
	ErrProtocol = errors.New("hs300x: protocol error")
)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x44 if zero.
	Address uint16
	// PollInterval is used by Read() between Collect() attempts. Default 5 ms.
	PollInterval time.Duration
	// CollectTimeout bounds the total wait in Read(). Default 100 ms.
	CollectTimeout time.Duration
	// TriggerHint is the nominal 14-bit conversion time. Default 35 ms.
	TriggerHint time.Duration
}

// Device wraps an I2C connection to an HS300x device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	cfg      Config
	buf      [4]byte
	humidity uint16 // last raw humidity sample
	temp     uint16 // last raw temperature sample
}

// New creates a new HS300x connection. The I2C bus must already be configured.
// This function only creates the Device object; it does not touch the device.
func New(bus drivers.I2C) Device {
	return Device{
		bus:     bus,
		Address: Address,
	}
}

// Configure applies optional config and checks that the device answers by
// running one full measurement.
func (d *Device) Configure(cfgs ...Config) error {
	c := Config{}
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	if c.Address != 0 {
		d.Address = c.Address
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Millisecond
	}
	if c.CollectTimeout <= 0 {
		c.CollectTimeout = 100 * time.Millisecond
	}
	if c.TriggerHint <= 0 {
		c.TriggerHint = 35 * time.Millisecond
	}
	c.Address = d.Address
	d.cfg = c

	return d.Read()
}

// Trigger starts a measurement. It is a zero-length write with no blocking.
func (d *Device) Trigger() error {
	return d.bus.Tx(d.Address, nil, nil)
}

// TriggerHint returns the nominal conversion time to wait before attempting Collect.
func (d *Device) TriggerHint() time.Duration {
	if d.cfg.TriggerHint > 0 {
		return d.cfg.TriggerHint
	}
	return 35 * time.Millisecond
}

// Collect reads one measurement into the device cache and the provided
// sample. If the device still reports stale data, ErrNotReady is returned.
// Any bus error is returned as-is.
func (d *Device) Collect(out *Sample) error {
	data := d.buf[:]
	if err := d.bus.Tx(d.Address, nil, data); err != nil {
		return err
	}
	switch data[0] & statusMask {
	case 0:
	case statusStale:
		return ErrNotReady
	default:
		return ErrProtocol
	}
	hraw := uint16(data[0]&0x3F)<<8 | uint16(data[1])
	traw := (uint16(data[2])<<8 | uint16(data[3])) >> 2

	d.humidity = hraw
	d.temp = traw

	if out != nil {
		out.RawHumidity = hraw
		out.RawTemp = traw
	}
	return nil
}

// Read performs a full measurement cycle: Trigger, wait for the conversion
// hint, then bounded polling until Collect succeeds or the timeout elapses.
// It blocks for at most TriggerHint + CollectTimeout + PollInterval, 140 ms
// with the defaults.
func (d *Device) Read() error {
	if d.cfg.PollInterval == 0 {
		return d.Configure()
	}
	if err := d.Trigger(); err != nil {
		return err
	}
	time.Sleep(d.TriggerHint())
	deadline := time.Now().Add(d.cfg.CollectTimeout)
	for {
		err := d.Collect(nil)
		switch err {
		case nil:
			return nil
		case ErrNotReady:
			if time.Now().After(deadline) {
				return ErrTimeout
			}
			time.Sleep(d.cfg.PollInterval)
		default:
			return err
		}
	}
}

// Sample holds raw 14-bit readings.
type Sample struct {
	RawHumidity uint16
	RawTemp     uint16
}

// Celsius converts the raw temperature: raw/(2^14-1)*165 - 40.
func (s Sample) Celsius() float32 {
	return float32(s.RawTemp)*165/fullScale - 40
}

// RelHumidity converts the raw humidity: raw/(2^14-1)*100.
func (s Sample) RelHumidity() float32 {
	return float32(s.RawHumidity) * 100 / fullScale
}

// Celsius returns °C from the last cached sample.
func (d *Device) Celsius() float32 {
	return Sample{RawTemp: d.temp}.Celsius()
}

// RelHumidity returns %RH from the last cached sample.
func (d *Device) RelHumidity() float32 {
	return Sample{RawHumidity: d.humidity}.RelHumidity()
}

// ReadTemperatureHumidity runs a measurement and returns both values.
func (d *Device) ReadTemperatureHumidity() (tempC, rh float32, err error) {
	if err := d.Read(); err != nil {
		return 0, 0, err
	}
	return d.Celsius(), d.RelHumidity(), nil
}
