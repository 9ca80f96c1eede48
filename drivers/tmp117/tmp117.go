// Package tmp117 reads the TMP117 digital temperature sensor over I2C.
//
// Every read is an independent register-pointer write followed by a 2-byte
// read of the temperature result register. There is no retry and no
// caching: a failed transaction is reported to the caller and the next call
// starts from scratch.
package tmp117

import (
	"encoding/binary"
	"errors"
	"math"

	"tinygo.org/x/drivers"
)

// Address is the 7-bit address with ADD0 tied to GND.
const Address = 0x48

// Registers.
const (
	RegTemperature = 0x00
	RegDeviceID    = 0x0F
)

// Resolution is degrees Celsius per LSB of the temperature register.
const Resolution = 0.0078125

// PartID is the low 12 bits of the device ID register. The top four bits
// carry the silicon revision.
const PartID = 0x0117

// Errors returned by the driver.
var (
	ErrShortRead = errors.New("tmp117: short read")
	ErrPartID    = errors.New("tmp117: unexpected device id")
)

// CountingI2C is implemented by buses that report how many bytes a read
// actually returned instead of failing the whole transaction.
//
// machine.I2C and periph buses do not implement it: on those a short read
// surfaces as a Tx error, and Read returns that error instead of
// ErrShortRead.
type CountingI2C interface {
	TxN(addr uint16, w, r []byte) (n int, err error)
}

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x48 if zero.
	Address uint16
}

// Device wraps an I2C connection to a TMP117.
type Device struct {
	bus     drivers.I2C
	Address uint16
	ptr     [1]byte
	buf     [2]byte
}

// New creates a new TMP117 connection. The I2C bus must already be configured.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// Configure applies optional config. It does not touch the bus.
func (d *Device) Configure(cfgs ...Config) {
	if len(cfgs) > 0 && cfgs[0].Address != 0 {
		d.Address = cfgs[0].Address
	}
}

// readRegister performs the pointer write + read transaction for one 16-bit register.
func (d *Device) readRegister(reg byte) (uint16, error) {
	d.ptr[0] = reg
	d.buf = [2]byte{}
	if c, ok := d.bus.(CountingI2C); ok {
		n, err := c.TxN(d.Address, d.ptr[:], d.buf[:])
		if err != nil {
			return 0, err
		}
		if n < len(d.buf) {
			return 0, ErrShortRead
		}
	} else if err := d.bus.Tx(d.Address, d.ptr[:], d.buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(d.buf[:]), nil
}

// Read returns the temperature in °C, or the bus error that prevented it.
func (d *Device) Read() (float32, error) {
	raw, err := d.readRegister(RegTemperature)
	if err != nil {
		return 0, err
	}
	return Celsius(int16(raw)), nil
}

// ReadTemperature returns the temperature in °C, or NaN when the
// transaction failed. Callers that need the cause use Read.
func (d *Device) ReadTemperature() float32 {
	t, err := d.Read()
	if err != nil {
		return float32(math.NaN())
	}
	return t
}

// DeviceID returns the device ID register; 0x0117 on a genuine part.
func (d *Device) DeviceID() (uint16, error) {
	return d.readRegister(RegDeviceID)
}

// Identify checks that the device at Address is a TMP117.
func (d *Device) Identify() error {
	id, err := d.DeviceID()
	if err != nil {
		return err
	}
	if id&0x0FFF != PartID {
		return ErrPartID
	}
	return nil
}

// Celsius scales a raw big-endian register value.
func Celsius(raw int16) float32 {
	return float32(raw) * Resolution
}
