//go:build linux && !(rp2040 || rp2350)

package platform

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

// Open uses the default periph I2C bus (usually /dev/i2c-1) with a BME280
// as the ambient sensor and the TMP117 on the same bus. There is no
// accelerometer on this build.
func Open(c Config) Board {
	if _, err := host.Init(); err != nil {
		return failed(fmt.Errorf("host.Init: %w", err))
	}
	bus, err := i2creg.Open("")
	if err != nil {
		return failed(fmt.Errorf("i2creg.Open: %w", err))
	}
	if c.BusHz != 0 {
		// Not every adapter supports changing the clock; keep its default.
		_ = bus.SetSpeed(physic.Frequency(c.BusHz) * physic.Hertz)
	}
	return newBoard(bus, c)
}

// newBoard wires the sensors on an opened bus.
func newBoard(bus i2c.Bus, c Config) Board {
	return Board{
		Ambient:  &bme{bus: bus, addr: c.BMEAddr},
		External: newTMP117(bus, c.ExternalAddr),
		ScanBus:  bus,
		ScanName: bus.String(),
	}
}

func failed(err error) Board {
	return Board{Ambient: &bme{err: err}, ScanName: "none"}
}

// bme adapts a periph bmxx80 device.
type bme struct {
	bus  i2c.Bus
	addr uint16
	dev  *bmxx80.Dev
	err  error
}

func (b *bme) Configure() error {
	if b.err != nil {
		return b.err
	}
	d, err := bmxx80.NewI2C(b.bus, b.addr, &bmxx80.DefaultOpts)
	if err != nil {
		return fmt.Errorf("bmxx80.NewI2C: %w", err)
	}
	b.dev = d
	return nil
}

func (b *bme) ReadAmbient() (float32, float32, error) {
	var env physic.Env
	if err := b.dev.Sense(&env); err != nil {
		return 0, 0, err
	}
	return float32(env.Temperature.Celsius()), float32(env.Humidity) / float32(physic.PercentRH), nil
}
