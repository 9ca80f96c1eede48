//go:build rp2040 || rp2350

package platform

import (
	"machine"

	"tinygo.org/x/drivers/lsm9ds1"
)

// Open configures i2c0 (onboard HS300x and LSM9DS1) and i2c1 (external
// TMP117) on the board-default pins.
func Open(c Config) Board {
	hz := c.BusHz
	if hz == 0 {
		hz = 100 * machine.KHz
	}

	onboard := machine.I2C0
	if err := onboard.Configure(machine.I2CConfig{
		Frequency: hz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		return failed(err)
	}

	external := machine.I2C1
	if err := external.Configure(machine.I2CConfig{
		Frequency: hz,
		SDA:       machine.I2C1_SDA_PIN,
		SCL:       machine.I2C1_SCL_PIN,
	}); err != nil {
		return failed(err)
	}

	return Board{
		Ambient:  newHS300x(onboard, c.AmbientAddr),
		Accel:    &imu{dev: lsm9ds1.New(onboard)},
		External: newTMP117(external, c.ExternalAddr),
		ScanBus:  external,
		ScanName: "i2c1",
	}
}

func failed(err error) Board {
	bus := failingBus{err: err}
	return Board{Ambient: newHS300x(bus, 0), ScanName: "none"}
}

// imu adapts the LSM9DS1 accelerometer, which reports micro-g.
type imu struct {
	dev *lsm9ds1.Device
}

func (m *imu) Configure() error {
	return m.dev.Configure(lsm9ds1.Configuration{})
}

func (m *imu) ReadAcceleration() (float32, float32, float32, error) {
	x, y, z, err := m.dev.ReadAcceleration()
	if err != nil {
		return 0, 0, 0, err
	}
	const ug = 1e6
	return float32(x) / ug, float32(y) / ug, float32(z) / ug, nil
}
