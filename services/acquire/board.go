package acquire

import (
	"nanosense-go/services/acquire/internal/platform"
	"nanosense-go/services/config"
)

// BoardOptions returns Options populated with this build's sensors and scan
// bus, and the timing from c. The caller supplies Transport and Conn.
func BoardOptions(c config.Config) Options {
	b := platform.Open(platform.Config{
		BusHz:        c.BusHz,
		AmbientAddr:  c.AmbientAddr,
		ExternalAddr: c.ExternalAddr,
		BMEAddr:      c.BMEAddr,
	})
	o := Options{
		Sensors: Sensors{
			Ambient:  b.Ambient,
			Accel:    b.Accel,
			External: b.External,
		},
		UpdateInterval: c.UpdateInterval,
		PollInterval:   c.PollInterval,
	}
	if c.ScanOnBoot {
		o.ScanBus, o.ScanName = b.ScanBus, b.ScanName
	}
	return o
}
