// Command i2cscan lists the devices that acknowledge on a host I2C bus.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"nanosense-go/drivers/i2cscan"
)

func main() {
	busName := flag.String("bus", "", "I2C bus name or number (default: first available)")
	hz := flag.Int64("hz", 100_000, "bus clock in Hz")
	flag.Parse()

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.Kitchen})))

	if _, err := host.Init(); err != nil {
		slog.Error("host.Init", "err", err)
		os.Exit(1)
	}
	bus, err := i2creg.Open(*busName)
	if err != nil {
		slog.Error("i2creg.Open", "bus", *busName, "err", err)
		os.Exit(1)
	}
	defer bus.Close()

	if err := bus.SetSpeed(physic.Frequency(*hz) * physic.Hertz); err != nil {
		slog.Warn("set speed", "hz", *hz, "err", err)
	}

	slog.Info("scanning", "bus", bus.String(), "first", i2cscan.FirstAddress, "last", i2cscan.LastAddress)
	res := i2cscan.ScanRange(bus, i2cscan.FirstAddress, i2cscan.LastAddress, func(addr uint16) {
		fmt.Printf("0x%02X\n", addr)
	})
	if res.Count() == 0 {
		slog.Warn("no devices found")
		return
	}
	slog.Info("scan complete", "devices", res.Count())
}
