// Package collector reads a NanoSense node over BLE and stores the decoded
// readings to CSV, sqlite and MQTT.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Collector polls a Source and fans each record out to its sinks.
type Collector struct {
	src      Source
	sinks    []Sink
	interval time.Duration
	duration time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func New(src Source, interval time.Duration, logger *slog.Logger, sinks ...Sink) *Collector {
	if interval <= 0 {
		interval = time.Second
	}
	return &Collector{src: src, sinks: sinks, interval: interval, logger: logger, now: time.Now}
}

// SetDuration bounds the next Run to d. Zero removes the bound.
func (c *Collector) SetDuration(d time.Duration) { c.duration = d }

// Run reads immediately and then every interval. A read error ends the
// session and is returned; sink errors are logged and the session goes on.
// When a duration is set and elapses, Run returns a nil error. It returns
// the number of records collected.
func (c *Collector) Run(parent context.Context) (int, error) {
	ctx := parent
	if c.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, c.duration)
		defer cancel()
	}
	tick := time.NewTicker(c.interval)
	defer tick.Stop()

	n := 0
	for {
		if err := c.collect(ctx); err != nil {
			if ctx.Err() != nil {
				return n, parent.Err()
			}
			return n, fmt.Errorf("session ended after %d records: %w", n, err)
		}
		n++

		select {
		case <-ctx.Done():
			return n, parent.Err()
		case <-tick.C:
		}
	}
}

func (c *Collector) collect(ctx context.Context) error {
	rec := Record{}
	if err := c.src.Read(ctx, &rec.Reading); err != nil {
		return err
	}
	rec.Time = c.now()

	c.logger.Info("reading",
		"temp_c", rec.TemperatureC,
		"humidity_pct", rec.HumidityPct,
		"ext_temp_c", rec.ExternalC,
		"accel_x", rec.Accel.X,
		"accel_y", rec.Accel.Y,
		"accel_z", rec.Accel.Z,
	)
	for _, s := range c.sinks {
		if err := s.Write(rec); err != nil {
			c.logger.Warn("sink write failed", "sink", fmt.Sprintf("%T", s), "error", err)
		}
	}
	return nil
}

// Close closes the source and every sink.
func (c *Collector) Close() error {
	var first error
	for _, s := range c.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	if err := c.src.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
