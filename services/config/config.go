// Package config holds the node's build-time configuration.
//
// Values are compile-time constants. The string variables below may be
// overridden at link time, e.g.
//
//	tinygo flash -target pico-w -ldflags="-X nanosense-go/services/config.LocalName=Kennel-1" .
package config

import (
	"errors"
	"time"

	"nanosense-go/bus"
	"nanosense-go/protocol"
)

// -----------------------------------------------------------------------------
// Compile-time defaults
// -----------------------------------------------------------------------------

const (
	DefaultUpdateInterval = 1000 * time.Millisecond
	DefaultPollInterval   = 5 * time.Millisecond
	DefaultBusHz          = 100_000

	DefaultAmbientAddr  = 0x44 // HS300x
	DefaultExternalAddr = 0x48 // TMP117
	DefaultBMEAddr      = 0x76 // BME280 on linux hosts; SDO high selects 0x77
)

// Link-time overrides (strings only, as -X allows).
var (
	LocalName    = protocol.LocalName
	UpdateEvery  = "" // time.ParseDuration syntax, e.g. "500ms"
	configPrefix = "config"
)

// Config is the full node configuration.
type Config struct {
	LocalName string

	// UpdateInterval is the minimum time between samples while connected.
	UpdateInterval time.Duration
	// PollInterval paces the cooperative loop; the transport is polled once
	// per tick in every state. A tick that samples blocks for the sensor
	// reads, up to 140 ms with the HS300x defaults, so the worst-case gap
	// between two polls is PollInterval plus that.
	PollInterval time.Duration

	BusHz        uint32
	AmbientAddr  uint16
	ExternalAddr uint16
	// BMEAddr is the ambient sensor address on builds that use a BME280
	// instead of the onboard HS300x.
	BMEAddr uint16

	// ScanOnBoot runs bus discovery before sensor init.
	ScanOnBoot bool

	badOverride bool // UpdateEvery was set but did not parse
}

var (
	ErrEmptyName       = errors.New("config: empty local name")
	ErrNameTooLong     = errors.New("config: local name exceeds 29 bytes")
	ErrInterval        = errors.New("config: update interval must be positive")
	ErrPollInterval    = errors.New("config: poll interval must be positive and below the update interval")
	ErrAddressRange    = errors.New("config: i2c address outside 1..126")
	ErrAddressConflict = errors.New("config: ambient and external sensors share an address")
	ErrBMEAddress      = errors.New("config: bme280 address must be 0x76 or 0x77")
	ErrUpdateEvery     = errors.New("config: UpdateEvery is not a valid duration")
)

// Default returns the compile-time configuration with link-time overrides applied.
func Default() Config {
	c := Config{
		LocalName:      LocalName,
		UpdateInterval: DefaultUpdateInterval,
		PollInterval:   DefaultPollInterval,
		BusHz:          DefaultBusHz,
		AmbientAddr:    DefaultAmbientAddr,
		ExternalAddr:   DefaultExternalAddr,
		BMEAddr:        DefaultBMEAddr,
		ScanOnBoot:     true,
	}
	if UpdateEvery != "" {
		if d, err := time.ParseDuration(UpdateEvery); err == nil {
			c.UpdateInterval = d
		} else {
			c.badOverride = true
		}
	}
	return c
}

// Validate checks the settings the loop relies on.
func (c Config) Validate() error {
	switch {
	case c.badOverride:
		return ErrUpdateEvery
	case c.LocalName == "":
		return ErrEmptyName
	case len(c.LocalName) > 29: // 31-byte legacy advertising payload minus AD header
		return ErrNameTooLong
	case c.UpdateInterval <= 0:
		return ErrInterval
	case c.PollInterval <= 0 || c.PollInterval >= c.UpdateInterval:
		return ErrPollInterval
	case !validAddr(c.AmbientAddr) || !validAddr(c.ExternalAddr):
		return ErrAddressRange
	case c.AmbientAddr == c.ExternalAddr:
		return ErrAddressConflict
	case c.BMEAddr != 0x76 && c.BMEAddr != 0x77:
		return ErrBMEAddress
	}
	return nil
}

func validAddr(a uint16) bool { return a >= 1 && a <= 126 }

// -----------------------------------------------------------------------------
// Publication
// -----------------------------------------------------------------------------

// Topic returns the retained topic for a named config section.
func Topic(section string) bus.Topic { return bus.T(configPrefix, section) }

// Publish places the active configuration on the bus as a retained message
// at config/acquire so late subscribers (the console) can report it.
func Publish(conn *bus.Connection, c Config) {
	conn.Publish(conn.NewMessage(Topic("acquire"), c, true))
}
