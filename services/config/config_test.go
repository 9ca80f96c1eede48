// config/config_test.go
package config

import (
	"errors"
	"testing"
	"time"

	"nanosense-go/bus"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if c.UpdateInterval != time.Second || c.BusHz != 100_000 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.LocalName != "NanoSense" {
		t.Fatalf("LocalName = %q", c.LocalName)
	}
	if c.BMEAddr != 0x76 {
		t.Fatalf("BMEAddr = %#x, want 0x76", c.BMEAddr)
	}
}

func TestLinkTimeOverrides(t *testing.T) {
	oldName, oldEvery := LocalName, UpdateEvery
	t.Cleanup(func() { LocalName, UpdateEvery = oldName, oldEvery })

	LocalName = "Kennel-1"
	UpdateEvery = "250ms"
	c := Default()
	if c.LocalName != "Kennel-1" || c.UpdateInterval != 250*time.Millisecond {
		t.Fatalf("overrides not applied: %+v", c)
	}

	UpdateEvery = "soon"
	c = Default()
	if c.UpdateInterval != DefaultUpdateInterval {
		t.Fatalf("bad override should fall back, got %v", c.UpdateInterval)
	}
	if err := c.Validate(); !errors.Is(err, ErrUpdateEvery) {
		t.Fatalf("Validate with unparsable UpdateEvery = %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
		want error
	}{
		{"empty name", func(c *Config) { c.LocalName = "" }, ErrEmptyName},
		{"long name", func(c *Config) { c.LocalName = "abcdefghijklmnopqrstuvwxyz0123" }, ErrNameTooLong},
		{"zero interval", func(c *Config) { c.UpdateInterval = 0 }, ErrInterval},
		{"poll too slow", func(c *Config) { c.PollInterval = 2 * time.Second }, ErrPollInterval},
		{"zero poll", func(c *Config) { c.PollInterval = 0 }, ErrPollInterval},
		{"addr zero", func(c *Config) { c.ExternalAddr = 0 }, ErrAddressRange},
		{"addr 127", func(c *Config) { c.AmbientAddr = 127 }, ErrAddressRange},
		{"conflict", func(c *Config) { c.ExternalAddr = c.AmbientAddr }, ErrAddressConflict},
		{"bme at hs300x address", func(c *Config) { c.BMEAddr = DefaultAmbientAddr }, ErrBMEAddress},
		{"bme 0x77", func(c *Config) { c.BMEAddr = 0x77 }, nil},
	}
	for _, tc := range cases {
		c := Default()
		tc.mut(&c)
		if err := c.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: Validate = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestPublishRetained(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-config")
	Publish(conn, Default())

	// Subscribing afterwards still sees the retained config.
	sub := conn.Subscribe(bus.T(configPrefix, "#"))
	select {
	case m := <-sub.Channel():
		c, ok := m.Payload.(Config)
		if !ok {
			t.Fatalf("payload type %T", m.Payload)
		}
		if c.LocalName != LocalName {
			t.Fatalf("LocalName = %q", c.LocalName)
		}
		if m.Topic.At(1) != "acquire" {
			t.Fatalf("topic = %v", m.Topic)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("no retained config")
	}
}
