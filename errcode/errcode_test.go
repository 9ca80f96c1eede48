package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", ShortRead, ShortRead},
		{"wrapped E", &E{C: TransportInit, Op: "ble.enable"}, TransportInit},
		{"fmt wrapped code", fmt.Errorf("tmp117: %w", ReadFailed), ReadFailed},
		{"unknown", errors.New("boom"), Error},
	}
	for _, c := range cases {
		if got := Of(c.err); got != c.want {
			t.Fatalf("%s: Of = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestEErrorString(t *testing.T) {
	e := &E{C: SensorInit, Op: "hs300x", Err: errors.New("nack")}
	if got, want := e.Error(), "hs300x: sensor_init_failed: nack"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(e, e.Err) {
		t.Fatal("E must unwrap to its cause")
	}
}

func TestFatal(t *testing.T) {
	if !Fatal(SensorInit) || !Fatal(TransportInit) {
		t.Fatal("init failures must be fatal")
	}
	if Fatal(ReadFailed) || Fatal(NoDevices) {
		t.Fatal("transient codes must not be fatal")
	}
}
