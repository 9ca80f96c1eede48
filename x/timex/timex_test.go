package timex

import (
	"testing"
	"time"
)

func TestElapsedAcrossWrap(t *testing.T) {
	cases := []struct {
		now, since, want uint32
	}{
		{1500, 500, 1000},
		{0, 0, 0},
		{0x000002E7, 0xFFFFFFFF, 0x2E8},
		{5, 0xFFFFFFFB, 10},
	}
	for _, c := range cases {
		if got := Elapsed(c.now, c.since); got != c.want {
			t.Fatalf("Elapsed(%#x, %#x) = %d, want %d", c.now, c.since, got, c.want)
		}
	}
}

func TestMs(t *testing.T) {
	if got := Ms(1500 * time.Millisecond); got != 1500 {
		t.Fatalf("Ms(1.5s) = %d", got)
	}
	if got := Ms(-time.Second); got != 0 {
		t.Fatalf("Ms(negative) = %d, want 0", got)
	}
	if got := Ms(100 * 24 * time.Hour); got != ^uint32(0) {
		t.Fatalf("Ms(100d) = %d, want saturation", got)
	}
}

func TestMonotonicAdvances(t *testing.T) {
	c := NewMonotonic()
	a := c.Millis()
	time.Sleep(5 * time.Millisecond)
	if b := c.Millis(); Elapsed(b, a) < 4 {
		t.Fatalf("clock did not advance: %d -> %d", a, b)
	}
}
