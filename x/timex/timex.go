// Package timex holds the millisecond clock used by the acquisition loop.
//
// The loop compares timestamps with unsigned subtraction, so every Clock
// returns a uint32 that is allowed to wrap after 2^32 ms (~49.7 days).
package timex

import "time"

// Clock is a wrapping millisecond counter.
type Clock interface {
	Millis() uint32
}

// Monotonic counts milliseconds since it was created.
type Monotonic struct {
	start time.Time
}

// NewMonotonic starts a clock at zero.
func NewMonotonic() *Monotonic { return &Monotonic{start: time.Now()} }

// Millis truncates the elapsed time to 32 bits, which is where the wrap comes from.
func (m *Monotonic) Millis() uint32 {
	return uint32(time.Since(m.start).Milliseconds())
}

// Elapsed returns now-since in milliseconds, correct across a single wrap.
func Elapsed(now, since uint32) uint32 { return now - since }

// Ms converts a duration to a uint32 millisecond count, saturating at the
// largest representable interval.
func Ms(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	ms := d.Milliseconds()
	if ms > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(ms)
}

// NowMs returns Unix milliseconds as int64, used to stamp diagnostics.
func NowMs() int64 { return time.Now().UnixMilli() }
