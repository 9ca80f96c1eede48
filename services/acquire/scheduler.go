package acquire

import "nanosense-go/x/timex"

// ShouldUpdate reports whether at least interval ms have passed since last.
// The subtraction is unsigned so a millisecond counter that wraps past
// 2^32 keeps producing correct decisions.
func ShouldUpdate(now, last, interval uint32) bool {
	return timex.Elapsed(now, last) >= interval
}

// timer is the update timer owned by the loop.
type timer struct {
	last     uint32
	interval uint32
}

// arm makes the next check at now succeed.
func (t *timer) arm(now uint32) { t.last = now - t.interval }

// due reports whether an update is due and, if so, restarts the interval at now.
func (t *timer) due(now uint32) bool {
	if !ShouldUpdate(now, t.last, t.interval) {
		return false
	}
	t.last = now
	return true
}
