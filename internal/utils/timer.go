package utils

import "time"

// Timer measures wall-clock latency of one call. The zero value is not
// started; use NewTimer.
type Timer struct {
	start   time.Time
	elapsed time.Duration
	stopped bool
}

// NewTimer returns a running Timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop freezes the timer and returns the elapsed time. Later calls return
// the same value.
func (t *Timer) Stop() time.Duration {
	if !t.stopped {
		t.elapsed = time.Since(t.start)
		t.stopped = true
	}
	return t.elapsed
}

// Elapsed returns the frozen duration after Stop, or the running time before.
func (t *Timer) Elapsed() time.Duration {
	if t.stopped {
		return t.elapsed
	}
	return time.Since(t.start)
}
