// Package timer implements the Pomodoro session countdown. It has no
// goroutines of its own: the caller delivers one Tick per second.
package timer

import (
	"fmt"
	"time"
)

// DefaultDuration is the classic Pomodoro length.
const DefaultDuration = 25 * time.Minute

// FastDuration is the short test cycle length.
const FastDuration = 5 * time.Minute

// Timer is a one-second-granularity countdown.
type Timer struct {
	total     time.Duration
	remaining time.Duration
	running   bool

	// pending is a duration set while running; applied at the next Restart.
	pending time.Duration
}

// New creates a stopped timer of duration d.
func New(d time.Duration) *Timer {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Timer{total: d, remaining: d}
}

// Total returns the configured duration.
func (t *Timer) Total() time.Duration { return t.total }

// Remaining returns the time left.
func (t *Timer) Remaining() time.Duration { return t.remaining }

// Running reports whether the countdown is active.
func (t *Timer) Running() bool { return t.running }

// Pending returns a duration change waiting for the next Restart, if any.
func (t *Timer) Pending() (time.Duration, bool) {
	return t.pending, t.pending > 0
}

// SetDuration changes the configured duration. While stopped, remaining time
// resets to d. While running, the change is held until the next Restart.
func (t *Timer) SetDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", d)
	}
	if t.running {
		t.pending = d
		return nil
	}
	t.total = d
	t.remaining = d
	t.pending = 0
	return nil
}

// Start begins or resumes the countdown. No-op if already running. A timer
// that has run out is refilled first.
func (t *Timer) Start() {
	if t.running {
		return
	}
	if t.remaining <= 0 {
		t.remaining = t.total
	}
	t.running = true
}

// Pause stops the countdown, keeping the remaining time.
func (t *Timer) Pause() {
	t.running = false
}

// Reset stops the countdown and refills it, applying any pending duration.
func (t *Timer) Reset() {
	t.running = false
	if t.pending > 0 {
		t.total = t.pending
		t.pending = 0
	}
	t.remaining = t.total
}

// Restart is Reset followed by Start.
func (t *Timer) Restart() {
	t.Reset()
	t.Start()
}

// Tick advances the countdown by one second. It returns true exactly once,
// on the tick that reaches zero, after which the timer is stopped.
func (t *Timer) Tick() (expired bool) {
	if !t.running {
		return false
	}
	t.remaining = max(0, t.remaining-time.Second)
	if t.remaining == 0 {
		t.running = false
		return true
	}
	return false
}

// Format renders d as MM:SS.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
