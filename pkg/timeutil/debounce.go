package timeutil

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of triggers into a single callback invocation
// after a quiet period. Semantics are cancel-and-reschedule: every Trigger
// cancels any pending invocation and starts the quiet period over, so the
// callback runs once, delay after the last trigger.
//
// A Debouncer is safe for concurrent use. The callback runs on the timer's
// goroutine (or on the caller of FakeClock.Advance in tests).
type Debouncer struct {
	mu      sync.Mutex
	clock   Clock
	delay   time.Duration
	timer   Timer
	pending func()
}

// NewDebouncer creates a debouncer with the given quiet period.
// A nil clock defaults to the system clock.
func NewDebouncer(clock Clock, delay time.Duration) *Debouncer {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &Debouncer{clock: clock, delay: delay}
}

// Trigger schedules fn to run after the quiet period, replacing any
// previously scheduled callback.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = fn
	d.timer = d.clock.AfterFunc(d.delay, d.fire)
}

// Flush runs the pending callback immediately, if any, and cancels the timer.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.pending
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = nil
	d.pending = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Cancel drops the pending callback without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = nil
	d.pending = nil
}

// Pending reports whether a callback is waiting for the quiet period to end.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}
