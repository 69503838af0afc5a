// Package timeutil provides the clock and debounce primitives used by the
// canvas engine's deferred work: debounced history capture, viewport resize
// handling, and anything else that collapses bursts of events into one
// effective action.
//
// All timer-driven code in the engine goes through the [Clock] interface so
// tests can drive time deterministically with [FakeClock].
package timeutil

import (
	"sort"
	"sync"
	"time"
)

// Clock abstracts time.Now and timer scheduling.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc schedules fn to run after d and returns a handle that can
	// stop it. fn runs on its own goroutine for the system clock and on the
	// caller of Advance for the fake clock.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancellable scheduled function.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// function from running.
	Stop() bool
}

// =============================================================================
// System clock
// =============================================================================

// SystemClock is the production Clock backed by the time package.
type SystemClock struct{}

// NewSystemClock returns a Clock backed by real time.
func NewSystemClock() Clock { return SystemClock{} }

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// AfterFunc wraps time.AfterFunc.
func (SystemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// =============================================================================
// Fake clock (for tests)
// =============================================================================

// FakeClock is a manually advanced Clock for deterministic tests.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

// NewFakeClock creates a fake clock starting at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules fn to fire when the clock is advanced past d.
func (c *FakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing due timers in order.
// Timers scheduled by fired functions also fire if they fall due within
// the advanced window.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		t := c.popDue(target)
		if t == nil {
			break
		}
		c.now = t.at
		c.mu.Unlock()
		t.fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// popDue removes and returns the earliest unfired timer due at or before
// target, or nil. Caller holds the mutex.
func (c *FakeClock) popDue(target time.Time) *fakeTimer {
	sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at.Before(c.timers[j].at) })
	for i, t := range c.timers {
		if t.stopped {
			continue
		}
		if t.at.After(target) {
			return nil
		}
		c.timers = append(c.timers[:i], c.timers[i+1:]...)
		return t
	}
	return nil
}

type fakeTimer struct {
	clock   *FakeClock
	at      time.Time
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	for i, other := range t.clock.timers {
		if other == t {
			t.clock.timers = append(t.clock.timers[:i], t.clock.timers[i+1:]...)
			return true
		}
	}
	return false
}
