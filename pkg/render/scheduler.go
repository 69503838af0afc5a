package render

import (
	"sync"
	"time"
)

// Frame is a callback invoked once per scheduled frame with the frame time.
type Frame func(now time.Time)

// FrameScheduler is the host's frame-scheduling primitive: viewport
// transitions and connector-handle pulses request one frame at a time and
// re-request from inside the callback while the animation runs. Cooperative
// animations check their own cancellation state before each frame.
type FrameScheduler interface {
	// RequestFrame schedules fn for the next frame tick.
	RequestFrame(fn Frame)
}

// =============================================================================
// Ticker scheduler (production)
// =============================================================================

// TickerScheduler drives frames from a time.Ticker, approximating a 60 fps
// display loop for hosts without one of their own.
type TickerScheduler struct {
	mu      sync.Mutex
	pending []Frame
	ticker  *time.Ticker
	done    chan struct{}
	once    sync.Once
}

// NewTickerScheduler starts a scheduler ticking at the given interval.
// Stop must be called to release the ticker.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	s := &TickerScheduler{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go s.loop()
	return s
}

// RequestFrame schedules fn for the next tick.
func (s *TickerScheduler) RequestFrame(fn Frame) {
	s.mu.Lock()
	s.pending = append(s.pending, fn)
	s.mu.Unlock()
}

// Stop halts the frame loop. Pending frames are dropped.
func (s *TickerScheduler) Stop() {
	s.once.Do(func() {
		s.ticker.Stop()
		close(s.done)
	})
}

func (s *TickerScheduler) loop() {
	for {
		select {
		case <-s.done:
			return
		case now := <-s.ticker.C:
			s.mu.Lock()
			frames := s.pending
			s.pending = nil
			s.mu.Unlock()
			for _, fn := range frames {
				fn(now)
			}
		}
	}
}

// =============================================================================
// Manual scheduler (tests)
// =============================================================================

// ManualScheduler runs frames only when pumped, giving tests full control
// over animation timing.
type ManualScheduler struct {
	pending []Frame
}

// NewManualScheduler creates an idle manual scheduler.
func NewManualScheduler() *ManualScheduler { return &ManualScheduler{} }

// RequestFrame queues fn until the next Pump.
func (s *ManualScheduler) RequestFrame(fn Frame) {
	s.pending = append(s.pending, fn)
}

// Pump runs all queued frames with the given frame time. Frames requested
// during the pump wait for the next one, mirroring a real display loop.
func (s *ManualScheduler) Pump(now time.Time) int {
	frames := s.pending
	s.pending = nil
	for _, fn := range frames {
		fn(now)
	}
	return len(frames)
}

// PendingFrames reports how many callbacks await the next pump.
func (s *ManualScheduler) PendingFrames() int { return len(s.pending) }

var (
	_ FrameScheduler = (*TickerScheduler)(nil)
	_ FrameScheduler = (*ManualScheduler)(nil)
)
