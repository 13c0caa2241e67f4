package ratelimit

import (
	"sync"
	"time"
)

// WindowCounter caps requests over a rolling window using two fixed buckets.
//
// The previous bucket is weighted by how much of it still overlaps the
// rolling window:
//
//	effective = current + previous * (window - elapsed) / window
//
// A nil *WindowCounter is a disabled counter and allows everything.
type WindowCounter struct {
	mu          sync.Mutex
	current     int
	previous    int
	windowStart time.Time
	window      time.Duration
	limit       int
	now         func() time.Time
}

// NewWindowCounter returns nil when limit <= 0.
func NewWindowCounter(limit int, window time.Duration) *WindowCounter {
	return newWindowWithClock(limit, window, time.Now)
}

func newWindowWithClock(limit int, window time.Duration, now func() time.Time) *WindowCounter {
	if limit <= 0 || window <= 0 {
		return nil
	}
	return &WindowCounter{
		windowStart: now(),
		window:      window,
		limit:       limit,
		now:         now,
	}
}

// Allow counts the request if the limit has not been reached.
func (w *WindowCounter) Allow() bool {
	if w == nil {
		return true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.rotate()
	if w.effective() >= float64(w.limit) {
		return false
	}
	w.current++
	return true
}

func (w *WindowCounter) check() bool {
	if w == nil {
		return true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.rotate()
	return w.effective() < float64(w.limit)
}

func (w *WindowCounter) take() {
	if w == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.rotate()
	if w.effective() < float64(w.limit) {
		w.current++
	}
}

// rotate must be called with mu held.
func (w *WindowCounter) rotate() {
	elapsed := w.now().Sub(w.windowStart)
	if elapsed < w.window {
		return
	}

	passed := int(elapsed / w.window)
	if passed == 1 {
		w.previous = w.current
	} else {
		w.previous = 0
	}
	w.current = 0
	w.windowStart = w.windowStart.Add(time.Duration(passed) * w.window)
}

// effective must be called with mu held.
func (w *WindowCounter) effective() float64 {
	elapsed := w.now().Sub(w.windowStart)
	overlap := float64(w.window-elapsed) / float64(w.window)
	overlap = max(0, min(1, overlap))
	return float64(w.current) + float64(w.previous)*overlap
}

// Remaining returns the approximate quota left, or -1 for a disabled counter.
func (w *WindowCounter) Remaining() int {
	if w == nil {
		return -1
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.rotate()
	left := float64(w.limit) - w.effective()
	if left < 0 {
		return 0
	}
	return int(left)
}

// Idle reports whether nothing has been counted in the rolling window.
func (w *WindowCounter) Idle() bool {
	if w == nil {
		return true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.rotate()
	return w.effective() == 0
}
