// Package ratelimit provides the token bucket and rolling-window limiters used
// to throttle chat traffic: one bucket per chat for incoming events, and a
// shared bucket in front of the LINE reply API.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token bucket. It is safe for concurrent use.
//
// The bucket starts full. Every accepted request takes one token and tokens
// flow back in at refillRate per second, never exceeding capacity.
type Limiter struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	refillRate float64
	lastRefill time.Time
	now        func() time.Time
}

// New creates a full bucket holding capacity tokens that refills at
// refillRate tokens per second.
//
//	// 10 replies per second with a burst of 10
//	replies := ratelimit.New(10, 10)
func New(capacity, refillRate float64) *Limiter {
	return newWithClock(capacity, refillRate, time.Now)
}

func newWithClock(capacity, refillRate float64, now func() time.Time) *Limiter {
	return &Limiter{
		tokens:     capacity,
		capacity:   capacity,
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// refill must be called with mu held.
func (l *Limiter) refill() {
	t := l.now()
	if elapsed := t.Sub(l.lastRefill).Seconds(); elapsed > 0 {
		l.tokens = min(l.capacity, l.tokens+elapsed*l.refillRate)
	}
	l.lastRefill = t
}

// Allow takes a token if one is available.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens < 1 {
		return false
	}
	l.tokens--
	return true
}

// check reports whether a token is available without taking it.
// Callers combining several limiters hold their own lock across check and take.
func (l *Limiter) check() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens >= 1
}

func (l *Limiter) take() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens >= 1 {
		l.tokens--
	}
}

// Wait blocks until a token is taken or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		l.refill()
		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}
		delay := time.Second
		if l.refillRate > 0 {
			delay = time.Duration((1 - l.tokens) / l.refillRate * float64(time.Second))
		}
		l.mu.Unlock()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Available returns the current token count.
func (l *Limiter) Available() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens
}

// IsFull reports whether the bucket has refilled completely, i.e. its owner
// has been idle long enough for the bucket to be dropped.
func (l *Limiter) IsFull() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens >= l.capacity
}
