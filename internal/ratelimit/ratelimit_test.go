package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 7, 25, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestLimiter_Allow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		capacity float64
		refill   float64
		advance  time.Duration
		calls    int
		want     []bool
	}{
		{"burst then deny", 2, 0, 0, 3, []bool{true, true, false}},
		{"refill after one second", 1, 1, time.Second, 2, []bool{true, true}},
		{"partial refill is not enough", 1, 1, 500 * time.Millisecond, 2, []bool{true, false}},
		{"empty bucket", 0, 0, 0, 1, []bool{false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			clock := newFakeClock()
			l := newWithClock(tt.capacity, tt.refill, clock.Now)

			got := make([]bool, 0, tt.calls)
			for i := range tt.calls {
				if i == 1 {
					clock.Advance(tt.advance)
				}
				got = append(got, l.Allow())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLimiter_RefillCapsAtCapacity(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	l := newWithClock(3, 10, clock.Now)

	require.True(t, l.Allow())
	clock.Advance(time.Hour)

	assert.InDelta(t, 3, l.Available(), 1e-9)
	assert.True(t, l.IsFull())
}

func TestLimiter_Wait(t *testing.T) {
	t.Parallel()

	t.Run("returns immediately with tokens", func(t *testing.T) {
		t.Parallel()
		l := New(1, 1)
		require.NoError(t, l.Wait(context.Background()))
		assert.False(t, l.IsFull())
	})

	t.Run("waits for the next token", func(t *testing.T) {
		t.Parallel()
		l := New(1, 50)
		require.True(t, l.Allow())

		start := time.Now()
		require.NoError(t, l.Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		t.Parallel()
		l := New(0, 0.01)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
	})
}

func TestLimiter_Concurrent(t *testing.T) {
	t.Parallel()
	l := New(100, 0)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed)
}
