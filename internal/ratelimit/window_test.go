package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewWindowCounter_Disabled(t *testing.T) {
	t.Parallel()

	var w *WindowCounter
	assert.Nil(t, NewWindowCounter(0, time.Hour))
	assert.Nil(t, NewWindowCounter(5, 0))
	assert.True(t, w.Allow())
	assert.Equal(t, -1, w.Remaining())
	assert.True(t, w.Idle())
}

func TestWindowCounter_Allow(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	w := newWindowWithClock(3, time.Hour, clock.Now)

	assert.True(t, w.Allow())
	assert.True(t, w.Allow())
	assert.True(t, w.Allow())
	assert.False(t, w.Allow())
	assert.Equal(t, 0, w.Remaining())
}

func TestWindowCounter_WeightsPreviousWindow(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	w := newWindowWithClock(10, time.Hour, clock.Now)

	for range 8 {
		w.Allow()
	}

	// Half way into the next window, half of the previous 8 still counts.
	clock.Advance(90 * time.Minute)
	assert.Equal(t, 6, w.Remaining())
	assert.False(t, w.Idle())
}

func TestWindowCounter_LongGapResets(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	w := newWindowWithClock(2, time.Hour, clock.Now)

	w.Allow()
	w.Allow()
	assert.False(t, w.Allow())

	clock.Advance(3 * time.Hour)
	assert.True(t, w.Idle())
	assert.Equal(t, 2, w.Remaining())
	assert.True(t, w.Allow())
}

func TestWindowCounter_CheckTake(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	w := newWindowWithClock(1, time.Hour, clock.Now)

	assert.True(t, w.check())
	w.take()
	assert.False(t, w.check())

	// take past the limit is a no-op
	w.take()
	assert.Equal(t, 0, w.Remaining())
}
