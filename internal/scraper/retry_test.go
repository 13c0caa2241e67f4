package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	t.Parallel()

	errTemp := errors.New("temporary")
	errGone := errors.New("gone")

	tests := []struct {
		name         string
		maxRetries   int
		failures     int
		permanent    bool
		wantAttempts int
		wantErr      error
	}{
		{"first try", 3, 0, false, 1, nil},
		{"succeeds on third", 5, 2, false, 3, nil},
		{"exhausts retries", 3, 10, false, 4, errTemp},
		{"no retries", 0, 10, false, 1, errTemp},
		{"permanent stops early", 5, 10, true, 1, errGone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			attempts := 0
			err := RetryWithBackoff(context.Background(), tt.maxRetries, time.Millisecond, func() error {
				attempts++
				if attempts > tt.failures {
					return nil
				}
				if tt.permanent {
					return Permanent(errGone)
				}
				return errTemp
			})

			assert.Equal(t, tt.wantAttempts, attempts)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantErr, err, "permanent errors come back unwrapped")
		})
	}
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := RetryWithBackoff(ctx, 5, time.Hour, func() error {
		attempts++
		cancel()
		return errors.New("fail")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestBackoff_Jitter(t *testing.T) {
	t.Parallel()
	for attempt := range 5 {
		base := time.Duration(float64(100*time.Millisecond) * float64(int(1)<<attempt))
		for range 20 {
			d := backoff(100*time.Millisecond, attempt)
			assert.GreaterOrEqual(t, d, base*3/4)
			assert.Less(t, d, base*5/4)
		}
	}
}

func TestPermanent_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Permanent(nil))
}

// netTimeoutError is a net.Error that timed out.
type netTimeoutError struct{}

func (netTimeoutError) Error() string   { return "i/o deadline" }
func (netTimeoutError) Timeout() bool   { return true }
func (netTimeoutError) Temporary() bool { return false }

func TestIsNetworkError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"permanent", Permanent(errors.New("connection refused")), false},
		{"wrapped permanent", fmt.Errorf("wrap: %w", Permanent(errors.New("x"))), false},
		{"net timeout", netTimeoutError{}, true},
		{"refused", errors.New("dial tcp 127.0.0.1:80: connection refused"), true},
		{"reset", errors.New("read: connection reset by peer"), true},
		{"server error", errors.New("server error"), true},
		{"rate limited", errors.New("rate limited"), true},
		{"generic", errors.New("something went wrong"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsNetworkError(tt.err))
		})
	}
}
