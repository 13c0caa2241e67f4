package scraper

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net"
	"strings"
	"time"
)

// permanentError stops RetryWithBackoff immediately (e.g. HTTP 404).
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryWithBackoff calls fn up to maxRetries+1 times.
//
// The delay before retry n (1-based) is initialDelay * 2^(n-1) with ±25% jitter:
// with initialDelay=2s that is ~2s, ~4s, ~8s, ... A permanent error is
// returned unwrapped without further attempts.
func RetryWithBackoff(ctx context.Context, maxRetries int, initialDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		if attempt == maxRetries {
			break
		}

		if err := Sleep(ctx, backoff(initialDelay, attempt)); err != nil {
			return err
		}
	}

	return lastErr
}

func backoff(initial time.Duration, attempt int) time.Duration {
	delay := time.Duration(float64(initial) * math.Pow(2, float64(attempt)))
	half := int64(delay) / 2
	if half <= 0 {
		return delay
	}
	// delay*0.75 + [0, delay*0.5)
	return delay - delay/4 + time.Duration(rand.Int64N(half))
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsNetworkError reports whether err looks transient: timeouts, refused or
// reset connections, 5xx and 429 responses. Permanent errors never are.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"eof",
		"server error",
		"rate limited",
		"timeout",
	} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
