// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrNoResultsSource indicates no draw-results source is configured.
	ErrNoResultsSource = errors.New("no results source configured")

	// ErrUnknownAction indicates a postback carried an action no handler owns.
	ErrUnknownAction = errors.New("unknown action")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsRateLimitExceeded reports whether err wraps ErrRateLimitExceeded.
func IsRateLimitExceeded(err error) bool { return errors.Is(err, ErrRateLimitExceeded) }

// IsInvalidInput reports whether err wraps ErrInvalidInput or is a ValidationError.
func IsInvalidInput(err error) bool {
	if errors.Is(err, ErrInvalidInput) {
		return true
	}
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ScraperError represents results-page fetch failures with context.
type ScraperError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ScraperError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("scraper error (url=%s, status=%d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("scraper error (url=%s): %v", e.URL, e.Err)
}

func (e *ScraperError) Unwrap() error {
	return e.Err
}

// NewScraperError creates a new scraper error.
func NewScraperError(url string, statusCode int, err error) *ScraperError {
	return &ScraperError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}
