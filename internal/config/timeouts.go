// Package config provides centralized timeout constants for the application.
//
// These values are tuned for:
//   - LINE Messaging API constraints (reply token expiration, webhook timeouts)
//   - Results-page response times (scraping delays, retries)
//   - SQLite performance characteristics (WAL mode, busy timeout)
//
// # LINE API Constraints
//
// LINE expects a quick 200 OK for every webhook and the reply token should be
// used as soon as possible. Generators finish in microseconds, so the webhook
// budget is dominated by SQLite and the reply call itself.
package config

import "time"

// Webhook timeouts
const (
	// WebhookProcessing is the timeout for processing a single webhook event.
	// Covers message handling, database lookups and the reply call.
	WebhookProcessing = 25 * time.Second

	// WebhookHTTPRead is the HTTP server read timeout for webhook requests.
	// Should be short since LINE sends small JSON payloads.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout.
	WebhookHTTPWrite = 30 * time.Second

	// WebhookHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second
)

// Scraper timeouts
const (
	// ScraperRequest is the timeout for a single HTTP request to the results page.
	ScraperRequest = 30 * time.Second

	// ScraperRetryInitial is the initial delay before retrying a failed request.
	// Uses exponential backoff: 2s -> 4s -> 8s -> 16s -> 32s
	ScraperRetryInitial = 2 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	DatabaseConnMaxLifetime = time.Hour
)

// Background job intervals
const (
	// ResultsRefreshInterval is how often the results page is scraped.
	ResultsRefreshInterval = 6 * time.Hour

	// ResultsRefreshInitialDelay is the delay before the first refresh.
	ResultsRefreshInitialDelay = 30 * time.Second

	// ResultsRefreshTimeout bounds one refresh run.
	ResultsRefreshTimeout = 2 * time.Minute

	// ResultsLoadTimeout bounds loading results on start-up.
	ResultsLoadTimeout = 2 * time.Minute

	// MetricsUpdateInterval is how often gauge metrics are refreshed.
	MetricsUpdateInterval = 5 * time.Minute

	// RateLimiterCleanupInterval is how often inactive chat rate limiters are cleaned.
	RateLimiterCleanupInterval = 5 * time.Minute

	// ReadinessCheckTimeout bounds the database ping behind /readyz.
	ReadinessCheckTimeout = 3 * time.Second
)

// R2
const (
	// R2RequestTimeout bounds a single schedule object read or write.
	R2RequestTimeout = 10 * time.Second

	// R2ScheduleSuffix is appended to the snapshot key to name the refresh schedule object.
	R2ScheduleSuffix = ".schedule.json"
)

// Sessions
const (
	// SessionTTL is how long a half-finished flow waits for the next message.
	SessionTTL = 30 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
