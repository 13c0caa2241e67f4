// Package metrics defines the Prometheus metrics exported by the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared by the generator and lookup counters.
const (
	OutcomeOK        = "ok"
	OutcomeEmpty     = "empty"
	OutcomeTruncated = "truncated"
	OutcomeInvalid   = "invalid"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"

	LookupPhongThuy = "phongthuy"
	LookupChotSo    = "chotso"
	LookupKetQua    = "ketqua"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookDurationSeconds *prometheus.HistogramVec
	WebhookRequestsTotal   *prometheus.CounterVec

	// Generator metrics
	GeneratorRequestsTotal *prometheus.CounterVec
	GeneratorResults       *prometheus.HistogramVec

	// Lookup metrics (phong thủy, draw results)
	LookupRequestsTotal *prometheus.CounterVec

	// Handler metrics
	HandlerDurationSeconds *prometheus.HistogramVec

	// Scraper metrics
	ScraperRequestsTotal   *prometheus.CounterVec
	ScraperDurationSeconds *prometheus.HistogramVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
	RateLimiterUsers   prometheus.Gauge

	// Session metrics
	SessionsActive prometheus.Gauge

	// Results store metrics
	ResultsRows prometheus.Gauge

	// Background job metrics
	JobDurationSeconds *prometheus.HistogramVec
	JobRunsTotal       *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		WebhookDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xoso_webhook_duration_seconds",
				Help:    "Webhook event processing duration in seconds by event type",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"event_type"}, // event_type: message, postback, follow
		),

		WebhookRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xoso_webhook_requests_total",
				Help: "Total number of webhook events by event type and status",
			},
			[]string{"event_type", "status"}, // status: success, error, rate_limited
		),

		GeneratorRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xoso_generator_requests_total",
				Help: "Total number of generator runs by generator and outcome",
			},
			[]string{"generator", "outcome"}, // generator: cang, dao, xien; outcome: ok, empty, truncated
		),

		GeneratorResults: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xoso_generator_results",
				Help:    "Number of items produced per generator run",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
			},
			[]string{"generator"},
		),

		LookupRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xoso_lookup_requests_total",
				Help: "Total number of lookups by kind and outcome",
			},
			[]string{"kind", "outcome"}, // kind: phongthuy, chotso, ketqua; outcome: ok, invalid, not_found, error
		),

		HandlerDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xoso_handler_duration_seconds",
				Help:    "Bot module handling duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"module"},
		),

		ScraperRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xoso_scraper_requests_total",
				Help: "Total number of results-page requests by status",
			},
			[]string{"status"}, // status: success, error, not_found
		),

		ScraperDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xoso_scraper_duration_seconds",
				Help:    "Results-page request duration in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"status"},
		),

		RateLimiterDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xoso_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: user, user_daily, global
		),

		RateLimiterUsers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "xoso_rate_limiter_active_users",
				Help: "Number of chats currently tracked by the rate limiter",
			},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "xoso_sessions_active",
				Help: "Number of chats with a pending multi-step flow",
			},
		),

		ResultsRows: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "xoso_results_rows",
				Help: "Number of draw results stored",
			},
		),

		JobDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xoso_job_duration_seconds",
				Help:    "Background job duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"job"}, // job: results_refresh, results_load
		),

		JobRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xoso_job_runs_total",
				Help: "Total number of background job runs by job and status",
			},
			[]string{"job", "status"}, // status: success, error
		),
	}
}

// RecordWebhook records a webhook event
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordGenerator records one generator run and its result size
func (m *Metrics) RecordGenerator(generator, outcome string, results int) {
	m.GeneratorRequestsTotal.WithLabelValues(generator, outcome).Inc()
	m.GeneratorResults.WithLabelValues(generator).Observe(float64(results))
}

// RecordLookup records a phong thủy or draw-results lookup
func (m *Metrics) RecordLookup(kind, outcome string) {
	m.LookupRequestsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordHandler records one bot module invocation
func (m *Metrics) RecordHandler(module string, duration float64) {
	m.HandlerDurationSeconds.WithLabelValues(module).Observe(duration)
}

// RecordScraperRequest records a results-page request
func (m *Metrics) RecordScraperRequest(status string, duration float64) {
	m.ScraperRequestsTotal.WithLabelValues(status).Inc()
	m.ScraperDurationSeconds.WithLabelValues(status).Observe(duration)
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetRateLimiterUsers sets the tracked-chat gauge
func (m *Metrics) SetRateLimiterUsers(n int) {
	m.RateLimiterUsers.Set(float64(n))
}

// SetSessionsActive sets the pending-flow gauge
func (m *Metrics) SetSessionsActive(n int) {
	m.SessionsActive.Set(float64(n))
}

// SetResultsRows sets the stored draw-results gauge
func (m *Metrics) SetResultsRows(n int) {
	m.ResultsRows.Set(float64(n))
}

// RecordJob records a background job run
func (m *Metrics) RecordJob(job, status string, duration float64) {
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
	m.JobDurationSeconds.WithLabelValues(job).Observe(duration)
}
