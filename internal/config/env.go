package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Core (Required in server mode)
	EnvLineChannelAccessToken = "XOSO_LINE_CHANNEL_ACCESS_TOKEN"
	EnvLineChannelSecret      = "XOSO_LINE_CHANNEL_SECRET"

	// Server
	EnvPort            = "XOSO_PORT"
	EnvLogLevel        = "XOSO_LOG_LEVEL"
	EnvShutdownTimeout = "XOSO_SHUTDOWN_TIMEOUT"
	EnvServerName      = "XOSO_SERVER_NAME"
	EnvInstanceID      = "XOSO_INSTANCE_ID"

	// Data
	EnvDataDir = "XOSO_DATA_DIR"

	// Draw results
	EnvResultsCSVPath         = "XOSO_RESULTS_CSV_PATH"
	EnvResultsSourceURL       = "XOSO_RESULTS_SOURCE_URL"
	EnvResultsRefreshInterval = "XOSO_RESULTS_REFRESH_INTERVAL"

	// Scraper
	EnvScraperTimeout    = "XOSO_SCRAPER_TIMEOUT"
	EnvScraperMaxRetries = "XOSO_SCRAPER_MAX_RETRIES"

	// Webhook
	EnvWebhookTimeout = "XOSO_WEBHOOK_TIMEOUT"

	// Rate Limits
	EnvGlobalRateRPS  = "XOSO_GLOBAL_RATE_RPS"
	EnvUserRateBurst  = "XOSO_USER_RATE_BURST"
	EnvUserRateRefill = "XOSO_USER_RATE_REFILL"
	EnvUserRateDaily  = "XOSO_USER_RATE_DAILY"

	// Sessions and generators
	EnvSessionTTL       = "XOSO_SESSION_TTL"
	EnvSessionCapacity  = "XOSO_SESSION_CAPACITY"
	EnvMaxInputTokens   = "XOSO_MAX_INPUT_TOKENS"
	EnvMaxDisplayedRows = "XOSO_MAX_DISPLAYED_RESULTS"

	// Support page
	EnvSupportURL  = "XOSO_SUPPORT_URL"
	EnvFeedbackURL = "XOSO_FEEDBACK_URL"

	// R2 results snapshot
	EnvR2Enabled         = "XOSO_R2_ENABLED"
	EnvR2AccountID       = "XOSO_R2_ACCOUNT_ID"
	EnvR2AccessKeyID     = "XOSO_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "XOSO_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "XOSO_R2_BUCKET_NAME"
	EnvR2ResultsKey      = "XOSO_R2_RESULTS_KEY"

	// Sentry Feature
	EnvSentryEnabled          = "XOSO_SENTRY_ENABLED"
	EnvSentryDSN              = "XOSO_SENTRY_DSN"
	EnvSentryEnvironment      = "XOSO_SENTRY_ENVIRONMENT"
	EnvSentryRelease          = "XOSO_SENTRY_RELEASE"
	EnvSentrySampleRate       = "XOSO_SENTRY_SAMPLE_RATE"
	EnvSentryTracesSampleRate = "XOSO_SENTRY_TRACES_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackEnabled  = "XOSO_BETTERSTACK_ENABLED"
	EnvBetterStackToken    = "XOSO_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "XOSO_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "XOSO_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "XOSO_METRICS_USERNAME"
	EnvMetricsPassword    = "XOSO_METRICS_PASSWORD"
)
