// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, CLI mode, timeouts, and results-source settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ValidationMode selects which settings must be present.
type ValidationMode int

const (
	// ServerMode requires LINE credentials and every webhook setting.
	ServerMode ValidationMode = iota
	// CLIMode only needs the data settings used by the offline tool.
	CLIMode
)

func (m ValidationMode) String() string {
	if m == CLIMode {
		return "cli"
	}
	return "server"
}

// Config holds all application configuration
type Config struct {
	// LINE Bot Configuration
	LineChannelToken  string
	LineChannelSecret string

	// Metrics Authentication
	MetricsAuthEnabled bool
	MetricsUsername    string
	MetricsPassword    string

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	ServerName      string
	InstanceID      string

	// Data Configuration
	DataDir string // Data directory for SQLite database

	// Draw results sources (all optional)
	ResultsCSVPath         string        // Local CSV seeded on start-up
	ResultsSourceURL       string        // HTML page scraped by the refresh job
	ResultsRefreshInterval time.Duration // How often the refresh job runs

	// Scraper Configuration
	ScraperTimeout    time.Duration
	ScraperMaxRetries int

	// R2 results snapshot
	R2Enabled         bool
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2ResultsKey      string

	// Sentry
	SentryEnabled          bool
	SentryDSN              string
	SentryEnvironment      string
	SentryRelease          string
	SentrySampleRate       float64
	SentryTracesSampleRate float64

	// Better Stack
	BetterStackEnabled  bool
	BetterStackToken    string
	BetterStackEndpoint string

	// Bot Configuration (embedded)
	Bot BotConfig
}

// Load reads configuration for server mode.
func Load() (*Config, error) {
	return LoadForMode(ServerMode)
}

// LoadForMode reads configuration from environment variables.
// It attempts to load .env file first, then reads from env vars.
func LoadForMode(mode ValidationMode) (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		LineChannelToken:  getEnv(EnvLineChannelAccessToken, ""),
		LineChannelSecret: getEnv(EnvLineChannelSecret, ""),

		MetricsAuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:    getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:    getEnv(EnvMetricsPassword, ""),

		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),
		ServerName:      getEnv(EnvServerName, ""),
		InstanceID:      getEnv(EnvInstanceID, ""),

		DataDir: getEnv(EnvDataDir, getDefaultDataDir()),

		ResultsCSVPath:         getEnv(EnvResultsCSVPath, ""),
		ResultsSourceURL:       getEnv(EnvResultsSourceURL, ""),
		ResultsRefreshInterval: getDurationEnv(EnvResultsRefreshInterval, ResultsRefreshInterval),

		ScraperTimeout:    getDurationEnv(EnvScraperTimeout, ScraperRequest),
		ScraperMaxRetries: getIntEnv(EnvScraperMaxRetries, 5),

		R2Enabled:         getBoolEnv(EnvR2Enabled, false),
		R2AccountID:       getEnv(EnvR2AccountID, ""),
		R2AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
		R2SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
		R2BucketName:      getEnv(EnvR2BucketName, ""),
		R2ResultsKey:      getEnv(EnvR2ResultsKey, "results/xsmb.csv.zst"),

		SentryEnabled:          getBoolEnv(EnvSentryEnabled, false),
		SentryDSN:              getEnv(EnvSentryDSN, ""),
		SentryEnvironment:      getEnv(EnvSentryEnvironment, "production"),
		SentryRelease:          getEnv(EnvSentryRelease, ""),
		SentrySampleRate:       getFloatEnv(EnvSentrySampleRate, 1.0),
		SentryTracesSampleRate: getFloatEnv(EnvSentryTracesSampleRate, 0.0),

		BetterStackEnabled:  getBoolEnv(EnvBetterStackEnabled, false),
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		Bot: BotConfig{
			WebhookTimeout:            getDurationEnv(EnvWebhookTimeout, WebhookProcessing),
			UserRateLimitBurst:        getFloatEnv(EnvUserRateBurst, 15.0),
			UserRateLimitRefillPerSec: getFloatEnv(EnvUserRateRefill, 0.5), // 1 per 2s
			UserDailyLimit:            getIntEnv(EnvUserRateDaily, 500),
			GlobalRateLimitRPS:        getFloatEnv(EnvGlobalRateRPS, 80.0),
			MaxMessagesPerReply:       LINEMaxMessagesPerReply,
			MaxEventsPerWebhook:       100,
			MinReplyTokenLength:       10,
			MaxMessageLength:          LINEMaxTextMessageLength,
			MaxPostbackDataSize:       LINEMaxPostbackDataLength,
			SessionTTL:                getDurationEnv(EnvSessionTTL, SessionTTL),
			SessionCapacity:           getIntEnv(EnvSessionCapacity, 10000),
			MaxInputTokens:            getIntEnv(EnvMaxInputTokens, 40),
			MaxDisplayedResults:       getIntEnv(EnvMaxDisplayedRows, 1000),
			SupportURL:                getEnv(EnvSupportURL, ""),
			FeedbackURL:               getEnv(EnvFeedbackURL, ""),
		},
	}

	if err := cfg.ValidateForMode(mode); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for server mode.
func (c *Config) Validate() error {
	return c.ValidateForMode(ServerMode)
}

// ValidateForMode checks if required configuration values are set for mode.
func (c *Config) ValidateForMode(mode ValidationMode) error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvDataDir))
	}
	if c.ScraperTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvScraperTimeout, c.ScraperTimeout))
	}
	if c.ScraperMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvScraperMaxRetries, c.ScraperMaxRetries))
	}
	if c.R2Enabled {
		if c.R2AccountID == "" || c.R2AccessKeyID == "" || c.R2SecretAccessKey == "" || c.R2BucketName == "" {
			errs = append(errs, fmt.Errorf("%s, %s, %s and %s are required when R2 is enabled",
				EnvR2AccountID, EnvR2AccessKeyID, EnvR2SecretAccessKey, EnvR2BucketName))
		}
	}

	if mode == ServerMode {
		if c.LineChannelToken == "" {
			errs = append(errs, fmt.Errorf("%s is required", EnvLineChannelAccessToken))
		}
		if c.LineChannelSecret == "" {
			errs = append(errs, fmt.Errorf("%s is required", EnvLineChannelSecret))
		}
		if c.Port == "" {
			errs = append(errs, fmt.Errorf("%s is required", EnvPort))
		}
		if c.ResultsSourceURL != "" && c.ResultsRefreshInterval <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvResultsRefreshInterval, c.ResultsRefreshInterval))
		}
		if c.SentryEnabled && c.SentryDSN == "" {
			errs = append(errs, fmt.Errorf("%s is required when Sentry is enabled", EnvSentryDSN))
		}
		if c.BetterStackEnabled && (c.BetterStackToken == "" || c.BetterStackEndpoint == "") {
			errs = append(errs, fmt.Errorf("%s and %s are required when Better Stack is enabled", EnvBetterStackToken, EnvBetterStackEndpoint))
		}
		if c.MetricsAuthEnabled && c.MetricsPassword == "" {
			errs = append(errs, fmt.Errorf("%s is required when metrics auth is enabled", EnvMetricsPassword))
		}
		if err := c.Bot.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("bot config: %w", err))
		}
	}

	return errors.Join(errs...)
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "xoso.db")
}

// HasResultsSource reports whether any draw-results source is configured.
func (c *Config) HasResultsSource() bool {
	return c.ResultsCSVPath != "" || c.ResultsSourceURL != "" || c.R2Enabled
}
