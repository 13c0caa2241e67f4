package config

import (
	"strings"
	"testing"
	"time"
)

func newTestBotConfig() BotConfig {
	return BotConfig{
		WebhookTimeout:            WebhookProcessing,
		UserRateLimitBurst:        15.0,
		UserRateLimitRefillPerSec: 0.5,
		UserDailyLimit:            500,
		GlobalRateLimitRPS:        80.0,
		MaxMessagesPerReply:       5,
		MaxEventsPerWebhook:       100,
		MinReplyTokenLength:       10,
		MaxMessageLength:          5000,
		MaxPostbackDataSize:       300,
		SessionTTL:                30 * time.Minute,
		SessionCapacity:           1000,
		MaxInputTokens:            40,
		MaxDisplayedResults:       1000,
	}
}

func TestBotConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*BotConfig)
		errContains string
	}{
		{"valid", func(*BotConfig) {}, ""},
		{"zero webhook timeout", func(c *BotConfig) { c.WebhookTimeout = 0 }, "webhook timeout"},
		{"too many messages", func(c *BotConfig) { c.MaxMessagesPerReply = 6 }, "max messages per reply"},
		{"zero messages", func(c *BotConfig) { c.MaxMessagesPerReply = 0 }, "max messages per reply"},
		{"no events", func(c *BotConfig) { c.MaxEventsPerWebhook = 0 }, "max events"},
		{"zero burst", func(c *BotConfig) { c.UserRateLimitBurst = 0 }, "burst"},
		{"zero refill", func(c *BotConfig) { c.UserRateLimitRefillPerSec = 0 }, "refill"},
		{"negative daily", func(c *BotConfig) { c.UserDailyLimit = -1 }, "daily"},
		{"zero global rps", func(c *BotConfig) { c.GlobalRateLimitRPS = 0 }, "global rate"},
		{"zero session ttl", func(c *BotConfig) { c.SessionTTL = 0 }, "session TTL"},
		{"zero session capacity", func(c *BotConfig) { c.SessionCapacity = 0 }, "session capacity"},
		{"one input token", func(c *BotConfig) { c.MaxInputTokens = 1 }, "input tokens"},
		{"zero displayed results", func(c *BotConfig) { c.MaxDisplayedResults = 0 }, "displayed results"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestBotConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.errContains == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.errContains)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.errContains)
			}
		})
	}
}

func TestDisabledDailyLimitIsValid(t *testing.T) {
	cfg := newTestBotConfig()
	cfg.UserDailyLimit = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("daily limit 0 should disable the check, got %v", err)
	}
}
