package config

import (
	"fmt"
	"time"
)

// LINE Messaging API limits.
// https://developers.line.biz/en/reference/messaging-api/
const (
	LINEMaxMessagesPerReply   = 5
	LINEMaxTextMessageLength  = 5000
	LINEMaxPostbackDataLength = 300
)

// BotConfig holds bot-specific configuration
type BotConfig struct {
	// Timeouts
	WebhookTimeout time.Duration // Timeout for webhook bot processing (see config/timeouts.go)

	// Rate Limits (Token Bucket + daily sliding window)
	UserRateLimitBurst        float64 // Maximum burst tokens per chat (default: 15)
	UserRateLimitRefillPerSec float64 // Tokens refilled per second (default: 0.5)
	UserDailyLimit            int     // Maximum requests per chat per day (default: 500, 0 = disabled)

	GlobalRateLimitRPS float64 // Global reply rate in requests per second (default: 80)

	// LINE API Constraints
	MaxMessagesPerReply int // Maximum messages per reply (LINE API limit: 5)
	MaxEventsPerWebhook int // Maximum events per webhook (default: 100)
	MinReplyTokenLength int // Minimum reply token length (default: 10)
	MaxMessageLength    int // Maximum text message length (LINE API limit: 5000)
	MaxPostbackDataSize int // Maximum postback data size (LINE API limit: 300)

	// Sessions
	SessionTTL      time.Duration // Idle time before a pending flow is forgotten
	SessionCapacity int           // Maximum tracked chats

	// Generator bounds
	MaxInputTokens      int // Tokens accepted from one message
	MaxDisplayedResults int // Items shown before the output is cut

	// Links on the /ungho card; empty hides the button
	SupportURL  string
	FeedbackURL string
}

// Validate checks if the configuration is valid.
// Returns error describing validation failures.
func (c *BotConfig) Validate() error {
	if c.WebhookTimeout <= 0 {
		return fmt.Errorf("webhook timeout must be positive, got %v", c.WebhookTimeout)
	}

	if c.MaxMessagesPerReply < 1 || c.MaxMessagesPerReply > LINEMaxMessagesPerReply {
		return fmt.Errorf("max messages per reply must be 1-%d (LINE API limit), got %d", LINEMaxMessagesPerReply, c.MaxMessagesPerReply)
	}

	if c.MaxEventsPerWebhook < 1 {
		return fmt.Errorf("max events per webhook must be positive, got %d", c.MaxEventsPerWebhook)
	}

	if c.UserRateLimitBurst <= 0 {
		return fmt.Errorf("user rate limit burst must be positive, got %f", c.UserRateLimitBurst)
	}

	if c.UserRateLimitRefillPerSec <= 0 {
		return fmt.Errorf("user rate limit refill must be positive, got %f", c.UserRateLimitRefillPerSec)
	}

	if c.UserDailyLimit < 0 {
		return fmt.Errorf("user daily limit cannot be negative, got %d", c.UserDailyLimit)
	}

	if c.GlobalRateLimitRPS <= 0 {
		return fmt.Errorf("global rate limit RPS must be positive, got %f", c.GlobalRateLimitRPS)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %v", c.SessionTTL)
	}

	if c.SessionCapacity < 1 {
		return fmt.Errorf("session capacity must be positive, got %d", c.SessionCapacity)
	}

	if c.MaxInputTokens < 2 {
		return fmt.Errorf("max input tokens must be at least 2, got %d", c.MaxInputTokens)
	}

	if c.MaxDisplayedResults < 1 {
		return fmt.Errorf("max displayed results must be positive, got %d", c.MaxDisplayedResults)
	}

	return nil
}
