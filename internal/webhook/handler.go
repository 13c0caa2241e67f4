// Package webhook provides LINE webhook handling and hands each event to the
// bot processor.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/garyellow/xoso-linebot-go/internal/bot"
	"github.com/garyellow/xoso-linebot-go/internal/config"
	"github.com/garyellow/xoso-linebot-go/internal/ctxutil"
	"github.com/garyellow/xoso-linebot-go/internal/lineutil"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/metrics"
	"github.com/garyellow/xoso-linebot-go/internal/ratelimit"
	"github.com/garyellow/xoso-linebot-go/internal/sentry"
)

// TruncatedReplyText replaces the messages cut by the per-reply limit.
const TruncatedReplyText = "ℹ️ Kết quả quá dài, chỉ hiển thị một phần.\n\n💡 Hãy gửi dàn số ngắn hơn để xem đầy đủ."

// seenEventsSize bounds the redelivery dedup cache.
const seenEventsSize = 4096

// LineClient is the part of the Messaging API the handler calls.
type LineClient interface {
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
	ShowLoadingAnimation(req *messaging_api.ShowLoadingAnimationRequest) (*map[string]interface{}, error)
}

// EventProcessor turns events into replies. *bot.Processor implements it.
type EventProcessor interface {
	ProcessMessage(ctx context.Context, event webhook.MessageEvent) ([]messaging_api.MessageInterface, error)
	ProcessPostback(ctx context.Context, event webhook.PostbackEvent) ([]messaging_api.MessageInterface, error)
	ProcessFollow(ctx context.Context, event webhook.FollowEvent) ([]messaging_api.MessageInterface, error)
	ProcessJoin(ctx context.Context, event webhook.JoinEvent) ([]messaging_api.MessageInterface, error)
}

// Handler handles LINE webhook events
type Handler struct {
	channelSecret string
	client        LineClient
	metrics       *metrics.Metrics
	logger        *logger.Logger
	processor     EventProcessor
	rateLimiter   *ratelimit.Limiter // global reply rate
	seen          *lru.Cache[string, struct{}]
	wg            sync.WaitGroup

	// LINE API constraints (from config.BotConfig)
	maxMessagesPerReply int
	maxEventsPerWebhook int
	minReplyTokenLength int
	replyTimeout        time.Duration
}

// HandlerConfig holds configuration for creating a new Handler
type HandlerConfig struct {
	ChannelSecret string
	ChannelToken  string
	BotConfig     *config.BotConfig
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
	Processor     EventProcessor

	// Client overrides the Messaging API client built from ChannelToken.
	Client LineClient
}

// NewHandler creates a new webhook handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	client := cfg.Client
	if client == nil {
		api, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken)
		if err != nil {
			return nil, fmt.Errorf("create messaging API client: %w", err)
		}
		client = api
	}

	seen, err := lru.New[string, struct{}](seenEventsSize)
	if err != nil {
		return nil, fmt.Errorf("create event cache: %w", err)
	}

	rps := cfg.BotConfig.GlobalRateLimitRPS
	return &Handler{
		channelSecret:       cfg.ChannelSecret,
		client:              client,
		metrics:             cfg.Metrics,
		logger:              cfg.Logger,
		processor:           cfg.Processor,
		rateLimiter:         ratelimit.New(rps, rps),
		seen:                seen,
		maxMessagesPerReply: cfg.BotConfig.MaxMessagesPerReply,
		maxEventsPerWebhook: cfg.BotConfig.MaxEventsPerWebhook,
		minReplyTokenLength: cfg.BotConfig.MinReplyTokenLength,
		replyTimeout:        cfg.BotConfig.WebhookTimeout,
	}, nil
}

// Handle is the Gin handler for the webhook endpoint
func (h *Handler) Handle(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("Invalid webhook signature")
			c.Status(http.StatusBadRequest)
		} else {
			h.logger.WithError(err).Error("Failed to parse webhook request")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	// LINE expects 200 before the events are handled.
	c.Status(http.StatusOK)

	start := time.Now()
	h.metrics.RecordWebhook("batch", "received", 0)

	events := cb.Events
	if len(events) > h.maxEventsPerWebhook {
		h.logger.WithField("event_count", len(events)).
			WithField("limit", h.maxEventsPerWebhook).
			Warn("Too many events in webhook batch; truncating")
		events = events[:h.maxEventsPerWebhook]
	}
	events = append([]webhook.EventInterface(nil), events...)

	h.wg.Go(func() {
		ctx := context.Background()
		defer func() {
			if r := recover(); r != nil {
				h.logger.WithField("panic", r).Error("Panic in async event processing")
				sentry.CaptureRecovered(ctx, r)
			}
		}()

		for _, event := range events {
			h.processEvent(ctx, event, start)
		}
	})
}

// processEvent handles a single webhook event.
func (h *Handler) processEvent(ctx context.Context, event webhook.EventInterface, webhookStart time.Time) {
	eventStart := time.Now()

	eventID, eventTimestamp, isRedelivery := extractEventMeta(event)
	requestID := eventID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx = ctxutil.WithRequestID(ctx, requestID)
	if eventID != "" {
		ctx = ctxutil.WithEventID(ctx, eventID)
	}

	log := h.logger.WithRequestID(requestID)
	if isRedelivery != nil {
		log = log.WithField("is_redelivery", *isRedelivery)
	}
	if eventTimestamp > 0 {
		log = log.WithField("event_timestamp_ms", eventTimestamp)
	}

	if eventID != "" {
		if dup, _ := h.seen.ContainsOrAdd(eventID, struct{}{}); dup {
			log.Debug("Duplicate webhook event; skipping")
			h.metrics.RecordWebhook("batch", "duplicate", 0)
			return
		}
	}

	if h.shouldShowLoading(event) {
		if err := h.showLoadingAnimation(event); err != nil {
			log.WithError(err).Warn("Failed to show loading animation")
		}
	}

	var (
		messages  []messaging_api.MessageInterface
		eventType string
		err       error
	)
	switch e := event.(type) {
	case webhook.MessageEvent:
		eventType = "message"
		messages, err = h.processor.ProcessMessage(ctx, e)
	case webhook.PostbackEvent:
		eventType = "postback"
		messages, err = h.processor.ProcessPostback(ctx, e)
	case webhook.FollowEvent:
		eventType = "follow"
		messages, err = h.processor.ProcessFollow(ctx, e)
	case webhook.JoinEvent:
		eventType = "join"
		messages, err = h.processor.ProcessJoin(ctx, e)
	default:
		log.WithField("event_type", fmt.Sprintf("%T", e)).Debug("Unsupported event type")
		return
	}

	eventDuration := time.Since(eventStart)
	status := "success"
	if err != nil {
		status = "error"
		log.WithError(err).WithField("event_type", eventType).Error("Failed to handle event")
		sentry.CaptureExceptionWithContext(ctx, err)
	}
	h.metrics.RecordWebhook(eventType, status, eventDuration.Seconds())

	if len(messages) > 0 && err == nil {
		h.reply(ctx, log, event, eventType, h.capMessages(log, messages), eventStart)
	}

	log.WithField("event_type", eventType).
		WithField("event_duration_ms", eventDuration.Milliseconds()).
		WithField("batch_duration_ms", time.Since(webhookStart).Milliseconds()).
		Info("Event processed")
}

// capMessages keeps the reply within the per-reply message limit, replacing
// the tail with a note.
func (h *Handler) capMessages(log *logger.Logger, messages []messaging_api.MessageInterface) []messaging_api.MessageInterface {
	if len(messages) <= h.maxMessagesPerReply {
		return messages
	}
	log.WithField("message_count", len(messages)).
		WithField("limit", h.maxMessagesPerReply).
		Warn("Message count exceeds limit; truncating")

	capped := append([]messaging_api.MessageInterface(nil), messages[:h.maxMessagesPerReply-1]...)
	note := lineutil.NewTextMessageWithQuickReply(TruncatedReplyText, lineutil.GetSender("", ""), lineutil.QuickReplyNavigation()...)
	return append(capped, note)
}

func (h *Handler) reply(ctx context.Context, log *logger.Logger, event webhook.EventInterface, eventType string, messages []messaging_api.MessageInterface, eventStart time.Time) {
	replyToken := getReplyToken(event)
	if replyToken == "" {
		log.Debug("Empty reply token, skipping reply")
		return
	}
	if len(replyToken) < h.minReplyTokenLength {
		log.WithField("token_length", len(replyToken)).Debug("Invalid reply token format")
		return
	}

	if !h.rateLimiter.Allow() {
		log.Warn("Global rate limit exceeded; waiting")
		h.metrics.RecordRateLimiterDrop("global")
		waitCtx, cancel := context.WithTimeout(ctx, h.replyTimeout)
		err := h.rateLimiter.Wait(waitCtx)
		cancel()
		if err != nil {
			log.WithError(err).Error("Gave up waiting for global rate limit")
			return
		}
	}

	if _, err := h.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	}); err != nil {
		errMsg := err.Error()
		switch {
		case strings.Contains(errMsg, "Invalid reply token"):
			log.WithError(err).Debug("Reply token already used or invalid")
		case strings.Contains(errMsg, "rate limit"):
			log.WithError(err).Error("Rate limit exceeded")
		default:
			log.WithError(err).WithField("reply_token", replyToken[:8]+"...").Error("Failed to send reply")
			sentry.CaptureExceptionWithContext(ctx, err)
		}
		h.metrics.RecordWebhook(eventType, "reply_error", time.Since(eventStart).Seconds())
	}
}

func extractEventMeta(event webhook.EventInterface) (string, int64, *bool) {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return e.WebhookEventId, e.Timestamp, boolPtr(e.DeliveryContext)
	case webhook.PostbackEvent:
		return e.WebhookEventId, e.Timestamp, boolPtr(e.DeliveryContext)
	case webhook.FollowEvent:
		return e.WebhookEventId, e.Timestamp, boolPtr(e.DeliveryContext)
	case webhook.JoinEvent:
		return e.WebhookEventId, e.Timestamp, boolPtr(e.DeliveryContext)
	default:
		return "", 0, nil
	}
}

func boolPtr(ctx *webhook.DeliveryContext) *bool {
	if ctx == nil {
		return nil
	}
	val := ctx.IsRedelivery
	return &val
}

// shouldShowLoading reports whether the event will probably get a reply.
// In groups only mentions and slash commands are certain to.
func (h *Handler) shouldShowLoading(event webhook.EventInterface) bool {
	switch e := event.(type) {
	case webhook.MessageEvent:
		textMsg, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			return false
		}
		if bot.IsPersonalChat(e.Source) {
			return true
		}
		return bot.IsBotMentioned(textMsg) || strings.HasPrefix(strings.TrimSpace(textMsg.Text), "/")
	case webhook.PostbackEvent, webhook.FollowEvent, webhook.JoinEvent:
		return true
	default:
		return false
	}
}

// showLoadingAnimation shows the typing indicator. LINE only supports it in
// one-on-one chats and ignores other chat ids.
func (h *Handler) showLoadingAnimation(event webhook.EventInterface) error {
	chatID := getChatID(event)
	if chatID == "" {
		return nil
	}

	// loadingSeconds must be a multiple of 5 between 5 and 60.
	req := &messaging_api.ShowLoadingAnimationRequest{
		ChatId:         chatID,
		LoadingSeconds: 20,
	}
	if _, err := h.client.ShowLoadingAnimation(req); err != nil {
		return fmt.Errorf("failed to show loading animation: %w", err)
	}
	return nil
}

func getReplyToken(event webhook.EventInterface) string {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return e.ReplyToken
	case webhook.PostbackEvent:
		return e.ReplyToken
	case webhook.FollowEvent:
		return e.ReplyToken
	case webhook.JoinEvent:
		return e.ReplyToken
	default:
		return ""
	}
}

func getChatID(event webhook.EventInterface) string {
	var source webhook.SourceInterface

	switch e := event.(type) {
	case webhook.MessageEvent:
		source = e.Source
	case webhook.PostbackEvent:
		source = e.Source
	case webhook.FollowEvent:
		source = e.Source
	case webhook.JoinEvent:
		source = e.Source
	default:
		return ""
	}

	return bot.GetChatID(source)
}

// Shutdown waits for all async event processing to complete.
// It returns an error if the context is canceled before completion.
func (h *Handler) Shutdown(ctx context.Context) error {
	c := make(chan struct{})
	go func() {
		defer close(c)
		h.wg.Wait()
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
