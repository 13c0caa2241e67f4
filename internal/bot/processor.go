package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/garyellow/xoso-linebot-go/internal/config"
	"github.com/garyellow/xoso-linebot-go/internal/ctxutil"
	"github.com/garyellow/xoso-linebot-go/internal/lineutil"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/ratelimit"
	"github.com/garyellow/xoso-linebot-go/internal/session"
	"github.com/garyellow/xoso-linebot-go/internal/stringutil"
)

// maxInputRunes is the longest text message LINE delivers.
const maxInputRunes = 20000

// Reply texts owned by the processor rather than a module.
const (
	ResetText          = "🔄 Đã reset trạng thái!"
	UnknownActionText  = "❓ Không xác định chức năng."
	RateLimitedText    = "⏳ Bạn gửi quá nhanh, vui lòng thử lại sau ít phút."
	InputTooLongText   = "❗ Tin nhắn quá dài (tối đa %d ký tự)."
	InvalidPostbackMsg = "❗ Dữ liệu thao tác không hợp lệ, vui lòng chọn lại từ menu."
)

// resetCommands are compared against the normalized text.
var resetCommands = []string{"reset", "/reset", "dat lai"}

// Processor handles the core logic of processing LINE events.
// It orchestrates rate limiting, session routing and dispatching to handlers.
type Processor struct {
	registry    *Registry
	sessions    *session.Store
	userLimiter *ratelimit.KeyedLimiter
	fallback    Handler
	logger      *logger.Logger

	webhookTimeout time.Duration
}

// ProcessorConfig holds configuration for creating a new Processor.
type ProcessorConfig struct {
	Registry    *Registry
	Sessions    *session.Store
	UserLimiter *ratelimit.KeyedLimiter // optional
	// Fallback answers text nothing else recognized and greets new followers.
	Fallback  Handler
	Logger    *logger.Logger
	BotConfig *config.BotConfig
}

// NewProcessor creates a new event processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	return &Processor{
		registry:       cfg.Registry,
		sessions:       cfg.Sessions,
		userLimiter:    cfg.UserLimiter,
		fallback:       cfg.Fallback,
		logger:         cfg.Logger,
		webhookTimeout: cfg.BotConfig.WebhookTimeout,
	}
}

// ProcessMessage handles a message event. Only text messages get a reply.
func (p *Processor) ProcessMessage(ctx context.Context, event webhook.MessageEvent) ([]messaging_api.MessageInterface, error) {
	ctx = p.enrich(ctx, event.Source)

	if event.Message.GetType() != "text" {
		return nil, nil
	}

	textMsg, ok := event.Message.(webhook.TextMessageContent)
	if !ok {
		return nil, errors.New("failed to cast message to text")
	}

	text := textMsg.Text
	mentioned := IsBotMentioned(textMsg)
	if mentioned {
		text = RemoveBotMentions(text, textMsg.Mention)
	}
	text = strings.TrimSpace(text)

	// Unmentioned chatter in groups is only answered when it is meant for the
	// bot: a command, an open flow, or a module's own syntax.
	quiet := !IsPersonalChat(event.Source) && !mentioned

	if text == "" {
		if quiet {
			return nil, nil
		}
		text = "menu"
	}

	if allowed, msgs := p.checkUserRateLimit(ctx, event.Source); !allowed {
		return msgs, nil
	}

	if n := utf8.RuneCountInString(text); n > maxInputRunes {
		p.logger.Warnf("Text message too long: %d characters", n)
		return []messaging_api.MessageInterface{
			lineutil.NewTextMessageWithQuickReply(fmt.Sprintf(InputTooLongText, maxInputRunes), lineutil.GetSender("", ""), lineutil.QuickReplyNavigation()...),
		}, nil
	}

	processCtx, cancel := context.WithTimeout(ctxutil.PreserveTracing(ctx), p.webhookTimeout)
	defer cancel()

	return p.routeText(processCtx, text, quiet), nil
}

// routeText decides who answers a text message.
//
// Order: reset, slash commands (which abandon any pending flow), the pending
// flow, handlers that recognize the text, free-text guesses, then the fallback.
func (p *Processor) routeText(ctx context.Context, text string, quiet bool) []messaging_api.MessageInterface {
	key := SessionKey(ctx)

	if isReset(text) {
		return p.reset(key)
	}

	if cmd, isCmd := ParseCommand(text); isCmd {
		p.sessions.Reset(key)
		if msgs, ok := p.registry.DispatchMessage(ctx, text); ok {
			return msgs
		}
		p.logger.WithField("command", cmd.Name).Debug("Unknown command")
		return p.unknownAction()
	}

	if sess := p.sessions.Get(key); !sess.IsIdle() {
		if msgs, ok := p.registry.DispatchFlow(ctx, sess, text); ok {
			return msgs
		}
		p.logger.WithField("state", sess.State.String()).Warn("No handler owns session state; resetting")
		p.sessions.Reset(key)
	}

	if msgs, ok := p.registry.DispatchMessage(ctx, text); ok {
		return msgs
	}

	if quiet {
		return nil
	}

	if msgs, ok := p.registry.DispatchFreeText(ctx, text); ok {
		return msgs
	}

	if p.fallback == nil {
		return p.unknownAction()
	}
	return p.registry.Invoke(ctx, p.fallback, text)
}

// ProcessPostback handles a postback event.
// Any button press abandons the chat's pending flow; buttons that start a
// flow store their own state.
func (p *Processor) ProcessPostback(ctx context.Context, event webhook.PostbackEvent) ([]messaging_api.MessageInterface, error) {
	ctx = p.enrich(ctx, event.Source)

	data := strings.TrimSpace(event.Postback.Data)
	if data == "" {
		p.logger.Warn("Empty postback data")
		return nil, nil
	}
	if len(data) > lineutil.MaxPostbackData {
		p.logger.Warnf("Postback data too long: %d bytes", len(data))
		return []messaging_api.MessageInterface{
			lineutil.NewTextMessageWithQuickReply(InvalidPostbackMsg, lineutil.GetSender("", ""), lineutil.QuickReplyMainMenu()...),
		}, nil
	}

	if allowed, msgs := p.checkUserRateLimit(ctx, event.Source); !allowed {
		return msgs, nil
	}

	p.logger.WithField("data", data).Debug("Received postback")

	key := SessionKey(ctx)
	if data == lineutil.PostbackReset {
		return p.reset(key), nil
	}
	p.sessions.Reset(key)

	processCtx, cancel := context.WithTimeout(ctxutil.PreserveTracing(ctx), p.webhookTimeout)
	defer cancel()

	if msgs, ok := p.registry.DispatchPostback(processCtx, data); ok {
		return msgs, nil
	}

	p.logger.WithField("data", data).Warn("No handler for postback")
	return p.unknownAction(), nil
}

// ProcessFollow greets a new follower with the main menu.
func (p *Processor) ProcessFollow(ctx context.Context, event webhook.FollowEvent) ([]messaging_api.MessageInterface, error) {
	p.logger.Info("New user followed the bot")
	return p.greet(p.enrich(ctx, event.Source)), nil
}

// ProcessJoin greets a group or room the bot was added to.
func (p *Processor) ProcessJoin(ctx context.Context, event webhook.JoinEvent) ([]messaging_api.MessageInterface, error) {
	p.logger.Info("Bot joined a group or room")
	return p.greet(p.enrich(ctx, event.Source)), nil
}

func (p *Processor) greet(ctx context.Context) []messaging_api.MessageInterface {
	if p.fallback == nil {
		return nil
	}
	return p.registry.Invoke(ctx, p.fallback, "/start")
}

func (p *Processor) enrich(ctx context.Context, source webhook.SourceInterface) context.Context {
	ctx = ctxutil.WithChatID(ctx, GetChatID(source))
	return ctxutil.WithUserID(ctx, GetUserID(source))
}

func (p *Processor) reset(key string) []messaging_api.MessageInterface {
	if p.sessions.Reset(key) {
		p.logger.Debug("Session reset")
	}
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessageWithQuickReply(ResetText, lineutil.GetSender("", ""), lineutil.QuickReplyMainMenu()...),
	}
}

func (p *Processor) unknownAction() []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessageWithQuickReply(UnknownActionText, lineutil.GetSender("", ""), lineutil.QuickReplyMainMenu()...),
	}
}

// checkUserRateLimit checks if the chat has exceeded its rate limit.
// Only personal chats are told about it; groups are dropped silently.
func (p *Processor) checkUserRateLimit(ctx context.Context, source webhook.SourceInterface) (bool, []messaging_api.MessageInterface) {
	chatID := ctxutil.GetChatID(ctx)
	if chatID == "" || p.userLimiter == nil {
		return true, nil
	}

	if p.userLimiter.Allow(chatID) {
		return true, nil
	}

	logChatID := chatID
	if len(chatID) > 8 {
		logChatID = chatID[:8] + "..."
	}
	p.logger.WithField("chat_id", logChatID).Warn("User rate limit exceeded")

	if IsPersonalChat(source) {
		return false, []messaging_api.MessageInterface{
			lineutil.NewTextMessageWithConsistentSender(RateLimitedText, lineutil.GetSender("", "")),
		}
	}

	return false, nil
}

func isReset(text string) bool {
	return slices.Contains(resetCommands, stringutil.NormalizeKeyword(text))
}
