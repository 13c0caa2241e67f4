// Package dao implements the digit permutation ("đảo số") module.
package dao

import (
	"context"
	"strings"
	"unicode"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/xoso-linebot-go/internal/bot"
	"github.com/garyellow/xoso-linebot-go/internal/config"
	"github.com/garyellow/xoso-linebot-go/internal/lineutil"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/lotto"
	"github.com/garyellow/xoso-linebot-go/internal/metrics"
	"github.com/garyellow/xoso-linebot-go/internal/session"
	"github.com/garyellow/xoso-linebot-go/internal/sliceutil"
	"github.com/garyellow/xoso-linebot-go/internal/stringutil"
)

// Module constants
const (
	ModuleName     = "dao"
	senderName     = "Đảo số"
	postbackPrefix = "dao:"
)

// Reply texts.
const (
	Guide = "🔀 Đảo số\n" +
		"Gửi 1 số có 2–6 chữ số để tạo mọi hoán vị.\n" +
		"Ví dụ: /dao 123 hoặc /dao 0123"

	ResultHeader = "Các hoán vị:"
	PromptText   = "Nhập 1 số bất kỳ (2-6 chữ số, VD: 1234):"
	InvalidText  = "❗ Vui lòng gửi 1 số có 2–6 chữ số."
)

var keywords = []string{"dao so", "dao"}

var keywordRegex = bot.BuildKeywordRegex(keywords)

// Handler permutes the digits of one number.
type Handler struct {
	sessions *session.Store
	metrics  *metrics.Metrics
	logger   *logger.Logger

	maxResults  int
	maxMessages int
}

// NewHandler creates a new đảo số handler.
func NewHandler(sessions *session.Store, m *metrics.Metrics, log *logger.Logger, botCfg *config.BotConfig) *Handler {
	return &Handler{
		sessions:    sessions,
		metrics:     m,
		logger:      log,
		maxResults:  botCfg.MaxDisplayedResults,
		maxMessages: botCfg.MaxMessagesPerReply,
	}
}

// Name returns the module name
func (h *Handler) Name() string {
	return ModuleName
}

// PostbackPrefix returns "dao:".
func (h *Handler) PostbackPrefix() string {
	return postbackPrefix
}

// CanHandle matches "/dao" and the keywords "đảo" / "đảo số" followed by
// nothing but a number.
func (h *Handler) CanHandle(text string) bool {
	if bot.IsCommand(text, ModuleName) {
		return true
	}
	_, ok := matchKeyword(text)
	return ok
}

// HandleMessage permutes the digits found after the command. Without
// digits the chat is asked for a number.
func (h *Handler) HandleMessage(ctx context.Context, text string) []messaging_api.MessageInterface {
	var input string
	if cmd, ok := bot.ParseCommand(text); ok {
		input = cmd.Input()
	} else {
		input, _ = matchKeyword(text)
	}

	if strings.TrimSpace(input) == "" {
		h.sessions.Set(bot.SessionKey(ctx), session.AwaitDao())
		return h.textReply(Guide + "\n\n" + PromptText)
	}

	msgs, _ := h.generate(input)
	return msgs
}

// HandlePostback handles "start" from the generator menu.
func (h *Handler) HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface {
	if data != "start" {
		h.logger.WithModule(ModuleName).Warnf("Unknown dao postback: %s", data)
	}
	h.sessions.Set(bot.SessionKey(ctx), session.AwaitDao())
	return h.textReply(PromptText)
}

// OwnsState reports the đảo số step.
func (h *Handler) OwnsState(state session.State) bool {
	return state == session.StateAwaitDao
}

// ContinueFlow permutes the number sent after the Đảo số button. An invalid
// number keeps the chat waiting.
func (h *Handler) ContinueFlow(ctx context.Context, _ session.Session, text string) []messaging_api.MessageInterface {
	msgs, ok := h.generate(text)
	if ok {
		h.sessions.Reset(bot.SessionKey(ctx))
	}
	return msgs
}

func (h *Handler) generate(text string) ([]messaging_api.MessageInterface, bool) {
	perms := lotto.PermuteDigits(text)
	if len(perms) == 0 {
		h.metrics.RecordGenerator(ModuleName, metrics.OutcomeEmpty, 0)
		return h.textReply(InvalidText), false
	}

	shown, hidden := sliceutil.Head(perms, h.maxResults)
	body := ResultHeader + "\n" + lotto.FormatChunks(shown, lotto.PermutePerLine)
	outcome := metrics.OutcomeOK
	if hidden > 0 {
		body += "\n" + lineutil.HiddenNote(hidden)
		outcome = metrics.OutcomeTruncated
	}
	h.metrics.RecordGenerator(ModuleName, outcome, len(perms))

	msgs := lineutil.NewTextMessages(body, lineutil.GetSender(senderName, ""), h.maxMessages)
	lineutil.AddQuickReplyToMessages(msgs, h.quickReply()...)
	return msgs, true
}

func (h *Handler) textReply(text string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessageWithQuickReply(text, lineutil.GetSender(senderName, ""), lineutil.QuickReplyNavigation()...),
	}
}

func (h *Handler) quickReply() []lineutil.QuickReplyItem {
	again := lineutil.QuickReplyItem{
		Action: lineutil.NewPostbackActionWithDisplayText("🔀 Đảo số khác", "Đảo số", postbackPrefix+"start"),
	}
	return append([]lineutil.QuickReplyItem{again}, lineutil.QuickReplyNavigation()...)
}

// matchKeyword returns what follows the keyword. Text with letters after the
// keyword is ordinary chat, not a request.
func matchKeyword(text string) (rest string, ok bool) {
	normalized := stringutil.NormalizeKeyword(text)
	kw := bot.MatchKeyword(keywordRegex, normalized)
	if kw == "" {
		return "", false
	}
	rest = bot.ExtractSearchTerm(normalized, kw)
	return rest, strings.IndexFunc(rest, unicode.IsLetter) < 0
}
