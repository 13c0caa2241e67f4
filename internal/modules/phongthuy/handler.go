// Package phongthuy implements the auspicious-number module: the reading of a
// solar date or can chi name ("phong thủy số") and the day's suggestion
// ("chốt số").
package phongthuy

import (
	"context"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/xoso-linebot-go/internal/bot"
	"github.com/garyellow/xoso-linebot-go/internal/canchi"
	"github.com/garyellow/xoso-linebot-go/internal/lineutil"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/metrics"
	"github.com/garyellow/xoso-linebot-go/internal/session"
	"github.com/garyellow/xoso-linebot-go/internal/stringutil"
)

// Module constants
const (
	ModuleName     = "phongthuy"
	senderName     = "Phong thủy số"
	postbackPrefix = "phongthuy:"
)

// Reply texts.
const (
	Guide = "🔮 Phong thủy theo ngày/can chi\n" +
		"Gửi ngày dương (vd: 2024-07-25, 25/07, 25-07-2024) hoặc gửi trực tiếp can chi (Giáp Tý, Quý Hợi).\n" +
		"Ngoài ra có thể đơn giản gõ \"hôm nay\"."

	ChotSoGuide = "📌 Chốt số hôm nay\n" +
		"Dựa trên can chi ngày hiện tại và bộ số hạp. Không phải khuyến nghị tài chính."

	PromptText  = "Nhập ngày dương (VD: 2024-07-25, 25/07/2024) hoặc nhập trực tiếp Can Chi (VD: Giáp Tý):"
	InvalidText = "❗ Không nhận ra ngày hoặc can chi. Ví dụ: 25/07/2024, 2024-07-25, Giáp Tý."
)

var (
	readingKeywords = []string{"phong thuy", "phongthuy"}
	chotSoKeywords  = []string{"chot so", "chotso"}

	readingRegex = bot.BuildKeywordRegex(readingKeywords)
	chotSoRegex  = bot.BuildKeywordRegex(chotSoKeywords)
)

// Handler answers phong thủy and chốt số requests.
type Handler struct {
	sessions *session.Store
	metrics  *metrics.Metrics
	logger   *logger.Logger
	now      func() time.Time
}

// NewHandler creates a new phong thủy handler. Dates are read on Vietnam time.
func NewHandler(sessions *session.Store, m *metrics.Metrics, log *logger.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		metrics:  m,
		logger:   log,
		now:      lineutil.NowInVietnam,
	}
}

// Name returns the module name
func (h *Handler) Name() string {
	return ModuleName
}

// PostbackPrefix returns "phongthuy:".
func (h *Handler) PostbackPrefix() string {
	return postbackPrefix
}

// CanHandle matches /phongthuy, /chotso and their keywords.
func (h *Handler) CanHandle(text string) bool {
	if bot.IsCommand(text, "phongthuy", "chotso") {
		return true
	}
	normalized := stringutil.NormalizeKeyword(text)
	return readingRegex.MatchString(normalized) || chotSoRegex.MatchString(normalized)
}

// HandleMessage answers "/phongthuy <ngày|can chi>" and "/chotso". A bare
// /phongthuy asks for the input.
func (h *Handler) HandleMessage(ctx context.Context, text string) []messaging_api.MessageInterface {
	if cmd, ok := bot.ParseCommand(text); ok {
		if cmd.Name == "chotso" {
			return h.dailyPick()
		}
		return h.readingOrPrompt(ctx, cmd.Input())
	}

	normalized := stringutil.NormalizeKeyword(text)
	if kw := bot.MatchKeyword(chotSoRegex, normalized); kw != "" {
		return h.dailyPick()
	}
	kw := bot.MatchKeyword(readingRegex, normalized)
	// The argument is cut from the original text so "Giáp Tý" keeps its accents.
	return h.readingOrPrompt(ctx, cutWords(text, len(strings.Fields(kw))))
}

// HandlePostback handles "start" (ask for input) and "chotso".
func (h *Handler) HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface {
	switch data {
	case "chotso":
		return h.dailyPick()
	case "start":
	default:
		h.logger.WithModule(ModuleName).Warnf("Unknown phongthuy postback: %s", data)
	}
	return h.startFlow(ctx)
}

// OwnsState reports the phong thủy step.
func (h *Handler) OwnsState(state session.State) bool {
	return state == session.StateAwaitPhongThuy
}

// ContinueFlow reads the date or can chi sent after the Phong thủy button.
// Unrecognized input keeps the chat waiting.
func (h *Handler) ContinueFlow(ctx context.Context, _ session.Session, text string) []messaging_api.MessageInterface {
	msgs, ok := h.reading(text)
	if ok {
		h.sessions.Reset(bot.SessionKey(ctx))
	}
	return msgs
}

// HandleFreeText treats "hôm nay" as chốt số and a bare date or can chi as a
// reading.
func (h *Handler) HandleFreeText(_ context.Context, text string) ([]messaging_api.MessageInterface, bool) {
	if canchi.IsToday(text) {
		return h.dailyPick(), true
	}
	r, err := canchi.Lookup(text, h.now())
	if err != nil {
		return nil, false
	}
	h.metrics.RecordLookup(metrics.LookupPhongThuy, metrics.OutcomeOK)
	return h.readingReply(r), true
}

func (h *Handler) readingOrPrompt(ctx context.Context, input string) []messaging_api.MessageInterface {
	if strings.TrimSpace(input) == "" {
		h.sessions.Set(bot.SessionKey(ctx), session.AwaitPhongThuy())
		return h.textReply(Guide + "\n\n" + PromptText)
	}
	msgs, _ := h.reading(input)
	return msgs
}

func (h *Handler) startFlow(ctx context.Context) []messaging_api.MessageInterface {
	h.sessions.Set(bot.SessionKey(ctx), session.AwaitPhongThuy())
	return h.textReply(PromptText)
}

func (h *Handler) reading(text string) ([]messaging_api.MessageInterface, bool) {
	r, err := canchi.Lookup(text, h.now())
	if err != nil {
		h.logger.WithModule(ModuleName).WithError(err).Debug("Lookup rejected input")
		h.metrics.RecordLookup(metrics.LookupPhongThuy, metrics.OutcomeInvalid)
		return h.textReply(InvalidText), false
	}
	h.metrics.RecordLookup(metrics.LookupPhongThuy, metrics.OutcomeOK)
	return h.readingReply(r), true
}

func (h *Handler) readingReply(r canchi.Reading) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		newCardMessage(FormatReading(r), buildReadingBubble(r), lineutil.GetSender(senderName, ""), h.quickReply()...),
	}
}

func (h *Handler) dailyPick() []messaging_api.MessageInterface {
	p := canchi.PickForDay(h.now())
	h.metrics.RecordLookup(metrics.LookupChotSo, metrics.OutcomeOK)
	return []messaging_api.MessageInterface{
		newCardMessage(FormatDailyPick(p), buildDailyPickBubble(p), lineutil.GetSender(senderName, ""), h.quickReply()...),
	}
}

func (h *Handler) textReply(text string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessageWithQuickReply(text, lineutil.GetSender(senderName, ""), h.quickReply()...),
	}
}

func (h *Handler) quickReply() []lineutil.QuickReplyItem {
	return append([]lineutil.QuickReplyItem{
		{Action: lineutil.NewPostbackActionWithDisplayText("📌 Chốt số hôm nay", "Chốt số hôm nay", postbackPrefix+"chotso")},
		{Action: lineutil.NewPostbackActionWithDisplayText("🔮 Tra phong thủy", "Phong thủy số", lineutil.PostbackPhongThuy)},
	}, lineutil.QuickReplyNavigation()...)
}

// cutWords drops the first n whitespace-separated words of text.
func cutWords(text string, n int) string {
	fields := strings.Fields(text)
	if n >= len(fields) {
		return ""
	}
	return strings.Join(fields[n:], " ")
}
