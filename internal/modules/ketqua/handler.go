// Package ketqua implements the XSMB draw results module for the LINE bot.
package ketqua

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/xoso-linebot-go/internal/bot"
	"github.com/garyellow/xoso-linebot-go/internal/canchi"
	domerrors "github.com/garyellow/xoso-linebot-go/internal/errors"
	"github.com/garyellow/xoso-linebot-go/internal/lineutil"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/metrics"
	"github.com/garyellow/xoso-linebot-go/internal/session"
	"github.com/garyellow/xoso-linebot-go/internal/storage"
	"github.com/garyellow/xoso-linebot-go/internal/stringutil"
)

// Module constants
const (
	ModuleName     = "ketqua"
	senderName     = "Kết quả XSMB"
	postbackPrefix = "ketqua:"
)

// Reply texts.
const (
	Guide = "📅 Kết quả XSMB\n" +
		"/ketqua xem kỳ mới nhất, /ketqua 25/07/2024 xem theo ngày.\n" +
		"Có thể gõ: kq hôm nay, kết quả 2024-07-25."

	MenuText        = "📅 Tra cứu kết quả XSMB. Chọn thao tác:"
	PromptText      = "Nhập ngày (VD: 2024-07-25 hoặc 25/07/2024):"
	InvalidDateText = "❗ Định dạng ngày không hợp lệ. Ví dụ: 2024-07-25 hoặc 25/07/2024"
	notFoundFormat  = "❗ Không có dữ liệu cho ngày %s"
	NoDataText      = "❗ Chưa có dữ liệu kết quả."
	loadErrorText   = "Không tải được kết quả"
)

// ResultService looks draws up.
type ResultService interface {
	ByDate(ctx context.Context, day time.Time) (*storage.DrawResult, error)
	Latest(ctx context.Context) (*storage.DrawResult, error)
}

var keywords = []string{"ket qua", "ketqua", "kqxs", "xsmb", "kq"}

var keywordRegex = bot.BuildKeywordRegex(keywords)

// Handler answers draw result lookups.
type Handler struct {
	results  ResultService
	sessions *session.Store
	metrics  *metrics.Metrics
	logger   *logger.Logger
	now      func() time.Time
}

// NewHandler creates a new results handler.
func NewHandler(results ResultService, sessions *session.Store, m *metrics.Metrics, log *logger.Logger) *Handler {
	return &Handler{
		results:  results,
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

// PostbackPrefix returns "ketqua:".
func (h *Handler) PostbackPrefix() string {
	return postbackPrefix
}

// CanHandle matches /ketqua, /kq and the result keywords.
func (h *Handler) CanHandle(text string) bool {
	if bot.IsCommand(text, "ketqua", "kq", "xsmb") {
		return true
	}
	_, ok := matchKeyword(text)
	return ok
}

// HandleMessage shows the latest draw, or the draw of the date given after
// the command.
func (h *Handler) HandleMessage(ctx context.Context, text string) []messaging_api.MessageInterface {
	var input string
	if cmd, ok := bot.ParseCommand(text); ok {
		input = cmd.Input()
	} else {
		input, _ = matchKeyword(text)
	}

	if strings.TrimSpace(input) == "" {
		return h.latest(ctx)
	}
	msgs, _ := h.byDateText(ctx, input)
	return msgs
}

// HandlePostback handles "menu", "date", "latest" and "date$YYYY-MM-DD".
func (h *Handler) HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface {
	pb, err := bot.ParsePostback(postbackPrefix + data)
	if err != nil {
		pb = &bot.PostbackData{Module: ModuleName}
	}

	switch pb.Action {
	case "latest":
		return h.latest(ctx)
	case "date":
		if day := pb.Param(0); day != "" {
			d, err := time.ParseInLocation(storage.DateLayout, day, lineutil.GetVietnamLocation())
			if err != nil {
				return h.textReply(InvalidDateText)
			}
			return h.byDate(ctx, d)
		}
		h.sessions.Set(bot.SessionKey(ctx), session.AwaitResultDate())
		return h.textReply(PromptText)
	case "menu":
	default:
		h.logger.WithModule(ModuleName).Warnf("Unknown ketqua postback: %s", data)
	}
	return h.menu()
}

// OwnsState reports the date step.
func (h *Handler) OwnsState(state session.State) bool {
	return state == session.StateAwaitResultDate
}

// ContinueFlow reads the date sent after the "Kết quả theo ngày" button.
// A malformed date keeps the chat waiting.
func (h *Handler) ContinueFlow(ctx context.Context, _ session.Session, text string) []messaging_api.MessageInterface {
	msgs, ok := h.byDateText(ctx, text)
	if ok {
		h.sessions.Reset(bot.SessionKey(ctx))
	}
	return msgs
}

// byDateText reports ok=false only when text is not a date.
func (h *Handler) byDateText(ctx context.Context, text string) ([]messaging_api.MessageInterface, bool) {
	day, err := canchi.ParseDate(text, h.now())
	if err != nil {
		h.metrics.RecordLookup(metrics.LookupKetQua, metrics.OutcomeInvalid)
		return h.textReply(InvalidDateText), false
	}
	return h.byDate(ctx, day), true
}

func (h *Handler) byDate(ctx context.Context, day time.Time) []messaging_api.MessageInterface {
	r, err := h.results.ByDate(ctx, day)
	if err != nil {
		if domerrors.IsNotFound(err) {
			h.metrics.RecordLookup(metrics.LookupKetQua, metrics.OutcomeNotFound)
			return h.textReply(notFoundText(day))
		}
		return h.failure(err)
	}
	h.metrics.RecordLookup(metrics.LookupKetQua, metrics.OutcomeOK)
	return h.card(r)
}

func (h *Handler) latest(ctx context.Context) []messaging_api.MessageInterface {
	r, err := h.results.Latest(ctx)
	if err != nil {
		if domerrors.IsNotFound(err) {
			h.metrics.RecordLookup(metrics.LookupKetQua, metrics.OutcomeNotFound)
			return h.textReply(NoDataText)
		}
		return h.failure(err)
	}
	h.metrics.RecordLookup(metrics.LookupKetQua, metrics.OutcomeOK)
	return h.card(r)
}

func (h *Handler) failure(err error) []messaging_api.MessageInterface {
	h.logger.WithModule(ModuleName).WithError(err).Error("Result lookup failed")
	h.metrics.RecordLookup(metrics.LookupKetQua, metrics.OutcomeError)
	return []messaging_api.MessageInterface{
		lineutil.ErrorMessageWithDetailAndSender(loadErrorText, lineutil.GetSender(senderName, "")),
	}
}

func (h *Handler) card(r *storage.DrawResult) []messaging_api.MessageInterface {
	msg := lineutil.NewFlexMessageWithQuickReply(FormatResult(r), buildResultBubble(r).FlexBubble, lineutil.GetSender(senderName, ""), h.quickReply()...)
	return []messaging_api.MessageInterface{msg}
}

func (h *Handler) menu() []messaging_api.MessageInterface {
	return h.textReply(MenuText)
}

func (h *Handler) textReply(text string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessageWithQuickReply(text, lineutil.GetSender(senderName, ""), h.quickReply()...),
	}
}

func (h *Handler) quickReply() []lineutil.QuickReplyItem {
	return append([]lineutil.QuickReplyItem{
		{Action: lineutil.NewPostbackActionWithDisplayText("📅 Kết quả theo ngày", "Kết quả theo ngày", postbackPrefix+"date")},
		{Action: lineutil.NewPostbackActionWithDisplayText("🔥 Kết quả mới nhất", "Kết quả mới nhất", postbackPrefix+"latest")},
	}, lineutil.QuickReplyNavigation()...)
}

func notFoundText(day time.Time) string {
	return fmt.Sprintf(notFoundFormat, lineutil.FormatDate(day))
}

// matchKeyword returns the text after a result keyword. Anything but a date
// after the keyword is ordinary chat.
func matchKeyword(text string) (rest string, ok bool) {
	normalized := stringutil.NormalizeKeyword(text)
	kw := bot.MatchKeyword(keywordRegex, normalized)
	if kw == "" {
		return "", false
	}
	rest = bot.ExtractSearchTerm(normalized, kw)
	if rest == "" || canchi.IsToday(rest) {
		return rest, true
	}
	return rest, rest[0] >= '0' && rest[0] <= '9'
}
