// Package usage implements the usage query module for the LINE bot.
// It tells a chat how much of its message quota is left.
package usage

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/xoso-linebot-go/internal/bot"
	"github.com/garyellow/xoso-linebot-go/internal/ctxutil"
	"github.com/garyellow/xoso-linebot-go/internal/lineutil"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/stringutil"
)

// Module constants
const (
	ModuleName     = "usage"
	senderName     = "Hạn mức"
	postbackPrefix = "usage:"
)

// Quota reports a chat's remaining allowance. *ratelimit.KeyedLimiter
// satisfies it.
type Quota interface {
	Available(key string) float64
	DailyRemaining(key string) int
	Limits() (burst float64, daily int)
	RefillRate() float64
}

var (
	usageKeywords = []string{"han muc", "hanmuc", "quota", "usage", "limit"}
	usageRegex    = bot.BuildKeywordRegex(usageKeywords)

	explainKeyword = "giai thich han muc"
)

// Handler handles usage-related queries.
type Handler struct {
	quota  Quota
	logger *logger.Logger
}

// NewHandler creates a new usage handler. quota may be nil when rate limiting
// is off.
func NewHandler(quota Quota, log *logger.Logger) *Handler {
	return &Handler{
		quota:  quota,
		logger: log,
	}
}

// Name returns the module name
func (h *Handler) Name() string {
	return ModuleName
}

// PostbackPrefix returns "usage:".
func (h *Handler) PostbackPrefix() string {
	return postbackPrefix
}

// CanHandle returns true for /hanmuc and the quota keywords.
func (h *Handler) CanHandle(text string) bool {
	if bot.IsCommand(text, "hanmuc", "quota") {
		return true
	}
	normalized := stringutil.NormalizeKeyword(text)
	return usageRegex.MatchString(normalized) || strings.EqualFold(normalized, explainKeyword)
}

// HandleMessage returns a card with the chat's quota status.
func (h *Handler) HandleMessage(ctx context.Context, text string) []messaging_api.MessageInterface {
	log := h.logger.WithModule(ModuleName)

	if strings.EqualFold(stringutil.NormalizeKeyword(text), explainKeyword) {
		log.Debug("Handling quota explanation request")
		return []messaging_api.MessageInterface{h.buildExplanationFlexMessage()}
	}

	log.Debug("Handling usage query")
	return []messaging_api.MessageInterface{h.buildUsageFlexMessage(ctxutil.GetChatID(ctx))}
}

// HandlePostback handles "query" and "explain".
func (h *Handler) HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface {
	if data == "explain" {
		return []messaging_api.MessageInterface{h.buildExplanationFlexMessage()}
	}
	return h.HandleMessage(ctx, "")
}

// buildUsageFlexMessage creates a Flex Message displaying usage statistics.
//
//	┌──────────────────────────┐
//	│   📊 Hạn mức sử dụng     │
//	├──────────────────────────┤
//	│ ⚡ Hạn mức tin nhắn      │
//	│ Còn lại: X / Y lượt      │
//	│ [colored bar 8px]        │
//	├──────────────────────────┤
//	│ 📅 Hạn mức trong ngày    │
//	├──────────────────────────┤
//	│     [❓ Giải thích]      │
//	└──────────────────────────┘
func (h *Handler) buildUsageFlexMessage(chatID string) *messaging_api.FlexMessage {
	hero := lineutil.NewHeroBox("📊 Hạn mức sử dụng", "")

	body := lineutil.NewBodyContentBuilder()
	altText := "Hạn mức sử dụng: không giới hạn"
	if h.quota == nil {
		body.AddComponent(lineutil.NewFlexText("Không giới hạn số lượt gửi.").
			WithSize("sm").
			WithColor(lineutil.ColorText).FlexText)
	} else {
		altText = h.addQuotaSections(body, chatID)
	}

	explainBtn := lineutil.NewFlexButton(
		lineutil.NewPostbackActionWithDisplayText("❓ Giải thích", "Giải thích hạn mức", postbackPrefix+"explain"),
	).WithStyle("secondary").WithHeight("sm")
	footer := lineutil.NewButtonFooter([]*lineutil.FlexButton{explainBtn})

	bubble := lineutil.NewFlexBubble(nil, hero.FlexBox, body.Build(), footer)
	return lineutil.NewFlexMessageWithQuickReply(altText, bubble.FlexBubble, lineutil.GetSender(senderName, ""), lineutil.QuickReplyNavigation()...)
}

// addQuotaSections adds the burst and daily sections and returns alt text.
func (h *Handler) addQuotaSections(body *lineutil.BodyContentBuilder, chatID string) string {
	burstMax, dailyMax := h.quota.Limits()
	available := int(math.Floor(h.quota.Available(chatID)))
	var percentage float64
	if burstMax > 0 {
		percentage = float64(available) / burstMax * 100
	}

	refillInfo := "Đang hồi phục"
	if rate := h.quota.RefillRate(); rate > 0 {
		secondsPerToken := 1.0 / rate
		if secondsPerToken >= 1 {
			refillInfo = fmt.Sprintf("Hồi 1 lượt mỗi %.0f giây", secondsPerToken)
		} else {
			refillInfo = fmt.Sprintf("Hồi %.1f lượt mỗi giây", rate)
		}
	}

	body.AddComponent(lineutil.NewFlexText("⚡ Hạn mức tin nhắn").
		WithWeight("bold").
		WithColor(lineutil.ColorText).
		WithSize("sm").FlexText)
	body.AddComponent(lineutil.NewFlexBox("vertical",
		lineutil.NewFlexText(fmt.Sprintf("Còn lại: %d / %d lượt", available, int(burstMax))).
			WithSize("sm").
			WithColor(lineutil.ColorText).FlexText,
		buildProgressBar(percentage).WithMargin("sm").FlexBox,
		lineutil.NewFlexText("💡 "+refillInfo).
			WithSize("xs").
			WithColor(lineutil.ColorSubtext).
			WithMargin("sm").FlexText,
	).FlexBox)

	alt := fmt.Sprintf("Hạn mức: còn %d / %d lượt", available, int(burstMax))

	remaining := h.quota.DailyRemaining(chatID)
	if dailyMax > 0 && remaining >= 0 {
		body.AddComponent(lineutil.NewFlexBox("vertical",
			lineutil.NewFlexText("📅 Hạn mức trong ngày").
				WithSize("xs").
				WithColor(lineutil.ColorText).
				WithWeight("bold").FlexText,
			lineutil.NewFlexText(fmt.Sprintf("Còn lại: %d / %d lượt", remaining, dailyMax)).
				WithSize("sm").
				WithColor(lineutil.ColorText).
				WithMargin("sm").FlexText,
			buildProgressBar(float64(remaining)/float64(dailyMax)*100).WithMargin("sm").FlexBox,
			lineutil.NewFlexText("💡 Tính theo 24 giờ gần nhất").
				WithSize("xs").
				WithColor(lineutil.ColorSubtext).
				WithMargin("sm").FlexText,
		).FlexBox)
		alt += fmt.Sprintf(", trong ngày còn %d / %d lượt", remaining, dailyMax)
	}
	return alt
}

// buildExplanationFlexMessage explains what consumes quota.
func (h *Handler) buildExplanationFlexMessage() *messaging_api.FlexMessage {
	hero := lineutil.NewHeroBox("❓ Giải thích hạn mức", "")

	body := lineutil.NewBodyContentBuilder()
	body.AddComponent(lineutil.NewFlexText("⚡ Hạn mức tin nhắn").
		WithWeight("bold").
		WithColor(lineutil.ColorText).
		WithSize("sm").FlexText)
	body.AddComponent(lineutil.NewFlexText("Mỗi tin nhắn hoặc nút bấm tính 1 lượt. Lượt dùng hết sẽ tự hồi sau ít giây.").
		WithSize("xs").
		WithColor(lineutil.ColorSubtext).
		WithWrap(true).
		WithMargin("sm").FlexText)
	body.AddComponent(lineutil.NewFlexText("📅 Hạn mức trong ngày").
		WithWeight("bold").
		WithColor(lineutil.ColorText).
		WithSize("sm").
		WithMargin("lg").FlexText)
	body.AddComponent(lineutil.NewFlexText("Tổng số lượt trong 24 giờ gần nhất. Trong nhóm, hạn mức được tính chung cho cả nhóm.").
		WithSize("xs").
		WithColor(lineutil.ColorSubtext).
		WithWrap(true).
		WithMargin("sm").FlexText)

	checkBtn := lineutil.NewFlexButton(
		lineutil.NewPostbackActionWithDisplayText("📊 Xem hạn mức", "Hạn mức", postbackPrefix+"query"),
	).WithStyle("primary").WithColor(lineutil.ColorButtonPrimary).WithHeight("sm")
	footer := lineutil.NewButtonFooter([]*lineutil.FlexButton{checkBtn})

	bubble := lineutil.NewFlexBubble(nil, hero.FlexBox, body.Build(), footer)
	return lineutil.NewFlexMessageWithQuickReply("Giải thích hạn mức", bubble.FlexBubble, lineutil.GetSender(senderName, ""), lineutil.QuickReplyNavigation()...)
}

// buildProgressBar draws percentage as two boxes whose flex ratio is the
// fill level. Empty boxes need an explicit height to render.
func buildProgressBar(percentage float64) *lineutil.FlexBox {
	percentage = max(0, min(percentage, 100))

	var color string
	switch {
	case percentage > 50:
		color = "#4CAF50"
	case percentage > 20:
		color = "#FFC107"
	default:
		color = "#F44336"
	}

	filledFlex := int32(percentage)
	emptyFlex := 100 - filledFlex
	if filledFlex == 0 && percentage > 0 {
		filledFlex, emptyFlex = 1, 99
	}

	const barHeight = "8px"

	filledBox := lineutil.NewFlexBox("vertical").WithBackgroundColor(color)
	filledBox.Height = barHeight
	filledBox.Flex = filledFlex

	emptyBox := lineutil.NewFlexBox("vertical").WithBackgroundColor("#E0E0E0")
	emptyBox.Height = barHeight
	emptyBox.Flex = emptyFlex

	bar := lineutil.NewFlexBox("horizontal", filledBox.FlexBox, emptyBox.FlexBox).WithCornerRadius("sm")
	bar.Height = barHeight
	return bar
}

var _ bot.Handler = (*Handler)(nil)
