// Package ungho implements the support and feedback module for the LINE bot.
package ungho

import (
	"context"
	"slices"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/xoso-linebot-go/internal/bot"
	"github.com/garyellow/xoso-linebot-go/internal/config"
	"github.com/garyellow/xoso-linebot-go/internal/lineutil"
	"github.com/garyellow/xoso-linebot-go/internal/stringutil"
)

// Module constants
const (
	ModuleName     = "ungho"
	senderName     = "Ủng hộ & Góp ý"
	postbackPrefix = lineutil.PostbackUngHo
)

// Text is the support message.
const Text = "💖 Ủng hộ & Góp ý\n" +
	"Cảm ơn bạn đã sử dụng Trợ lý Xổ số!\n" +
	"Nếu thấy bot hữu ích, bạn có thể ủng hộ để duy trì máy chủ.\n" +
	"Mọi góp ý, báo lỗi hoặc đề xuất tính năng đều được trân trọng."

var keywords = []string{"ung ho", "gop y", "ung ho gop y"}

// Handler answers /ungho.
type Handler struct {
	supportURL  string
	feedbackURL string
}

// NewHandler creates a new support handler. Empty URLs hide their buttons.
func NewHandler(botCfg *config.BotConfig) *Handler {
	return &Handler{
		supportURL:  botCfg.SupportURL,
		feedbackURL: botCfg.FeedbackURL,
	}
}

// Name returns the module name
func (h *Handler) Name() string {
	return ModuleName
}

// PostbackPrefix returns "ungho".
func (h *Handler) PostbackPrefix() string {
	return postbackPrefix
}

// CanHandle matches /ungho, /gopy and "ủng hộ".
func (h *Handler) CanHandle(text string) bool {
	if bot.IsCommand(text, "ungho", "gopy") {
		return true
	}
	return slices.Contains(keywords, stringutil.NormalizeKeyword(text))
}

// HandleMessage returns the support card.
func (h *Handler) HandleMessage(_ context.Context, _ string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{h.card()}
}

// HandlePostback returns the support card.
func (h *Handler) HandlePostback(_ context.Context, _ string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{h.card()}
}

func (h *Handler) card() messaging_api.MessageInterface {
	sender := lineutil.GetSender(senderName, "")

	var buttons []*lineutil.FlexButton
	if h.supportURL != "" {
		buttons = append(buttons, lineutil.NewFlexButton(lineutil.NewURIAction("💖 Ủng hộ", h.supportURL)).
			WithStyle("primary").WithColor(lineutil.ColorButtonPrimary).WithHeight("sm"))
	}
	if h.feedbackURL != "" {
		buttons = append(buttons, lineutil.NewFlexButton(lineutil.NewURIAction("✉️ Góp ý", h.feedbackURL)).
			WithStyle("secondary").WithHeight("sm"))
	}
	if len(buttons) == 0 {
		return lineutil.NewTextMessageWithQuickReply(Text, sender, lineutil.QuickReplyMainMenu()...)
	}

	hero := lineutil.NewHeroBox("💖 Ủng hộ & Góp ý", "")
	body := lineutil.NewBodyContentBuilder().
		AddComponent(lineutil.NewFlexText(Text).WithSize("sm").WithColor(lineutil.ColorText).WithWrap(true).FlexText)
	bubble := lineutil.NewFlexBubble(nil, hero.FlexBox, body.Build(), lineutil.NewButtonFooter(buttons))
	return lineutil.NewFlexMessageWithQuickReply(Text, bubble.FlexBubble, sender, lineutil.QuickReplyMainMenu()...)
}

var _ bot.Handler = (*Handler)(nil)
