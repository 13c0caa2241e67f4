// Package menu implements the main menu for the LINE bot. It greets new
// chats and answers anything no other module recognized.
package menu

import (
	"context"
	"slices"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/xoso-linebot-go/internal/bot"
	"github.com/garyellow/xoso-linebot-go/internal/lineutil"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/stringutil"
)

// Module constants
const (
	ModuleName     = "menu"
	senderName     = "Trợ lý Xổ số"
	postbackPrefix = "menu"
)

// Reply texts.
const (
	WelcomeText = "📋 Chào mừng bạn đến với Trợ lý Xổ số!"

	CommandList = "Chọn tính năng bên dưới hoặc dùng các lệnh:\n" +
		"• /cang – Ghép càng vào dàn số\n" +
		"• /dao – Đảo số (hoán vị 2–6 chữ số)\n" +
		"• /xien – Ghép xiên n từ dàn\n" +
		"• /phongthuy – Tra phong thủy ngày/can chi\n" +
		"• /chotso – Gợi ý chốt số theo ngày hiện tại\n" +
		"• /ketqua – Kết quả XSMB\n" +
		"• /ungho – Ủng hộ & góp ý\n" +
		"• /help – Hướng dẫn chi tiết"

	GeneratorsText = "🔢 Chọn thao tác:"
)

var keywords = []string{"menu", "start", "bat dau"}

// Handler shows the main menu and the generator submenu.
type Handler struct {
	logger *logger.Logger
}

// NewHandler creates a new menu handler.
func NewHandler(log *logger.Logger) *Handler {
	return &Handler{logger: log}
}

// Name returns the module name
func (h *Handler) Name() string {
	return ModuleName
}

// PostbackPrefix returns "menu", which also covers "menu:xcd".
func (h *Handler) PostbackPrefix() string {
	return postbackPrefix
}

// CanHandle matches /start, /menu and the bare words "menu", "start" and
// "bắt đầu".
func (h *Handler) CanHandle(text string) bool {
	if bot.IsCommand(text, "start", "menu") {
		return true
	}
	return slices.Contains(keywords, stringutil.NormalizeKeyword(text))
}

// HandleMessage always returns the main menu.
func (h *Handler) HandleMessage(_ context.Context, _ string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{MainMenu()}
}

// HandlePostback handles "menu" (main menu) and "menu:xcd" (generators).
func (h *Handler) HandlePostback(_ context.Context, data string) []messaging_api.MessageInterface {
	switch data {
	case "", ":":
		return []messaging_api.MessageInterface{MainMenu()}
	case ":xcd":
		return []messaging_api.MessageInterface{GeneratorMenu()}
	}
	h.logger.WithModule(ModuleName).Warnf("Unknown menu postback: %s", data)
	return []messaging_api.MessageInterface{MainMenu()}
}

// MainMenu builds the welcome card with one button per feature.
func MainMenu() messaging_api.MessageInterface {
	hero := lineutil.NewHeroBox(WelcomeText, "XSMB · Xiên · Càng · Đảo · Phong thủy")

	body := lineutil.NewBodyContentBuilder().
		AddComponent(lineutil.NewFlexText(CommandList).WithSize("sm").WithColor(lineutil.ColorText).WithWrap(true).FlexText)

	footer := lineutil.NewButtonFooter(
		[]*lineutil.FlexButton{
			lineutil.NewFlexButton(lineutil.NewPostbackActionWithDisplayText("🔢 Ghép xiên/ Càng/ Đảo số", "Ghép xiên/ Càng/ Đảo số", lineutil.PostbackGenerators)).
				WithStyle("primary").WithColor(lineutil.ColorButtonPrimary).WithHeight("sm"),
		},
		[]*lineutil.FlexButton{
			lineutil.NewFlexButton(lineutil.NewPostbackActionWithDisplayText("🔮 Phong thủy", "Phong thủy số", lineutil.PostbackPhongThuy)).
				WithStyle("secondary").WithHeight("sm"),
			lineutil.NewFlexButton(lineutil.NewPostbackActionWithDisplayText("📅 Kết quả", "Kết quả xổ số", lineutil.PostbackKetQua)).
				WithStyle("secondary").WithHeight("sm"),
		},
		[]*lineutil.FlexButton{
			lineutil.NewFlexButton(lineutil.NewPostbackActionWithDisplayText("💖 Ủng hộ & Góp ý", "Ủng hộ & Góp ý", lineutil.PostbackUngHo)).
				WithStyle("secondary").WithHeight("sm"),
		},
	)

	bubble := lineutil.NewFlexBubble(nil, hero.FlexBox, body.Build(), footer)
	return lineutil.NewFlexMessageWithQuickReply(WelcomeText+"\n\n"+CommandList, bubble.FlexBubble,
		lineutil.GetSender(senderName, ""), lineutil.QuickReplyMainMenu()...)
}

// GeneratorMenu lists the number generators as quick replies.
func GeneratorMenu() messaging_api.MessageInterface {
	items := []lineutil.QuickReplyItem{
		{Action: lineutil.NewPostbackActionWithDisplayText("✨ Xiên 2", "Xiên 2", "xien:2")},
		{Action: lineutil.NewPostbackActionWithDisplayText("✨ Xiên 3", "Xiên 3", "xien:3")},
		{Action: lineutil.NewPostbackActionWithDisplayText("✨ Xiên 4", "Xiên 4", "xien:4")},
		{Action: lineutil.NewPostbackActionWithDisplayText("🔢 Càng 3D", "Ghép càng 3D", "cang:3d")},
		{Action: lineutil.NewPostbackActionWithDisplayText("🔢 Càng 4D", "Ghép càng 4D", "cang:4d")},
		{Action: lineutil.NewPostbackActionWithDisplayText("🔄 Đảo số", "Đảo số", "dao:start")},
		lineutil.QuickReplyMenuAction(),
	}
	return lineutil.NewTextMessageWithQuickReply(GeneratorsText, lineutil.GetSender(senderName, ""), items...)
}

var _ bot.Handler = (*Handler)(nil)
