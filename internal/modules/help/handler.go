// Package help implements the usage guide module for the LINE bot.
package help

import (
	"context"
	"slices"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/xoso-linebot-go/internal/bot"
	"github.com/garyellow/xoso-linebot-go/internal/config"
	"github.com/garyellow/xoso-linebot-go/internal/lineutil"
	"github.com/garyellow/xoso-linebot-go/internal/modules/cang"
	"github.com/garyellow/xoso-linebot-go/internal/modules/dao"
	"github.com/garyellow/xoso-linebot-go/internal/modules/ketqua"
	"github.com/garyellow/xoso-linebot-go/internal/modules/phongthuy"
	"github.com/garyellow/xoso-linebot-go/internal/modules/xien"
	"github.com/garyellow/xoso-linebot-go/internal/stringutil"
)

// Module constants
const (
	ModuleName     = "help"
	senderName     = "Hướng dẫn"
	postbackPrefix = "help"
)

// QuickGuide opens the help text.
const QuickGuide = "ℹ️ Hướng dẫn nhanh\n" +
	"- Xiên: nhập dàn số (22 33 44 ...) rồi chọn Xiên 2/3/4.\n" +
	"- Càng: chọn Ghép càng 3D/4D, nhập dàn, sau đó nhập càng (1 chữ số).\n" +
	"- Đảo số: nhập số 2-6 chữ số, bot trả mọi hoán vị.\n" +
	"- KQ: chọn KQ theo ngày hoặc KQ mới nhất.\n" +
	"- Phong thủy: nhập ngày dương hoặc can chi.\n" +
	"- Gửi reset bất cứ lúc nào để hủy thao tác đang dở."

var keywords = []string{"huong dan", "help", "tro giup"}

// Text is the full guide: the quick guide followed by every module's guide.
var Text = strings.Join([]string{
	QuickGuide,
	cang.Guide,
	dao.Guide,
	xien.Guide,
	phongthuy.Guide,
	phongthuy.ChotSoGuide,
	ketqua.Guide,
}, "\n\n")

// Handler answers /help.
type Handler struct {
	maxMessages int
}

// NewHandler creates a new help handler.
func NewHandler(botCfg *config.BotConfig) *Handler {
	return &Handler{maxMessages: botCfg.MaxMessagesPerReply}
}

// Name returns the module name
func (h *Handler) Name() string {
	return ModuleName
}

// PostbackPrefix returns "help".
func (h *Handler) PostbackPrefix() string {
	return postbackPrefix
}

// CanHandle matches /help, /huongdan and "hướng dẫn".
func (h *Handler) CanHandle(text string) bool {
	if bot.IsCommand(text, "help", "huongdan") {
		return true
	}
	return slices.Contains(keywords, stringutil.NormalizeKeyword(text))
}

// HandleMessage returns the guide.
func (h *Handler) HandleMessage(_ context.Context, _ string) []messaging_api.MessageInterface {
	return h.guide()
}

// HandlePostback returns the guide for any data.
func (h *Handler) HandlePostback(_ context.Context, _ string) []messaging_api.MessageInterface {
	return h.guide()
}

func (h *Handler) guide() []messaging_api.MessageInterface {
	msgs := lineutil.NewTextMessages(Text, lineutil.GetSender(senderName, ""), h.maxMessages)
	lineutil.AddQuickReplyToMessages(msgs, lineutil.QuickReplyMainMenu()...)
	return msgs
}

var _ bot.Handler = (*Handler)(nil)
