// Package xien implements the combination ("xiên") module for the LINE bot.
// It pairs a number list n at a time, either from one "/xien n" message or
// through the guided Xiên 2/3/4 buttons.
package xien

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

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
	ModuleName     = "xien"
	senderName     = "Ghép xiên"
	postbackPrefix = "xien:"
)

// Reply texts.
const (
	Guide = "🎯 Xiên n\n" +
		"Cú pháp: /xien n rồi xuống dòng nhập dàn số (mỗi số >= 2 chữ số).\n" +
		"Ví dụ:\n/xien 3\n11 22 33 44 55"

	ResultHeader  = "Kết quả tổ hợp xiên:"
	SyntaxErrText = "❗ Cú pháp sai. Ví dụ: /xien 3\n11 22 33 44 55"
	ArityErrText  = "❗ Chỉ hỗ trợ xiên 2, 3 hoặc 4."
	promptFormat  = "Nhập dàn số (tách bằng khoảng trắng/phẩy). Bot sẽ ghép xiên %d:"
	tooFewFormat  = "❗ Cần ít nhất %d số khác nhau (mỗi số >= 2 chữ số) để ghép xiên %d."
	tokensCutNote = "(chỉ dùng %d số đầu tiên của dàn)"
)

// "xien 3", "xiên 3" after normalization; the arity is group 1.
var keywordPattern = regexp.MustCompile(`^xien(?:\s+(\d+))?(?:\s|$)`)

// Handler generates xiên combinations.
type Handler struct {
	sessions *session.Store
	metrics  *metrics.Metrics
	logger   *logger.Logger

	maxTokens   int
	maxResults  int
	maxMessages int
}

// NewHandler creates a new xiên handler.
func NewHandler(sessions *session.Store, m *metrics.Metrics, log *logger.Logger, botCfg *config.BotConfig) *Handler {
	return &Handler{
		sessions:    sessions,
		metrics:     m,
		logger:      log,
		maxTokens:   botCfg.MaxInputTokens,
		maxResults:  botCfg.MaxDisplayedResults,
		maxMessages: botCfg.MaxMessagesPerReply,
	}
}

// Name returns the module name
func (h *Handler) Name() string {
	return ModuleName
}

// PostbackPrefix returns "xien:".
func (h *Handler) PostbackPrefix() string {
	return postbackPrefix
}

// CanHandle matches "/xien ..." and a first line starting with "xiên".
func (h *Handler) CanHandle(text string) bool {
	if bot.IsCommand(text, ModuleName) {
		return true
	}
	head, _ := stringutil.CutFirstLine(text)
	return keywordPattern.MatchString(stringutil.NormalizeKeyword(head))
}

// HandleMessage handles "/xien n" with the numbers on the following lines.
// Numbers may also follow n on the first line when there is no body.
func (h *Handler) HandleMessage(ctx context.Context, text string) []messaging_api.MessageInterface {
	log := h.logger.WithModule(ModuleName)

	args, body := splitInput(text)
	if args == "" {
		return h.guide()
	}

	fields := strings.Fields(args)
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		log.Debugf("Invalid arity %q", fields[0])
		return h.textReply(SyntaxErrText)
	}
	if body == "" {
		body = strings.Join(fields[1:], " ")
	}
	if !lotto.ValidArity(n) {
		return h.textReply(ArityErrText)
	}
	if body == "" {
		h.sessions.Set(bot.SessionKey(ctx), session.AwaitXien(n))
		return h.prompt(n)
	}

	msgs, _ := h.generate(n, body)
	return msgs
}

// HandlePostback handles "2", "3" and "4" from the generator menu.
func (h *Handler) HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface {
	n, err := strconv.Atoi(data)
	if err != nil || !lotto.ValidArity(n) {
		h.logger.WithModule(ModuleName).Warnf("Unknown xien postback: %s", data)
		return h.guide()
	}
	h.sessions.Set(bot.SessionKey(ctx), session.AwaitXien(n))
	return h.prompt(n)
}

// OwnsState reports the xiên step.
func (h *Handler) OwnsState(state session.State) bool {
	return state == session.StateAwaitXien
}

// ContinueFlow combines the numbers sent after a Xiên button. Input that yields
// nothing keeps the chat waiting.
func (h *Handler) ContinueFlow(ctx context.Context, sess session.Session, text string) []messaging_api.MessageInterface {
	msgs, ok := h.generate(sess.XienArity, text)
	if ok {
		h.sessions.Reset(bot.SessionKey(ctx))
	}
	return msgs
}

// generate reports ok=false when no combination could be formed.
func (h *Handler) generate(n int, text string) ([]messaging_api.MessageInterface, bool) {
	tokens, droppedTokens := sliceutil.Head(lotto.TokenizeDigits(text, lotto.ModeMinTwoDigit), h.maxTokens)
	combos := lotto.CombineTokens(tokens, n)
	if len(combos) == 0 {
		h.metrics.RecordGenerator(ModuleName, metrics.OutcomeEmpty, 0)
		return h.textReply(fmt.Sprintf(tooFewFormat, n, n)), false
	}

	shown, hidden := sliceutil.Head(combos, h.maxResults)

	var sb strings.Builder
	sb.WriteString(ResultHeader)
	sb.WriteString("\n")
	sb.WriteString(lotto.FormatChunks(shown, lotto.CombinePerLine))
	if hidden > 0 {
		sb.WriteString("\n")
		sb.WriteString(lineutil.HiddenNote(hidden))
	}
	if droppedTokens > 0 {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, tokensCutNote, h.maxTokens)
	}

	outcome := metrics.OutcomeOK
	if hidden > 0 || droppedTokens > 0 {
		outcome = metrics.OutcomeTruncated
	}
	h.metrics.RecordGenerator(ModuleName, outcome, len(combos))

	msgs := lineutil.NewTextMessages(sb.String(), lineutil.GetSender(senderName, ""), h.maxMessages)
	lineutil.AddQuickReplyToMessages(msgs, h.quickReply()...)
	return msgs, true
}

func (h *Handler) guide() []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessageWithQuickReply(Guide, lineutil.GetSender(senderName, ""), h.quickReply()...),
	}
}

func (h *Handler) prompt(n int) []messaging_api.MessageInterface {
	return h.textReply(fmt.Sprintf(promptFormat, n))
}

func (h *Handler) textReply(text string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessageWithQuickReply(text, lineutil.GetSender(senderName, ""), lineutil.QuickReplyNavigation()...),
	}
}

// quickReply offers another arity next to the navigation buttons.
func (h *Handler) quickReply() []lineutil.QuickReplyItem {
	items := make([]lineutil.QuickReplyItem, 0, 5)
	for n := lotto.MinArity; n <= lotto.MaxArity; n++ {
		label := fmt.Sprintf("Xiên %d", n)
		items = append(items, lineutil.QuickReplyItem{
			Action: lineutil.NewPostbackActionWithDisplayText(label, label, fmt.Sprintf("%s%d", postbackPrefix, n)),
		})
	}
	return append(items, lineutil.QuickReplyNavigation()...)
}

// splitInput returns the text after the command or keyword on the first
// line, and the remaining lines.
func splitInput(text string) (args, body string) {
	if cmd, ok := bot.ParseCommand(text); ok {
		return cmd.Args, cmd.Body
	}
	head, body := stringutil.CutFirstLine(text)
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return "", body
	}
	return strings.Join(fields[1:], " "), body
}
