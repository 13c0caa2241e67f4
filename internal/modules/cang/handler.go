// Package cang implements the prefix merge ("ghép càng") module for the LINE bot.
//
// Three ways in:
//   - "cang: 1 3" on the first line, the numbers below
//   - "1,3 | 12 34 567", càng before the bar
//   - the Ghép càng 3D/4D buttons, which ask for the numbers and then the càng
package cang

import (
	"context"
	"fmt"
	"regexp"
	"slices"
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
	ModuleName     = "cang"
	senderName     = "Ghép càng"
	postbackPrefix = "cang:"
)

// Reply texts.
const (
	Guide = "🔢 Ghép càng\n" +
		"Gửi theo 1 trong các cách:\n" +
		"1) cang: 1 2 3 rồi xuống dòng nhập dàn số\n" +
		"   Ví dụ:\n" +
		"   cang: 1 3\n" +
		"   12 34 567\n\n" +
		"2) Gõ trực tiếp: 1,3 | 12 34 567 (trước dấu | là danh sách càng)\n\n" +
		"Không có càng thì bot ghép càng 0."

	ResultHeader     = "Kết quả ghép càng:"
	NoNumbersText    = "❗ Không nhận được dàn số hợp lệ."
	prompt3DText     = "Nhập dàn số 2 chữ số (tách khoảng trắng/phẩy). Sau đó bot sẽ hỏi càng:"
	prompt4DText     = "Nhập dàn số 3 chữ số (tách khoảng trắng/phẩy). Sau đó bot sẽ hỏi càng:"
	prefixPromptText = "Đã nhận %d số. Nhập càng (mỗi càng 1 chữ số, VD: 1 3 5):"
	noPrefixText     = "❗ Chưa nhận được càng. Nhập các càng 1 chữ số (VD: 1 3 5), hoặc gửi 0."
	tokensCutNote    = "(chỉ dùng %d số đầu tiên của dàn)"
)

var (
	// "cang:" / "càng:" header, the càng list is group 1.
	headerPattern = regexp.MustCompile(`^cang\s*:(.*)$`)
	// "1,3 | ..." with nothing but digits and separators before the bar.
	pipePattern = regexp.MustCompile(`^[\d\s,;.]*\d[\d\s,;.]*\|`)
)

// Handler merges càng onto number lists.
type Handler struct {
	sessions *session.Store
	metrics  *metrics.Metrics
	logger   *logger.Logger

	maxTokens   int
	maxResults  int
	maxMessages int
}

// NewHandler creates a new ghép càng handler.
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

// PostbackPrefix returns "cang:".
func (h *Handler) PostbackPrefix() string {
	return postbackPrefix
}

// CanHandle matches "/cang", a "cang:" header line and the "càng | dàn" form.
func (h *Handler) CanHandle(text string) bool {
	if bot.IsCommand(text, ModuleName) {
		return true
	}
	head, _ := stringutil.CutFirstLine(text)
	return headerPattern.MatchString(stringutil.NormalizeKeyword(head)) || pipePattern.MatchString(head)
}

// HandleMessage merges inline input. "/cang 3d" and "/cang 4d" start the
// guided flow; a bare "/cang" shows the guide.
func (h *Handler) HandleMessage(ctx context.Context, text string) []messaging_api.MessageInterface {
	input := text
	if cmd, ok := bot.ParseCommand(text); ok {
		input = cmd.Input()
	}

	if strings.TrimSpace(input) == "" {
		return h.guide()
	}
	if mode, ok := parseMode(input); ok {
		return h.startFlow(ctx, mode)
	}

	prefixText, numberText := splitInline(input)
	numbers, dropped := sliceutil.Head(lotto.TokenizeDigits(numberText, lotto.ModeTwoOrThreeDigit), h.maxTokens)
	if len(numbers) == 0 {
		h.metrics.RecordGenerator(ModuleName, metrics.OutcomeEmpty, 0)
		return h.textReply(NoNumbersText)
	}

	return h.merge(numbers, lotto.TokenizeDigits(prefixText, lotto.ModeSingleDigit), dropped)
}

// HandlePostback handles "3d" and "4d" from the generator menu.
func (h *Handler) HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface {
	mode, ok := parseMode(data)
	if !ok {
		h.logger.WithModule(ModuleName).Warnf("Unknown cang postback: %s", data)
		return h.guide()
	}
	return h.startFlow(ctx, mode)
}

// OwnsState reports both guided steps.
func (h *Handler) OwnsState(state session.State) bool {
	return state == session.StateAwaitCangNumbers || state == session.StateAwaitCangPrefixes
}

// ContinueFlow takes the numbers, then the càng.
func (h *Handler) ContinueFlow(ctx context.Context, sess session.Session, text string) []messaging_api.MessageInterface {
	key := bot.SessionKey(ctx)

	switch sess.State {
	case session.StateAwaitCangNumbers:
		numbers := keepLength(lotto.TokenizeDigits(text, lotto.ModeTwoOrThreeDigit), sess.CangMode.NumberLength())
		if len(numbers) == 0 {
			return h.textReply(NoNumbersText + "\n" + modePrompt(sess.CangMode))
		}
		numbers, _ = sliceutil.Head(numbers, h.maxTokens)
		h.sessions.Set(key, session.AwaitCangPrefixes(sess.CangMode, numbers))
		return h.textReply(fmt.Sprintf(prefixPromptText, len(numbers)))

	case session.StateAwaitCangPrefixes:
		if !strings.ContainsAny(text, "0123456789") {
			return h.textReply(noPrefixText)
		}
		h.sessions.Reset(key)
		return h.merge(sess.Numbers, lotto.TokenizeDigits(text, lotto.ModeSingleDigit), 0)

	default:
		h.sessions.Reset(key)
		return h.guide()
	}
}

func (h *Handler) startFlow(ctx context.Context, mode session.CangMode) []messaging_api.MessageInterface {
	h.sessions.Set(bot.SessionKey(ctx), session.AwaitCangNumbers(mode))
	return h.textReply(modePrompt(mode))
}

func (h *Handler) merge(numbers, prefixes []string, droppedTokens int) []messaging_api.MessageInterface {
	merged := lotto.MergePrefix(numbers, prefixes)
	shown, hidden := sliceutil.Head(merged, h.maxResults)

	var sb strings.Builder
	sb.WriteString(ResultHeader)
	sb.WriteString("\n")
	sb.WriteString(lotto.FormatChunks(shown, lotto.MergePerLine))
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
	h.metrics.RecordGenerator(ModuleName, outcome, len(merged))

	msgs := lineutil.NewTextMessages(sb.String(), lineutil.GetSender(senderName, ""), h.maxMessages)
	lineutil.AddQuickReplyToMessages(msgs, h.quickReply()...)
	return msgs
}

func (h *Handler) guide() []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessageWithQuickReply(Guide, lineutil.GetSender(senderName, ""), h.quickReply()...),
	}
}

func (h *Handler) textReply(text string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{
		lineutil.NewTextMessageWithQuickReply(text, lineutil.GetSender(senderName, ""), lineutil.QuickReplyNavigation()...),
	}
}

func (h *Handler) quickReply() []lineutil.QuickReplyItem {
	return append([]lineutil.QuickReplyItem{
		{Action: lineutil.NewPostbackActionWithDisplayText("🔢 Càng 3D", "Ghép càng 3D", postbackPrefix+"3d")},
		{Action: lineutil.NewPostbackActionWithDisplayText("🔢 Càng 4D", "Ghép càng 4D", postbackPrefix+"4d")},
	}, lineutil.QuickReplyNavigation()...)
}

func modePrompt(mode session.CangMode) string {
	if mode == session.Cang4D {
		return prompt4DText
	}
	return prompt3DText
}

// parseMode reads "3d" / "4d", case-insensitively.
func parseMode(s string) (session.CangMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "3d":
		return session.Cang3D, true
	case "4d":
		return session.Cang4D, true
	default:
		return 0, false
	}
}

// splitInline separates the càng list from the numbers. Without a header or
// a bar everything is numbers and the default càng applies.
func splitInline(text string) (prefixes, numbers string) {
	head, body := stringutil.CutFirstLine(text)
	if m := headerPattern.FindStringSubmatch(stringutil.NormalizeKeyword(head)); m != nil {
		return m[1], body
	}
	if left, right, ok := strings.Cut(text, "|"); ok {
		return left, right
	}
	return "", text
}

func keepLength(tokens []string, n int) []string {
	return slices.DeleteFunc(tokens, func(t string) bool { return len(t) != n })
}
