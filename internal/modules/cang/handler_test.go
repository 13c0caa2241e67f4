package cang

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/xoso-linebot-go/internal/config"
	"github.com/garyellow/xoso-linebot-go/internal/ctxutil"
	"github.com/garyellow/xoso-linebot-go/internal/lineutil"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/metrics"
	"github.com/garyellow/xoso-linebot-go/internal/session"
)

const chatID = "U1234567890"

func setupTestHandler(t *testing.T, maxTokens, maxResults int) (*Handler, *session.Store, *metrics.Metrics) {
	t.Helper()

	sessions := session.NewStore(10, time.Hour, nil)
	m := metrics.New(prometheus.NewRegistry())
	botCfg := &config.BotConfig{
		MaxInputTokens:      maxTokens,
		MaxDisplayedResults: maxResults,
		MaxMessagesPerReply: 5,
	}
	return NewHandler(sessions, m, logger.NewWithWriter("error", io.Discard), botCfg), sessions, m
}

func chatCtx() context.Context {
	return ctxutil.WithChatID(context.Background(), chatID)
}

func firstText(t *testing.T, msgs []messaging_api.MessageInterface) string {
	t.Helper()
	require.NotEmpty(t, msgs)
	msg, ok := msgs[0].(*messaging_api.TextMessage)
	require.True(t, ok, "expected text message, got %T", msgs[0])
	return msg.Text
}

func TestCanHandle(t *testing.T) {
	t.Parallel()
	h, _, _ := setupTestHandler(t, 100, 1000)

	tests := []struct {
		input string
		want  bool
	}{
		{"/cang", true},
		{"/cang 3d", true},
		{"cang: 1 3\n12 34 567", true},
		{"Càng: 1 3\n12 34", true},
		{"CANG : 5\n12", true},
		{"1,3 | 12 34 567", true},
		{"1 | 12", true},
		{"a | b", false},
		{"| 12 34", false},
		{"càng đẹp", false},
		{"12 34 567", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, h.CanHandle(tt.input))
		})
	}
}

func TestHandleMessage_Inline(t *testing.T) {
	t.Parallel()
	h, _, m := setupTestHandler(t, 100, 1000)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"header form", "cang: 1 3\n12 34 567", "112, 134, 1567, 312, 334, 3567"},
		{"pipe form", "1,3 | 12 34 567", "112, 134, 1567, 312, 334, 3567"},
		{"command with header", "/cang cang: 5\n12 345", "512, 5345"},
		{"command default prefix", "/cang 12 34", "012, 034"},
		{"long token truncated first", "cang: 9\n12345 7", "9123"},
		{"duplicates collapse", "2 2 | 12 12 13", "212, 213"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, ResultHeader+"\n"+tt.want, firstText(t, h.HandleMessage(chatCtx(), tt.input)))
		})
	}

	assert.InDelta(t, len(tests), testutil.ToFloat64(m.GeneratorRequestsTotal.WithLabelValues(ModuleName, metrics.OutcomeOK)), 0)
}

func TestHandleMessage_Guidance(t *testing.T) {
	t.Parallel()
	h, sessions, m := setupTestHandler(t, 100, 1000)

	assert.Equal(t, Guide, firstText(t, h.HandleMessage(chatCtx(), "/cang")))
	assert.Equal(t, NoNumbersText, firstText(t, h.HandleMessage(chatCtx(), "cang: 1 3\n5 7")))
	assert.Equal(t, NoNumbersText, firstText(t, h.HandleMessage(chatCtx(), "1 | abc")))

	assert.True(t, sessions.Get(chatID).IsIdle())
	assert.InDelta(t, 2, testutil.ToFloat64(m.GeneratorRequestsTotal.WithLabelValues(ModuleName, metrics.OutcomeEmpty)), 0)
}

func TestHandleMessage_Truncation(t *testing.T) {
	t.Parallel()
	h, _, _ := setupTestHandler(t, 2, 3)

	text := firstText(t, h.HandleMessage(chatCtx(), "1 2 | 10 20 30"))
	assert.Equal(t, ResultHeader+"\n110, 120, 210\n"+lineutil.HiddenNote(1)+"\n(chỉ dùng 2 số đầu tiên của dàn)", text)
}

func TestFlow_3D(t *testing.T) {
	t.Parallel()
	h, sessions, _ := setupTestHandler(t, 100, 1000)
	ctx := chatCtx()

	assert.Equal(t, prompt3DText, firstText(t, h.HandlePostback(ctx, "3d")))
	sess := sessions.Get(chatID)
	require.Equal(t, session.StateAwaitCangNumbers, sess.State)
	require.True(t, h.OwnsState(sess.State))

	// 3D keeps only two-digit numbers.
	reply := firstText(t, h.ContinueFlow(ctx, sess, "12, 345, 67"))
	assert.Equal(t, "Đã nhận 2 số. Nhập càng (mỗi càng 1 chữ số, VD: 1 3 5):", reply)

	sess = sessions.Get(chatID)
	require.Equal(t, session.StateAwaitCangPrefixes, sess.State)
	assert.Equal(t, []string{"12", "67"}, sess.Numbers)

	assert.Equal(t, noPrefixText, firstText(t, h.ContinueFlow(ctx, sess, "menu")))
	assert.Equal(t, session.StateAwaitCangPrefixes, sessions.Get(chatID).State)

	// Full-width digits are not càng; ask again instead of merging with 0.
	assert.Equal(t, noPrefixText, firstText(t, h.ContinueFlow(ctx, sess, "１ ３")))
	assert.Equal(t, session.StateAwaitCangPrefixes, sessions.Get(chatID).State)

	assert.Equal(t, ResultHeader+"\n112, 167, 512, 567", firstText(t, h.ContinueFlow(ctx, sess, "1 5")))
	assert.True(t, sessions.Get(chatID).IsIdle())
}

func TestFlow_4D(t *testing.T) {
	t.Parallel()
	h, sessions, _ := setupTestHandler(t, 100, 1000)
	ctx := chatCtx()

	assert.Equal(t, prompt4DText, firstText(t, h.HandleMessage(ctx, "/cang 4D")))
	sess := sessions.Get(chatID)
	require.Equal(t, session.Cang4D, sess.CangMode)

	reply := firstText(t, h.ContinueFlow(ctx, sess, "12 34"))
	assert.Equal(t, NoNumbersText+"\n"+prompt4DText, reply)
	assert.Equal(t, session.StateAwaitCangNumbers, sessions.Get(chatID).State)

	h.ContinueFlow(ctx, sess, "123 4567")
	sess = sessions.Get(chatID)
	assert.Equal(t, []string{"123", "456"}, sess.Numbers)

	// No single-digit càng falls back to 0.
	assert.Equal(t, ResultHeader+"\n0123, 0456", firstText(t, h.ContinueFlow(ctx, sess, "12")))
}

func TestHandlePostback_Unknown(t *testing.T) {
	t.Parallel()
	h, sessions, _ := setupTestHandler(t, 100, 1000)

	assert.Equal(t, Guide, firstText(t, h.HandlePostback(chatCtx(), "5d")))
	assert.True(t, sessions.Get(chatID).IsIdle())
}
