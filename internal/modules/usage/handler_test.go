package usage

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/xoso-linebot-go/internal/ctxutil"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/ratelimit"
)

func newLimiter(t *testing.T) *ratelimit.KeyedLimiter {
	t.Helper()
	kl := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "chat",
		Burst:         10,
		RefillRate:    0.5,
		DailyLimit:    100,
		CleanupPeriod: time.Hour,
	})
	t.Cleanup(kl.Stop)
	return kl
}

func flexAlt(t *testing.T, msgs []messaging_api.MessageInterface) string {
	t.Helper()
	require.Len(t, msgs, 1)
	msg, ok := msgs[0].(*messaging_api.FlexMessage)
	require.True(t, ok, "expected flex message, got %T", msgs[0])
	require.NotNil(t, msg.QuickReply)
	return msg.AltText
}

func TestHandler_CanHandle(t *testing.T) {
	t.Parallel()
	h := NewHandler(nil, logger.NewWithWriter("error", io.Discard))

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"vietnamese", "hạn mức", true},
		{"vietnamese_no_accent", "han muc", true},
		{"joined", "hanmuc", true},
		{"command", "/hanmuc", true},
		{"quota", "QUOTA", true},
		{"with_spaces", "  usage  ", true},
		{"explain", "Giải thích hạn mức", true},
		{"random_text", "xin chào", false},
		{"empty", "", false},
		{"keyword_in_middle", "xem hạn mức", false},
		{"keyword_no_space", "quota123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, h.CanHandle(tt.input))
		})
	}
}

func TestHandler_HandleMessage(t *testing.T) {
	t.Parallel()
	kl := newLimiter(t)
	h := NewHandler(kl, logger.NewWithWriter("error", io.Discard))

	for range 3 {
		require.True(t, kl.Allow("C1"))
	}

	ctx := ctxutil.WithChatID(context.Background(), "C1")
	alt := flexAlt(t, h.HandleMessage(ctx, "hạn mức"))
	assert.Equal(t, "Hạn mức: còn 7 / 10 lượt, trong ngày còn 97 / 100 lượt", alt)

	other := ctxutil.WithChatID(context.Background(), "C2")
	assert.Equal(t, "Hạn mức: còn 10 / 10 lượt, trong ngày còn 100 / 100 lượt", flexAlt(t, h.HandleMessage(other, "/hanmuc")))
}

func TestHandler_NoLimiter(t *testing.T) {
	t.Parallel()
	h := NewHandler(nil, logger.NewWithWriter("error", io.Discard))

	assert.Equal(t, "Hạn mức sử dụng: không giới hạn", flexAlt(t, h.HandleMessage(context.Background(), "quota")))
}

func TestHandler_HandlePostback(t *testing.T) {
	t.Parallel()
	h := NewHandler(newLimiter(t), logger.NewWithWriter("error", io.Discard))
	ctx := ctxutil.WithChatID(context.Background(), "C1")

	assert.Equal(t, "Giải thích hạn mức", flexAlt(t, h.HandlePostback(ctx, "explain")))
	assert.Contains(t, flexAlt(t, h.HandlePostback(ctx, "query")), "còn 10 / 10 lượt")
}

func TestBuildProgressBar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		percentage   float64
		filled, rest int32
	}{
		{0, 0, 100},
		{0.4, 1, 99},
		{55.5, 55, 45},
		{100, 100, 0},
		{150, 100, 0},
		{-5, 0, 100},
	}

	for _, tt := range tests {
		bar := buildProgressBar(tt.percentage)
		require.Len(t, bar.Contents, 2)
		filled, ok := bar.Contents[0].(*messaging_api.FlexBox)
		require.True(t, ok)
		empty, ok := bar.Contents[1].(*messaging_api.FlexBox)
		require.True(t, ok)
		assert.Equal(t, tt.filled, filled.Flex, "filled at %v", tt.percentage)
		assert.Equal(t, tt.rest, empty.Flex, "empty at %v", tt.percentage)
	}
}
