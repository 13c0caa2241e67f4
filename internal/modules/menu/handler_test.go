package menu

import (
	"context"
	"io"
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/xoso-linebot-go/internal/logger"
)

func newTestHandler() *Handler {
	return NewHandler(logger.NewWithWriter("error", io.Discard))
}

func TestCanHandle(t *testing.T) {
	t.Parallel()
	h := newTestHandler()

	for input, want := range map[string]bool{
		"/start":       true,
		"/menu":        true,
		"Menu":         true,
		"  menu ":      true,
		"Bắt đầu":      true,
		"menu hôm nay": false,
		"/help":        false,
		"12 34":        false,
	} {
		assert.Equal(t, want, h.CanHandle(input), input)
	}
}

func TestHandleMessage(t *testing.T) {
	t.Parallel()
	h := newTestHandler()

	msgs := h.HandleMessage(context.Background(), "anything")
	require.Len(t, msgs, 1)
	flex, ok := msgs[0].(*messaging_api.FlexMessage)
	require.True(t, ok)
	assert.Equal(t, WelcomeText+"\n\n"+CommandList, flex.AltText)
	require.NotNil(t, flex.QuickReply)
	assert.Len(t, flex.QuickReply.Items, 6)
}

func TestHandlePostback(t *testing.T) {
	t.Parallel()
	h := newTestHandler()
	ctx := context.Background()

	msgs := h.HandlePostback(ctx, ":xcd")
	require.Len(t, msgs, 1)
	text, ok := msgs[0].(*messaging_api.TextMessage)
	require.True(t, ok)
	assert.Equal(t, GeneratorsText, text.Text)
	require.NotNil(t, text.QuickReply)

	var data []string
	for _, item := range text.QuickReply.Items {
		pb, ok := item.Action.(*messaging_api.PostbackAction)
		require.True(t, ok)
		data = append(data, pb.Data)
	}
	assert.Equal(t, []string{"xien:2", "xien:3", "xien:4", "cang:3d", "cang:4d", "dao:start", "menu"}, data)

	for _, in := range []string{"", "bogus"} {
		msgs := h.HandlePostback(ctx, in)
		require.Len(t, msgs, 1)
		_, ok := msgs[0].(*messaging_api.FlexMessage)
		assert.True(t, ok, "postback %q shows the main menu", in)
	}
}
