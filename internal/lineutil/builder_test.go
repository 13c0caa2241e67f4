package lineutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextMessage_Truncates(t *testing.T) {
	t.Parallel()

	short := NewTextMessage("12 34 56")
	assert.Equal(t, "12 34 56", short.Text)

	long := NewTextMessage(strings.Repeat("ố", MaxTextMessageLength+10))
	assert.Equal(t, MaxTextMessageLength, utf8.RuneCountInString(long.Text))
	assert.True(t, strings.HasSuffix(long.Text, "..."))
}

func TestNewQuickReply_CapsItems(t *testing.T) {
	t.Parallel()

	items := make([]QuickReplyItem, 20)
	for i := range items {
		items[i] = QuickReplyMenuAction()
	}
	items[0].ImageURL = "https://example.com/icon.png"

	qr := NewQuickReply(items)
	require.Len(t, qr.Items, MaxQuickReplyItemCount)
	assert.Equal(t, "https://example.com/icon.png", qr.Items[0].ImageUrl)
	assert.Empty(t, qr.Items[1].ImageUrl)
}

func TestActions(t *testing.T) {
	t.Parallel()

	pb, ok := NewPostbackActionWithDisplayText("Xiên 2", "Xiên 2", "xien:2").(*messaging_api.PostbackAction)
	require.True(t, ok)
	assert.Equal(t, "xien:2", pb.Data)
	assert.Equal(t, "Xiên 2", pb.DisplayText)

	msg, ok := NewMessageAction("Hôm nay", "hôm nay").(*messaging_api.MessageAction)
	require.True(t, ok)
	assert.Equal(t, "hôm nay", msg.Text)

	long, ok := NewPostbackAction(strings.Repeat("a", 30), "x").(*messaging_api.PostbackAction)
	require.True(t, ok)
	assert.Equal(t, MaxQuickReplyLabel, utf8.RuneCountInString(long.Label))

	clip, ok := NewClipboardAction("Sao chép", "12-34").(*messaging_api.ClipboardAction)
	require.True(t, ok)
	assert.Equal(t, "12-34", clip.ClipboardText)

	uri, ok := NewURIAction("Mở", "https://example.com").(*messaging_api.UriAction)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", uri.Uri)
}

func TestSetSender(t *testing.T) {
	t.Parallel()
	sender := GetSender("", "")

	text := NewTextMessage("x")
	SetSender(text, sender)
	assert.Same(t, sender, text.Sender)

	flex := NewFlexMessage("alt", NewFlexBubble(nil, nil, nil, nil).FlexBubble)
	SetSender(flex, sender)
	assert.Same(t, sender, flex.Sender)

	SetSender(text, nil)
	assert.Same(t, sender, text.Sender, "nil sender is a no-op")
}

func TestAddQuickReplyToMessages(t *testing.T) {
	t.Parallel()

	first := NewTextMessage("a")
	last := NewTextMessage("b")
	msgs := []messaging_api.MessageInterface{first, last}

	AddQuickReplyToMessages(msgs, QuickReplyNavigation()...)
	assert.Nil(t, first.QuickReply)
	require.NotNil(t, last.QuickReply)
	assert.Len(t, last.QuickReply.Items, 2)

	// no-ops
	AddQuickReplyToMessages(nil, QuickReplyMenuAction())
	AddQuickReplyToMessages(msgs)
}

func TestQuickReplyNavigation_Postbacks(t *testing.T) {
	t.Parallel()

	var data []string
	for _, item := range append(QuickReplyNavigation(), QuickReplyHelpAction()) {
		pb, ok := item.Action.(*messaging_api.PostbackAction)
		require.True(t, ok)
		data = append(data, pb.Data)
	}
	assert.Equal(t, []string{PostbackMenu, PostbackReset, PostbackHelp}, data)
}

func TestQuickReplyMainMenu(t *testing.T) {
	t.Parallel()

	items := QuickReplyMainMenu()
	require.LessOrEqual(t, len(items), MaxQuickReplyItemCount)

	var data []string
	for _, item := range items {
		pb, ok := item.Action.(*messaging_api.PostbackAction)
		require.True(t, ok)
		assert.LessOrEqual(t, utf8.RuneCountInString(pb.Label), MaxQuickReplyLabel)
		data = append(data, pb.Data)
	}
	assert.Equal(t, []string{
		PostbackGenerators, PostbackPhongThuy, PostbackKetQua, PostbackUngHo, PostbackHelp, PostbackReset,
	}, data)
}

func TestGetSender(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultSenderName, GetSender("", "").Name)
	s := GetSender("Ghép càng", "https://example.com/a.png")
	assert.Equal(t, "Ghép càng", s.Name)
	assert.Equal(t, "https://example.com/a.png", s.IconUrl)
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()
	sender := GetSender("", "")

	msg, ok := ErrorMessageWithDetailAndSender("Không tải được kết quả", sender).(*messaging_api.TextMessage)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(msg.Text, "❌ Không tải được kết quả"))
	assert.NotNil(t, msg.QuickReply)

	generic, ok := ErrorMessageWithSender(sender).(*messaging_api.TextMessage)
	require.True(t, ok)
	assert.Same(t, sender, generic.Sender)
}
