package lineutil

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// DefaultSenderName is the display name used on every reply.
const DefaultSenderName = "Trợ lý Xổ số"

// GetSender creates the sender shown on a reply. An empty iconURL keeps the
// bot's own profile picture.
//
// Usage:
//
//	sender := lineutil.GetSender("Ghép càng", iconURL)
//	msg1 := lineutil.NewTextMessageWithConsistentSender("...", sender)
//	msg2 := lineutil.NewTextMessageWithConsistentSender("...", sender)
func GetSender(name, iconURL string) *messaging_api.Sender {
	if name == "" {
		name = DefaultSenderName
	}
	return &messaging_api.Sender{
		Name:    TruncateRunes(name, 20),
		IconUrl: iconURL,
	}
}

// NewTextMessageWithConsistentSender creates a text message using a pre-created sender.
func NewTextMessageWithConsistentSender(text string, sender *messaging_api.Sender) *messaging_api.TextMessage {
	msg := NewTextMessage(text)
	msg.Sender = sender
	return msg
}

// ErrorMessageWithSender creates the generic failure reply.
func ErrorMessageWithSender(sender *messaging_api.Sender) messaging_api.MessageInterface {
	return NewTextMessageWithQuickReply("❌ Hệ thống tạm thời không xử lý được yêu cầu.\n\nVui lòng thử lại sau ít phút.", sender, QuickReplyNavigation()...)
}

// ErrorMessageWithDetailAndSender creates an error reply carrying a user-facing detail.
func ErrorMessageWithDetailAndSender(userMessage string, sender *messaging_api.Sender) messaging_api.MessageInterface {
	return NewTextMessageWithQuickReply("❌ "+userMessage+"\n\nVui lòng thử lại sau.", sender, QuickReplyNavigation()...)
}
