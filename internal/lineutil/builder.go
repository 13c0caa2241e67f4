// Package lineutil provides utility functions for building LINE messages and actions.
package lineutil

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// QuickReplyItem represents an item in a quick reply.
type QuickReplyItem struct {
	ImageURL string
	Action   messaging_api.ActionInterface
}

// Action is an alias for the LINE SDK action interface for convenience.
type Action = messaging_api.ActionInterface

// NewTextMessage creates a simple text message without sender information.
// Text longer than the LINE limit is cut with "...".
func NewTextMessage(text string) *messaging_api.TextMessage {
	return &messaging_api.TextMessage{
		Text: TruncateRunes(text, MaxTextMessageLength),
	}
}

// NewQuickReply creates a quick reply component, keeping at most 13 items.
func NewQuickReply(items []QuickReplyItem) *messaging_api.QuickReply {
	if len(items) > MaxQuickReplyItemCount {
		items = items[:MaxQuickReplyItemCount]
	}

	quickReplyItems := make([]messaging_api.QuickReplyItem, len(items))
	for i, item := range items {
		qrItem := messaging_api.QuickReplyItem{
			Action: item.Action,
		}
		if item.ImageURL != "" {
			qrItem.ImageUrl = item.ImageURL
		}
		quickReplyItems[i] = qrItem
	}

	return &messaging_api.QuickReply{
		Items: quickReplyItems,
	}
}

// NewMessageAction creates a message action that sends text when tapped.
func NewMessageAction(label, text string) Action {
	return &messaging_api.MessageAction{
		Label: TruncateRunes(label, MaxQuickReplyLabel),
		Text:  text,
	}
}

// NewPostbackAction creates a postback action that sends data to the bot when tapped.
func NewPostbackAction(label, data string) Action {
	return &messaging_api.PostbackAction{
		Label: TruncateRunes(label, MaxQuickReplyLabel),
		Data:  data,
	}
}

// NewPostbackActionWithDisplayText creates a postback action that also echoes
// displayText into the chat.
func NewPostbackActionWithDisplayText(label, displayText, data string) Action {
	return &messaging_api.PostbackAction{
		Label:       TruncateRunes(label, MaxQuickReplyLabel),
		DisplayText: displayText,
		Data:        data,
	}
}

// NewURIAction creates a URI action that opens a URL when tapped.
func NewURIAction(label, uri string) Action {
	return &messaging_api.UriAction{
		Label: TruncateRunes(label, MaxActionLabel),
		Uri:   uri,
	}
}

// NewClipboardAction creates a clipboard action that copies text when tapped.
func NewClipboardAction(label, clipboardText string) Action {
	return &messaging_api.ClipboardAction{
		Label:         TruncateRunes(label, MaxActionLabel),
		ClipboardText: clipboardText,
	}
}

// NewFlexMessage creates a flex message with the given alt text and flex container.
func NewFlexMessage(altText string, contents messaging_api.FlexContainerInterface) *messaging_api.FlexMessage {
	return &messaging_api.FlexMessage{
		AltText:  TruncateRunes(altText, MaxAltTextLength),
		Contents: contents,
	}
}

// SetSender sets the Sender field on a text or flex message and returns it.
func SetSender(msg messaging_api.MessageInterface, sender *messaging_api.Sender) messaging_api.MessageInterface {
	if sender == nil {
		return msg
	}

	switch m := msg.(type) {
	case *messaging_api.TextMessage:
		m.Sender = sender
	case *messaging_api.FlexMessage:
		m.Sender = sender
	}

	return msg
}

// ================================================
// Common QuickReply Actions
// ================================================

// Postback data shared by every module's back/reset buttons.
const (
	PostbackMenu  = "menu"
	PostbackReset = "reset"
	PostbackHelp  = "help"
)

// QuickReplyMenuAction returns the "back to menu" item.
func QuickReplyMenuAction() QuickReplyItem {
	return QuickReplyItem{Action: NewPostbackActionWithDisplayText("⬅️ Menu", "Menu", PostbackMenu)}
}

// QuickReplyResetAction returns the "reset" item.
func QuickReplyResetAction() QuickReplyItem {
	return QuickReplyItem{Action: NewPostbackActionWithDisplayText("🔄 Reset", "Reset", PostbackReset)}
}

// QuickReplyHelpAction returns the "help" item.
func QuickReplyHelpAction() QuickReplyItem {
	return QuickReplyItem{Action: NewPostbackActionWithDisplayText("ℹ️ Hướng dẫn", "Hướng dẫn", PostbackHelp)}
}

// QuickReplyNavigation is appended to every generator reply.
func QuickReplyNavigation() []QuickReplyItem {
	return []QuickReplyItem{QuickReplyMenuAction(), QuickReplyResetAction()}
}

// Postback data for the main menu entries.
const (
	PostbackGenerators = "menu:xcd"
	PostbackPhongThuy  = "phongthuy:start"
	PostbackKetQua     = "ketqua:menu"
	PostbackUngHo      = "ungho"
)

// QuickReplyMainMenu mirrors the main menu as quick reply buttons.
func QuickReplyMainMenu() []QuickReplyItem {
	return []QuickReplyItem{
		{Action: NewPostbackActionWithDisplayText("🔢 Xiên/Càng/Đảo", "Ghép xiên/ Càng/ Đảo số", PostbackGenerators)},
		{Action: NewPostbackActionWithDisplayText("🔮 Phong thủy số", "Phong thủy số", PostbackPhongThuy)},
		{Action: NewPostbackActionWithDisplayText("📅 Kết quả", "Kết quả xổ số", PostbackKetQua)},
		{Action: NewPostbackActionWithDisplayText("💖 Ủng hộ & Góp ý", "Ủng hộ & Góp ý", PostbackUngHo)},
		QuickReplyHelpAction(),
		QuickReplyResetAction(),
	}
}

// ================================================
// Message Helper Functions
// ================================================

// NewTextMessageWithQuickReply creates a text message with sender and quick reply items.
func NewTextMessageWithQuickReply(text string, sender *messaging_api.Sender, items ...QuickReplyItem) *messaging_api.TextMessage {
	msg := NewTextMessageWithConsistentSender(text, sender)
	if len(items) > 0 {
		msg.QuickReply = NewQuickReply(items)
	}
	return msg
}

// NewFlexMessageWithQuickReply creates a flex message with sender and quick reply items.
func NewFlexMessageWithQuickReply(altText string, contents messaging_api.FlexContainerInterface, sender *messaging_api.Sender, items ...QuickReplyItem) *messaging_api.FlexMessage {
	msg := NewFlexMessage(altText, contents)
	msg.Sender = sender
	if len(items) > 0 {
		msg.QuickReply = NewQuickReply(items)
	}
	return msg
}

// AddQuickReplyToMessages attaches quick reply items to the last message in a slice.
// LINE only renders the quick reply of the last message.
func AddQuickReplyToMessages(messages []messaging_api.MessageInterface, items ...QuickReplyItem) {
	if len(messages) == 0 || len(items) == 0 {
		return
	}
	qr := NewQuickReply(items)
	switch m := messages[len(messages)-1].(type) {
	case *messaging_api.TextMessage:
		m.QuickReply = qr
	case *messaging_api.FlexMessage:
		m.QuickReply = qr
	}
}
