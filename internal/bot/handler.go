// Package bot provides the handler interface and utilities for LINE bot modules.
// Each module (cang, dao, xien, phongthuy, ketqua, ...) implements Handler to
// process user messages and postback events.
package bot

import (
	"context"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/xoso-linebot-go/internal/session"
)

// Handler defines the interface that all bot modules must implement.
type Handler interface {
	// Name is the module identifier used in logs and metrics.
	Name() string

	// PostbackPrefix selects the postbacks routed to this module, e.g. "xien:".
	// An empty prefix receives none.
	PostbackPrefix() string

	// CanHandle reports whether the module recognizes the text (a command,
	// an inline syntax or a keyword).
	CanHandle(text string) bool

	// HandleMessage processes a text message. Replies are capped at
	// 5 messages by the webhook.
	HandleMessage(ctx context.Context, text string) []messaging_api.MessageInterface

	// HandlePostback processes postback data with the prefix already removed.
	//
	// Postback Format Convention:
	//   - "module:action", e.g. "xien:3", "cang:4d", "ketqua:latest"
	//   - extra parameters follow "$": "ketqua:date$2024-07-25"
	//   - max 300 bytes per LINE API limit
	HandlePostback(ctx context.Context, data string) []messaging_api.MessageInterface
}

// FlowHandler is a Handler that owns one or more steps of a multi-step flow.
// While a chat's session is in a state the handler owns, free text from that
// chat goes to ContinueFlow instead of normal dispatch.
type FlowHandler interface {
	Handler

	// OwnsState reports whether state belongs to this module.
	OwnsState(state session.State) bool

	// ContinueFlow consumes text as the answer to the pending step. The
	// handler stores the next state (or resets the session) itself.
	ContinueFlow(ctx context.Context, sess session.Session, text string) []messaging_api.MessageInterface
}

// FreeTextHandler optionally interprets text nobody else recognized, such as
// a bare date. ok is false when the text means nothing to the module.
type FreeTextHandler interface {
	Handler

	HandleFreeText(ctx context.Context, text string) (msgs []messaging_api.MessageInterface, ok bool)
}
