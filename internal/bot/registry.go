package bot

import (
	"context"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/xoso-linebot-go/internal/session"
)

// Registry manages bot handlers and dispatches messages/postbacks.
// Handlers are tried in registration order.
type Registry struct {
	handlers    []Handler
	middlewares []Middleware
}

// NewRegistry creates a new handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make([]Handler, 0),
	}
}

// Register adds a handler to the registry.
func (r *Registry) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Use appends middleware. The first one added is the outermost.
func (r *Registry) Use(mw ...Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

// DispatchMessage dispatches a text message to the first handler that can handle it.
// ok is false when no handler recognized the text.
func (r *Registry) DispatchMessage(ctx context.Context, text string) (msgs []messaging_api.MessageInterface, ok bool) {
	for _, h := range r.handlers {
		if h.CanHandle(text) {
			return r.invoke(ctx, h, text, func(ctx context.Context) []messaging_api.MessageInterface {
				return h.HandleMessage(ctx, text)
			}), true
		}
	}
	return nil, false
}

// DispatchPostback dispatches a postback event based on the prefix.
func (r *Registry) DispatchPostback(ctx context.Context, data string) (msgs []messaging_api.MessageInterface, ok bool) {
	for _, h := range r.handlers {
		prefix := h.PostbackPrefix()
		if prefix != "" && strings.HasPrefix(data, prefix) {
			rest := strings.TrimPrefix(data, prefix)
			return r.invoke(ctx, h, data, func(ctx context.Context) []messaging_api.MessageInterface {
				return h.HandlePostback(ctx, rest)
			}), true
		}
	}
	return nil, false
}

// DispatchFlow hands text to the FlowHandler owning the session's state.
func (r *Registry) DispatchFlow(ctx context.Context, sess session.Session, text string) (msgs []messaging_api.MessageInterface, ok bool) {
	for _, h := range r.handlers {
		fh, isFlow := h.(FlowHandler)
		if !isFlow || !fh.OwnsState(sess.State) {
			continue
		}
		return r.invoke(ctx, h, text, func(ctx context.Context) []messaging_api.MessageInterface {
			return fh.ContinueFlow(ctx, sess, text)
		}), true
	}
	return nil, false
}

// DispatchFreeText offers unrecognized text to each FreeTextHandler in turn.
func (r *Registry) DispatchFreeText(ctx context.Context, text string) (msgs []messaging_api.MessageInterface, ok bool) {
	for _, h := range r.handlers {
		fh, isFree := h.(FreeTextHandler)
		if !isFree {
			continue
		}
		var handled bool
		msgs = r.invoke(ctx, h, text, func(ctx context.Context) []messaging_api.MessageInterface {
			out, matched := fh.HandleFreeText(ctx, text)
			handled = matched
			return out
		})
		if handled {
			return msgs, true
		}
	}
	return nil, false
}

// Invoke runs h.HandleMessage through the middleware chain. The processor
// uses it for its fallback handler, which is not matched by CanHandle.
func (r *Registry) Invoke(ctx context.Context, h Handler, text string) []messaging_api.MessageInterface {
	return r.invoke(ctx, h, text, func(ctx context.Context) []messaging_api.MessageInterface {
		return h.HandleMessage(ctx, text)
	})
}

// GetHandler returns a handler by name.
func (r *Registry) GetHandler(name string) Handler {
	for _, h := range r.handlers {
		if h.Name() == name {
			return h
		}
	}
	return nil
}

func (r *Registry) invoke(ctx context.Context, h Handler, input string, final Invoke) []messaging_api.MessageInterface {
	next := final
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		mw, inner := r.middlewares[i], next
		next = func(ctx context.Context) []messaging_api.MessageInterface {
			return mw(ctx, h, input, inner)
		}
	}
	return next(ctx)
}
