package bot

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/metrics"
	"github.com/garyellow/xoso-linebot-go/internal/session"
)

// mockHandler implements FlowHandler and FreeTextHandler for testing.
type mockHandler struct {
	name           string
	postbackPrefix string
	canHandle      func(text string) bool
	panicOnHandle  bool
	ownsState      session.State
	freeText       string

	mu        sync.Mutex
	messages  []string
	postbacks []string
	flows     []string
}

func (m *mockHandler) Name() string           { return m.name }
func (m *mockHandler) PostbackPrefix() string { return m.postbackPrefix }
func (m *mockHandler) CanHandle(text string) bool {
	return m.canHandle != nil && m.canHandle(text)
}

func (m *mockHandler) HandleMessage(_ context.Context, text string) []messaging_api.MessageInterface {
	if m.panicOnHandle {
		panic("test panic")
	}
	m.mu.Lock()
	m.messages = append(m.messages, text)
	m.mu.Unlock()
	return reply(m.name + ":" + text)
}

func (m *mockHandler) HandlePostback(_ context.Context, data string) []messaging_api.MessageInterface {
	m.mu.Lock()
	m.postbacks = append(m.postbacks, data)
	m.mu.Unlock()
	return reply(m.name + " postback:" + data)
}

func (m *mockHandler) OwnsState(state session.State) bool {
	return m.ownsState != session.StateIdle && state == m.ownsState
}

func (m *mockHandler) ContinueFlow(_ context.Context, sess session.Session, text string) []messaging_api.MessageInterface {
	m.mu.Lock()
	m.flows = append(m.flows, sess.State.String()+"|"+text)
	m.mu.Unlock()
	return reply(m.name + " flow:" + text)
}

func (m *mockHandler) HandleFreeText(_ context.Context, text string) ([]messaging_api.MessageInterface, bool) {
	if m.freeText == "" || text != m.freeText {
		return nil, false
	}
	return reply(m.name + " free:" + text), true
}

func reply(text string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{&messaging_api.TextMessage{Text: text}}
}

func always(string) bool { return true }

func textOf(t *testing.T, msgs []messaging_api.MessageInterface) string {
	t.Helper()
	require.NotEmpty(t, msgs)
	msg, ok := msgs[0].(*messaging_api.TextMessage)
	require.True(t, ok, "expected a text message, got %T", msgs[0])
	return msg.Text
}

func quietLogger() *logger.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

func TestLoggingMiddleware(t *testing.T) {
	t.Parallel()
	mw := LoggingMiddleware(logger.NewWithWriter("debug", io.Discard))
	handler := &mockHandler{name: "test"}

	called := false
	msgs := mw(context.Background(), handler, "test input", func(ctx context.Context) []messaging_api.MessageInterface {
		called = true
		return handler.HandleMessage(ctx, "test input")
	})

	assert.True(t, called)
	assert.Equal(t, "test:test input", textOf(t, msgs))
}

func TestMetricsMiddleware(t *testing.T) {
	t.Parallel()
	m := metrics.New(prometheus.NewRegistry())
	mw := MetricsMiddleware(m)
	handler := &mockHandler{name: "xien"}

	msgs := mw(context.Background(), handler, "11 22", func(ctx context.Context) []messaging_api.MessageInterface {
		return handler.HandleMessage(ctx, "11 22")
	})

	assert.NotEmpty(t, msgs)
	assert.Equal(t, 1, testutil.CollectAndCount(m.HandlerDurationSeconds))
}

func TestMetricsMiddleware_NilMetrics(t *testing.T) {
	t.Parallel()
	mw := MetricsMiddleware(nil)
	handler := &mockHandler{name: "xien"}

	msgs := mw(context.Background(), handler, "", func(ctx context.Context) []messaging_api.MessageInterface {
		return handler.HandleMessage(ctx, "")
	})
	assert.NotEmpty(t, msgs)
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Parallel()
	mw := RecoveryMiddleware(quietLogger())
	handler := &mockHandler{name: "test", panicOnHandle: true}

	var msgs []messaging_api.MessageInterface
	assert.NotPanics(t, func() {
		msgs = mw(context.Background(), handler, "test input", func(ctx context.Context) []messaging_api.MessageInterface {
			return handler.HandleMessage(ctx, "test input")
		})
	})
	assert.Contains(t, textOf(t, msgs), "❌")
}

func TestMiddlewareChaining(t *testing.T) {
	t.Parallel()
	handler := &mockHandler{name: "test", canHandle: always}

	var executionOrder []string
	mw1 := func(ctx context.Context, h Handler, text string, next Invoke) []messaging_api.MessageInterface {
		executionOrder = append(executionOrder, "mw1_before")
		msgs := next(ctx)
		executionOrder = append(executionOrder, "mw1_after")
		return msgs
	}
	mw2 := func(ctx context.Context, h Handler, text string, next Invoke) []messaging_api.MessageInterface {
		executionOrder = append(executionOrder, "mw2_before")
		msgs := next(ctx)
		executionOrder = append(executionOrder, "mw2_after")
		return msgs
	}

	botRegistry := NewRegistry()
	botRegistry.Use(mw1)
	botRegistry.Use(mw2)
	botRegistry.Register(handler)

	msgs, ok := botRegistry.DispatchMessage(context.Background(), "test")
	require.True(t, ok)
	assert.NotEmpty(t, msgs)
	assert.Equal(t, []string{"mw1_before", "mw2_before", "mw2_after", "mw1_after"}, executionOrder)
}
