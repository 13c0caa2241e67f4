package bot

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/xoso-linebot-go/internal/lineutil"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/metrics"
	"github.com/garyellow/xoso-linebot-go/internal/sentry"
)

// Invoke runs the handler's work for one event.
type Invoke func(ctx context.Context) []messaging_api.MessageInterface

// Middleware wraps every handler invocation made through the Registry.
// input is the message text or the full postback data.
type Middleware func(ctx context.Context, h Handler, input string, next Invoke) []messaging_api.MessageInterface

// LoggingMiddleware logs handler execution with timing and result info.
func LoggingMiddleware(log *logger.Logger) Middleware {
	return func(ctx context.Context, h Handler, input string, next Invoke) []messaging_api.MessageInterface {
		start := time.Now()

		log.WithModule(h.Name()).
			WithField("input_length", len(input)).
			Debug("Handler started")

		msgs := next(ctx)

		log.WithModule(h.Name()).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("msg_count", len(msgs)).
			Debug("Handler completed")

		return msgs
	}
}

// MetricsMiddleware records handler execution time.
func MetricsMiddleware(m *metrics.Metrics) Middleware {
	return func(ctx context.Context, h Handler, _ string, next Invoke) []messaging_api.MessageInterface {
		start := time.Now()
		msgs := next(ctx)
		if m != nil {
			m.RecordHandler(h.Name(), time.Since(start).Seconds())
		}
		return msgs
	}
}

// RecoveryMiddleware turns a handler panic into the generic error reply and
// reports it to Sentry.
func RecoveryMiddleware(log *logger.Logger) Middleware {
	return func(ctx context.Context, h Handler, _ string, next Invoke) (msgs []messaging_api.MessageInterface) {
		defer func() {
			if r := recover(); r != nil {
				log.WithModule(h.Name()).
					WithField("panic", r).
					WithField("stack", string(debug.Stack())).
					Error("Handler panicked")
				sentry.CaptureRecovered(ctx, r)

				msgs = []messaging_api.MessageInterface{
					lineutil.ErrorMessageWithSender(lineutil.GetSender("", "")),
				}
			}
		}()

		return next(ctx)
	}
}
