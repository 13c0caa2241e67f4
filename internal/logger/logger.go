// Package logger provides structured logging utilities for the application.
// It wraps log/slog with JSON formatting and supports context-based logging
// with request IDs and module names, plus optional shipping to Better Stack.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogbetterstack "github.com/samber/slog-betterstack"
)

// Logger is the application logger
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
	async *AsyncHandler
}

// Options configures NewWithOptions.
type Options struct {
	Level  string
	Writer io.Writer // defaults to os.Stdout

	// BetterStackToken enables remote shipping when set.
	BetterStackToken    string
	BetterStackEndpoint string
	Async               AsyncOptions
}

// New creates a new logger instance with JSON formatting
func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter creates a new logger instance with JSON formatting writing to the provided writer
func NewWithWriter(level string, w io.Writer) *Logger {
	return NewWithOptions(Options{Level: level, Writer: w})
}

// NewWithOptions builds the handler chain:
// ContextHandler -> tee(JSON writer, Async(Better Stack)).
func NewWithOptions(opts Options) *Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	handlers := []slog.Handler{
		slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       levelVar,
			ReplaceAttr: renameAttrs,
		}),
	}

	var async *AsyncHandler
	if opts.BetterStackToken != "" {
		remote := slogbetterstack.Option{
			Level:    levelVar,
			Token:    opts.BetterStackToken,
			Endpoint: opts.BetterStackEndpoint,
		}.NewBetterstackHandler()
		async = NewAsyncHandler(remote, opts.Async)
		handlers = append(handlers, async)
	}

	handler := NewContextHandler(newTee(handlers...))
	return &Logger{Logger: slog.New(handler), level: levelVar, async: async}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func renameAttrs(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.LevelKey:
		a.Key = "level"
		a.Value = slog.StringValue(levelName(a.Value.Any()))
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

func levelName(v any) string {
	lvl, ok := v.(slog.Level)
	if !ok {
		return "info"
	}
	if lvl == slog.LevelWarn {
		return "warning"
	}
	return strings.ToLower(lvl.String())
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		l.level.Set(parseLevel(level))
		return nil
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
}

// GetLevel returns the current minimum level name.
func (l *Logger) GetLevel() string {
	return levelName(l.level.Level())
}

// Shutdown flushes the remote log pipeline, if any.
func (l *Logger) Shutdown(ctx context.Context) error {
	if l == nil || l.async == nil {
		return nil
	}
	return l.async.Shutdown(ctx)
}

func (l *Logger) derive(lg *slog.Logger) *Logger {
	return &Logger{Logger: lg, level: l.level, async: l.async}
}

// WithModule creates a new entry with module field
func (l *Logger) WithModule(module string) *Logger {
	return l.derive(l.With("module", module))
}

// WithRequestID creates a new entry with request ID field
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.derive(l.With("request_id", requestID))
}

// WithError creates a new entry with error field
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.With("error", err))
}

// WithField creates a new entry with a single field
func (l *Logger) WithField(key string, value any) *Logger {
	return l.derive(l.With(key, value))
}

// WithFields creates a new entry with multiple fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return l.derive(l.With(args...))
}

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.Debug(fmt.Sprintf(format, args...))
}
