package logger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// tee sends every record to each sink that accepts its level: stdout JSON
// always, Better Stack when configured.
type tee struct {
	sinks []slog.Handler
}

func newTee(sinks ...slog.Handler) *tee {
	return &tee{sinks: slices.DeleteFunc(sinks, func(h slog.Handler) bool { return h == nil })}
}

func (t *tee) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(t.sinks, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

// Handle clones the record per sink since handlers may keep it. Sink errors
// are joined; one failing sink does not stop the others.
func (t *tee) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t.sinks {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t *tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t *tee) WithGroup(name string) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t *tee) derive(f func(slog.Handler) slog.Handler) *tee {
	next := make([]slog.Handler, len(t.sinks))
	for i, h := range t.sinks {
		next[i] = f(h)
	}
	return &tee{sinks: next}
}
