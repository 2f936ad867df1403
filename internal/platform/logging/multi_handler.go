package logging

import (
	"context"
	"log/slog"
	"slices"
)

// MultiHandler fans every record out to a set of underlying handlers. It is
// how terminal output and the rolling JSON file receive the same records.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler wraps handlers into a single slog.Handler.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled reports whether at least one underlying handler wants records at
// this level.
func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(h.handlers, func(handler slog.Handler) bool {
		return handler.Enabled(ctx, level)
	})
}

// Handle clones the record to every handler enabled for its level and
// returns the first error any of them produced.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	var firstErr error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WithAttrs applies attrs across every underlying handler.
func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.fanout(func(handler slog.Handler) slog.Handler {
		return handler.WithAttrs(attrs)
	})
}

// WithGroup opens the group on every underlying handler.
func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return h.fanout(func(handler slog.Handler) slog.Handler {
		return handler.WithGroup(name)
	})
}

// fanout rebuilds the MultiHandler with wrap applied to each handler.
func (h *MultiHandler) fanout(wrap func(slog.Handler) slog.Handler) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = wrap(handler)
	}
	return NewMultiHandler(next...)
}
