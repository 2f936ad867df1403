package logging

import (
	"context"
	"log/slog"
)

// loggerKey is the context key under which the request logger travels.
type loggerKey struct{}

var defaultLogger = slog.Default()

// FromContext returns the logger carried by ctx, or the process default when
// ctx carries none. A nil ctx is tolerated.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger
	}
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return defaultLogger
}

// WithContext returns a child context carrying logger.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// withField rebinds the context logger with one extra attribute. Each call
// builds on whatever logger the context already carries, so the IDs stack.
func withField(ctx context.Context, key, value string) context.Context {
	return WithContext(ctx, FromContext(ctx).With(slog.String(key, value)))
}

// WithRequestID stamps the context logger with the request ID so every
// record emitted for this request can be grepped together.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withField(ctx, "request_id", requestID)
}

// WithTraceID stamps the context logger with the trace ID, linking log
// records to their span in the trace backend.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return withField(ctx, "trace_id", traceID)
}

// WithCorrelationID stamps the context logger with the correlation ID that
// follows a request across service boundaries.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return withField(ctx, "correlation_id", correlationID)
}

// SetDefault replaces the fallback logger handed out for bare contexts and
// mirrors it into slog's own default.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
