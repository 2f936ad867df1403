package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/quotesync/telemetry"

	// ContextKeyTraceID is the gin context key under which the active
	// trace ID is published for handlers and error envelopes.
	ContextKeyTraceID = "trace_id"

	// HeaderTraceID echoes the trace ID to callers so they can quote
	// it when reporting a problem.
	HeaderTraceID = "X-Trace-ID"
)

// Metrics holds the server-side request instruments.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewMetrics registers the request instruments on the global meter.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)
	m := &Metrics{}

	var err error
	if m.requestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.requestTotal, err = meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.activeRequests, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// Middleware returns Gin middleware that records request metrics and
// publishes the active trace ID to the gin context, the response
// header and the context logger. Pair it with TracingMiddleware, which
// must run earlier in the chain so a span is already on the request
// context.
func Middleware() gin.HandlerFunc {
	// A metrics construction failure downgrades to tracing-ID-only
	metrics, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		startTime := time.Now()

		// Publish before the handler writes; headers are flushed on
		// the first body write.
		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
			traceID := span.SpanContext().TraceID().String()

			c.Set(ContextKeyTraceID, traceID)
			c.Header(HeaderTraceID, traceID)
			c.Request = c.Request.WithContext(logging.WithTraceID(c.Request.Context(), traceID))
		}

		if metrics != nil {
			opt := metric.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", c.FullPath()),
			)

			metrics.activeRequests.Add(c.Request.Context(), 1, opt)
			defer metrics.activeRequests.Add(c.Request.Context(), -1, opt)
		}

		c.Next()

		if metrics != nil {
			opt := metric.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", c.FullPath()),
				attribute.Int("http.status_code", c.Writer.Status()),
			)

			metrics.requestDuration.Record(c.Request.Context(), time.Since(startTime).Seconds(), opt)
			metrics.requestTotal.Add(c.Request.Context(), 1, opt)
		}
	}
}

// TracingMiddleware returns the otelgin tracing middleware. It starts
// a server span per request and propagates inbound trace context.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}
