package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/quotesync/internal/adapters/clients"

	// defaultTimeout bounds a single attempt when the config leaves
	// Timeout unset.
	defaultTimeout = 30 * time.Second

	// Jitter spreads retries across a window of the computed backoff so
	// concurrent sync cycles do not hammer a recovering source in lockstep.
	backoffJitterFactor   = 0.25
	jitterRangeMultiplier = 2

	// httpStatusCategoryDivisor collapses a status code into its class
	// (2xx, 4xx, 5xx) for metric labels.
	httpStatusCategoryDivisor = 100
)

// Connection pool defaults, applied when the transport config leaves the
// corresponding field zero.
const (
	transportMaxIdleConns        = 100
	transportMaxIdleConnsPerHost = 10
	transportIdleConnTimeout     = 90 * time.Second
)

// Config describes one remote quote source endpoint.
type Config struct {
	// BaseURL is the root of the remote source, e.g. "https://quotes.example.com".
	BaseURL string

	// ServiceName names the source in logs, traces, and metrics.
	ServiceName string

	// Timeout bounds each individual attempt. Wall-clock time for a call
	// can exceed it once retries and backoff are added on top.
	Timeout time.Duration

	// Retry controls how many attempts a call gets and how they are spaced.
	Retry config.RetryConfig

	// Circuit controls the breaker guarding this source.
	Circuit config.CircuitBreakerConfig

	// Transport tunes the connection pool. Zero values fall back to
	// package defaults.
	Transport config.TransportConfig

	// AuthFunc, when set, stamps credentials onto every attempt,
	// retries included.
	AuthFunc func(*http.Request)

	// Logger is optional; slog.Default is used when nil.
	Logger *slog.Logger
}

// Client is the instrumented HTTP client used to reach remote quote sources.
// Calls retry with jittered exponential backoff behind a per-source circuit
// breaker, and every request carries trace context plus the request and
// correlation IDs already present on the caller's context.
type Client struct {
	hc      *http.Client
	baseURL string
	remote  string
	cfg     *Config
	logger  *slog.Logger
	cb      *CircuitBreaker

	tracer trace.Tracer
	meter  metric.Meter

	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// New builds a client for one remote source.
func New(cfg *Config) (*Client, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("config is required")
	case cfg.ServiceName == "":
		return nil, errors.New("service name is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	base := cfg.Logger
	if base == nil {
		base = slog.Default()
	}
	logger := base.With(
		slog.String("component", "clients.Client"),
		slog.String("downstream", cfg.ServiceName),
	)

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})
	cb.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	meter := otel.Meter(instrumentationName)

	requestDuration, requestTotal, err := newInstruments(meter)
	if err != nil {
		return nil, err
	}

	return &Client{
		hc: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newTransport(&cfg.Transport),
		},
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		remote:          cfg.ServiceName,
		cfg:             cfg,
		logger:          logger,
		cb:              cb,
		tracer:          otel.Tracer(instrumentationName),
		meter:           meter,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

// newInstruments registers the request duration and count instruments.
func newInstruments(meter metric.Meter) (metric.Float64Histogram, metric.Int64Counter, error) {
	duration, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of HTTP client requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating duration metric: %w", err)
	}

	total, err := meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Total number of HTTP client requests"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request counter: %w", err)
	}

	return duration, total, nil
}

// newTransport fills in pool defaults and builds the transport.
func newTransport(cfg *config.TransportConfig) *http.Transport {
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = transportMaxIdleConns
	}

	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = transportMaxIdleConnsPerHost
	}

	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = transportIdleConnTimeout
	}

	return &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}
}

// Do executes a request against the remote source with retries, the circuit
// breaker, tracing, and logging applied.
//
// Retries only work for requests without a body (GET, DELETE) or requests
// where req.GetBody is set so the body can be rewound. For POST or PUT with
// a streaming body, set GetBody or cap MaxAttempts at 1.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.remote),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.cb.Allow() {
		c.observe(ctx, req.Method, 0, time.Since(startTime), "circuit_open")
		logger.Warn("request blocked by circuit breaker")

		return nil, ErrCircuitOpen
	}

	c.stampHeaders(ctx, req)

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, c.remote),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.remote),
		),
	)
	defer span.End()

	// Trace context goes on the wire after the span exists so the remote
	// side joins this trace.
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, lastErr := c.runAttempts(ctx, req, logger, startTime)

	return c.finish(ctx, req, resp, lastErr, span, logger, startTime)
}

// runAttempts drives the retry loop. It returns the first usable response,
// or the error left over when the attempt budget runs out.
func (c *Client) runAttempts(ctx context.Context, req *http.Request, logger *slog.Logger, startTime time.Time) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < c.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := c.pauseBeforeRetry(ctx, req, attempt, logger, startTime); err != nil {
				return nil, err
			}
		}

		resp, err := c.hc.Do(req.WithContext(ctx))

		switch {
		case err != nil && isRetryableError(err):
			logger.Debug("attempt failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Any("error", err),
			)
			lastErr = err

		case err != nil:
			return nil, err

		case resp.StatusCode >= http.StatusInternalServerError:
			logger.Debug("source returned a server error",
				slog.Int("attempt", attempt+1),
				slog.Int("status", resp.StatusCode),
			)
			if closeErr := resp.Body.Close(); closeErr != nil {
				logger.Debug("failed to close response body", slog.Any("error", closeErr))
			}
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)

		default:
			return resp, nil
		}
	}

	return nil, lastErr
}

// pauseBeforeRetry sleeps for the backoff interval, honoring cancellation,
// and refreshes auth before the next attempt.
func (c *Client) pauseBeforeRetry(ctx context.Context, req *http.Request, attempt int, logger *slog.Logger, startTime time.Time) error {
	wait := c.calculateBackoff(attempt)
	logger.Debug("backing off before retry",
		slog.Int("attempt", attempt+1),
		slog.Duration("backoff", wait),
	)

	select {
	case <-ctx.Done():
		c.cb.RecordFailure()
		c.observe(ctx, req.Method, 0, time.Since(startTime), "context_canceled")

		return ctx.Err()
	case <-time.After(wait):
	}

	// Source tokens can rotate between attempts.
	if c.cfg.AuthFunc != nil {
		c.cfg.AuthFunc(req)
	}

	return nil
}

// finish settles the breaker, span, metrics, and logs for the call outcome.
func (c *Client) finish(ctx context.Context, req *http.Request, resp *http.Response, lastErr error, span trace.Span, logger *slog.Logger, startTime time.Time) (*http.Response, error) {
	elapsed := time.Since(startTime)

	if lastErr != nil {
		c.cb.RecordFailure()
		span.SetStatus(codes.Error, lastErr.Error())
		c.observe(ctx, req.Method, 0, elapsed, "error")
		logger.Error("request to remote source failed",
			slog.Duration("duration", elapsed),
			slog.Any("error", lastErr),
		)

		return nil, fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	c.cb.RecordSuccess()

	category := fmt.Sprintf("%dxx", resp.StatusCode/httpStatusCategoryDivisor)
	c.observe(ctx, req.Method, resp.StatusCode, elapsed, category)

	logger.Debug("request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", elapsed),
	)

	return resp, nil
}

// newRequest builds an outbound request against the configured base URL.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return req, nil
}

// sendJSON issues a request whose body is a JSON document.
func (c *Client) sendJSON(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	return c.Do(ctx, req)
}

// Get issues a GET against the remote source.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, http.NoBody)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, req)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	return c.sendJSON(ctx, http.MethodPost, path, body)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	return c.sendJSON(ctx, http.MethodPut, path, body)
}

// Delete issues a DELETE against the remote source.
func (c *Client) Delete(ctx context.Context, path string) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, path, http.NoBody)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, req)
}

// CircuitState reports the breaker state for this source.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

// stampHeaders copies the caller's request and correlation IDs onto the
// outbound request and applies auth.
func (c *Client) stampHeaders(ctx context.Context, req *http.Request) {
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.HeaderRequestID, requestID)
	}

	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.HeaderCorrelationID, correlationID)
	}

	if c.cfg.AuthFunc != nil {
		c.cfg.AuthFunc(req)
	}
}

// buildURL joins the base URL and path, normalizing the leading slash.
func (c *Client) buildURL(path string) string {
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}

	return c.baseURL + "/" + path
}

// calculateBackoff computes the wait before the given attempt: the initial
// interval grown by the multiplier, capped at the max, with jitter applied.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := float64(c.cfg.Retry.InitialInterval) * math.Pow(c.cfg.Retry.Multiplier, float64(attempt))

	if backoff > float64(c.cfg.Retry.MaxInterval) {
		backoff = float64(c.cfg.Retry.MaxInterval)
	}

	jitterMultiplier := rand.Float64()*jitterRangeMultiplier - 1 //nolint:gosec // jitter does not need crypto-grade randomness
	backoff += backoff * backoffJitterFactor * jitterMultiplier

	return time.Duration(backoff)
}

// observe records the duration histogram and request counter for one call.
func (c *Client) observe(ctx context.Context, method string, statusCode int, duration time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.remote),
		attribute.String("result", result),
	}

	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	opt := metric.WithAttributes(attrs...)
	c.requestDuration.Record(ctx, duration.Seconds(), opt)
	c.requestTotal.Add(ctx, 1, opt)
}

// isRetryableError reports whether another attempt could plausibly succeed.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// The caller gave up or ran out of time; retrying would be wasted work.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Refused and reset connections surface as op errors.
	var opErr *net.OpError

	return errors.As(err, &opErr)
}
