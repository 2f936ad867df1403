package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default deadline for API requests.
const DefaultRequestTimeout = 30 * time.Second

// defaultServiceName names spans and metrics when no app config is given.
const defaultServiceName = "quotesync"

// RouterConfig contains everything SetupRouter needs to assemble the
// middleware chain and mount the handlers.
type RouterConfig struct {
	// Logger is the structured logger seeded into every request context.
	Logger *slog.Logger

	// AuthConfig gates the mutating endpoints when Enabled is set.
	AuthConfig *config.AuthConfig

	// AppConfig supplies the service name for traces and metrics.
	AppConfig *config.AppConfig

	// QuoteHandler serves the quote collection endpoints.
	QuoteHandler *handlers.QuoteHandler

	// SyncHandler serves the sync trigger and status endpoints.
	SyncHandler *handlers.SyncHandler

	// HealthHandler serves the probe endpoints on the engine root.
	HealthHandler *handlers.HealthHandler

	// Timeout is the per-request deadline for API routes.
	Timeout time.Duration
}

// SetupRouter configures the middleware chain and all routes.
// Middleware order, first to last:
//  1. Recovery - catch panics from everything below
//  2. ContextLogger - seed the request context with the service logger
//  3. Request ID / Correlation ID - adopt or mint tracking IDs
//  4. Tracing - OpenTelemetry spans and context propagation
//  5. Metrics - RED metrics and the X-Trace-ID response header
//  6. Logging - request start/completion lines
//
// Probe endpoints register on the engine root, outside the /api/v1
// group, so they skip auth and the request deadline.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	serviceName := defaultServiceName
	if cfg.AppConfig != nil && cfg.AppConfig.Name != "" {
		serviceName = cfg.AppConfig.Name
	}

	engine.Use(
		middleware.Recovery(),
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(serviceName),
		telemetry.Middleware(),
		middleware.Logging(),
	)

	engine.NoRoute(func(c *gin.Context) {
		errResp := dto.NewErrorResponse(
			dto.ErrorCodeNotFound,
			"no route for "+c.Request.Method+" "+c.Request.URL.Path,
		).WithTraceID(dto.GetTraceID(c))

		c.JSON(http.StatusNotFound, errResp)
	})

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutes(engine)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Timeout))
	}

	// Reads stay open; writes require the configured scope when auth
	// is on.
	var mutating []gin.HandlerFunc
	if cfg.AuthConfig != nil && cfg.AuthConfig.Enabled {
		mutating = append(mutating,
			middleware.RequireAuth(cfg.AuthConfig),
			middleware.RequireScope(cfg.AuthConfig, cfg.AuthConfig.WriteScope),
		)
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(apiV1, mutating...)
	}

	if cfg.SyncHandler != nil {
		cfg.SyncHandler.RegisterSyncRoutes(apiV1, mutating...)
	}
}

// SetupMinimalRouter wires just recovery, request IDs and the probe
// endpoints. Used where the full API surface is not wanted.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(),
		middleware.ContextLogger(logger),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutes(engine)
	}
}

// NewDefaultRouterConfig assembles a RouterConfig with the default
// request timeout.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	authCfg *config.AuthConfig,
	quoteHandler *handlers.QuoteHandler,
	syncHandler *handlers.SyncHandler,
	healthHandler *handlers.HealthHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AuthConfig:    authCfg,
		AppConfig:     appCfg,
		QuoteHandler:  quoteHandler,
		SyncHandler:   syncHandler,
		HealthHandler: healthHandler,
		Timeout:       DefaultRequestTimeout,
	}
}
