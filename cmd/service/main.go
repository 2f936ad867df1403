// Package main wires the quotesync service together and runs it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotesync/internal/adapters/flags"
	"github.com/jsamuelsen/quotesync/internal/adapters/http"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotesync/internal/adapters/storage/file"
	"github.com/jsamuelsen/quotesync/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotesync/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// Version, Commit, and BuildTime are stamped in through ldflags, e.g.
// go build -ldflags "-X main.Version=1.2.0 -X main.Commit=$(git rev-parse HEAD)".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Pick the config profile
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load configuration and refuse to start on a bad one
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Set up logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage_driver", cfg.Storage.Driver),
	)

	// 4. Set up tracing and metrics (noop when disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if flushErr := telProvider.Shutdown(ctx); flushErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", flushErr))
		}
	}()

	// 5. Open the snapshot store
	store, closeStore, err := newQuoteStore(cfg.Storage)
	if err != nil {
		return err
	}

	if closeStore != nil {
		defer func() {
			if closeErr := closeStore(); closeErr != nil {
				logger.Error("store close error", slog.Any("error", closeErr))
			}
		}()
	}

	// 6. Create the remote quote source behind the instrumented HTTP client
	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Sync.Remote.BaseURL,
		ServiceName: cfg.Sync.Remote.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP client: %w", err)
	}

	remote, err := acl.NewPlaceholderClient(acl.PlaceholderConfig{
		Client:    httpClient,
		Name:      cfg.Sync.Remote.Name,
		Category:  cfg.Sync.Remote.Category,
		BatchSize: cfg.Sync.BatchSize,
		UserID:    cfg.Sync.Remote.UserID,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("creating remote source: %w", err)
	}

	// 7. Feature flags and sync metrics
	featureFlags := flags.NewStatic(cfg.Flags, logger)

	syncMetrics, err := telemetry.NewSyncMetrics()
	if err != nil {
		// Metric registration failure is not fatal; recording on a nil
		// SyncMetrics is a no-op.
		logger.Warn("sync metrics unavailable", slog.Any("error", err))
	}

	// 8. Create the quote service and run the load-or-seed sequence
	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Store:        store,
		Remote:       remote,
		Flags:        featureFlags,
		Metrics:      syncMetrics,
		Logger:       logger,
		PublishOnAdd: cfg.Sync.PublishOnAdd,
	})

	if err := quoteService.Init(ctx); err != nil {
		return fmt.Errorf("initializing quote service: %w", err)
	}

	// 9. Create the sync worker. The manual trigger endpoint stays
	// available even when the schedule is disabled.
	syncer := app.NewSyncer(app.SyncerConfig{
		Service:   quoteService,
		Source:    remote,
		Flags:     featureFlags,
		Metrics:   syncMetrics,
		Logger:    logger,
		Interval:  cfg.Sync.Interval,
		Timeout:   cfg.Sync.Timeout,
		Immediate: cfg.Sync.Immediate,
	})

	if cfg.Sync.Enabled {
		syncer.Start(ctx)
		defer syncer.Stop()
	}

	// 10. Register readiness dependencies
	healthRegistry := ports.NewHealthRegistry()

	if checker, ok := store.(ports.HealthChecker); ok {
		if err := healthRegistry.Register(checker); err != nil {
			return fmt.Errorf("registering store health check: %w", err)
		}
	}

	if err := healthRegistry.Register(remote); err != nil {
		return fmt.Errorf("registering remote health check: %w", err)
	}

	// 11. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo)
	quoteHandler := handlers.NewQuoteHandler(quoteService)
	syncHandler := handlers.NewSyncHandler(syncer)

	// 12. Create HTTP server and router
	server := http.New(&cfg.Server, logger)

	routerCfg := http.NewDefaultRouterConfig(
		logger, &cfg.App, &cfg.Auth,
		quoteHandler, syncHandler, healthHandler,
	)
	http.SetupRouter(server.Engine(), routerCfg)

	// 13. Start server (non-blocking)
	serverErr := server.Start()

	// 14. Wait for shutdown signal. The deferred stops run afterwards in
	// reverse order: syncer, store, telemetry.
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// newQuoteStore opens the snapshot store selected by the storage driver.
// The returned closer is nil for stores that hold no OS resources.
func newQuoteStore(cfg config.StorageConfig) (ports.QuoteStore, func() error, error) {
	switch cfg.Driver {
	case "sqlite":
		store, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}

		return store, store.Close, nil

	case "file":
		store, err := file.New(cfg.File.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening file store: %w", err)
		}

		return store, nil, nil

	case "memory":
		return memory.New(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// waitForShutdown parks until the process receives SIGINT or SIGTERM, or
// the server fails on its own, then drains in-flight requests within the
// configured timeout.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("shutdown complete")

	return nil
}
