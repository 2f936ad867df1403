package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// Fallback schedule when config leaves the values unset. The interval
// matches the remote feed's one minute cadence.
const (
	defaultSyncInterval = 60 * time.Second
	defaultSyncTimeout  = 30 * time.Second
)

// SyncReport summarizes one completed merge cycle.
type SyncReport struct {
	Fetched  int
	Valid    int
	Added    int
	Total    int
	Duration time.Duration
}

// SyncStatus is the read model exposed by the sync status endpoint.
type SyncStatus struct {
	Running     bool
	Paused      bool
	Interval    time.Duration
	LastRun     time.Time
	LastSuccess time.Time
	LastError   string
	Cycles      uint64
	Failures    uint64
	LastReport  SyncReport
}

// SyncerConfig contains the dependencies and schedule for the syncer.
// Service is required. A nil Source fails every cycle at validation,
// which keeps the worker inert but observable.
type SyncerConfig struct {
	Service   *QuoteService
	Source    ports.RemoteQuoteSource
	Flags     ports.FeatureFlags
	Metrics   *telemetry.SyncMetrics
	Logger    *slog.Logger
	Interval  time.Duration
	Timeout   time.Duration
	Immediate bool
}

// Syncer schedules periodic merge cycles against the remote source.
// At most one cycle runs at a time; a tick or manual trigger arriving
// while a cycle is in flight is skipped rather than queued.
type Syncer struct {
	service   *QuoteService
	source    ports.RemoteQuoteSource
	flags     ports.FeatureFlags
	metrics   *telemetry.SyncMetrics
	exec      *Executor
	logger    *slog.Logger
	interval  time.Duration
	timeout   time.Duration
	immediate bool

	// cycleMu is the overlap guard; taken with TryLock only.
	cycleMu sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}

	statusMu    sync.RWMutex
	running     bool
	lastRun     time.Time
	lastSuccess time.Time
	lastError   string
	cycles      uint64
	failures    uint64
	lastReport  SyncReport
}

// NewSyncer creates a sync worker. It panics when the service is
// missing.
func NewSyncer(cfg SyncerConfig) *Syncer {
	if cfg.Service == nil {
		panic("app: SyncerConfig.Service is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "app.Syncer"))

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSyncTimeout
	}

	return &Syncer{
		service:   cfg.Service,
		source:    cfg.Source,
		flags:     cfg.Flags,
		metrics:   cfg.Metrics,
		exec:      NewExecutor(logger),
		logger:    logger,
		interval:  interval,
		timeout:   timeout,
		immediate: cfg.Immediate,
	}
}

// Start launches the ticker loop. The first cycle runs one interval
// after start unless Immediate was set. Calling Start again while the
// loop is running is a no-op. Start and Stop belong to the lifecycle
// goroutine and are not safe to call concurrently with each other.
func (s *Syncer) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(runCtx)

	s.logger.InfoContext(ctx, "sync worker started",
		slog.Duration("interval", s.interval),
		slog.Bool("immediate", s.immediate),
	)
}

// Stop cancels the ticker loop and waits for it to exit.
func (s *Syncer) Stop() {
	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done
	s.cancel = nil

	s.logger.Info("sync worker stopped")
}

func (s *Syncer) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.immediate {
		s.tick(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one scheduled cycle, honoring the pause flag and the
// overlap guard. Errors are logged, not returned; the next tick is the
// recovery path.
func (s *Syncer) tick(ctx context.Context) {
	if s.pausedNow(ctx) {
		s.logger.DebugContext(ctx, "sync cycle skipped, syncing is paused")
		s.metrics.RecordSkipped(ctx)

		return
	}

	_, err := s.RunOnce(ctx)

	switch {
	case err == nil:
	case domain.IsConflict(err):
		// Previous cycle still in flight.
		s.metrics.RecordSkipped(ctx)
	default:
		s.logger.WarnContext(ctx, "sync cycle failed", slog.Any("error", err))
	}
}

// RunOnce executes a single merge cycle. Returns domain.ErrConflict
// when a cycle is already in flight.
func (s *Syncer) RunOnce(ctx context.Context) (SyncReport, error) {
	if !s.cycleMu.TryLock() {
		return SyncReport{}, domain.NewConflictError("sync cycle", "already running")
	}
	defer s.cycleMu.Unlock()

	s.setRunning(true)
	defer s.setRunning(false)

	cycleCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc

		cycleCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	report, err := s.cycle(cycleCtx)
	report.Duration = time.Since(start)

	s.recordOutcome(ctx, report, err)

	if err != nil {
		return SyncReport{}, err
	}

	return report, nil
}

// cycle is one fetch-validate-merge pass through the transactional
// executor. A failed step aborts with no partial mutation.
func (s *Syncer) cycle(ctx context.Context) (SyncReport, error) {
	var (
		fetched int
		merged  MergeReport
	)

	op := Operation[struct{}, []domain.Quote, []domain.Quote, SyncReport]{
		Name: "sync-cycle",
		Validate: func(_ context.Context, _ struct{}) error {
			if s.source == nil {
				return domain.NewUnavailableError("remote source", "not configured")
			}

			return nil
		},
		Perform: func(ctx context.Context, _ struct{}) ([]domain.Quote, error) {
			quotes, err := s.source.FetchQuotes(ctx)
			if err != nil {
				return nil, err
			}

			fetched = len(quotes)

			return quotes, nil
		},
		Verify: func(ctx context.Context, _ struct{}, batch []domain.Quote) ([]domain.Quote, error) {
			valid := make([]domain.Quote, 0, len(batch))

			for _, quote := range batch {
				if err := quote.Validate(); err != nil {
					s.logger.DebugContext(ctx, "dropping invalid remote record",
						slog.Any("error", err))

					continue
				}

				valid = append(valid, quote)
			}

			return valid, nil
		},
		Persist: func(ctx context.Context, _ struct{}, valid []domain.Quote) error {
			report, err := s.service.MergeRemote(ctx, valid)
			if err != nil {
				return err
			}

			merged = report

			return nil
		},
		Respond: func(_ context.Context, _ struct{}, valid []domain.Quote) (SyncReport, error) {
			return SyncReport{
				Fetched: fetched,
				Valid:   len(valid),
				Added:   merged.Added,
				Total:   merged.Merged,
			}, nil
		},
	}

	report, err := Execute(ctx, s.exec, op, struct{}{})
	if err != nil {
		// Keep what the failed cycle observed for metrics.
		report.Fetched = fetched
		report.Added = merged.Added
	}

	return report, err
}

func (s *Syncer) recordOutcome(ctx context.Context, report SyncReport, err error) {
	now := time.Now()

	s.statusMu.Lock()
	s.lastRun = now
	s.cycles++

	if err != nil {
		s.failures++
		s.lastError = err.Error()
	} else {
		s.lastSuccess = now
		s.lastError = ""
		s.lastReport = report
	}
	s.statusMu.Unlock()

	outcome := telemetry.OutcomeSuccess
	if err != nil {
		outcome = cycleOutcome(err)
	}

	s.metrics.RecordCycle(ctx, outcome, report.Fetched, report.Added, report.Duration)
}

// cycleOutcome buckets a cycle failure by the step it died in.
func cycleOutcome(err error) string {
	step, ok := GetExecutionStep(err)
	if ok && step == StepPersist {
		return telemetry.OutcomeStoreError
	}

	return telemetry.OutcomeFetchError
}

func (s *Syncer) setRunning(v bool) {
	s.statusMu.Lock()
	s.running = v
	s.statusMu.Unlock()
}

func (s *Syncer) pausedNow(ctx context.Context) bool {
	return s.flags != nil && s.flags.IsEnabled(ctx, ports.FlagSyncPaused, false)
}

// Status reports the worker's schedule and the outcome of recent
// cycles.
func (s *Syncer) Status(ctx context.Context) SyncStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()

	return SyncStatus{
		Running:     s.running,
		Paused:      s.pausedNow(ctx),
		Interval:    s.interval,
		LastRun:     s.lastRun,
		LastSuccess: s.lastSuccess,
		LastError:   s.lastError,
		Cycles:      s.cycles,
		Failures:    s.failures,
		LastReport:  s.lastReport,
	}
}
