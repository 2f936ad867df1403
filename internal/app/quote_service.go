// Package app contains the application services that orchestrate use
// cases. It coordinates domain logic and infrastructure through ports:
// the quote service owns the canonical collection, the syncer schedules
// merge cycles against the remote source.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// ImportReport summarizes an import operation.
type ImportReport struct {
	Imported int
	Total    int
}

// MergeReport summarizes a remote merge.
type MergeReport struct {
	Local  int
	Remote int
	Merged int
	Added  int
}

// QuoteService is the single owner of the canonical quote collection.
// All mutation flows through it behind one mutex; adapters never touch
// the store or the collection directly.
type QuoteService struct {
	store        ports.QuoteStore
	remote       ports.RemoteQuoteSource
	flags        ports.FeatureFlags
	metrics      *telemetry.SyncMetrics
	exec         *Executor
	logger       *slog.Logger
	publishOnAdd bool

	mu           sync.RWMutex
	quotes       []domain.Quote
	version      int64
	activeFilter string
}

// QuoteServiceConfig contains the dependencies for the quote service.
// Store is required; Remote, Flags and Metrics are optional.
// PublishOnAdd is the default for the publish-on-add feature flag.
type QuoteServiceConfig struct {
	Store        ports.QuoteStore
	Remote       ports.RemoteQuoteSource
	Flags        ports.FeatureFlags
	Metrics      *telemetry.SyncMetrics
	Logger       *slog.Logger
	PublishOnAdd bool
}

// NewQuoteService creates the quote service. It panics when the store is
// missing since the service cannot operate without persistence.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil {
		panic("app: QuoteServiceConfig.Store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "app.QuoteService"))

	return &QuoteService{
		store:        cfg.Store,
		remote:       cfg.Remote,
		flags:        cfg.Flags,
		metrics:      cfg.Metrics,
		exec:         NewExecutor(logger),
		logger:       logger,
		publishOnAdd: cfg.PublishOnAdd,
		activeFilter: domain.CategoryAll,
	}
}

// loadResult carries the outcome of the snapshot load during Init.
type loadResult struct {
	quotes     []domain.Quote
	version    int64
	seeded     bool
	persistNow bool
}

// Init performs the load-or-seed startup sequence. An absent snapshot is
// seeded with the built-in quotes and persisted. A corrupt snapshot is
// replaced in memory by the seeds while the stored version is kept, so
// the next successful save overwrites the bad payload.
func (s *QuoteService) Init(ctx context.Context) error {
	logger := s.opLogger(ctx, "Init")

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, filter, err := Parallel2(ctx,
		func(ctx context.Context) (loadResult, error) { return s.loadSnapshot(ctx, logger) },
		func(ctx context.Context) (string, error) { return s.loadFilter(ctx) },
	)
	if err != nil {
		return fmt.Errorf("initializing quote collection: %w", err)
	}

	if snap.persistNow {
		version, saveErr := s.store.SaveQuotes(ctx, snap.quotes, snap.version)
		if saveErr != nil {
			return fmt.Errorf("persisting seed quotes: %w", saveErr)
		}

		snap.version = version
	}

	s.quotes = snap.quotes
	s.version = snap.version
	s.activeFilter = filter

	s.metrics.RecordCollectionSize(ctx, len(s.quotes))

	logger.InfoContext(ctx, "quote collection initialized",
		slog.Int("quotes", len(s.quotes)),
		slog.Int64("version", s.version),
		slog.String("filter", s.activeFilter),
		slog.Bool("seeded", snap.seeded),
	)

	return nil
}

func (s *QuoteService) loadSnapshot(ctx context.Context, logger *slog.Logger) (loadResult, error) {
	quotes, version, err := s.store.LoadQuotes(ctx)

	switch {
	case err == nil:
		return loadResult{quotes: quotes, version: version}, nil

	case domain.IsNotFound(err):
		return loadResult{quotes: domain.SeedQuotes(), seeded: true, persistNow: true}, nil

	case domain.IsCorrupted(err):
		logger.WarnContext(ctx, "stored snapshot is corrupt, serving seed quotes",
			slog.Int64("version", version),
			slog.Any("error", err),
		)

		return loadResult{quotes: domain.SeedQuotes(), version: version, seeded: true}, nil

	default:
		return loadResult{}, fmt.Errorf("loading quotes: %w", err)
	}
}

func (s *QuoteService) loadFilter(ctx context.Context) (string, error) {
	filter, err := s.store.LoadFilter(ctx)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.CategoryAll, nil
		}

		return "", fmt.Errorf("loading filter: %w", err)
	}

	if filter == "" {
		return domain.CategoryAll, nil
	}

	return filter, nil
}

// AddQuote validates and appends a record, persists the collection, and
// publishes the record upstream when the publish-on-add flag allows.
// Publish failure never fails the add.
func (s *QuoteService) AddQuote(ctx context.Context, text, category string) (domain.Quote, error) {
	logger := s.opLogger(ctx, "AddQuote")

	quote := domain.Quote{Text: text, Category: category}
	if err := quote.Validate(); err != nil {
		return domain.Quote{}, fmt.Errorf("validating quote: %w", err)
	}

	s.mu.Lock()
	err := s.persistLocked(ctx, func(current []domain.Quote) []domain.Quote {
		return append(slices.Clone(current), quote)
	})
	size := len(s.quotes)
	s.mu.Unlock()

	if err != nil {
		return domain.Quote{}, fmt.Errorf("persisting quote: %w", err)
	}

	s.metrics.RecordCollectionSize(ctx, size)
	logger.InfoContext(ctx, "quote added",
		slog.String("category", quote.Category),
		slog.Int("quotes", size),
	)

	s.publishAdded(ctx, logger, quote)

	return quote, nil
}

// publishAdded pushes a newly added quote upstream, best effort.
func (s *QuoteService) publishAdded(ctx context.Context, logger *slog.Logger, quote domain.Quote) {
	if s.remote == nil || !s.publishEnabled(ctx) {
		return
	}

	err := s.remote.PublishQuote(ctx, quote)
	s.metrics.RecordPublish(ctx, err)

	if err != nil {
		logger.WarnContext(ctx, "publishing quote upstream failed", slog.Any("error", err))

		return
	}

	logger.DebugContext(ctx, "quote published upstream")
}

func (s *QuoteService) publishEnabled(ctx context.Context) bool {
	if s.flags == nil {
		return s.publishOnAdd
	}

	return s.flags.IsEnabled(ctx, ports.FlagPublishOnAdd, s.publishOnAdd)
}

// ListQuotes returns a copy of the collection filtered by category.
// The literal "all" and the empty string return everything.
func (s *QuoteService) ListQuotes(ctx context.Context, category string) []domain.Quote {
	s.mu.RLock()
	quotes := make([]domain.Quote, len(s.quotes))
	copy(quotes, s.quotes)
	s.mu.RUnlock()

	return domain.FilterByCategory(quotes, category)
}

// RandomQuote returns a uniformly random quote from the filtered subset.
// An empty category means the active filter. Returns domain.ErrNotFound
// when the subset is empty.
func (s *QuoteService) RandomQuote(ctx context.Context, category string) (domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if category == "" {
		category = s.activeFilter
	}

	candidates := domain.FilterByCategory(s.quotes, category)
	if len(candidates) == 0 {
		return domain.Quote{}, domain.NewNotFoundError("quote", category)
	}

	return candidates[rand.IntN(len(candidates))], nil
}

// ListCategories returns the distinct categories in the collection,
// sorted.
func (s *QuoteService) ListCategories(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.Categories(s.quotes)
}

// ActiveFilter returns the persisted category filter.
func (s *QuoteService) ActiveFilter(ctx context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.activeFilter
}

// SetFilter persists and adopts a new active category filter.
func (s *QuoteService) SetFilter(ctx context.Context, category string) error {
	if category == "" {
		return fmt.Errorf("validating filter: %w", domain.NewValidationError("category", "cannot be empty"))
	}

	if err := s.store.SaveFilter(ctx, category); err != nil {
		return fmt.Errorf("persisting filter: %w", err)
	}

	s.mu.Lock()
	s.activeFilter = category
	s.mu.Unlock()

	s.opLogger(ctx, "SetFilter").DebugContext(ctx, "filter updated",
		slog.String("category", category))

	return nil
}

// Export renders the collection as a pretty-printed JSON array suitable
// for a quotes.json download. Import accepts the same format.
func (s *QuoteService) Export(ctx context.Context) ([]byte, error) {
	quotes, _ := s.Snapshot(ctx)

	data, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding quotes: %w", err)
	}

	return data, nil
}

// Import appends the records in data to the collection. The content
// must be a JSON array; beyond that shape check the records are taken
// verbatim, so an export round-trips unchanged.
func (s *QuoteService) Import(ctx context.Context, data []byte) (ImportReport, error) {
	op := Operation[[]byte, []domain.Quote, []domain.Quote, ImportReport]{
		Name: "import-quotes",
		Validate: func(_ context.Context, raw []byte) error {
			var probe []json.RawMessage
			if err := json.Unmarshal(raw, &probe); err != nil {
				return domain.NewValidationError("data", "content must be a JSON array")
			}

			return nil
		},
		Perform: func(_ context.Context, raw []byte) ([]domain.Quote, error) {
			var quotes []domain.Quote
			if err := json.Unmarshal(raw, &quotes); err != nil {
				return nil, domain.NewValidationError("data", "records must be JSON objects")
			}

			return quotes, nil
		},
		Verify: func(_ context.Context, _ []byte, decoded []domain.Quote) ([]domain.Quote, error) {
			// Records are kept verbatim; only the array shape is enforced.
			return decoded, nil
		},
		Persist: func(ctx context.Context, _ []byte, verified []domain.Quote) error {
			s.mu.Lock()
			defer s.mu.Unlock()

			return s.persistLocked(ctx, func(current []domain.Quote) []domain.Quote {
				return append(slices.Clone(current), verified...)
			})
		},
		Respond: func(ctx context.Context, _ []byte, verified []domain.Quote) (ImportReport, error) {
			s.mu.RLock()
			total := len(s.quotes)
			s.mu.RUnlock()

			s.metrics.RecordCollectionSize(ctx, total)

			return ImportReport{Imported: len(verified), Total: total}, nil
		},
	}

	report, err := Execute(ctx, s.exec, op, data)
	if err != nil {
		return ImportReport{}, fmt.Errorf("importing quotes: %w", err)
	}

	return report, nil
}

// MergeRemote unions remote records into the collection. Local records
// keep their position; new remote records append in arrival order.
func (s *QuoteService) MergeRemote(ctx context.Context, remote []domain.Quote) (MergeReport, error) {
	logger := s.opLogger(ctx, "MergeRemote")

	s.mu.Lock()

	var report MergeReport

	err := s.persistLocked(ctx, func(current []domain.Quote) []domain.Quote {
		merged := domain.Merge(current, remote)
		report = MergeReport{
			Local:  len(current),
			Remote: len(remote),
			Merged: len(merged),
			Added:  len(merged) - len(current),
		}

		return merged
	})
	total := len(s.quotes)
	s.mu.Unlock()

	if err != nil {
		return MergeReport{}, fmt.Errorf("merging remote quotes: %w", err)
	}

	s.metrics.RecordCollectionSize(ctx, total)
	logger.InfoContext(ctx, "remote quotes merged",
		slog.Int("remote", report.Remote),
		slog.Int("added", report.Added),
		slog.Int("total", report.Merged),
	)

	return report, nil
}

// Snapshot returns a copy of the collection and its store version.
func (s *QuoteService) Snapshot(ctx context.Context) ([]domain.Quote, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quotes := make([]domain.Quote, len(s.quotes))
	copy(quotes, s.quotes)

	return quotes, s.version
}

// persistLocked builds the next collection from apply, writes it with a
// compare-and-swap on the current version, and adopts the result. On a
// version conflict it reloads the stored snapshot, re-applies, and
// retries once. Callers must hold s.mu.
func (s *QuoteService) persistLocked(ctx context.Context, apply func(current []domain.Quote) []domain.Quote) error {
	next := apply(s.quotes)

	version, err := s.store.SaveQuotes(ctx, next, s.version)
	if err != nil && domain.IsConflict(err) {
		stored, storedVersion, loadErr := s.reloadLocked(ctx)
		if loadErr != nil {
			return loadErr
		}

		next = apply(stored)
		version, err = s.store.SaveQuotes(ctx, next, storedVersion)
	}

	if err != nil {
		return err
	}

	s.quotes = next
	s.version = version

	return nil
}

// reloadLocked fetches the stored snapshot after a version conflict.
// An absent snapshot reloads as empty at version zero so the retry
// becomes a create.
func (s *QuoteService) reloadLocked(ctx context.Context) ([]domain.Quote, int64, error) {
	quotes, version, err := s.store.LoadQuotes(ctx)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, 0, nil
		}

		return nil, 0, fmt.Errorf("reloading quotes after conflict: %w", err)
	}

	return quotes, version, nil
}

func (s *QuoteService) opLogger(ctx context.Context, method string) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = s.logger
	}

	return logger.With(slog.String("method", method))
}
