package ports

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned when two components try to register health
// checks under the same name.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is implemented by components that can report their health.
// Adapters register themselves with the HealthRegistry at startup; the
// snapshot store and the remote quote source both do.
//
// Example implementation:
//
//	func (s *Store) Name() string { return "sqlite-store" }
//
//	func (s *Store) Check(ctx context.Context) error {
//	    return s.db.PingContext(ctx)
//	}
type HealthChecker interface {
	// Name identifies this check in health responses. Names must be unique
	// within a registry.
	Name() string

	// Check reports nil when the component is healthy. Implementations
	// must honor ctx cancellation and deadlines.
	Check(ctx context.Context) error
}

// HealthRegistry collects the health checks of every registered component
// and answers the readiness probe with their combined verdict.
type HealthRegistry interface {
	// Register adds a checker. Registering a second checker under an
	// existing name fails with ErrDuplicateChecker.
	Register(checker HealthChecker) error

	// CheckAll runs every registered check concurrently under ctx and
	// aggregates the outcomes.
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is the verdict of a check, or of the whole service.
type HealthStatus string

const (
	// HealthStatusHealthy means every check passed.
	HealthStatusHealthy HealthStatus = "healthy"

	// HealthStatusUnhealthy means at least one check failed.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult aggregates one round of checks. Status is unhealthy as soon
// as any single check is.
type HealthResult struct {
	Status HealthStatus `json:"status"`

	// Checks holds the per-component outcomes keyed by checker name.
	Checks map[string]*CheckResult `json:"checks"`

	// Timestamp records when the round ran.
	Timestamp time.Time `json:"timestamp"`
}

// CheckResult is the outcome of a single component's check.
type CheckResult struct {
	Status HealthStatus `json:"status"`

	// Message carries the failure text; empty while healthy.
	Message string `json:"message,omitempty"`

	// Duration is how long the check took.
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry is the registry used by the service. Registration
// happens during startup; CheckAll may run concurrently with it.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
}

// NewHealthRegistry returns an empty registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{
		checkers: make([]HealthChecker, 0),
	}
}

// Register adds checker, rejecting names that are already taken.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, existing := range r.checkers {
		if existing.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}
	r.checkers = append(r.checkers, checker)

	return nil
}

type namedCheckResult struct {
	name   string
	result *CheckResult
}

// CheckAll fans the registered checks out onto goroutines and gathers their
// outcomes. A slow check delays the result only until ctx expires, provided
// the checker honors the context.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := slices.Clone(r.checkers)
	r.mu.RUnlock()

	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}
	if len(checkers) == 0 {
		return result
	}

	outcomes := make(chan namedCheckResult, len(checkers))
	for _, checker := range checkers {
		go func(c HealthChecker) {
			outcomes <- namedCheckResult{name: c.Name(), result: runCheck(ctx, c)}
		}(checker)
	}

	for i := 0; i < len(checkers); i++ {
		outcome := <-outcomes
		result.Checks[outcome.name] = outcome.result
		if outcome.result.Status == HealthStatusUnhealthy {
			result.Status = HealthStatusUnhealthy
		}
	}

	return result
}

// runCheck times a single check and folds its error into a CheckResult.
func runCheck(ctx context.Context, c HealthChecker) *CheckResult {
	start := time.Now()
	err := c.Check(ctx)

	res := &CheckResult{
		Status:   HealthStatusHealthy,
		Duration: time.Since(start),
	}
	if err != nil {
		res.Status = HealthStatusUnhealthy
		res.Message = err.Error()
	}

	return res
}
