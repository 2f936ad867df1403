// Package memory provides an in-memory quote store for tests and
// ephemeral deployments. It honors the same versioning contract as the
// persistent stores but loses all state on restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// Store is an in-memory quote store.
type Store struct {
	mu        sync.RWMutex
	quotes    []domain.Quote
	version   int64
	filter    string
	hasFilter bool
}

// Compile-time interface checks.
var (
	_ ports.QuoteStore    = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{}
}

// LoadQuotes returns the stored quote snapshot and its version.
func (s *Store) LoadQuotes(_ context.Context) ([]domain.Quote, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.version == 0 {
		return nil, 0, domain.NewNotFoundError("snapshot", ports.BucketQuotes)
	}

	quotes := make([]domain.Quote, len(s.quotes))
	copy(quotes, s.quotes)

	return quotes, s.version, nil
}

// SaveQuotes writes the quote snapshot with optimistic concurrency control.
func (s *Store) SaveQuotes(_ context.Context, quotes []domain.Quote, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expectedVersion != s.version {
		if expectedVersion == 0 {
			return 0, domain.NewConflictError("snapshot", "already exists")
		}

		return 0, domain.NewConflictErrorWithDetails("snapshot", "version mismatch",
			fmt.Sprintf("expected version %d", expectedVersion))
	}

	s.quotes = make([]domain.Quote, len(quotes))
	copy(s.quotes, quotes)
	s.version++

	return s.version, nil
}

// LoadFilter returns the persisted category filter.
func (s *Store) LoadFilter(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasFilter {
		return "", domain.NewNotFoundError("filter", ports.BucketFilter)
	}

	return s.filter, nil
}

// SaveFilter persists the category filter. Last write wins.
func (s *Store) SaveFilter(_ context.Context, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = category
	s.hasFilter = true

	return nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "memory-store" }

// Check implements ports.HealthChecker.
func (s *Store) Check(_ context.Context) error { return nil }
