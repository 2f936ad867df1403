// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrConflict, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// Store bucket names. Every adapter persists the collection under
// BucketQuotes as a JSON array and the last active filter under
// BucketFilter as a plain string.
const (
	BucketQuotes = "quotes"
	BucketFilter = "lastFilter"
)

// QuoteStore is the persistence port for the quote snapshot substrate.
// The collection is written wholesale; there are no per-record updates.
type QuoteStore interface {
	// LoadQuotes returns the persisted collection and its version.
	// Returns domain.ErrNotFound when no snapshot has been written yet.
	// Returns a domain.CorruptedError carrying the stored version when
	// the payload does not decode, so callers can overwrite it.
	LoadQuotes(ctx context.Context) ([]domain.Quote, int64, error)

	// SaveQuotes writes the whole collection with a compare-and-swap on
	// the snapshot version. expectedVersion 0 creates the snapshot.
	// Returns the new version, or domain.ErrConflict when the stored
	// version no longer matches expectedVersion.
	SaveQuotes(ctx context.Context, quotes []domain.Quote, expectedVersion int64) (int64, error)

	// LoadFilter returns the persisted last active category filter.
	// Returns domain.ErrNotFound when none has been saved.
	LoadFilter(ctx context.Context) (string, error)

	// SaveFilter persists the last active category filter.
	// Last write wins; there is no versioning for this value.
	SaveFilter(ctx context.Context, category string) error
}
