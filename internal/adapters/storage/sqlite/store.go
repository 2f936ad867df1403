// Package sqlite persists quote state to a single SQLite table as JSON
// payloads keyed by bucket. Snapshot writes are guarded by a version column
// so concurrent writers fail with a conflict instead of losing updates.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// Store is a SQLite-backed quote store.
type Store struct {
	db   *sql.DB
	path string
}

// Compile-time interface checks.
var (
	_ ports.QuoteStore    = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// New opens a SQLite store at path, creating the file and parent
// directories if needed.
func New(path string) (*Store, error) {
	if path == "" {
		path = "quotesync.db"
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		version INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// LoadQuotes returns the stored quote snapshot and its version.
// A missing snapshot returns a not found error. An undecodable payload
// returns a corrupted error carrying the stored version so callers can
// overwrite it with a subsequent save.
func (s *Store) LoadQuotes(ctx context.Context) ([]domain.Quote, int64, error) {
	var (
		payload []byte
		version int64
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT payload, version FROM state WHERE bucket = ?`, ports.BucketQuotes,
	).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, domain.NewNotFoundError("snapshot", ports.BucketQuotes)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("select %s: %w", ports.BucketQuotes, err)
	}

	var quotes []domain.Quote
	if err := json.Unmarshal(payload, &quotes); err != nil {
		return nil, version, domain.NewCorruptedError(ports.BucketQuotes, version, err)
	}

	return quotes, version, nil
}

// SaveQuotes writes the quote snapshot with optimistic concurrency control.
// Pass expectedVersion 0 to create the snapshot; any other value must match
// the stored version or a conflict error is returned. The new version is
// returned on success.
func (s *Store) SaveQuotes(ctx context.Context, quotes []domain.Quote, expectedVersion int64) (int64, error) {
	payload, err := json.Marshal(quotes)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", ports.BucketQuotes, err)
	}

	if expectedVersion == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO state(bucket, payload, version) VALUES(?, ?, 1)
			 ON CONFLICT(bucket) DO NOTHING`,
			ports.BucketQuotes, payload,
		)
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", ports.BucketQuotes, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", ports.BucketQuotes, err)
		}
		if affected == 0 {
			return 0, domain.NewConflictError("snapshot", "already exists")
		}

		return 1, nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE state SET payload = ?, version = version + 1
		 WHERE bucket = ? AND version = ?`,
		payload, ports.BucketQuotes, expectedVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", ports.BucketQuotes, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", ports.BucketQuotes, err)
	}
	if affected == 0 {
		return 0, domain.NewConflictErrorWithDetails("snapshot", "version mismatch",
			fmt.Sprintf("expected version %d", expectedVersion))
	}

	return expectedVersion + 1, nil
}

// LoadFilter returns the persisted category filter.
func (s *Store) LoadFilter(ctx context.Context) (string, error) {
	var payload []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM state WHERE bucket = ?`, ports.BucketFilter,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.NewNotFoundError("filter", ports.BucketFilter)
	}
	if err != nil {
		return "", fmt.Errorf("select %s: %w", ports.BucketFilter, err)
	}

	return string(payload), nil
}

// SaveFilter persists the category filter. Last write wins.
func (s *Store) SaveFilter(ctx context.Context, category string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state(bucket, payload, version) VALUES(?, ?, 1)
		 ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload, version = state.version + 1`,
		ports.BucketFilter, []byte(category),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", ports.BucketFilter, err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "sqlite-store" }

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return domain.NewUnavailableError("sqlite-store", err.Error())
	}

	return nil
}

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
