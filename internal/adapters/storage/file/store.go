// Package file persists quote state as JSON files under a root directory.
// The quote snapshot is wrapped in a versioned envelope and written through
// a temp file plus rename so a crash never leaves a half-written snapshot.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

const (
	quotesFile = "quotes.json"
	filterFile = "last_filter"
)

// envelope wraps the quote snapshot with its write version.
type envelope struct {
	Version int64          `json:"version"`
	Quotes  []domain.Quote `json:"quotes"`
}

// Store is a filesystem-backed quote store rooted at a directory.
type Store struct {
	mu   sync.Mutex
	root string
}

// Compile-time interface checks.
var (
	_ ports.QuoteStore    = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// New returns a file-backed store rooted at root, creating the directory
// if needed. Roots with parent-directory components are rejected.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./data"
	}

	root = filepath.Clean(root)
	if strings.Contains(root, "..") {
		return nil, fmt.Errorf("state root %q contains '..'", root)
	}

	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create root: %w", err)
	}

	return &Store{root: root}, nil
}

// LoadQuotes returns the stored quote snapshot and its version.
// An undecodable file reports version 0, which lets a subsequent create
// write claim and replace it.
func (s *Store) LoadQuotes(_ context.Context) ([]domain.Quote, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.readEnvelope()
	if err != nil {
		return nil, 0, err
	}

	return env.Quotes, env.Version, nil
}

// SaveQuotes writes the quote snapshot with optimistic concurrency control.
// Pass expectedVersion 0 to create the snapshot; any other value must match
// the stored version or a conflict error is returned.
func (s *Store) SaveQuotes(_ context.Context, quotes []domain.Quote, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readEnvelope()
	switch {
	case err == nil:
	case domain.IsNotFound(err), domain.IsCorrupted(err):
		// Missing or undecodable snapshots have no version to defend.
		current = envelope{}
	default:
		return 0, err
	}

	if expectedVersion != current.Version {
		if expectedVersion == 0 {
			return 0, domain.NewConflictError("snapshot", "already exists")
		}

		return 0, domain.NewConflictErrorWithDetails("snapshot", "version mismatch",
			fmt.Sprintf("expected version %d", expectedVersion))
	}

	next := envelope{Version: expectedVersion + 1, Quotes: quotes}

	payload, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", ports.BucketQuotes, err)
	}

	if err := s.writeAtomic(quotesFile, payload); err != nil {
		return 0, err
	}

	return next.Version, nil
}

// LoadFilter returns the persisted category filter.
func (s *Store) LoadFilter(_ context.Context) (string, error) {
	payload, err := os.ReadFile(filepath.Join(s.root, filterFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", domain.NewNotFoundError("filter", ports.BucketFilter)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", ports.BucketFilter, err)
	}

	return string(payload), nil
}

// SaveFilter persists the category filter. Last write wins.
func (s *Store) SaveFilter(_ context.Context, category string) error {
	if err := os.WriteFile(filepath.Join(s.root, filterFile), []byte(category), 0o644); err != nil { //nolint:gosec // non-sensitive state file
		return fmt.Errorf("write %s: %w", ports.BucketFilter, err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "file-store" }

// Check implements ports.HealthChecker.
func (s *Store) Check(_ context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return domain.NewUnavailableError("file-store", err.Error())
	}
	if !info.IsDir() {
		return domain.NewUnavailableError("file-store", s.root+" is not a directory")
	}

	return nil
}

// Root returns the configured state directory.
func (s *Store) Root() string { return s.root }

// readEnvelope reads and decodes the snapshot file. Callers hold s.mu.
func (s *Store) readEnvelope() (envelope, error) {
	payload, err := os.ReadFile(filepath.Join(s.root, quotesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return envelope{}, domain.NewNotFoundError("snapshot", ports.BucketQuotes)
	}
	if err != nil {
		return envelope{}, fmt.Errorf("read %s: %w", ports.BucketQuotes, err)
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return envelope{}, domain.NewCorruptedError(ports.BucketQuotes, 0, err)
	}

	return env, nil
}

// writeAtomic writes payload to name through a temp file and rename.
func (s *Store) writeAtomic(name string, payload []byte) error {
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.root, name)); err != nil {
		return fmt.Errorf("rename temp: %w", err)
	}

	return nil
}
