package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "quotes.db")
	store, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

// corruptBucket overwrites a bucket payload with undecodable bytes through a
// separate database handle.
func corruptBucket(t *testing.T, path, bucket string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`UPDATE state SET payload = ? WHERE bucket = ?`, []byte("{not json"), bucket)
	require.NoError(t, err)
}

func TestNew_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "quotes.db")

	store, err := New(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Equal(t, path, store.Path())
	assert.FileExists(t, path)
}

func TestStore_LoadQuotes_Empty(t *testing.T) {
	store := newTestStore(t)

	quotes, version, err := store.LoadQuotes(context.Background())

	assert.Nil(t, quotes)
	assert.Zero(t, version)
	assert.True(t, domain.IsNotFound(err))
}

func TestStore_SaveQuotes_CreateAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seed := domain.SeedQuotes()

	version, err := store.SaveQuotes(ctx, seed, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	loaded, loadedVersion, err := store.LoadQuotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed, loaded)
	assert.Equal(t, int64(1), loadedVersion)
}

func TestStore_SaveQuotes_CreateConflictsWhenSnapshotExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveQuotes(ctx, domain.SeedQuotes(), 0)
	require.NoError(t, err)

	_, err = store.SaveQuotes(ctx, domain.SeedQuotes(), 0)
	assert.True(t, domain.IsConflict(err))
}

func TestStore_SaveQuotes_VersionedWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v1, err := store.SaveQuotes(ctx, []domain.Quote{{Text: "one", Category: "Test"}}, 0)
	require.NoError(t, err)

	v2, err := store.SaveQuotes(ctx, []domain.Quote{
		{Text: "one", Category: "Test"},
		{Text: "two", Category: "Test"},
	}, v1)
	require.NoError(t, err)
	assert.Equal(t, v1+1, v2)

	t.Run("stale version conflicts", func(t *testing.T) {
		_, err := store.SaveQuotes(ctx, []domain.Quote{{Text: "three", Category: "Test"}}, v1)
		require.Error(t, err)
		assert.True(t, domain.IsConflict(err))

		var conflictErr *domain.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, "snapshot", conflictErr.Entity)
	})

	t.Run("conflicting write does not change stored state", func(t *testing.T) {
		loaded, version, err := store.LoadQuotes(ctx)
		require.NoError(t, err)
		assert.Equal(t, v2, version)
		assert.Len(t, loaded, 2)
	})
}

func TestStore_LoadQuotes_CorruptedPayload(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	version, err := store.SaveQuotes(ctx, domain.SeedQuotes(), 0)
	require.NoError(t, err)

	corruptBucket(t, store.Path(), "quotes")

	quotes, loadedVersion, err := store.LoadQuotes(ctx)
	assert.Nil(t, quotes)
	assert.True(t, domain.IsCorrupted(err))

	// The stored version survives so the caller can overwrite the bad payload.
	assert.Equal(t, version, loadedVersion)

	var corruptedErr *domain.CorruptedError
	require.ErrorAs(t, err, &corruptedErr)
	assert.Equal(t, "quotes", corruptedErr.Bucket)

	t.Run("save at reported version replaces corrupt payload", func(t *testing.T) {
		newVersion, err := store.SaveQuotes(ctx, domain.SeedQuotes(), loadedVersion)
		require.NoError(t, err)
		assert.Equal(t, loadedVersion+1, newVersion)

		recovered, _, err := store.LoadQuotes(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.SeedQuotes(), recovered)
	})
}

func TestStore_Filter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("load before save returns not found", func(t *testing.T) {
		_, err := store.LoadFilter(ctx)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, store.SaveFilter(ctx, "Wisdom"))

		filter, err := store.LoadFilter(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Wisdom", filter)
	})

	t.Run("last write wins", func(t *testing.T) {
		require.NoError(t, store.SaveFilter(ctx, "Motivation"))
		require.NoError(t, store.SaveFilter(ctx, "all"))

		filter, err := store.LoadFilter(ctx)
		require.NoError(t, err)
		assert.Equal(t, "all", filter)
	})
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.db")
	ctx := context.Background()

	store, err := New(path)
	require.NoError(t, err)

	version, err := store.SaveQuotes(ctx, domain.SeedQuotes(), 0)
	require.NoError(t, err)
	require.NoError(t, store.SaveFilter(ctx, "Life"))
	require.NoError(t, store.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	quotes, loadedVersion, err := reopened.LoadQuotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SeedQuotes(), quotes)
	assert.Equal(t, version, loadedVersion)

	filter, err := reopened.LoadFilter(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Life", filter)
}

func TestStore_HealthCheck(t *testing.T) {
	store := newTestStore(t)

	assert.Equal(t, "sqlite-store", store.Name())
	assert.NoError(t, store.Check(context.Background()))

	t.Run("unhealthy after close", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "closed.db")
		closed, err := New(path)
		require.NoError(t, err)
		require.NoError(t, closed.Close())

		err = closed.Check(context.Background())
		require.Error(t, err)
		assert.True(t, domain.IsUnavailable(err))
	})
}

func TestStore_SaveQuotes_EmptySlice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	version, err := store.SaveQuotes(ctx, []domain.Quote{}, 0)
	require.NoError(t, err)

	loaded, _, err := store.LoadQuotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.Equal(t, int64(1), version)
}

func TestStore_ContextCancellation(t *testing.T) {
	store := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := store.LoadQuotes(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
