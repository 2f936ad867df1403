//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// quietLogger keeps component logs out of test output.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestSyncCycle_MergeEndToEnd runs a full merge cycle against a stub
// remote: seeded store, fetch, invalid-record drop, union merge,
// persisted result.
func TestSyncCycle_MergeEndToEnd(t *testing.T) {
	ctx := context.Background()

	// One title duplicates a local record under the remote category,
	// one is new, one is blank and must be dropped before the merge.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[
			{"userId": 1, "id": 1, "title": "Do or do not.", "body": "lorem"},
			{"userId": 1, "id": 2, "title": "Simplicity is the soul of efficiency.", "body": "ipsum"},
			{"userId": 1, "id": 3, "title": "", "body": "blank"}
		]`))
	}))
	defer server.Close()

	store := memory.New()
	local := []domain.Quote{
		{Text: "Stay hungry.", Category: "Motivation"},
		{Text: "Do or do not.", Category: "Server"},
	}
	_, err := store.SaveQuotes(ctx, local, 0)
	require.NoError(t, err)

	source := newTestPlaceholderClient(t, server.URL)

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Store:  store,
		Remote: source,
		Logger: quietLogger(),
	})
	require.NoError(t, service.Init(ctx))

	syncer := app.NewSyncer(app.SyncerConfig{
		Service: service,
		Source:  source,
		Logger:  quietLogger(),
	})

	report, err := syncer.RunOnce(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 2, report.Valid, "the blank record must not survive validation")
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 3, report.Total)

	t.Run("collection is the union in stable order", func(t *testing.T) {
		quotes := service.ListQuotes(ctx, "")

		require.Len(t, quotes, 3)
		assert.Equal(t, local[0], quotes[0])
		assert.Equal(t, local[1], quotes[1])
		assert.Equal(t, domain.Quote{
			Text:     "Simplicity is the soul of efficiency.",
			Category: "Server",
		}, quotes[2])
	})

	t.Run("merge result is persisted with a version bump", func(t *testing.T) {
		stored, version, err := store.LoadQuotes(ctx)
		require.NoError(t, err)
		assert.Len(t, stored, 3)
		assert.Equal(t, int64(2), version)
	})

	t.Run("status reflects the successful cycle", func(t *testing.T) {
		status := syncer.Status(ctx)
		assert.Equal(t, uint64(1), status.Cycles)
		assert.Zero(t, status.Failures)
		assert.False(t, status.LastSuccess.IsZero())
		assert.Equal(t, 1, status.LastReport.Added)
	})
}

// TestSyncCycle_RemoteFailure verifies a failed fetch leaves the local
// collection and its stored version untouched.
func TestSyncCycle_RemoteFailure(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store := memory.New()
	_, err := store.SaveQuotes(ctx, []domain.Quote{{Text: "Keep going.", Category: "Motivation"}}, 0)
	require.NoError(t, err)

	source := newTestPlaceholderClient(t, server.URL)

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Store:  store,
		Remote: source,
		Logger: quietLogger(),
	})
	require.NoError(t, service.Init(ctx))

	syncer := app.NewSyncer(app.SyncerConfig{
		Service: service,
		Source:  source,
		Logger:  quietLogger(),
	})

	_, err = syncer.RunOnce(ctx)
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))

	stored, version, err := store.LoadQuotes(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.Equal(t, int64(1), version)

	status := syncer.Status(ctx)
	assert.Equal(t, uint64(1), status.Cycles)
	assert.Equal(t, uint64(1), status.Failures)
	assert.NotEmpty(t, status.LastError)
	assert.True(t, status.LastSuccess.IsZero())
}
