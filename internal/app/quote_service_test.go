package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/mocks"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seededService builds a service initialized from a stored snapshot at
// the given version, with "all" as the persisted filter.
func seededService(t *testing.T, quotes []domain.Quote, version int64) (*QuoteService, *mocks.MockQuoteStore) {
	t.Helper()

	store := mocks.NewMockQuoteStore(t)
	store.EXPECT().LoadQuotes(mock.Anything).Return(quotes, version, nil).Once()
	store.EXPECT().LoadFilter(mock.Anything).Return(domain.CategoryAll, nil).Once()

	svc := NewQuoteService(QuoteServiceConfig{
		Store:  store,
		Logger: discardLogger(),
	})
	require.NoError(t, svc.Init(context.Background()))

	return svc, store
}

func TestNewQuoteService_PanicsWithoutStore(t *testing.T) {
	assert.Panics(t, func() {
		NewQuoteService(QuoteServiceConfig{
			Store:  nil,
			Logger: slog.Default(),
		})
	})
}

func TestNewQuoteService_DefaultsLogger(t *testing.T) {
	store := mocks.NewMockQuoteStore(t)

	svc := NewQuoteService(QuoteServiceConfig{
		Store:  store,
		Logger: nil, // Should default to slog.Default()
	})

	require.NotNil(t, svc)
	assert.Equal(t, domain.CategoryAll, svc.ActiveFilter(context.Background()))
}

func TestQuoteService_Init(t *testing.T) {
	stored := []domain.Quote{
		{Text: "stored one", Category: "Life"},
		{Text: "stored two", Category: "Wisdom"},
	}

	tests := []struct {
		name        string
		setupStore  func(*mocks.MockQuoteStore)
		wantErr     string
		wantQuotes  int
		wantVersion int64
		wantFilter  string
	}{
		{
			name: "seeds and persists when store is empty",
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().LoadQuotes(mock.Anything).
					Return(nil, 0, domain.NewNotFoundError("snapshot", ports.BucketQuotes)).Once()
				m.EXPECT().LoadFilter(mock.Anything).
					Return("", domain.NewNotFoundError("filter", ports.BucketFilter)).Once()
				m.EXPECT().SaveQuotes(mock.Anything, domain.SeedQuotes(), int64(0)).
					Return(1, nil).Once()
			},
			wantQuotes:  4,
			wantVersion: 1,
			wantFilter:  domain.CategoryAll,
		},
		{
			name: "adopts stored snapshot and filter",
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().LoadQuotes(mock.Anything).Return(stored, 7, nil).Once()
				m.EXPECT().LoadFilter(mock.Anything).Return("Wisdom", nil).Once()
			},
			wantQuotes:  2,
			wantVersion: 7,
			wantFilter:  "Wisdom",
		},
		{
			name: "serves seeds when snapshot is corrupt without overwriting it",
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().LoadQuotes(mock.Anything).
					Return(nil, 3, domain.NewCorruptedError(ports.BucketQuotes, 3, errors.New("unexpected end of JSON input"))).Once()
				m.EXPECT().LoadFilter(mock.Anything).
					Return("", domain.NewNotFoundError("filter", ports.BucketFilter)).Once()
				// No SaveQuotes: the bad payload stays until the next write.
			},
			wantQuotes:  4,
			wantVersion: 3,
			wantFilter:  domain.CategoryAll,
		},
		{
			name: "empty stored filter defaults to all",
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().LoadQuotes(mock.Anything).Return(stored, 1, nil).Once()
				m.EXPECT().LoadFilter(mock.Anything).Return("", nil).Once()
			},
			wantQuotes:  2,
			wantVersion: 1,
			wantFilter:  domain.CategoryAll,
		},
		{
			name: "propagates snapshot load failure",
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().LoadQuotes(mock.Anything).
					Return(nil, 0, errors.New("disk error")).Once()
				m.EXPECT().LoadFilter(mock.Anything).Return(domain.CategoryAll, nil).Once()
			},
			wantErr: "loading quotes",
		},
		{
			name: "propagates seed persistence failure",
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().LoadQuotes(mock.Anything).
					Return(nil, 0, domain.NewNotFoundError("snapshot", ports.BucketQuotes)).Once()
				m.EXPECT().LoadFilter(mock.Anything).Return(domain.CategoryAll, nil).Once()
				m.EXPECT().SaveQuotes(mock.Anything, domain.SeedQuotes(), int64(0)).
					Return(0, domain.NewUnavailableError("sqlite-store", "database locked")).Once()
			},
			wantErr: "persisting seed quotes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMockQuoteStore(t)
			tt.setupStore(store)

			svc := NewQuoteService(QuoteServiceConfig{
				Store:  store,
				Logger: discardLogger(),
			})

			err := svc.Init(context.Background())

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)

			quotes, version := svc.Snapshot(context.Background())
			assert.Len(t, quotes, tt.wantQuotes)
			assert.Equal(t, tt.wantVersion, version)
			assert.Equal(t, tt.wantFilter, svc.ActiveFilter(context.Background()))
		})
	}
}

func TestQuoteService_AddQuote(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		category   string
		setupStore func(*mocks.MockQuoteStore)
		errCheck   func(error) bool
	}{
		{
			name:     "appends and persists a valid quote",
			text:     "stay curious",
			category: "Motivation",
			setupStore: func(m *mocks.MockQuoteStore) {
				expected := append(domain.SeedQuotes(), domain.Quote{Text: "stay curious", Category: "Motivation"})
				m.EXPECT().SaveQuotes(mock.Anything, expected, int64(1)).Return(2, nil).Once()
			},
		},
		{
			name:       "rejects empty text before touching the store",
			text:       "",
			category:   "Motivation",
			setupStore: func(m *mocks.MockQuoteStore) {},
			errCheck:   domain.IsValidation,
		},
		{
			name:       "rejects empty category before touching the store",
			text:       "stay curious",
			category:   "",
			setupStore: func(m *mocks.MockQuoteStore) {},
			errCheck:   domain.IsValidation,
		},
		{
			name:     "surfaces store failure",
			text:     "stay curious",
			category: "Motivation",
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().SaveQuotes(mock.Anything, mock.Anything, int64(1)).
					Return(0, domain.NewUnavailableError("sqlite-store", "database locked")).Once()
			},
			errCheck: domain.IsUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := seededService(t, domain.SeedQuotes(), 1)
			tt.setupStore(store)

			quote, err := svc.AddQuote(context.Background(), tt.text, tt.category)

			if tt.errCheck != nil {
				require.Error(t, err)
				assert.True(t, tt.errCheck(err))
				assert.Empty(t, quote)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.Quote{Text: tt.text, Category: tt.category}, quote)

			all := svc.ListQuotes(context.Background(), domain.CategoryAll)
			assert.Len(t, all, 5)
			assert.Equal(t, quote, all[4])
		})
	}
}

func TestQuoteService_AddQuote_RetriesOnceOnVersionConflict(t *testing.T) {
	svc, store := seededService(t, domain.SeedQuotes(), 1)

	// Another writer bumped the snapshot to six records at version nine.
	stored := append(domain.SeedQuotes(),
		domain.Quote{Text: "concurrent one", Category: "Life"},
		domain.Quote{Text: "concurrent two", Category: "Wisdom"},
	)

	store.EXPECT().SaveQuotes(mock.Anything, mock.Anything, int64(1)).
		Return(0, domain.NewConflictError(ports.BucketQuotes, "version mismatch")).Once()
	store.EXPECT().LoadQuotes(mock.Anything).Return(stored, 9, nil).Once()
	store.EXPECT().SaveQuotes(mock.Anything, append(stored[:len(stored):len(stored)], domain.Quote{Text: "stay curious", Category: "Motivation"}), int64(9)).
		Return(10, nil).Once()

	quote, err := svc.AddQuote(context.Background(), "stay curious", "Motivation")

	require.NoError(t, err)

	quotes, version := svc.Snapshot(context.Background())
	assert.Equal(t, int64(10), version)
	require.Len(t, quotes, 7)
	assert.Equal(t, quote, quotes[6])
}

func TestQuoteService_AddQuote_GivesUpAfterSecondConflict(t *testing.T) {
	svc, store := seededService(t, domain.SeedQuotes(), 1)

	store.EXPECT().SaveQuotes(mock.Anything, mock.Anything, int64(1)).
		Return(0, domain.NewConflictError(ports.BucketQuotes, "version mismatch")).Once()
	store.EXPECT().LoadQuotes(mock.Anything).Return(domain.SeedQuotes(), 2, nil).Once()
	store.EXPECT().SaveQuotes(mock.Anything, mock.Anything, int64(2)).
		Return(0, domain.NewConflictError(ports.BucketQuotes, "version mismatch")).Once()

	_, err := svc.AddQuote(context.Background(), "stay curious", "Motivation")

	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	// The in-memory collection keeps its pre-conflict state.
	quotes, version := svc.Snapshot(context.Background())
	assert.Len(t, quotes, 4)
	assert.Equal(t, int64(1), version)
}

func TestQuoteService_AddQuote_PublishesWhenFlagEnabled(t *testing.T) {
	store := mocks.NewMockQuoteStore(t)
	store.EXPECT().LoadQuotes(mock.Anything).Return(domain.SeedQuotes(), 1, nil).Once()
	store.EXPECT().LoadFilter(mock.Anything).Return(domain.CategoryAll, nil).Once()
	store.EXPECT().SaveQuotes(mock.Anything, mock.Anything, int64(1)).Return(2, nil).Once()

	flags := mocks.NewMockFeatureFlags(t)
	flags.EXPECT().IsEnabled(mock.Anything, ports.FlagPublishOnAdd, false).Return(true).Once()

	remote := mocks.NewMockRemoteQuoteSource(t)
	remote.EXPECT().PublishQuote(mock.Anything, domain.Quote{Text: "stay curious", Category: "Motivation"}).
		Return(nil).Once()

	svc := NewQuoteService(QuoteServiceConfig{
		Store:  store,
		Remote: remote,
		Flags:  flags,
		Logger: discardLogger(),
	})
	require.NoError(t, svc.Init(context.Background()))

	_, err := svc.AddQuote(context.Background(), "stay curious", "Motivation")
	require.NoError(t, err)
}

func TestQuoteService_AddQuote_PublishFailureDoesNotFailAdd(t *testing.T) {
	store := mocks.NewMockQuoteStore(t)
	store.EXPECT().LoadQuotes(mock.Anything).Return(domain.SeedQuotes(), 1, nil).Once()
	store.EXPECT().LoadFilter(mock.Anything).Return(domain.CategoryAll, nil).Once()
	store.EXPECT().SaveQuotes(mock.Anything, mock.Anything, int64(1)).Return(2, nil).Once()

	remote := mocks.NewMockRemoteQuoteSource(t)
	remote.EXPECT().PublishQuote(mock.Anything, mock.Anything).
		Return(domain.NewUnavailableError("placeholder-api", "circuit open")).Once()

	svc := NewQuoteService(QuoteServiceConfig{
		Store:        store,
		Remote:       remote,
		Logger:       discardLogger(),
		PublishOnAdd: true,
	})
	require.NoError(t, svc.Init(context.Background()))

	quote, err := svc.AddQuote(context.Background(), "stay curious", "Motivation")

	require.NoError(t, err)
	assert.Equal(t, "stay curious", quote.Text)
	assert.Len(t, svc.ListQuotes(context.Background(), domain.CategoryAll), 5)
}

func TestQuoteService_AddQuote_SkipsPublishWhenFlagDisabled(t *testing.T) {
	store := mocks.NewMockQuoteStore(t)
	store.EXPECT().LoadQuotes(mock.Anything).Return(domain.SeedQuotes(), 1, nil).Once()
	store.EXPECT().LoadFilter(mock.Anything).Return(domain.CategoryAll, nil).Once()
	store.EXPECT().SaveQuotes(mock.Anything, mock.Anything, int64(1)).Return(2, nil).Once()

	flags := mocks.NewMockFeatureFlags(t)
	flags.EXPECT().IsEnabled(mock.Anything, ports.FlagPublishOnAdd, true).Return(false).Once()

	// No PublishQuote expectation: any call fails the test.
	remote := mocks.NewMockRemoteQuoteSource(t)

	svc := NewQuoteService(QuoteServiceConfig{
		Store:        store,
		Remote:       remote,
		Flags:        flags,
		Logger:       discardLogger(),
		PublishOnAdd: true,
	})
	require.NoError(t, svc.Init(context.Background()))

	_, err := svc.AddQuote(context.Background(), "stay curious", "Motivation")
	require.NoError(t, err)
}

func TestQuoteService_ListQuotes(t *testing.T) {
	collection := []domain.Quote{
		{Text: "first", Category: "Motivation"},
		{Text: "second", Category: "Life"},
		{Text: "third", Category: "Motivation"},
	}

	svc, _ := seededService(t, collection, 1)

	tests := []struct {
		name     string
		category string
		want     []domain.Quote
	}{
		{
			name:     "all returns everything",
			category: domain.CategoryAll,
			want:     collection,
		},
		{
			name:     "empty category returns everything",
			category: "",
			want:     collection,
		},
		{
			name:     "exact category match",
			category: "Motivation",
			want:     []domain.Quote{collection[0], collection[2]},
		},
		{
			name:     "matching is case sensitive",
			category: "motivation",
			want:     []domain.Quote{},
		},
		{
			name:     "unknown category returns empty slice",
			category: "Sports",
			want:     []domain.Quote{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.ListQuotes(context.Background(), tt.category)

			assert.Equal(t, tt.want, got)
			assert.NotNil(t, got)
		})
	}
}

func TestQuoteService_RandomQuote(t *testing.T) {
	collection := []domain.Quote{
		{Text: "only life quote", Category: "Life"},
		{Text: "wisdom one", Category: "Wisdom"},
		{Text: "wisdom two", Category: "Wisdom"},
	}

	t.Run("single candidate is returned", func(t *testing.T) {
		svc, _ := seededService(t, collection, 1)

		quote, err := svc.RandomQuote(context.Background(), "Life")

		require.NoError(t, err)
		assert.Equal(t, collection[0], quote)
	})

	t.Run("candidate comes from the requested category", func(t *testing.T) {
		svc, _ := seededService(t, collection, 1)

		quote, err := svc.RandomQuote(context.Background(), "Wisdom")

		require.NoError(t, err)
		assert.Equal(t, "Wisdom", quote.Category)
	})

	t.Run("empty category uses the active filter", func(t *testing.T) {
		store := mocks.NewMockQuoteStore(t)
		store.EXPECT().LoadQuotes(mock.Anything).Return(collection, 1, nil).Once()
		store.EXPECT().LoadFilter(mock.Anything).Return("Life", nil).Once()

		svc := NewQuoteService(QuoteServiceConfig{Store: store, Logger: discardLogger()})
		require.NoError(t, svc.Init(context.Background()))

		quote, err := svc.RandomQuote(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, collection[0], quote)
	})

	t.Run("empty subset returns not found", func(t *testing.T) {
		svc, _ := seededService(t, collection, 1)

		_, err := svc.RandomQuote(context.Background(), "Sports")

		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestQuoteService_ListCategories(t *testing.T) {
	svc, _ := seededService(t, []domain.Quote{
		{Text: "one", Category: "Wisdom"},
		{Text: "two", Category: "Life"},
		{Text: "three", Category: "Wisdom"},
		{Text: "four", Category: "Motivation"},
	}, 1)

	got := svc.ListCategories(context.Background())

	assert.Equal(t, []string{"Life", "Motivation", "Wisdom"}, got)
}

func TestQuoteService_SetFilter(t *testing.T) {
	tests := []struct {
		name       string
		category   string
		setupStore func(*mocks.MockQuoteStore)
		errCheck   func(error) bool
		wantFilter string
	}{
		{
			name:     "persists and adopts the new filter",
			category: "Wisdom",
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().SaveFilter(mock.Anything, "Wisdom").Return(nil).Once()
			},
			wantFilter: "Wisdom",
		},
		{
			name:       "rejects empty category without touching the store",
			category:   "",
			setupStore: func(m *mocks.MockQuoteStore) {},
			errCheck:   domain.IsValidation,
			wantFilter: domain.CategoryAll,
		},
		{
			name:     "keeps current filter when persistence fails",
			category: "Wisdom",
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().SaveFilter(mock.Anything, "Wisdom").
					Return(domain.NewUnavailableError("sqlite-store", "database locked")).Once()
			},
			errCheck:   domain.IsUnavailable,
			wantFilter: domain.CategoryAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := seededService(t, domain.SeedQuotes(), 1)
			tt.setupStore(store)

			err := svc.SetFilter(context.Background(), tt.category)

			if tt.errCheck != nil {
				require.Error(t, err)
				assert.True(t, tt.errCheck(err))
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantFilter, svc.ActiveFilter(context.Background()))
		})
	}
}

func TestQuoteService_Export(t *testing.T) {
	collection := []domain.Quote{
		{Text: "first", Category: "Motivation"},
		{Text: "second", Category: "Life"},
	}

	svc, _ := seededService(t, collection, 1)

	data, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {"))

	var decoded []domain.Quote
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, collection, decoded)
}

func TestQuoteService_Export_EmptyCollectionIsAnArray(t *testing.T) {
	svc, _ := seededService(t, []domain.Quote{}, 1)

	data, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestQuoteService_Import(t *testing.T) {
	tests := []struct {
		name         string
		data         string
		setupStore   func(*mocks.MockQuoteStore)
		errCheck     func(error) bool
		wantImported int
		wantTotal    int
	}{
		{
			name: "appends records from a JSON array",
			data: `[{"text":"imported one","category":"Life"},{"text":"imported two","category":"Wisdom"}]`,
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().SaveQuotes(mock.Anything, mock.Anything, int64(1)).Return(2, nil).Once()
			},
			wantImported: 2,
			wantTotal:    6,
		},
		{
			name: "keeps blank records verbatim",
			data: `[{"text":"","category":""}]`,
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().SaveQuotes(mock.Anything, mock.Anything, int64(1)).Return(2, nil).Once()
			},
			wantImported: 1,
			wantTotal:    5,
		},
		{
			name: "accepts an empty array",
			data: `[]`,
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().SaveQuotes(mock.Anything, domain.SeedQuotes(), int64(1)).Return(2, nil).Once()
			},
			wantImported: 0,
			wantTotal:    4,
		},
		{
			name:       "rejects a JSON object",
			data:       `{"text":"not an array","category":"Life"}`,
			setupStore: func(m *mocks.MockQuoteStore) {},
			errCheck:   domain.IsValidation,
		},
		{
			name:       "rejects malformed JSON",
			data:       `[{"text":`,
			setupStore: func(m *mocks.MockQuoteStore) {},
			errCheck:   domain.IsValidation,
		},
		{
			name:       "rejects arrays of non-objects",
			data:       `["just a string"]`,
			setupStore: func(m *mocks.MockQuoteStore) {},
			errCheck:   domain.IsValidation,
		},
		{
			name: "surfaces store failure",
			data: `[{"text":"imported","category":"Life"}]`,
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().SaveQuotes(mock.Anything, mock.Anything, int64(1)).
					Return(0, domain.NewUnavailableError("sqlite-store", "database locked")).Once()
			},
			errCheck: domain.IsUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := seededService(t, domain.SeedQuotes(), 1)
			tt.setupStore(store)

			report, err := svc.Import(context.Background(), []byte(tt.data))

			if tt.errCheck != nil {
				require.Error(t, err)
				assert.True(t, tt.errCheck(err))

				// A failed import leaves the collection untouched.
				assert.Len(t, svc.ListQuotes(context.Background(), domain.CategoryAll), 4)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantImported, report.Imported)
			assert.Equal(t, tt.wantTotal, report.Total)
			assert.Len(t, svc.ListQuotes(context.Background(), domain.CategoryAll), tt.wantTotal)
		})
	}
}

func TestQuoteService_ExportImportRoundTrip(t *testing.T) {
	collection := []domain.Quote{
		{Text: "first", Category: "Motivation"},
		{Text: "second", Category: "Life"},
		{Text: "third", Category: "Wisdom"},
	}

	source, _ := seededService(t, collection, 1)

	data, err := source.Export(context.Background())
	require.NoError(t, err)

	target, store := seededService(t, []domain.Quote{}, 1)
	store.EXPECT().SaveQuotes(mock.Anything, collection, int64(1)).Return(2, nil).Once()

	report, err := target.Import(context.Background(), data)

	require.NoError(t, err)
	assert.Equal(t, ImportReport{Imported: 3, Total: 3}, report)
	assert.Equal(t, collection, target.ListQuotes(context.Background(), domain.CategoryAll))
}

func TestQuoteService_MergeRemote(t *testing.T) {
	tests := []struct {
		name       string
		remote     []domain.Quote
		setupStore func(*mocks.MockQuoteStore)
		errCheck   func(error) bool
		wantReport MergeReport
	}{
		{
			name: "unions remote records and drops duplicates",
			remote: []domain.Quote{
				domain.SeedQuotes()[0],
				{Text: "remote one", Category: "Server"},
				{Text: "remote two", Category: "Server"},
			},
			setupStore: func(m *mocks.MockQuoteStore) {
				expected := append(domain.SeedQuotes(),
					domain.Quote{Text: "remote one", Category: "Server"},
					domain.Quote{Text: "remote two", Category: "Server"},
				)
				m.EXPECT().SaveQuotes(mock.Anything, expected, int64(1)).Return(2, nil).Once()
			},
			wantReport: MergeReport{Local: 4, Remote: 3, Merged: 6, Added: 2},
		},
		{
			name:   "empty remote batch persists the unchanged collection",
			remote: []domain.Quote{},
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().SaveQuotes(mock.Anything, domain.SeedQuotes(), int64(1)).Return(2, nil).Once()
			},
			wantReport: MergeReport{Local: 4, Remote: 0, Merged: 4, Added: 0},
		},
		{
			name:   "surfaces store failure",
			remote: []domain.Quote{{Text: "remote", Category: "Server"}},
			setupStore: func(m *mocks.MockQuoteStore) {
				m.EXPECT().SaveQuotes(mock.Anything, mock.Anything, int64(1)).
					Return(0, domain.NewUnavailableError("sqlite-store", "database locked")).Once()
			},
			errCheck: domain.IsUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := seededService(t, domain.SeedQuotes(), 1)
			tt.setupStore(store)

			report, err := svc.MergeRemote(context.Background(), tt.remote)

			if tt.errCheck != nil {
				require.Error(t, err)
				assert.True(t, tt.errCheck(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantReport, report)
		})
	}
}

func TestQuoteService_MergeRemote_LocalCopyKeepsItsPosition(t *testing.T) {
	local := []domain.Quote{
		{Text: "shared", Category: "Life"},
		{Text: "local only", Category: "Wisdom"},
	}
	remote := []domain.Quote{
		{Text: "remote only", Category: "Server"},
		{Text: "shared", Category: "Life"},
	}

	svc, store := seededService(t, local, 1)
	store.EXPECT().SaveQuotes(mock.Anything, mock.Anything, int64(1)).Return(2, nil).Once()

	_, err := svc.MergeRemote(context.Background(), remote)
	require.NoError(t, err)

	assert.Equal(t, []domain.Quote{
		{Text: "shared", Category: "Life"},
		{Text: "local only", Category: "Wisdom"},
		{Text: "remote only", Category: "Server"},
	}, svc.ListQuotes(context.Background(), domain.CategoryAll))
}

func TestQuoteService_Snapshot_ReturnsACopy(t *testing.T) {
	svc, _ := seededService(t, domain.SeedQuotes(), 1)

	quotes, version := svc.Snapshot(context.Background())
	require.Len(t, quotes, 4)
	assert.Equal(t, int64(1), version)

	quotes[0] = domain.Quote{Text: "mutated", Category: "Nope"}

	fresh, _ := svc.Snapshot(context.Background())
	assert.Equal(t, domain.SeedQuotes()[0], fresh[0])
}
