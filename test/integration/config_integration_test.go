//go:build integration

package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
)

// sourceConfig builds a client config for a stub quote source with settings
// most tests can use as-is; callers tweak the returned value where needed.
func sourceConfig(name, baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: name,
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			Multiplier:      2.0,
			InitialInterval: 20 * time.Millisecond,
			MaxInterval:     200 * time.Millisecond,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   4,
			HalfOpenLimit: 1,
			Timeout:       2 * time.Second,
		},
	}
}

// TestSourceConfig_Defaults checks a plain fetch works with the baseline
// source configuration.
func TestSourceConfig_Defaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[{"title":"Stay hungry."}]`))
	}))
	defer server.Close()

	client, err := clients.New(sourceConfig("quote-source-defaults", server.URL))
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), "/posts")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestSourceConfig_AttemptTimeout checks the configured per-attempt timeout
// is the one actually enforced.
func TestSourceConfig_AttemptTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := sourceConfig("quote-source-timeout", server.URL)
	cfg.Timeout = 50 * time.Millisecond

	client, err := clients.New(cfg)
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Get(context.Background(), "/posts")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Less(t, elapsed, 150*time.Millisecond, "the attempt should be cut off at the configured timeout")
}

// TestSourceConfig_RetryBudget checks the attempt budget against sources
// that fail a fixed number of times before recovering.
func TestSourceConfig_RetryBudget(t *testing.T) {
	tests := []struct {
		name          string
		maxAttempts   int
		failuresFirst int32
		wantCalls     int32
		wantSuccess   bool
	}{
		{
			name:          "first try succeeds",
			maxAttempts:   1,
			failuresFirst: 0,
			wantCalls:     1,
			wantSuccess:   true,
		},
		{
			name:          "one failure then success",
			maxAttempts:   2,
			failuresFirst: 1,
			wantCalls:     2,
			wantSuccess:   true,
		},
		{
			name:          "budget exhausted",
			maxAttempts:   2,
			failuresFirst: 5,
			wantCalls:     2,
			wantSuccess:   false,
		},
		{
			name:          "source heals within budget",
			maxAttempts:   4,
			failuresFirst: 3,
			wantCalls:     4,
			wantSuccess:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt32(&calls, 1) <= tt.failuresFirst {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := sourceConfig("quote-source-retry", server.URL)
			cfg.Retry.MaxAttempts = tt.maxAttempts
			cfg.Retry.InitialInterval = 5 * time.Millisecond
			cfg.Retry.MaxInterval = 50 * time.Millisecond
			// Keep the breaker out of this test's way.
			cfg.Circuit.MaxFailures = 100

			client, err := clients.New(cfg)
			require.NoError(t, err)

			resp, err := client.Get(context.Background(), "/posts")

			if tt.wantSuccess {
				require.NoError(t, err)
				defer resp.Body.Close()
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			} else {
				require.Error(t, err)
			}

			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls), "unexpected number of calls to the source")
		})
	}
}

// TestSourceConfig_BreakerThreshold checks MaxFailures is the exact point
// where the breaker trips.
func TestSourceConfig_BreakerThreshold(t *testing.T) {
	tests := []struct {
		name        string
		maxFailures int
		failures    int
		wantTripped bool
	}{
		{"stays closed below the threshold", 5, 2, false},
		{"opens exactly at the threshold", 3, 3, true},
		{"stays open past the threshold", 2, 4, true},
	}

	// One always-failing source serves every case; each case gets its own
	// client and therefore its own breaker.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sourceConfig("quote-source-breaker", server.URL)
			cfg.Circuit.MaxFailures = tt.maxFailures

			client, err := clients.New(cfg)
			require.NoError(t, err)

			for i := 0; i < tt.failures; i++ {
				_, _ = client.Get(context.Background(), "/posts")
			}

			if tt.wantTripped {
				assert.Equal(t, clients.StateOpen, client.CircuitState())
			} else {
				assert.Equal(t, clients.StateClosed, client.CircuitState())
			}
		})
	}
}

// TestSourceConfig_AuthHeader checks the configured auth function stamps the
// outbound request.
func TestSourceConfig_AuthHeader(t *testing.T) {
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := sourceConfig("quote-source-auth", server.URL)
	cfg.AuthFunc = func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer sync-token-789")
	}

	client, err := clients.New(cfg)
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), "/posts")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "Bearer sync-token-789", gotAuth)
}

// TestSourceConfig_BaseURLNormalization checks slash handling between the
// base URL and the request path.
func TestSourceConfig_BaseURLNormalization(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantPath string
	}{
		{"path with leading slash", "/posts", "/posts"},
		{"path without leading slash", "posts", "/posts"},
		{"nested path", "/posts/7", "/posts/7"},
	}

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := clients.New(sourceConfig("quote-source-urls", server.URL))
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.Get(context.Background(), tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantPath, gotPath)
		})
	}
}

// TestSourceConfig_Rejected checks configs missing required fields never
// produce a client.
func TestSourceConfig_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *clients.Config
		wantErr string
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: "config is required",
		},
		{
			name: "empty service name",
			cfg: &clients.Config{
				BaseURL: "https://quotes.example.com",
				Timeout: time.Second,
			},
			wantErr: "service name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := clients.New(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
