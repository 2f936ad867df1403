package ports

import (
	"context"
)

// Well-known flag names. Both default to the value wired in config; the
// flags provider can flip them at runtime without a restart.
const (
	// FlagPublishOnAdd gates pushing newly added local quotes upstream.
	FlagPublishOnAdd = "publish-on-add"

	// FlagSyncPaused short-circuits scheduled merge cycles when enabled.
	FlagSyncPaused = "sync-paused"
)

// FeatureFlags defines the contract for feature flag evaluation.
// The application checks flag enablement without knowing the underlying
// provider; the default adapter evaluates a static map from config.
//
// Always provide a default value so evaluation degrades gracefully when
// a flag is absent or the provider fails.
type FeatureFlags interface {
	// IsEnabled checks if a boolean feature flag is enabled.
	// Returns defaultValue if the flag doesn't exist or evaluation fails.
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool

	// GetString retrieves a string feature flag value.
	// Returns defaultValue if the flag doesn't exist or evaluation fails.
	GetString(ctx context.Context, flag string, defaultValue string) string

	// GetInt retrieves an integer feature flag value.
	// Returns defaultValue if the flag doesn't exist or evaluation fails.
	GetInt(ctx context.Context, flag string, defaultValue int) int
}
