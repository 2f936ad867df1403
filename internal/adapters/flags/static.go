// Package flags provides the configuration-backed feature flag adapter.
//
// Flags live under the flags: section of the config tree and are loaded
// once at startup. The adapter keeps them in a mutex-guarded map so
// runtime overrides (pausing sync, muting publish-on-add) take effect
// without a restart.
package flags

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/jsamuelsen/quotesync/internal/ports"
)

// Static evaluates feature flags from an in-memory map seeded by config.
type Static struct {
	mu     sync.RWMutex
	values map[string]any
	logger *slog.Logger
}

var _ ports.FeatureFlags = (*Static)(nil)

// NewStatic builds a provider seeded with the given values. A nil map is
// treated as empty; every lookup then falls back to its default.
func NewStatic(values map[string]any, logger *slog.Logger) *Static {
	if logger == nil {
		logger = slog.Default()
	}

	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}

	return &Static{values: copied, logger: logger}
}

// IsEnabled reports whether a boolean flag is on. Unknown flags and values
// that do not parse as booleans yield defaultValue.
func (s *Static) IsEnabled(ctx context.Context, flag string, defaultValue bool) bool {
	raw, ok := s.lookup(flag)
	if !ok {
		return defaultValue
	}

	switch v := raw.(type) {
	case bool:
		return v
	case string:
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}

	s.logUnexpectedType(ctx, flag, "bool")

	return defaultValue
}

// GetString retrieves a string flag value, or defaultValue when the flag
// is absent or not a string.
func (s *Static) GetString(ctx context.Context, flag, defaultValue string) string {
	raw, ok := s.lookup(flag)
	if !ok {
		return defaultValue
	}

	if v, ok := raw.(string); ok {
		return v
	}

	s.logUnexpectedType(ctx, flag, "string")

	return defaultValue
}

// GetInt retrieves an integer flag value. YAML, JSON and env sources
// deliver numbers in different shapes, so int, int64, float64 and numeric
// strings are all accepted.
func (s *Static) GetInt(ctx context.Context, flag string, defaultValue int) int {
	raw, ok := s.lookup(flag)
	if !ok {
		return defaultValue
	}

	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}

	s.logUnexpectedType(ctx, flag, "int")

	return defaultValue
}

// Set overrides a flag at runtime. Subsequent lookups observe the new
// value immediately.
func (s *Static) Set(flag string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[flag] = value
}

// Delete removes a runtime override so lookups fall back to defaults.
func (s *Static) Delete(flag string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, flag)
}

func (s *Static) lookup(flag string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.values[flag]

	return raw, ok
}

func (s *Static) logUnexpectedType(ctx context.Context, flag, want string) {
	s.logger.DebugContext(ctx, "feature flag has unexpected type",
		slog.String("flag", flag),
		slog.String("want", want))
}
