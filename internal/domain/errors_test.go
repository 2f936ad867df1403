package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrConflict,
		ErrValidation,
		ErrForbidden,
		ErrUnavailable,
		ErrCorrupted,
	}

	for i, first := range sentinels {
		for j, second := range sentinels {
			if i == j {
				continue
			}

			assert.NotErrorIs(t, first, second, "%v must not match %v", first, second)
		}
	}
}

func TestNotFoundError(t *testing.T) {
	t.Run("with id", func(t *testing.T) {
		err := NewNotFoundError("quote", "Wisdom")

		assert.Equal(t, `quote with id "Wisdom" not found`, err.Error())
		require.ErrorIs(t, err, ErrNotFound)

		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "quote", notFound.Entity)
		assert.Equal(t, "Wisdom", notFound.ID)
	})

	t.Run("entity only", func(t *testing.T) {
		err := NewNotFoundError("snapshot", "")

		assert.Equal(t, "snapshot not found", err.Error())
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestConflictError(t *testing.T) {
	t.Run("entity and reason", func(t *testing.T) {
		err := NewConflictError("sync", "cycle already running")

		assert.Equal(t, "sync conflict: cycle already running", err.Error())
		require.ErrorIs(t, err, ErrConflict)

		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "sync", conflict.Entity)
		assert.Equal(t, "cycle already running", conflict.Reason)
	})

	t.Run("details in parentheses", func(t *testing.T) {
		err := NewConflictErrorWithDetails("snapshot", "version mismatch", "expected 3")

		assert.Equal(t, "snapshot conflict: version mismatch (expected 3)", err.Error())
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("empty details fall back to the short form", func(t *testing.T) {
		err := NewConflictErrorWithDetails("snapshot", "version mismatch", "")

		assert.Equal(t, "snapshot conflict: version mismatch", err.Error())
	})
}

func TestValidationError(t *testing.T) {
	t.Run("field named", func(t *testing.T) {
		err := NewValidationError("text", "cannot be empty")

		assert.Equal(t, "validation failed for text: cannot be empty", err.Error())
		require.ErrorIs(t, err, ErrValidation)

		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "text", validation.Field)
		assert.Equal(t, "cannot be empty", validation.Message)
	})

	t.Run("no field", func(t *testing.T) {
		err := NewValidationError("", "payload must be a JSON array")

		assert.Equal(t, "validation failed: payload must be a JSON array", err.Error())
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestForbiddenError(t *testing.T) {
	err := NewForbiddenError("import", "authentication required")

	assert.Equal(t, `operation "import" forbidden: authentication required`, err.Error())
	require.ErrorIs(t, err, ErrForbidden)

	var forbidden *ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, "import", forbidden.Operation)
}

func TestUnavailableError(t *testing.T) {
	t.Run("reason given", func(t *testing.T) {
		err := NewUnavailableError("placeholder-api", "connection timeout")

		assert.Equal(t, `service "placeholder-api" unavailable: connection timeout`, err.Error())
		require.ErrorIs(t, err, ErrUnavailable)

		var unavailable *UnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, "placeholder-api", unavailable.Service)
		assert.Equal(t, "connection timeout", unavailable.Reason)
	})

	t.Run("no reason", func(t *testing.T) {
		err := NewUnavailableError("store", "")

		assert.Equal(t, `service "store" unavailable`, err.Error())
	})
}

func TestCorruptedError(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("invalid character 'x'")
		err := NewCorruptedError("quotes", 4, cause)

		assert.Equal(t, `bucket "quotes" corrupted at version 4: invalid character 'x'`, err.Error())
		require.ErrorIs(t, err, ErrCorrupted)
		assert.ErrorIs(t, err, cause)

		var corrupted *CorruptedError
		require.ErrorAs(t, err, &corrupted)
		assert.Equal(t, "quotes", corrupted.Bucket)
		assert.Equal(t, int64(4), corrupted.Version)
	})

	t.Run("without cause", func(t *testing.T) {
		err := NewCorruptedError("lastFilter", 1, nil)

		assert.Equal(t, `bucket "lastFilter" corrupted at version 1`, err.Error())
		require.ErrorIs(t, err, ErrCorrupted)
	})
}

// Each Is helper matches its own typed error, its sentinel, wrapped forms
// of either, and nothing else.
func TestIsHelpers(t *testing.T) {
	wrap := func(err error) error { return fmt.Errorf("wrapped: %w", err) }

	t.Run("IsNotFound", func(t *testing.T) {
		assert.True(t, IsNotFound(NewNotFoundError("quote", "")))
		assert.True(t, IsNotFound(ErrNotFound))
		assert.True(t, IsNotFound(wrap(ErrNotFound)))
		assert.False(t, IsNotFound(ErrConflict))
		assert.False(t, IsNotFound(nil))
	})

	t.Run("IsConflict", func(t *testing.T) {
		assert.True(t, IsConflict(NewConflictError("snapshot", "version mismatch")))
		assert.True(t, IsConflict(ErrConflict))
		assert.True(t, IsConflict(wrap(ErrConflict)))
		assert.False(t, IsConflict(ErrNotFound))
		assert.False(t, IsConflict(nil))
	})

	t.Run("IsValidation", func(t *testing.T) {
		assert.True(t, IsValidation(NewValidationError("text", "empty")))
		assert.True(t, IsValidation(ErrValidation))
		assert.True(t, IsValidation(wrap(ErrValidation)))
		assert.False(t, IsValidation(ErrNotFound))
		assert.False(t, IsValidation(nil))
	})

	t.Run("IsForbidden", func(t *testing.T) {
		assert.True(t, IsForbidden(NewForbiddenError("import", "no access")))
		assert.True(t, IsForbidden(ErrForbidden))
		assert.False(t, IsForbidden(ErrNotFound))
	})

	t.Run("IsUnavailable", func(t *testing.T) {
		assert.True(t, IsUnavailable(NewUnavailableError("placeholder-api", "timeout")))
		assert.True(t, IsUnavailable(ErrUnavailable))
		assert.False(t, IsUnavailable(ErrNotFound))
	})

	t.Run("IsCorrupted", func(t *testing.T) {
		assert.True(t, IsCorrupted(NewCorruptedError("quotes", 1, nil)))
		assert.True(t, IsCorrupted(ErrCorrupted))
		assert.False(t, IsCorrupted(ErrConflict))
		assert.False(t, IsCorrupted(nil))
	})
}

func TestErrorWrappingChain(t *testing.T) {
	t.Run("conflict survives two wraps", func(t *testing.T) {
		original := NewConflictErrorWithDetails("snapshot", "version mismatch", "expected 2")
		wrapped := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", original))

		assert.True(t, IsConflict(wrapped))

		var conflict *ConflictError
		require.ErrorAs(t, wrapped, &conflict)
		assert.Equal(t, "expected 2", conflict.Details)
	})

	t.Run("validation field survives wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("adding quote: %w", NewValidationError("category", "cannot be empty"))

		assert.True(t, IsValidation(wrapped))

		var validation *ValidationError
		require.ErrorAs(t, wrapped, &validation)
		assert.Equal(t, "category", validation.Field)
	})

	t.Run("corruption version survives wrapping", func(t *testing.T) {
		original := NewCorruptedError("quotes", 7, errors.New("unexpected end of JSON input"))
		wrapped := fmt.Errorf("loading snapshot: %w", original)

		assert.True(t, IsCorrupted(wrapped))

		var corrupted *CorruptedError
		require.ErrorAs(t, wrapped, &corrupted)
		assert.Equal(t, int64(7), corrupted.Version)
	})
}
