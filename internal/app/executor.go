package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// Write operations run through five ordered steps: Validate, Perform,
// Verify, Persist, Respond. A failed step aborts the operation before any
// later step runs, so nothing is stored until the performed result has
// been verified. The import path and the sync cycle both flow through this.

// ExecutionStep identifies one step of an executed operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepPersist  ExecutionStep = "persist"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError tags a step failure with the step that produced it.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("%s failed: %s", e.Step, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}

	return msg
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// stepError wraps a step failure so callers can tell which step broke.
func stepError(step ExecutionStep, message string, cause error) error {
	return &ExecutionError{Step: step, Message: message, Cause: cause}
}

// Executor carries the fallback logger for operations whose context has none.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor returns an executor logging through the given logger.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{logger: logger}
}

// Operation describes the five steps of one write operation. Nil steps
// are skipped.
type Operation[I, P, V, O any] struct {
	// Name identifies this operation in logs.
	Name string

	// Validate checks inputs and preconditions before anything changes.
	Validate func(ctx context.Context, input I) error

	// Perform executes the main work, typically a remote call or a
	// decode of the input.
	Perform func(ctx context.Context, input I) (P, error)

	// Verify confirms the performed result independently before it is
	// allowed to reach persistence.
	Verify func(ctx context.Context, input I, performed P) (V, error)

	// Persist stores the verified state.
	Persist func(ctx context.Context, input I, verified V) error

	// Respond shapes the result for the caller once every other step
	// has succeeded.
	Respond func(ctx context.Context, input I, verified V) (O, error)
}

// Execute runs the operation's steps in order, stopping at the first
// failure.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var zero O

	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = exec.logger
	}
	logger = logger.With(slog.String("operation", op.Name))

	start := time.Now()
	logger.DebugContext(ctx, "starting operation")

	if op.Validate != nil {
		if err := op.Validate(ctx, input); err != nil {
			logger.WarnContext(ctx, "validation failed", slog.Any("error", err))

			return zero, stepError(StepValidate, "input validation failed", err)
		}
	}

	var performed P

	if op.Perform != nil {
		var err error
		if performed, err = op.Perform(ctx, input); err != nil {
			logger.ErrorContext(ctx, "perform failed", slog.Any("error", err))

			return zero, stepError(StepPerform, "operation failed", err)
		}
	}

	var verified V

	if op.Verify != nil {
		var err error
		if verified, err = op.Verify(ctx, input, performed); err != nil {
			logger.ErrorContext(ctx, "verification failed", slog.Any("error", err))

			return zero, stepError(StepVerify, "verification failed", err)
		}
	}

	if op.Persist != nil {
		if err := op.Persist(ctx, input, verified); err != nil {
			logger.ErrorContext(ctx, "persist failed", slog.Any("error", err))

			return zero, stepError(StepPersist, "state persistence failed", err)
		}
	}

	var result O

	if op.Respond != nil {
		var err error
		if result, err = op.Respond(ctx, input, verified); err != nil {
			logger.WarnContext(ctx, "respond formatting failed", slog.Any("error", err))

			return zero, err
		}
	}

	logger.InfoContext(ctx, "operation completed",
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}

// GetExecutionStep reports which step produced the error, for errors that
// came out of Execute.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		return "", false
	}
	return execErr.Step, true
}
