package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Parallel2 executes two functions concurrently and returns both results
// or the first error. The losing function's context is canceled when the
// other fails.
//
// Init uses it to load the quote snapshot and the persisted filter in
// one round trip to the store.
func Parallel2[T1, T2 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
) (T1, T2, error) {
	var (
		first  T1
		second T2
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		first, err = fn1(gctx)
		return err
	})

	g.Go(func() error {
		var err error
		second, err = fn2(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		var zero1 T1
		var zero2 T2
		return zero1, zero2, fmt.Errorf("parallel execution failed: %w", err)
	}

	return first, second, nil
}
