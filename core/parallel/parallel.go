// Package parallel provides the small fan-out helpers used by the estimators.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelizeWithThreshold splits [0, n) into contiguous chunks and runs fn on
// each chunk concurrently. Below threshold the whole range runs on the calling
// goroutine.
func ParallelizeWithThreshold(n, threshold int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if n < threshold || workers <= 1 {
		fn(0, n)
		return
	}
	if workers > n {
		workers = n
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

// Do runs fn(ctx, i) for every i in [0, n) with at most workers goroutines.
// workers <= 0 means GOMAXPROCS. The first error cancels ctx for the remaining
// tasks and is returned.
func Do(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, i)
		})
	}
	return g.Wait()
}
