package runner

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// resolveWorkers maps 0 to GOMAXPROCS.
func resolveWorkers(workers int) int {
	if workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}

// parallelMap applies fn to every item on up to workers goroutines. Results land in the slot of
// their input index, so output order never depends on scheduling. The first error cancels the
// remaining work and is returned.
func parallelMap[T, R any](ctx context.Context, workers int, items []T, fn func(T) (R, error), tick func()) ([]R, error) {
	out := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveWorkers(workers))
	for i := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := fn(items[i])
			if err != nil {
				return err
			}
			out[i] = result
			if tick != nil {
				tick()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
