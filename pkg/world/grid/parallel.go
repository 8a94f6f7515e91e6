package grid

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelRows splits rows [0, h) into contiguous bands and calls fn for each
// band, using at most workers goroutines. fn must only write to rows of its
// own band; results are then independent of the worker count.
func ParallelRows(ctx context.Context, h, workers int, fn func(y0, y1 int) error) error {
	if h <= 0 {
		return nil
	}
	if workers <= 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(0, h)
	}

	bands := min(workers*4, h)
	size := (h + bands - 1) / bands

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y0 := 0; y0 < h; y0 += size {
		y1 := min(y0+size, h)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(y0, y1)
		})
	}
	return g.Wait()
}
