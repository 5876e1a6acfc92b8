package backtest

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runCycles evaluates fn for every window and returns the outputs in window
// order. With parallel > 1 up to that many cycles are fitted concurrently.
// Either way the returned error is the one from the earliest failing window.
func runCycles[T any](ctx context.Context, windows []Window, parallel int, fn func(Window) (T, error)) ([]T, error) {
	out := make([]T, len(windows))
	if parallel <= 1 {
		for i, w := range windows {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			v, err := fn(w)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	errs := make([]error, len(windows))
	var g errgroup.Group
	g.SetLimit(parallel)
	for i, w := range windows {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			out[i], errs[i] = fn(w)
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
