// Package fanout runs a function across a slice of items with bounded
// concurrency. The health registry uses it to probe dependencies in
// parallel without letting a long list of checkers spawn unbounded work.
package fanout

import (
	"context"
	"sync"
)

// Each calls fn for every item using at most maxWorkers goroutines and
// returns the errors in input order. A maxWorkers below 1 is treated as 1.
//
// Items that have not started when ctx is canceled are not run; their slot
// holds ctx.Err(). With an already canceled ctx no item runs. Calls already
// running are expected to watch ctx themselves. Each blocks until every call
// has returned.
func Each[T any](ctx context.Context, maxWorkers int, items []T, fn func(context.Context, T) error) []error {
	errs := make([]error, len(items))
	if len(items) == 0 {
		return errs
	}
	maxWorkers = max(maxWorkers, 1)

	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}

			// The semaphore and Done can both be ready; a canceled ctx wins.
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}

			errs[i] = fn(ctx, item)
		}()
	}

	wg.Wait()
	return errs
}
