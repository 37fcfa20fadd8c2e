// Package parallel provides the small amount of concurrency statnotes uses
// internally: chunked loops over samples and fallible loops over resampling
// replicates. Nothing here is part of a public estimator API.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Parallelize splits items across the available CPU cores and runs fn on
// each [start, end) range concurrently.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so every item is covered.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when items is at or below
// threshold, and in parallel otherwise. Small inputs are not worth the
// goroutine overhead.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// ForEach runs fn(i) for i in [0, items) with at most maxWorkers goroutines,
// stopping early on the first error. maxWorkers <= 0 means one worker per
// CPU core. Used for bootstrap replicates and grid-search cells, whose
// bodies can fail.
func ForEach(ctx context.Context, items int, maxWorkers int, fn func(i int) error) error {
	if items == 0 {
		return nil
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i := 0; i < items; i++ {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			return fn(i)
		})
	}
	return g.Wait()
}
