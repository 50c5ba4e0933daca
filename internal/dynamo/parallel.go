package dynamo

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelFor runs fn over [0, n) in chunks of at most chunk items with up to
// workers goroutines, and returns once every chunk has finished. workers <= 0
// means runtime.NumCPU().
func ParallelFor(n, chunk, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if chunk <= 0 {
		chunk = n
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if n <= chunk || workers == 1 {
		for start := 0; start < n; start += chunk {
			fn(start, min(start+chunk, n))
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

// Chunks returns how many chunks ParallelFor splits n items into.
func Chunks(n, chunk int) int {
	if n <= 0 {
		return 0
	}
	if chunk <= 0 {
		return 1
	}
	return (n + chunk - 1) / chunk
}
