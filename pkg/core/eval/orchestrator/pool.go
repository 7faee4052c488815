package orchestrator

import (
	"sync"
	"sync/atomic"
)

// Run executes worker over every index of [0, n) using concurrency logical
// workers that share a monotonically advancing cursor: each worker
// repeatedly claims the next index and processes it until the cursor passes
// the end. Results land in a preallocated slice at the claimed index, so
// output order always equals input order regardless of completion order.
// Grounded on the reference orchestrator's semaphore-gated goroutine-per-item
// pattern, generalized to a shared-cursor worker pool per the bounded
// concurrency contract.
func Run[T any](n int, concurrency int, worker func(index int) T) []T {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > n {
		concurrency = n
	}
	results := make([]T, n)
	if n == 0 {
		return results
	}

	var cursor int64 = -1
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for w := 0; w < concurrency; w++ {
		go func() {
			defer wg.Done()
			for {
				idx := int(atomic.AddInt64(&cursor, 1))
				if idx >= n {
					return
				}
				results[idx] = worker(idx)
			}
		}()
	}

	wg.Wait()
	return results
}
