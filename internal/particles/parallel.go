package particles

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// minChunk keeps small sets on the calling goroutine; below this the
// scheduling overhead outweighs the per-particle work.
const minChunk = 2048

// TickParallel advances every particle like Tick, splitting the set into
// contiguous chunks across up to workers goroutines. workers <= 0 uses
// GOMAXPROCS. Per-particle arithmetic is unchanged so results match Tick
// exactly.
func (s *Set) TickParallel(p Params, workers int) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var resets atomic.Int64
	ParallelFor(s.n, minChunk, workers, func(start, end int) {
		resets.Add(int64(s.tickRange(p, start, end)))
	})
	s.lastResets = int(resets.Load())
}

// ParallelFor executes fn over [0, n) split into at most workers chunks.
func ParallelFor(n, minChunk, workers int, fn func(start, end int)) {
	if n == 0 {
		return
	}
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
