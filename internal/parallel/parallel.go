// Package parallel provides the parallel execution utilities used by the
// Calyx statistical engines.
package parallel

import (
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		// Sequential fallback.
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// PairAccumulator receives the contribution of one index pair. Each
// worker owns grid exclusively until ReducePairs merges all workers,
// so no locking is needed inside f.
type PairAccumulator func(i, j int, grid []float64)

// ReducePairs visits every ordered pair (i, j) with i < j over [0, n),
// i and j advancing by spacing, partitioned across workers. Each worker
// accumulates into its own grid of length gridLen; the per-worker grids
// are summed into a single result after all workers finish. Returns the
// merged grid and the number of pairs visited.
func ReducePairs(n, spacing, gridLen int, f PairAccumulator, cfg Config) ([]float64, int) {
	if spacing < 1 {
		spacing = 1
	}

	// Outer indices after subsampling.
	var outer []int
	for i := 0; i < n; i += spacing {
		outer = append(outer, i)
	}

	numPairs := len(outer) * (len(outer) - 1) / 2
	if numPairs == 0 {
		return make([]float64, gridLen), 0
	}

	workers := cfg.NumWorkers
	if !cfg.Enabled || numPairs < cfg.MinChunkSize {
		workers = 1
	}
	if workers < 1 {
		workers = 1
	}

	grids := make([][]float64, workers)
	p := pool.New().WithMaxGoroutines(workers)
	for w := 0; w < workers; w++ {
		w := w
		grids[w] = make([]float64, gridLen)
		p.Go(func() {
			grid := grids[w]
			// Strided partition over outer rows balances the
			// triangular workload across workers.
			for a := w; a < len(outer); a += workers {
				i := outer[a]
				for b := a + 1; b < len(outer); b++ {
					f(i, outer[b], grid)
				}
			}
		})
	}
	p.Wait()

	merged := grids[0]
	for w := 1; w < workers; w++ {
		for k, v := range grids[w] {
			merged[k] += v
		}
	}
	return merged, numPairs
}
