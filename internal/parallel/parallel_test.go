package parallel

import (
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Test that small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestReducePairs(t *testing.T) {
	n := 50
	grid, pairs := ReducePairs(n, 1, 3, func(i, j int, grid []float64) {
		grid[0]++
		grid[1] += float64(i)
		grid[2] += float64(j)
	}, DefaultConfig())

	wantPairs := n * (n - 1) / 2
	if pairs != wantPairs {
		t.Fatalf("Expected %d pairs, got %d", wantPairs, pairs)
	}
	if grid[0] != float64(wantPairs) {
		t.Errorf("Expected %d contributions, got %v", wantPairs, grid[0])
	}

	// Sum over i<j of (i+j) equals (n-1) * sum(0..n-1).
	var want float64
	for i := 0; i < n; i++ {
		want += float64(i)
	}
	want *= float64(n - 1)
	if got := grid[1] + grid[2]; got != want {
		t.Errorf("Expected pair index sum %v, got %v", want, got)
	}
}

func TestReducePairs_MatchesSequential(t *testing.T) {
	n := 40
	f := func(i, j int, grid []float64) {
		grid[0] += float64(i*n + j)
	}

	seq, seqPairs := ReducePairs(n, 1, 1, f, Config{Enabled: false})
	par, parPairs := ReducePairs(n, 1, 1, f, Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})

	if seqPairs != parPairs {
		t.Fatalf("Pair counts differ: %d vs %d", seqPairs, parPairs)
	}
	if seq[0] != par[0] {
		t.Errorf("Accumulators differ: %v vs %v", seq[0], par[0])
	}
}

func TestReducePairs_Spacing(t *testing.T) {
	// spacing=2 over n=10 keeps outer indices 0,2,4,6,8.
	grid, pairs := ReducePairs(10, 2, 1, func(i, j int, grid []float64) {
		if i%2 != 0 || j%2 != 0 {
			t.Errorf("Unexpected indices (%d,%d) for spacing 2", i, j)
		}
		grid[0]++
	}, Config{Enabled: false})

	if pairs != 10 {
		t.Fatalf("Expected 10 pairs, got %d", pairs)
	}
	if grid[0] != 10 {
		t.Errorf("Expected 10 contributions, got %v", grid[0])
	}
}

func TestReducePairs_Empty(t *testing.T) {
	grid, pairs := ReducePairs(1, 1, 2, func(_, _ int, _ []float64) {
		t.Error("Accumulator must not be called without pairs")
	}, DefaultConfig())

	if pairs != 0 {
		t.Errorf("Expected 0 pairs, got %d", pairs)
	}
	if len(grid) != 2 || grid[0] != 0 || grid[1] != 0 {
		t.Errorf("Expected zero grid, got %v", grid)
	}
}

func BenchmarkReducePairs(b *testing.B) {
	cfg := DefaultConfig()
	n := 500

	f := func(i, j int, grid []float64) {
		grid[0] += float64(i) * float64(j)
	}

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			ReducePairs(n, 1, 1, f, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			ReducePairs(n, 1, 1, f, cfgSeq)
		}
	})
}
