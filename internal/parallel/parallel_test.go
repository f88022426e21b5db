package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}

	var counter int64
	n := 1000

	For(n, cfg, func(_ int) {
		atomic.AddInt64(&counter, 1)
	})

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestChunks_CoverRangeOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 10}
	seen := make([]int32, 95)

	var mu sync.Mutex
	calls := 0
	Chunks(len(seen), cfg, func(start, end int) {
		mu.Lock()
		calls++
		mu.Unlock()
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})

	for i, v := range seen {
		if v != 1 {
			t.Errorf("index %d visited %d times", i, v)
		}
	}
	if calls != 3 {
		t.Errorf("Expected 3 chunks, got %d", calls)
	}
}

func TestFor_Sequential(t *testing.T) {
	var calls int
	Chunks(100, Sequential(), func(start, end int) {
		calls++
		if start != 0 || end != 100 {
			t.Errorf("Expected [0, 100), got [%d, %d)", start, end)
		}
	})

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to a single chunk
	cfg := Config{Enabled: true, NumWorkers: 8, MinChunkSize: 64}

	var calls int
	Chunks(100, cfg, func(_, _ int) { calls++ })
	if calls != 1 {
		t.Errorf("Expected sequential fallback, got %d chunks", calls)
	}
}

func TestChunks_Empty(t *testing.T) {
	Chunks(0, DefaultConfig(), func(_, _ int) {
		t.Error("f must not be called for n == 0")
	})
}
