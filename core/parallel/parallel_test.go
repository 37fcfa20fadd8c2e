package parallel

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/statnotes/statnotes/pkg/errors"
)

func TestParallelize_CoversEveryIndexOnce(t *testing.T) {
	for _, items := range []int{0, 1, 7, 100, 1000} {
		visits := make([]int32, items)
		Parallelize(items, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&visits[i], 1)
			}
		})
		for i, v := range visits {
			if v != 1 {
				t.Fatalf("items=%d: index %d visited %d times, want 1", items, i, v)
			}
		}
	}
}

func TestParallelize_ChunkBounds(t *testing.T) {
	var mu sync.Mutex
	var total int
	Parallelize(10, func(start, end int) {
		if start < 0 || end > 10 || start >= end {
			t.Errorf("bad chunk [%d, %d)", start, end)
		}
		mu.Lock()
		total += end - start
		mu.Unlock()
	})
	if total != 10 {
		t.Errorf("chunks cover %d items, want 10", total)
	}
}

func TestParallelizeWithThreshold_SequentialBelowThreshold(t *testing.T) {
	var calls int
	ParallelizeWithThreshold(5, 10, func(start, end int) {
		calls++
		if start != 0 || end != 5 {
			t.Errorf("sequential path got [%d, %d), want [0, 5)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("sequential path ran %d chunks, want 1", calls)
	}
}

func TestParallelizeWithThreshold_ParallelAboveThreshold(t *testing.T) {
	visits := make([]int32, 64)
	ParallelizeWithThreshold(64, 8, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&visits[i], 1)
		}
	})
	for i, v := range visits {
		if v != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, v)
		}
	}
}

func TestForEach_RunsAllItems(t *testing.T) {
	var count int32
	err := ForEach(context.Background(), 50, 4, func(i int) error {
		atomic.AddInt32(&count, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach() error = %v", err)
	}
	if count != 50 {
		t.Errorf("ran %d items, want 50", count)
	}
}

func TestForEach_PropagatesError(t *testing.T) {
	wantErr := errors.New("replicate failed")
	err := ForEach(context.Background(), 20, 2, func(i int) error {
		if i == 7 {
			return wantErr
		}
		return nil
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("ForEach() error = %v, want %v", err, wantErr)
	}
}

func TestForEach_ZeroItems(t *testing.T) {
	err := ForEach(context.Background(), 0, 1, func(i int) error {
		t.Error("fn should not run with zero items")
		return nil
	})
	if err != nil {
		t.Errorf("ForEach() error = %v, want nil", err)
	}
}
