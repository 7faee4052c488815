package orchestrator

import (
	"sync/atomic"
	"testing"
)

func TestRunPreservesInputOrder(t *testing.T) {
	n := 50
	got := Run(n, 8, func(idx int) int { return idx * idx })
	for i := 0; i < n; i++ {
		if got[i] != i*i {
			t.Fatalf("index %d: got %d, want %d", i, got[i], i*i)
		}
	}
}

func TestRunExecutesItemsConcurrently(t *testing.T) {
	var inFlight int32
	var maxInFlight int32
	n := 20
	Run(n, 5, func(idx int) int {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			max := atomic.LoadInt32(&maxInFlight)
			if cur <= max || atomic.CompareAndSwapInt32(&maxInFlight, max, cur) {
				break
			}
		}
		atomic.AddInt32(&inFlight, -1)
		return idx
	})
	if maxInFlight < 2 {
		t.Fatalf("expected concurrent execution, max in flight was %d", maxInFlight)
	}
}

func TestRunOneFailureDoesNotAbortSiblings(t *testing.T) {
	n := 10
	got := Run(n, 3, func(idx int) string {
		if idx == 4 {
			return "error"
		}
		return "ok"
	})
	okCount := 0
	for _, v := range got {
		if v == "ok" {
			okCount++
		}
	}
	if okCount != n-1 {
		t.Fatalf("expected %d ok results, got %d", n-1, okCount)
	}
}

func TestRunHandlesConcurrencyGreaterThanItems(t *testing.T) {
	got := Run(3, 100, func(idx int) int { return idx })
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
}

func TestRunHandlesZeroItems(t *testing.T) {
	got := Run(0, 4, func(idx int) int { return idx })
	if len(got) != 0 {
		t.Fatalf("expected 0 results, got %d", len(got))
	}
}
