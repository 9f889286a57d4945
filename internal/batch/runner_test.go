package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// noSleep replaces the backoff sleep so retry tests run instantly.
func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func TestRun_AllSucceed(t *testing.T) {
	r := New(func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	}, Options{MaxConcurrent: 2})

	results := r.Run(context.Background(), []int{1, 2, 3, 4})
	if len(results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(results))
	}
	for i, res := range results {
		if !res.OK {
			t.Errorf("results[%d].OK = false, want true (err: %v)", i, res.Err)
		}
		if res.Value != (i+1)*2 {
			t.Errorf("results[%d].Value = %d, want %d", i, res.Value, (i+1)*2)
		}
		if res.Attempts != 1 {
			t.Errorf("results[%d].Attempts = %d, want 1", i, res.Attempts)
		}
	}
}

// TestRun_ConcurrencyCap verifies that with 4 items and a cap of 2 the
// maximum observed in-flight count is exactly 2.
func TestRun_ConcurrencyCap(t *testing.T) {
	var inFlight, peak int64
	var mu sync.Mutex

	// Each item parks briefly so the first two overlap before slots free up.
	r := New(func(_ context.Context, n int) (int, error) {
		cur := atomic.AddInt64(&inFlight, 1)
		mu.Lock()
		if cur > peak {
			peak = cur
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return n, nil
	}, Options{MaxConcurrent: 2})

	results := r.Run(context.Background(), []int{1, 2, 3, 4})
	for i, res := range results {
		if !res.OK {
			t.Errorf("results[%d] failed: %v", i, res.Err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if peak != 2 {
		t.Errorf("peak concurrency = %d, want exactly 2", peak)
	}
}

// TestRun_PermanentFailure verifies an always-failing item resolves to an
// absent result after exactly MaxAttempts tries, with exponential delays.
func TestRun_PermanentFailure(t *testing.T) {
	attempts := 0
	r := New(func(context.Context, string) (string, error) {
		attempts++
		return "", errors.New("boom")
	}, Options{MaxAttempts: 3, BackoffBase: 2 * time.Second})

	var delays []time.Duration
	r.SetSleep(func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	})

	results := r.Run(context.Background(), []string{"only"})
	res := results[0]
	if res.OK {
		t.Fatal("OK = true, want false")
	}
	if res.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", res.Attempts)
	}
	if attempts != 3 {
		t.Errorf("unit-of-work ran %d times, want 3", attempts)
	}
	if res.Err == nil || res.Err.Error() != "boom" {
		t.Errorf("Err = %v, want boom", res.Err)
	}
	// Two gaps between three attempts: base, 2*base.
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("got %d backoff delays %v, want %v", len(delays), delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delays[%d] = %s, want %s", i, delays[i], want[i])
		}
	}
}

// TestRun_FailureIsolation verifies one item exhausting its retries leaves
// sibling results untouched.
func TestRun_FailureIsolation(t *testing.T) {
	r := New(func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, fmt.Errorf("item %d always fails", n)
		}
		return n, nil
	}, Options{MaxConcurrent: 2, MaxAttempts: 3})
	r.SetSleep(noSleep)

	results := r.Run(context.Background(), []int{1, 2, 3})
	if !results[0].OK || !results[2].OK {
		t.Errorf("sibling items affected: %+v", results)
	}
	if results[1].OK {
		t.Error("results[1].OK = true, want false")
	}
	if results[1].Attempts != 3 {
		t.Errorf("results[1].Attempts = %d, want 3", results[1].Attempts)
	}
}

func TestRun_RetryThenSucceed(t *testing.T) {
	var calls int32
	r := New(func(context.Context, string) (string, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return "", errors.New("transient")
		}
		return "done", nil
	}, Options{MaxAttempts: 3})
	r.SetSleep(noSleep)

	results := r.Run(context.Background(), []string{"x"})
	if !results[0].OK {
		t.Fatalf("OK = false, err: %v", results[0].Err)
	}
	if results[0].Value != "done" {
		t.Errorf("Value = %q, want done", results[0].Value)
	}
	if results[0].Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", results[0].Attempts)
	}
}

// TestRun_IdempotentAcrossCaps verifies a deterministic unit-of-work yields
// identical results regardless of the concurrency cap.
func TestRun_IdempotentAcrossCaps(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	work := func(_ context.Context, n int) (string, error) {
		return fmt.Sprintf("artifact-%d", n), nil
	}

	var baseline []Result[string]
	for _, cap := range []int{1, 2, 5, 16} {
		r := New(work, Options{MaxConcurrent: cap})
		results := r.Run(context.Background(), items)
		if baseline == nil {
			baseline = results
			continue
		}
		for i := range results {
			if results[i].Value != baseline[i].Value || results[i].OK != baseline[i].OK {
				t.Errorf("cap=%d results[%d] = %+v, want %+v", cap, i, results[i], baseline[i])
			}
		}
	}
}

func TestRun_EmptyInput(t *testing.T) {
	r := New(func(_ context.Context, n int) (int, error) { return n, nil }, Options{})
	results := r.Run(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

// TestRun_ContextCancelled verifies cancellation resolves queued items as
// failures instead of hanging.
func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(func(_ context.Context, n int) (int, error) {
		return 0, errors.New("should retry")
	}, Options{MaxAttempts: 3, BackoffBase: time.Hour})

	done := make(chan []Result[int], 1)
	go func() { done <- r.Run(ctx, []int{1, 2, 3}) }()

	select {
	case results := <-done:
		for i, res := range results {
			if res.OK {
				t.Errorf("results[%d].OK = true after cancellation", i)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
