// Package batch runs many independent work items with a concurrency
// ceiling, per-item retry with exponential backoff, and isolated failure:
// one item exhausting its retries never aborts its siblings.
package batch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Options configures a Runner.
type Options struct {
	// MaxConcurrent caps how many items run their unit-of-work at once.
	// Defaults to 5, chosen for external API rate limits.
	MaxConcurrent int
	// MaxAttempts is the total number of tries per item (not extra
	// retries). Defaults to 3.
	MaxAttempts int
	// BackoffBase is the delay before the first retry; it doubles each
	// attempt (base, 2x, 4x, ...). Defaults to 2s.
	BackoffBase time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 5
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = 2 * time.Second
	}
	return o
}

// Result is the terminal outcome for one work item. OK=false means the
// item exhausted its attempts; Err then holds the last failure. Failure
// is a value here, never a panic past the batch boundary.
type Result[R any] struct {
	Value    R
	OK       bool
	Err      error
	Attempts int
}

// Runner executes a unit-of-work over slices of items.
type Runner[T, R any] struct {
	fn       func(context.Context, T) (R, error)
	opts     Options
	sleep    func(context.Context, time.Duration) error
	progress io.Writer
}

// New creates a Runner for the given unit-of-work.
func New[T, R any](fn func(context.Context, T) (R, error), opts Options) *Runner[T, R] {
	return &Runner[T, R]{
		fn:    fn,
		opts:  opts.withDefaults(),
		sleep: sleepUntil,
	}
}

// SetSleep overrides the backoff sleep (for testing).
func (r *Runner[T, R]) SetSleep(fn func(context.Context, time.Duration) error) {
	r.sleep = fn
}

// SetProgress sets a writer for per-item progress output.
func (r *Runner[T, R]) SetProgress(w io.Writer) {
	r.progress = w
}

func (r *Runner[T, R]) logf(format string, args ...interface{}) {
	if r.progress != nil {
		fmt.Fprintf(r.progress, format+"\n", args...)
	}
}

// Run processes every item and returns one Result per item, index-aligned
// with the input. It returns only once every item has either succeeded or
// exhausted its attempts; a permanently failing item never aborts the rest.
func (r *Runner[T, R]) Run(ctx context.Context, items []T) []Result[R] {
	results := make([]Result[R], len(items))
	sem := semaphore.NewWeighted(int64(r.opts.MaxConcurrent))

	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = Result[R]{Err: fmt.Errorf("acquire slot: %w", err)}
				return
			}
			defer sem.Release(1)
			results[i] = r.runOne(ctx, items[i])
		}(i)
	}
	wg.Wait()

	return results
}

// runOne performs the attempt/backoff sequence for a single item. The
// item's result slot is owned exclusively by this call.
func (r *Runner[T, R]) runOne(ctx context.Context, item T) Result[R] {
	var res Result[R]

	for attempt := 0; attempt < r.opts.MaxAttempts; attempt++ {
		res.Attempts = attempt + 1

		value, err := r.fn(ctx, item)
		if err == nil {
			res.Value = value
			res.OK = true
			return res
		}
		res.Err = err

		if attempt == r.opts.MaxAttempts-1 {
			break
		}

		// delay = base * 2^attempt
		delay := r.opts.BackoffBase << uint(attempt)
		r.logf("item failed (attempt %d/%d), retrying in %s: %v", attempt+1, r.opts.MaxAttempts, delay, err)
		if serr := r.sleep(ctx, delay); serr != nil {
			res.Err = serr
			return res
		}
	}

	r.logf("item failed permanently after %d attempts: %v", res.Attempts, res.Err)
	return res
}

// sleepUntil waits for d or until ctx is cancelled.
func sleepUntil(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
