package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default number of concurrent workers
const DefaultConcurrency = 5

// BulkResult represents the outcome of a single bulk operation
type BulkResult struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	err error
}

// runBulkOperation executes operation for every name with bounded
// parallelism. Results keep the order of names; a failed name never stops
// the others.
func runBulkOperation(
	ctx context.Context,
	names []string,
	concurrency int64,
	progress io.Writer,
	operation func(ctx context.Context, name string) error,
) []BulkResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	sem := semaphore.NewWeighted(concurrency)
	results := make([]BulkResult, len(names))
	for i, name := range names {
		results[i] = BulkResult{Name: name}
	}
	total := len(names)
	var done int64
	var progressMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i].err = err
				results[i].Error = err.Error()
				return nil
			}
			defer sem.Release(1)

			if err := operation(gctx, name); err != nil {
				results[i].err = err
				results[i].Error = err.Error()
			} else {
				results[i].Success = true
			}

			if progress != nil {
				current := atomic.AddInt64(&done, 1)
				progressMu.Lock()
				_, _ = fmt.Fprintf(progress, "\rProcessed %d/%d", current, total)
				progressMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if progress != nil && total > 0 {
		_, _ = fmt.Fprintln(progress)
	}
	return results
}

// countResults returns success and failure counts from bulk results
func countResults(results []BulkResult) (success, failure int) {
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failure++
		}
	}
	return success, failure
}

// firstFailure returns the error of the first failed result.
func firstFailure(results []BulkResult) error {
	for _, r := range results {
		if !r.Success {
			return r.err
		}
	}
	return nil
}
