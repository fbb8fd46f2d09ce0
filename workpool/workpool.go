// Package workpool provides the single bounded concurrency primitive shared
// by every pipeline phase. The orchestrator creates one Pool and passes it
// by handle; no component consults a process-wide limit.
package workpool

import "golang.org/x/sync/errgroup"

// Pool runs batches of independent tasks with bounded concurrency. Each Run
// call gets its own group, so a directory-level fan-out can nest file-level
// fan-outs without the outer tasks starving the inner ones; worst-case
// concurrency of nested runs is the product of their batch parallelism.
type Pool struct {
	limit int
}

// New returns a pool that runs at most limit tasks at a time.
func New(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{limit: limit}
}

// Limit reports the pool's concurrency bound.
func (p *Pool) Limit() int {
	return p.limit
}

// Run executes task(0) through task(n-1), at most Limit at a time, and
// waits for all of them. Tasks receive their index — per-task inputs live
// in caller-owned slices, not in shared captured variables — and report
// outcomes out of band: one task failing never cancels its siblings.
func (p *Pool) Run(n int, task func(i int)) {
	var group errgroup.Group
	group.SetLimit(p.limit)
	for i := 0; i < n; i++ {
		group.Go(func() error {
			task(i)
			return nil
		})
	}
	// Tasks never return errors; Wait is purely a join barrier.
	_ = group.Wait()
}
