// Package job provides the submit/drain worker-pool contract the engine's
// Frame Coordinator depends on (spec §5): two priority levels and jobs that
// run to completion on worker goroutines. Pool.Drain blocks until the
// priority's jobs have finished; the draining goroutine does not run jobs
// itself while it waits.
package job

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Priority selects which queue a job is submitted to.
type Priority int

const (
	// High is per-frame work: tick, upload, finalize.
	High Priority = iota
	// Idle is opportunistic work with no per-frame deadline.
	Idle
	numPriorities
)

// Func is a unit of work submitted to the pool. It always runs to
// completion; the pool has no cancellation mechanism (spec §5).
type Func func()

// Runner is the external job-system contract the engine depends on,
// matching spec §1's "Job system" collaborator boundary.
type Runner interface {
	Submit(p Priority, fn Func)
	Drain(p Priority)
}

// Pool is a bounded worker-pool implementation of Runner: one
// sync.WaitGroup per priority tracks completion and a
// golang.org/x/sync/semaphore caps how many jobs run at once.
type Pool struct {
	sem  *semaphore.Weighted
	wg   [numPriorities]sync.WaitGroup
}

// NewPool returns a Runner backed by at most maxConcurrency goroutines
// running submitted jobs at a time.
func NewPool(maxConcurrency int64) *Pool {
	return &Pool{sem: semaphore.NewWeighted(maxConcurrency)}
}

// Submit acquires a pool slot and runs fn on its own goroutine, tracked
// under pr's wait group.
func (p *Pool) Submit(pr Priority, fn Func) {
	p.wg[pr].Add(1)
	go func() {
		defer p.wg[pr].Done()
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)
		fn()
	}()
}

// Drain blocks until every job submitted at priority pr (at the time of
// the call) has completed.
func (p *Pool) Drain(pr Priority) {
	p.wg[pr].Wait()
}

// RunAll runs fns to completion using an errgroup bounded by the pool's
// semaphore, returning once every job has finished: one call per batch, all
// jobs in flight concurrently, a single fence at the end. The Frame
// Coordinator does not call it; it fans out through Runner.Submit/Drain.
func RunAll(ctx context.Context, sem *semaphore.Weighted, fns []Func) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		fn := fn
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			fn()
			return nil
		})
	}
	return g.Wait()
}
