// Package workerpool bounds how many PDF invocations the service runs
// concurrently. Each invocation is single-threaded internally (spec
// §5); the pool only limits how many run side by side.
package workerpool

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds concurrent invocations to a fixed weight.
type Pool struct {
	sem *semaphore.Weighted
}

// New builds a Pool admitting at most size concurrent invocations
// (spec §5 default 4).
func New(size int) *Pool {
	if size <= 0 {
		size = 4
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Run blocks until a slot is free (or ctx is canceled), then executes
// fn and releases the slot when it returns.
func (p *Pool) Run(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	fn()
	return nil
}
