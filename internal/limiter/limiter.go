// Package limiter caps the number of simultaneously active operations
// process-wide.
package limiter

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/semaphore"
)

// Limiter bounds concurrent operations with a weighted semaphore and
// tracks exact active and lifetime counts for observability. One shared
// instance must guard all concurrently-active resolutions for the cap to
// hold.
type Limiter struct {
	max    int64
	sem    *semaphore.Weighted
	active atomic.Int64
	total  atomic.Int64
}

// New creates a Limiter allowing at most max concurrent holders.
// max must be >= 1.
func New(max int) (*Limiter, error) {
	if max < 1 {
		return nil, eris.Errorf("limiter: max concurrency must be >= 1, got %d", max)
	}
	return &Limiter{
		max: int64(max),
		sem: semaphore.NewWeighted(int64(max)),
	}, nil
}

// Acquire blocks until a slot is free or ctx is done. The caller must
// call Release exactly once after a successful Acquire, including when the
// wrapped operation fails or is cancelled.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return eris.Wrap(err, "limiter: acquire")
	}
	l.active.Add(1)
	l.total.Add(1)
	return nil
}

// TryAcquire takes a slot without blocking, reporting whether one was
// available.
func (l *Limiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	l.total.Add(1)
	return true
}

// Release returns a previously acquired slot.
func (l *Limiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// Do runs fn while holding a slot.
func (l *Limiter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn(ctx)
}

// Max returns the configured concurrency cap.
func (l *Limiter) Max() int { return int(l.max) }

// Active returns the number of slots currently held.
func (l *Limiter) Active() int64 { return l.active.Load() }

// Total returns the lifetime count of successful acquisitions.
func (l *Limiter) Total() int64 { return l.total.Load() }
