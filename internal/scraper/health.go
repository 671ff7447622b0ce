package scraper

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// probeID is a long-established catalog code every healthy source carries.
const probeID = "IPX-486"

// HealthStatus is one adapter's reachability probe result.
type HealthStatus struct {
	Source  string
	OK      bool
	Err     error
	Elapsed time.Duration
}

// CheckAll probes every registered adapter concurrently with a lookup for
// a known identifier. A not-found answer still counts as healthy — the
// source responded; only classified failures mark a source down.
func CheckAll(ctx context.Context, reg *Registry, timeout time.Duration) []HealthStatus {
	names := reg.Names()
	results := make([]HealthStatus, len(names))

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	for i, name := range names {
		adapter, _ := reg.Get(name)
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(gCtx, timeout)
			defer cancel()

			start := time.Now()
			_, err := adapter.Find(probeCtx, probeID)
			elapsed := time.Since(start)

			status := HealthStatus{Source: name, OK: true, Elapsed: elapsed}
			if err != nil && !IsNotFound(err) {
				status.OK = false
				status.Err = err
			}

			mu.Lock()
			results[i] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
