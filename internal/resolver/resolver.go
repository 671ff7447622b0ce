// Package resolver orchestrates one identifier's resolution against N
// requested sources: alias expansion, chain grouping, cache-first lookup,
// bounded-concurrency dispatch, and failure isolation.
package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/javelin-media/javelin/internal/cache"
	"github.com/javelin-media/javelin/internal/limiter"
	"github.com/javelin-media/javelin/internal/model"
	"github.com/javelin-media/javelin/internal/resilience"
	"github.com/javelin-media/javelin/internal/scraper"
)

// Options tunes a Resolver.
type Options struct {
	// CacheTTL is the expiry applied to freshly fetched records. Zero
	// falls through to the cache store's default.
	CacheTTL time.Duration

	// Timeout bounds one Resolve call end to end. Zero means no limit.
	Timeout time.Duration

	// Circuit configures the per-source breakers. Zero values take the
	// package defaults.
	Circuit resilience.CircuitConfig
}

// Resolver fans one identifier out to source adapters. The limiter and
// cache must be the instances shared by every concurrently-active Resolve
// call for the process-wide guarantees to hold.
type Resolver struct {
	registry *scraper.Registry
	cache    cache.Store
	limiter  *limiter.Limiter
	opts     Options
	breakers map[string]*resilience.CircuitBreaker
}

// New wires a Resolver. Every registered source gets its own circuit
// breaker so one dead site stops consuming slots without affecting others.
func New(reg *scraper.Registry, store cache.Store, lim *limiter.Limiter, opts Options) *Resolver {
	breakers := make(map[string]*resilience.CircuitBreaker)
	for _, name := range reg.Names() {
		cfg := opts.Circuit
		cfg.ShouldTrip = func(err error) bool {
			// Only classified failures trip the breaker; a clean
			// not-found answer means the source is healthy.
			return err != nil && !scraper.IsNotFound(err)
		}
		breakers[name] = resilience.NewCircuitBreaker(cfg)
	}
	return &Resolver{
		registry: reg,
		cache:    store,
		limiter:  lim,
		opts:     opts,
		breakers: breakers,
	}
}

// Resolve looks the identifier up against every requested source (virtual
// names expanded, duplicates dropped) and returns the per-source records
// that produced a usable result. A chained preferred/fallback pair runs as
// one logical task on one concurrency slot, the fallback attempted only
// when the preferred source comes up empty. One source's failure never
// aborts its siblings; an empty map means "not found anywhere".
func (r *Resolver) Resolve(ctx context.Context, identifier string, requested []string) (map[string]*model.Metadata, error) {
	if identifier == "" {
		return nil, eris.New("resolver: empty identifier")
	}
	id := model.NormalizeID(identifier)

	expanded := scraper.ExpandSources(requested)
	results := make(map[string]*model.Metadata)
	if len(expanded) == 0 {
		return results, nil
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)

	for _, group := range scraper.ChainGroups(expanded) {
		g.Go(func() error {
			err := r.limiter.Do(gCtx, func(ctx context.Context) error {
				source, record := r.resolveGroup(ctx, id, group)
				if record != nil {
					mu.Lock()
					results[source] = record
					mu.Unlock()
				}
				return nil
			})
			if err != nil {
				zap.L().Warn("source task aborted before dispatch",
					zap.String("identifier", id),
					zap.Strings("sources", group),
					zap.Error(err),
				)
			}
			return nil
		})
	}

	// Tasks isolate their own failures, so Wait only gathers completion.
	_ = g.Wait()
	return results, nil
}

// resolveGroup walks a chain group in preference order and returns the
// first usable record with the concrete source that produced it.
func (r *Resolver) resolveGroup(ctx context.Context, id string, group []string) (string, *model.Metadata) {
	for _, source := range group {
		adapter, ok := r.registry.Get(source)
		if !ok {
			zap.L().Warn("unknown source requested, skipping",
				zap.String("identifier", id),
				zap.String("source", source),
			)
			continue
		}

		record, err := r.lookupOne(ctx, id, source, adapter)
		switch {
		case err == nil && record != nil:
			return source, record
		case scraper.IsNotFound(err):
			zap.L().Debug("source has no record",
				zap.String("identifier", id),
				zap.String("source", source),
			)
		case err != nil:
			zap.L().Warn("source lookup failed",
				zap.String("identifier", id),
				zap.String("source", source),
				zap.Error(err),
			)
		}
		// Not found or failed: fall through to the chain's next member.
	}
	return "", nil
}

// lookupOne consults the cache, then the adapter through its circuit
// breaker, writing fresh records back with the configured TTL. Cache
// failures are downgraded to misses.
func (r *Resolver) lookupOne(ctx context.Context, id, source string, adapter scraper.Adapter) (*model.Metadata, error) {
	cached, err := r.cache.Get(ctx, id, source)
	if err != nil {
		zap.L().Warn("cache read failed, treating as miss",
			zap.String("identifier", id),
			zap.String("source", source),
			zap.Error(err),
		)
	}
	if cached != nil {
		zap.L().Debug("cache hit",
			zap.String("identifier", id),
			zap.String("source", source),
		)
		return cached, nil
	}

	breaker := r.breakers[source]
	record, err := resilience.ExecuteVal(ctx, breaker, func(ctx context.Context) (*model.Metadata, error) {
		return adapter.Find(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, id, source, record, r.opts.CacheTTL); err != nil {
		// Resolution still succeeds; only the memoization is lost.
		zap.L().Warn("cache write failed",
			zap.String("identifier", id),
			zap.String("source", source),
			zap.Error(err),
		)
	}
	return record, nil
}
