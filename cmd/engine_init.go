package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/javelin-media/javelin/internal/cache"
	"github.com/javelin-media/javelin/internal/fetch"
	"github.com/javelin-media/javelin/internal/limiter"
	"github.com/javelin-media/javelin/internal/ratelimit"
	"github.com/javelin-media/javelin/internal/resilience"
	"github.com/javelin-media/javelin/internal/resolver"
	"github.com/javelin-media/javelin/internal/scraper"
)

// env bundles the wired engine and its shared components. Exactly one env
// backs all concurrent resolutions so the concurrency and rate-limit
// guarantees hold process-wide.
type env struct {
	Engine   *resolver.Engine
	Registry *scraper.Registry
	Cache    cache.Store
}

func (e *env) Close() {
	_ = e.Cache.Close()
}

// initEngine constructs every component from config: the shared rate
// limiter and concurrency limiter, the retrying HTTP client, the adapter
// registry, and the SQLite cache. Misconfiguration fails here, not at
// resolve time.
func initEngine(ctx context.Context) (*env, error) {
	lim, err := limiter.New(cfg.Resolve.MaxConcurrent)
	if err != nil {
		return nil, err
	}

	domains := ratelimit.NewDomainLimiter(cfg.RateLimit.DefaultDelay(), cfg.RateLimit.DomainDelays())

	client := fetch.NewClient(domains, fetch.Options{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   time.Duration(cfg.HTTP.TimeoutSecs) * time.Second,
		Retry: resilience.RetryConfig{
			MaxRetries:     cfg.Retry.MaxRetries,
			InitialBackoff: time.Duration(cfg.Retry.InitialBackoffMs) * time.Millisecond,
			MaxBackoff:     time.Duration(cfg.Retry.MaxBackoffMs) * time.Millisecond,
			Multiplier:     cfg.Retry.Multiplier,
		},
	})

	reg := scraper.NewRegistry()
	adapters := []scraper.Adapter{
		scraper.NewR18Dev(client),
		scraper.NewDMMWeb(client),
		scraper.NewDMM(client),
		scraper.NewJavLibrary(client, cfg.Sources.JavlibraryCookies),
	}
	for _, a := range adapters {
		if err := reg.Register(a); err != nil {
			return nil, err
		}
	}

	store, err := initCache(ctx)
	if err != nil {
		return nil, err
	}

	res := resolver.New(reg, store, lim, resolver.Options{
		CacheTTL: cfg.Cache.TTL(),
		Timeout:  time.Duration(cfg.Resolve.TimeoutSecs) * time.Second,
		Circuit:  resilience.DefaultCircuitConfig(),
	})

	return &env{
		Engine:   resolver.NewEngine(res, cfg.Priority),
		Registry: reg,
		Cache:    store,
	}, nil
}

// initCache opens the configured cache store, or the no-op store when
// caching is disabled.
func initCache(ctx context.Context) (cache.Store, error) {
	if !cfg.Cache.Enabled {
		return cache.Disabled{}, nil
	}
	store, err := cache.NewSQLite(cfg.Cache.Path, cfg.Cache.TTL())
	if err != nil {
		return nil, eris.Wrap(err, "init cache")
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, eris.Wrap(err, "migrate cache")
	}
	return store, nil
}
