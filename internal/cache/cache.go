// Package cache memoizes per-source metadata lookups in a durable
// TTL-based store so repeat resolutions avoid redundant network traffic.
package cache

import (
	"context"
	"time"

	"github.com/javelin-media/javelin/internal/model"
)

// Stats aggregates cache counters for observability.
type Stats struct {
	Enabled   bool          `json:"enabled"`
	Entries   int           `json:"entries"`
	TotalHits int           `json:"total_hits"`
	SizeBytes int64         `json:"size_bytes"`
	TTL       time.Duration `json:"ttl"`
}

// Store is the (identifier, source) -> record cache. Identifier lookups
// are case-insensitive. Get returns (nil, nil) for absent or expired
// entries; expired rows are only physically removed by Sweep. Cache
// failures are non-fatal to resolution: callers treat a Get error as a
// miss and a Set error as lost memoization.
type Store interface {
	Get(ctx context.Context, identifier, source string) (*model.Metadata, error)
	Set(ctx context.Context, identifier, source string, m *model.Metadata, ttl time.Duration) error
	Invalidate(ctx context.Context, identifier, source string) (int, error)
	Sweep(ctx context.Context) (int, error)
	Clear(ctx context.Context) (int, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Disabled is the no-op Store used when caching is turned off: every Get
// misses and every Set is silently dropped.
type Disabled struct{}

func (Disabled) Get(context.Context, string, string) (*model.Metadata, error) {
	return nil, nil
}

func (Disabled) Set(context.Context, string, string, *model.Metadata, time.Duration) error {
	return nil
}

func (Disabled) Invalidate(context.Context, string, string) (int, error) { return 0, nil }
func (Disabled) Sweep(context.Context) (int, error)                      { return 0, nil }
func (Disabled) Clear(context.Context) (int, error)                      { return 0, nil }
func (Disabled) Stats(context.Context) (Stats, error)                    { return Stats{}, nil }
func (Disabled) Close() error                                            { return nil }
