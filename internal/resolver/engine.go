package resolver

import (
	"context"

	"github.com/javelin-media/javelin/internal/aggregate"
	"github.com/javelin-media/javelin/internal/model"
)

// Engine is the caller-facing facade: orchestrate all sources, then
// aggregate the per-source map into one resolved record.
type Engine struct {
	resolver *Resolver
	policy   model.Policy
}

// NewEngine wraps a Resolver with an aggregation policy.
func NewEngine(r *Resolver, policy model.Policy) *Engine {
	return &Engine{resolver: r, policy: policy}
}

// Resolve returns the aggregated record for the identifier, or nil when no
// source produced data. "Nothing found" is not an error.
func (e *Engine) Resolve(ctx context.Context, identifier string, sources []string) (*model.Metadata, error) {
	records, err := e.resolver.Resolve(ctx, identifier, sources)
	if err != nil {
		return nil, err
	}
	return aggregate.Aggregate(records, e.policy), nil
}

// ResolveAll returns the raw per-source map for callers that present
// sources separately.
func (e *Engine) ResolveAll(ctx context.Context, identifier string, sources []string) (map[string]*model.Metadata, error) {
	return e.resolver.Resolve(ctx, identifier, sources)
}
