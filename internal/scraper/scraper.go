// Package scraper defines the source adapter contract, the adapter
// registry, and the concrete adapters for each supported origin.
package scraper

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/javelin-media/javelin/internal/model"
)

// Adapter resolves one catalog code against one origin. Find returns the
// parsed record, a *NotFoundError when the origin has no entry, or a
// classified failure (transient network/throttle errors come wrapped from
// the fetch layer, malformed responses as *ParseError).
type Adapter interface {
	Name() string
	Find(ctx context.Context, id string) (*model.Metadata, error)
}

// Registry maps source names to adapters. It is populated once at startup;
// lookups at resolve time are read-only.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under its own name. Registering the same name
// twice is a wiring bug and fails.
func (r *Registry) Register(a Adapter) error {
	name := a.Name()
	if _, exists := r.adapters[name]; exists {
		return eris.Errorf("scraper: adapter %q already registered", name)
	}
	r.adapters[name] = a
	r.order = append(r.order, name)
	return nil
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns registered adapter names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
