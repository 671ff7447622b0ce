package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javelin-media/javelin/internal/model"
)

// stubAdapter is a canned-response Adapter for registry and orchestration
// tests.
type stubAdapter struct {
	name string
	find func(ctx context.Context, id string) (*model.Metadata, error)
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Find(ctx context.Context, id string) (*model.Metadata, error) {
	if s.find == nil {
		return nil, &NotFoundError{Source: s.name, ID: id}
	}
	return s.find(ctx, id)
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubAdapter{name: "alpha"}))
	require.NoError(t, reg.Register(&stubAdapter{name: "beta"}))

	a, ok := reg.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", a.Name())

	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_DuplicateFails(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubAdapter{name: "alpha"}))
	assert.Error(t, reg.Register(&stubAdapter{name: "alpha"}))
}

func TestRegistry_NamesPreserveOrder(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, reg.Register(&stubAdapter{name: name}))
	}
	assert.Equal(t, []string{"c", "a", "b"}, reg.Names())
}

func TestNotFoundError(t *testing.T) {
	err := error(&NotFoundError{Source: "r18dev", ID: "IPX-486"})
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "IPX-486")

	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(assert.AnError))
}

func TestParseError_Unwrap(t *testing.T) {
	inner := assert.AnError
	err := &ParseError{Source: "dmm", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "dmm")
}
