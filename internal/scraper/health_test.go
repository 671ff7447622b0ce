package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javelin-media/javelin/internal/model"
)

func TestCheckAll(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubAdapter{
		name: "up",
		find: func(_ context.Context, id string) (*model.Metadata, error) {
			return &model.Metadata{ID: id, Title: "x", Source: "up"}, nil
		},
	}))
	require.NoError(t, reg.Register(&stubAdapter{
		name: "empty", // answers not-found, still healthy
	}))
	require.NoError(t, reg.Register(&stubAdapter{
		name: "down",
		find: func(_ context.Context, _ string) (*model.Metadata, error) {
			return nil, errors.New("connection refused")
		},
	}))

	statuses := CheckAll(context.Background(), reg, time.Second)
	require.Len(t, statuses, 3)

	byName := map[string]HealthStatus{}
	for _, st := range statuses {
		byName[st.Source] = st
	}
	assert.True(t, byName["up"].OK)
	assert.True(t, byName["empty"].OK, "not-found means the source responded")
	assert.False(t, byName["down"].OK)
	assert.Error(t, byName["down"].Err)
}
