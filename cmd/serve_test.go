package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javelin-media/javelin/internal/cache"
	"github.com/javelin-media/javelin/internal/limiter"
	"github.com/javelin-media/javelin/internal/model"
	"github.com/javelin-media/javelin/internal/resolver"
	"github.com/javelin-media/javelin/internal/scraper"
)

type cannedAdapter struct {
	name    string
	records map[string]*model.Metadata
}

func (a *cannedAdapter) Name() string { return a.name }

func (a *cannedAdapter) Find(_ context.Context, id string) (*model.Metadata, error) {
	if m, ok := a.records[id]; ok {
		return m, nil
	}
	return nil, &scraper.NotFoundError{Source: a.name, ID: id}
}

func newTestEnv(t *testing.T) *env {
	t.Helper()

	reg := scraper.NewRegistry()
	require.NoError(t, reg.Register(&cannedAdapter{
		name: "r18dev",
		records: map[string]*model.Metadata{
			"IPX-486": {ID: "IPX-486", Title: "Known Title", Runtime: 119, Source: "r18dev"},
		},
	}))

	lim, err := limiter.New(2)
	require.NoError(t, err)

	res := resolver.New(reg, cache.Disabled{}, lim, resolver.Options{})
	return &env{
		Engine:   resolver.NewEngine(res, model.DefaultPolicy()),
		Registry: reg,
		Cache:    cache.Disabled{},
	}
}

func TestServeMux_Health(t *testing.T) {
	mux := newServeMux(newTestEnv(t), []string{"r18"})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServeMux_ResolveFound(t *testing.T) {
	mux := newServeMux(newTestEnv(t), []string{"r18"})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resolve/ipx486", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var m model.Metadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "IPX-486", m.ID)
	assert.Equal(t, "Known Title", m.Title)
}

func TestServeMux_ResolveNotFound(t *testing.T) {
	mux := newServeMux(newTestEnv(t), []string{"r18"})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resolve/ZZZZ-999", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeMux_ResolvePerSource(t *testing.T) {
	mux := newServeMux(newTestEnv(t), []string{"r18"})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resolve/IPX-486?aggregate=false", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var records map[string]*model.Metadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Contains(t, records, "r18dev")
	assert.Equal(t, "Known Title", records["r18dev"].Title)
}

func TestServeMux_CacheStats(t *testing.T) {
	mux := newServeMux(newTestEnv(t), []string{"r18"})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cache/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats cache.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.False(t, stats.Enabled)
}
