package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javelin-media/javelin/internal/ratelimit"
	"github.com/javelin-media/javelin/internal/resilience"
)

func newTestClient(retries int) *Client {
	return NewClient(ratelimit.NewDomainLimiter(0, nil), Options{
		Retry: resilience.RetryConfig{
			MaxRetries:     retries,
			InitialBackoff: 1 * time.Millisecond,
			MaxBackoff:     5 * time.Millisecond,
			Multiplier:     2.0,
		},
	})
}

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	body, err := newTestClient(0).Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestGet_SetsUserAgentAndExtraHeaders(t *testing.T) {
	var gotUA, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCookie = r.Header.Get("Cookie")
	}))
	defer srv.Close()

	client := NewClient(ratelimit.NewDomainLimiter(0, nil), Options{UserAgent: "test-agent"})
	_, err := client.Get(context.Background(), srv.URL, http.Header{"Cookie": []string{"a=b"}})
	require.NoError(t, err)
	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, "a=b", gotCookie)
}

func TestGet_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	body, err := newTestClient(3).Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_RetriesOn429WithRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newTestClient(1).Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(2).Get(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
	// initial attempt + 2 retries
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(3).Get(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, int32(1), calls.Load(), "404 must not be retried")
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"title":"test","runtime":120}`))
	}))
	defer srv.Close()

	var out struct {
		Title   string `json:"title"`
		Runtime int    `json:"runtime"`
	}
	err := newTestClient(0).GetJSON(context.Background(), srv.URL, &out)
	require.NoError(t, err)
	assert.Equal(t, "test", out.Title)
	assert.Equal(t, 120, out.Runtime)
}

func TestGetJSON_InvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(0).GetJSON(context.Background(), srv.URL, &out)
	assert.Error(t, err)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("garbage"))

	future := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	got := parseRetryAfter(future)
	assert.Greater(t, got, 5*time.Second)
}
