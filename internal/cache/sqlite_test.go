package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javelin-media/javelin/internal/model"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	s, err := NewSQLite(dbPath, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleRecord(source string) *model.Metadata {
	return &model.Metadata{
		ID:          "IPX-486",
		Title:       "Some Title",
		ReleaseDate: time.Date(2020, 5, 7, 0, 0, 0, 0, time.UTC),
		Runtime:     119,
		Genres:      []string{"Drama"},
		Source:      source,
	}
}

func TestSQLite_SetAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "IPX-486", "r18dev", sampleRecord("r18dev"), 0))

	got, err := s.Get(ctx, "IPX-486", "r18dev")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Some Title", got.Title)
	assert.Equal(t, 119, got.Runtime)
	assert.Equal(t, "r18dev", got.Source)
	assert.True(t, got.ReleaseDate.Equal(time.Date(2020, 5, 7, 0, 0, 0, 0, time.UTC)))
}

func TestSQLite_GetMissing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Get(context.Background(), "ZZZZ-999", "r18dev")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_KeyIsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "ipx-486", "r18dev", sampleRecord("r18dev"), 0))

	got, err := s.Get(ctx, "IPX-486", "r18dev")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSQLite_ExpiredEntryMisses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Negative TTL writes an entry that is already expired.
	require.NoError(t, s.Set(ctx, "IPX-486", "r18dev", sampleRecord("r18dev"), -time.Minute))

	got, err := s.Get(ctx, "IPX-486", "r18dev")
	require.NoError(t, err)
	assert.Nil(t, got)

	// The row physically remains until swept.
	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
}

func TestSQLite_SourcesAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "IPX-486", "r18dev", sampleRecord("r18dev"), 0))
	require.NoError(t, s.Set(ctx, "IPX-486", "dmm", sampleRecord("dmm"), 0))

	got, err := s.Get(ctx, "IPX-486", "dmm")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "dmm", got.Source)

	got, err = s.Get(ctx, "IPX-486", "javlibrary")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_SetOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := sampleRecord("r18dev")
	require.NoError(t, s.Set(ctx, "IPX-486", "r18dev", first, 0))

	second := sampleRecord("r18dev")
	second.Title = "Updated Title"
	require.NoError(t, s.Set(ctx, "IPX-486", "r18dev", second, 0))

	got, err := s.Get(ctx, "IPX-486", "r18dev")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Updated Title", got.Title)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries, "upsert must not duplicate the row")
}

func TestSQLite_Invalidate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "IPX-486", "r18dev", sampleRecord("r18dev"), 0))
	require.NoError(t, s.Set(ctx, "IPX-486", "dmm", sampleRecord("dmm"), 0))
	require.NoError(t, s.Set(ctx, "ABP-001", "r18dev", sampleRecord("r18dev"), 0))

	n, err := s.Invalidate(ctx, "IPX-486", "dmm")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Invalidate(ctx, "IPX-486", "")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the remaining source entry")

	got, err := s.Get(ctx, "ABP-001", "r18dev")
	require.NoError(t, err)
	assert.NotNil(t, got, "other identifiers untouched")
}

func TestSQLite_Sweep(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "IPX-486", "r18dev", sampleRecord("r18dev"), -time.Minute))
	require.NoError(t, s.Set(ctx, "ABP-001", "r18dev", sampleRecord("r18dev"), time.Hour))

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
}

func TestSQLite_Clear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "IPX-486", "r18dev", sampleRecord("r18dev"), 0))
	require.NoError(t, s.Set(ctx, "ABP-001", "dmm", sampleRecord("dmm"), 0))

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}

func TestSQLite_HitCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "IPX-486", "r18dev", sampleRecord("r18dev"), 0))

	for i := 0; i < 3; i++ {
		_, err := s.Get(ctx, "IPX-486", "r18dev")
		require.NoError(t, err)
	}

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalHits)

	// A rewrite resets the counter.
	require.NoError(t, s.Set(ctx, "IPX-486", "r18dev", sampleRecord("r18dev"), 0))
	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalHits)
}

func TestDisabled_IsAlwaysEmpty(t *testing.T) {
	var s Disabled
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "IPX-486", "r18dev", sampleRecord("r18dev"), 0))
	got, err := s.Get(ctx, "IPX-486", "r18dev")
	require.NoError(t, err)
	assert.Nil(t, got)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.False(t, stats.Enabled)
}
