package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/javelin-media/javelin/internal/model"
)

// SQLite implements Store on a single-file embedded database so cached
// records survive process restarts.
type SQLite struct {
	db         *sql.DB
	defaultTTL time.Duration
}

// NewSQLite opens (creating parent directories as needed) the database at
// path and configures WAL mode. defaultTTL applies to Set calls that pass
// a zero TTL.
func NewSQLite(path string, defaultTTL time.Duration) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrap(err, "cache: create directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}
	return &SQLite{db: db, defaultTTL: defaultTTL}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS metadata_cache (
	identifier TEXT NOT NULL,
	source     TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL,
	hit_count  INTEGER NOT NULL DEFAULT 0,
	UNIQUE(identifier, source)
);

CREATE INDEX IF NOT EXISTS idx_metadata_cache_expires_at ON metadata_cache(expires_at);
`

// Migrate creates the schema.
func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "cache: migrate")
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func cacheKey(identifier string) string {
	return strings.ToUpper(strings.TrimSpace(identifier))
}

// Get returns the live cached record for (identifier, source), or nil when
// absent or expired. A hit increments the entry's hit counter.
func (s *SQLite) Get(ctx context.Context, identifier, source string) (*model.Metadata, error) {
	key := cacheKey(identifier)
	now := time.Now().UTC()

	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM metadata_cache WHERE identifier = ? AND source = ? AND expires_at > ?`,
		key, source, now,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: get %s/%s", key, source)
	}

	var m model.Metadata
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, eris.Wrapf(err, "cache: decode %s/%s", key, source)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE metadata_cache SET hit_count = hit_count + 1 WHERE identifier = ? AND source = ?`,
		key, source,
	); err != nil {
		// The record is already in hand; losing one hit tick is harmless.
		zap.L().Debug("cache: hit count update failed",
			zap.String("identifier", key),
			zap.String("source", source),
			zap.Error(err),
		)
	}
	return &m, nil
}

// Set upserts the record with expiry now+ttl (the default TTL when ttl is
// zero) and resets the hit counter.
func (s *SQLite) Set(ctx context.Context, identifier, source string, m *model.Metadata, ttl time.Duration) error {
	key := cacheKey(identifier)
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	now := time.Now().UTC()

	data, err := json.Marshal(m)
	if err != nil {
		return eris.Wrapf(err, "cache: encode %s/%s", key, source)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO metadata_cache (identifier, source, data, created_at, expires_at, hit_count)
		 VALUES (?, ?, ?, ?, ?, 0)
		 ON CONFLICT(identifier, source) DO UPDATE SET
		   data = excluded.data,
		   created_at = excluded.created_at,
		   expires_at = excluded.expires_at,
		   hit_count = 0`,
		key, source, string(data), now, now.Add(ttl),
	)
	return eris.Wrapf(err, "cache: set %s/%s", key, source)
}

// Invalidate deletes the entry for (identifier, source), or every source's
// entry for the identifier when source is empty. Returns the number of
// rows removed.
func (s *SQLite) Invalidate(ctx context.Context, identifier, source string) (int, error) {
	key := cacheKey(identifier)

	var res sql.Result
	var err error
	if source != "" {
		res, err = s.db.ExecContext(ctx,
			`DELETE FROM metadata_cache WHERE identifier = ? AND source = ?`, key, source)
	} else {
		res, err = s.db.ExecContext(ctx,
			`DELETE FROM metadata_cache WHERE identifier = ?`, key)
	}
	if err != nil {
		return 0, eris.Wrapf(err, "cache: invalidate %s", key)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Sweep physically removes all expired rows.
func (s *SQLite) Sweep(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM metadata_cache WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, eris.Wrap(err, "cache: sweep")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Clear removes every row.
func (s *SQLite) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM metadata_cache`)
	if err != nil {
		return 0, eris.Wrap(err, "cache: clear")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Stats returns aggregate counters over all rows, live and expired.
func (s *SQLite) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(hit_count), 0), COALESCE(SUM(LENGTH(data)), 0) FROM metadata_cache`,
	).Scan(&st.Entries, &st.TotalHits, &st.SizeBytes)
	if err != nil {
		return Stats{}, eris.Wrap(err, "cache: stats")
	}
	st.Enabled = true
	st.TTL = s.defaultTTL
	return st, nil
}
