package resolvecache

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"reelsync/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS resolutions (
    key        TEXT PRIMARY KEY,
    tmdb_id    INTEGER NOT NULL,
    kind       TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`

// Cache is a TTL-bounded search-resolution memo backed by SQLite. It
// satisfies the resolver's cache interface: lookups and stores never fail
// loudly, they degrade to misses with a logged warning.
type Cache struct {
	db     *sql.DB
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Open opens or creates the cache database at path.
func Open(path string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open resolve cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize resolve cache schema: %w", err)
	}

	return &Cache{
		db:     db,
		ttl:    ttl,
		logger: logger.With(logging.String(logging.FieldComponent, "resolvecache")),
		now:    time.Now,
	}, nil
}

// Lookup returns the cached resolution for key, treating expired entries as
// misses and deleting them in passing.
func (c *Cache) Lookup(key string) (int64, string, bool) {
	var (
		id        int64
		kind      string
		createdAt int64
	)
	err := c.db.QueryRow(
		`SELECT tmdb_id, kind, created_at FROM resolutions WHERE key = ?`, key,
	).Scan(&id, &kind, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", false
	}
	if err != nil {
		c.logger.Warn("cache lookup failed", logging.Error(err))
		return 0, "", false
	}

	if c.now().Unix()-createdAt > int64(c.ttl.Seconds()) {
		if _, err := c.db.Exec(`DELETE FROM resolutions WHERE key = ?`, key); err != nil {
			c.logger.Warn("expired cache entry delete failed", logging.Error(err))
		}
		return 0, "", false
	}
	return id, kind, true
}

// Store upserts a resolution for key.
func (c *Cache) Store(key string, id int64, kind string) {
	_, err := c.db.Exec(
		`INSERT INTO resolutions (key, tmdb_id, kind, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET tmdb_id = excluded.tmdb_id, kind = excluded.kind, created_at = excluded.created_at`,
		key, id, kind, c.now().Unix(),
	)
	if err != nil {
		c.logger.Warn("cache store failed", logging.Error(err))
	}
}

// Prune removes all expired entries.
func (c *Cache) Prune() error {
	cutoff := c.now().Unix() - int64(c.ttl.Seconds())
	if _, err := c.db.Exec(`DELETE FROM resolutions WHERE created_at < ?`, cutoff); err != nil {
		return fmt.Errorf("prune resolve cache: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
