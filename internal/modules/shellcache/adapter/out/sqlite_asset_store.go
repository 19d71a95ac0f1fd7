package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"worktime/internal/modules/shellcache/domain"
	apperrors "worktime/internal/platform/errors"
)

type SQLiteAssetStore struct {
	db *sql.DB
}

func NewSQLiteAssetStore(ctx context.Context, db *sql.DB) (*SQLiteAssetStore, error) {
	const ddl = `
CREATE TABLE IF NOT EXISTS shell_assets (
  cache TEXT NOT NULL,
  key TEXT NOT NULL,
  status INTEGER NOT NULL,
  content_type TEXT NOT NULL,
  body BLOB NOT NULL,
  stored_at TEXT NOT NULL,
  PRIMARY KEY (cache, key)
);
`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create shell_assets table: %w", err)
	}
	return &SQLiteAssetStore{db: db}, nil
}

func (s *SQLiteAssetStore) Get(ctx context.Context, cache, key string) (domain.Entry, error) {
	const query = `SELECT status, content_type, body, stored_at FROM shell_assets WHERE cache = ? AND key = ?`
	entry := domain.Entry{Cache: cache, Key: key}
	var storedAt string
	err := s.db.QueryRowContext(ctx, query, cache, key).Scan(&entry.Status, &entry.ContentType, &entry.Body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entry{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Entry{}, fmt.Errorf("get shell asset: %w", err)
	}
	entry.StoredAt, _ = time.Parse(time.RFC3339Nano, storedAt)
	return entry, nil
}

func (s *SQLiteAssetStore) Put(ctx context.Context, entry domain.Entry) error {
	const stmt = `
INSERT INTO shell_assets (cache, key, status, content_type, body, stored_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(cache, key) DO UPDATE SET
  status=excluded.status,
  content_type=excluded.content_type,
  body=excluded.body,
  stored_at=excluded.stored_at;
`
	body := entry.Body
	if body == nil {
		body = []byte{}
	}
	_, err := s.db.ExecContext(ctx, stmt, entry.Cache, entry.Key, entry.Status, entry.ContentType, body, entry.StoredAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put shell asset: %w", err)
	}
	return nil
}

func (s *SQLiteAssetStore) CacheNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT cache FROM shell_assets ORDER BY cache`)
	if err != nil {
		return nil, fmt.Errorf("list shell caches: %w", err)
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan shell cache: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteAssetStore) DeleteCache(ctx context.Context, cache string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM shell_assets WHERE cache = ?`, cache); err != nil {
		return fmt.Errorf("delete shell cache %s: %w", cache, err)
	}
	return nil
}

func (s *SQLiteAssetStore) Count(ctx context.Context, cache string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shell_assets WHERE cache = ?`, cache).Scan(&n); err != nil {
		return 0, fmt.Errorf("count shell assets: %w", err)
	}
	return n, nil
}
