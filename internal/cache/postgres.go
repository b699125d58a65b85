package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairwaylabs/linkresolver/internal/resolve"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the connection pool for the shared cache.
type PostgresConfig struct {
	DSN             string
	Table           string
	TTL             time.Duration
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore persists resolved results in one table keyed by URL
// hash. Writes are atomic upserts, so two callers resolving the same
// URL at once just overwrite each other harmlessly.
type PostgresStore struct {
	pool  pgxQuerier
	table string
	ttl   time.Duration
}

// NewPostgresStore connects a pool and returns the store.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("cache.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewPostgresStoreWithPool(pool, cfg.Table, cfg.TTL)
}

// NewPostgresStoreWithPool constructs a store from an existing pool,
// primarily for testing.
func NewPostgresStoreWithPool(pool pgxQuerier, table string, ttl time.Duration) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "product_library"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &PostgresStore{pool: pool, table: table, ttl: ttl}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Get fetches a live entry and bumps its hit counter in one statement.
func (s *PostgresStore) Get(ctx context.Context, key string) (resolve.CacheEntry, error) {
	cutoff := time.Now().UTC().Add(-s.ttl)
	query := fmt.Sprintf(`
UPDATE %s
SET hits = hits + 1
WHERE url_hash = $1 AND resolved_at > $2
RETURNING url, result, source_stage, resolved_at, hits`, s.table)

	var (
		entry      resolve.CacheEntry
		resultJSON []byte
		stage      string
	)
	row := s.pool.QueryRow(ctx, query, key, cutoff)
	err := row.Scan(&entry.URL, &resultJSON, &stage, &entry.ResolvedAt, &entry.Hits)
	if errors.Is(err, pgx.ErrNoRows) {
		return resolve.CacheEntry{}, resolve.ErrCacheMiss
	}
	if err != nil {
		return resolve.CacheEntry{}, fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(resultJSON, &entry.Result); err != nil {
		return resolve.CacheEntry{}, fmt.Errorf("decode cached result: %w", err)
	}
	entry.Key = key
	entry.SourceStage = resolve.Stage(stage)
	return entry, nil
}

// Put upserts an entry.
func (s *PostgresStore) Put(ctx context.Context, entry resolve.CacheEntry) error {
	resultJSON, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (url_hash, url, result, source_stage, confidence, resolved_at, hits)
VALUES ($1, $2, $3, $4, $5, $6, 0)
ON CONFLICT (url_hash) DO UPDATE SET
	url = EXCLUDED.url,
	result = EXCLUDED.result,
	source_stage = EXCLUDED.source_stage,
	confidence = EXCLUDED.confidence,
	resolved_at = EXCLUDED.resolved_at`, s.table)

	_, err = s.pool.Exec(ctx, query,
		entry.Key,
		entry.URL,
		resultJSON,
		string(entry.SourceStage),
		entry.Result.Confidence,
		entry.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}
