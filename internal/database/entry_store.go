// Package database provides Postgres-backed persistence for entries.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for entry rows.
type Config struct {
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	Table           string        `mapstructure:"table" yaml:"table"`
	MaxConns        int32         `mapstructure:"max_conns" yaml:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns" yaml:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime" yaml:"max_conn_lifetime"`
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// EntryStore writes WARN notice entries into Postgres.
type EntryStore struct {
	pool  execCloser
	table string
}

// NewEntryStore creates a Postgres-backed EntryStore using the provided config.
func NewEntryStore(ctx context.Context, cfg Config) (*EntryStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "warn_entries"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
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
	return &EntryStore{pool: pool, table: table}, nil
}

// NewEntryStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewEntryStoreWithPool(pool execCloser, table string) (*EntryStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "warn_entries"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &EntryStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *EntryStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// SaveEntry inserts one entry row into Postgres.
func (s *EntryStore) SaveEntry(ctx context.Context, entry warn.Entry) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("entry store is not configured")
	}
	if entry.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	fieldsJSON, err := json.Marshal(entry.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	normalizedJSON, err := json.Marshal(entry.NormalizedFields)
	if err != nil {
		return fmt.Errorf("marshal normalized fields: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	state_name,
	state_abbrev,
	scraped_at,
	source_url,
	content_hash,
	fields,
	normalized_fields
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8
)`, s.table)

	args := []any{
		entry.ID,
		entry.StateName,
		entry.StateAbbrev,
		entry.Timestamp,
		entry.URL,
		entry.ContentHash,
		fieldsJSON,
		normalizedJSON,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}
