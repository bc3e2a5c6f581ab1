package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	_ "github.com/lib/pq"

	"pirbench/internal/benchmark"
)

// PostgresStore implements benchmark.Store using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store and applies migrations
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		size_exponent INTEGER NOT NULL,
		record_size BIGINT NOT NULL,
		basis INTEGER NOT NULL,
		metrics TEXT NOT NULL,
		captured_at BIGINT NOT NULL,
		raw_log_path TEXT NOT NULL DEFAULT '',
		metrics_log_path TEXT NOT NULL DEFAULT ''
	);`)
	if err != nil {
		return err
	}

	// Performance indexes
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_config_captured ON runs(size_exponent, record_size, captured_at DESC)`); err != nil {
		slog.Debug("index creation failed", "error", err)
	}
	return nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func pgPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// SaveRecord inserts a completed run.
func (s *PostgresStore) SaveRecord(ctx context.Context, rec benchmark.Record) error {
	args, err := recordArgs(rec)
	if err != nil {
		return err
	}
	query := `INSERT INTO runs (` + recordColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// ListRecords returns matching runs, newest first.
func (s *PostgresStore) ListRecords(ctx context.Context, f benchmark.Filter) ([]benchmark.Record, error) {
	query, args := listQuery(f, pgPlaceholder)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// LatestRecords returns the n newest runs of cfg.
func (s *PostgresStore) LatestRecords(ctx context.Context, cfg benchmark.RunConfig, n int) ([]benchmark.Record, error) {
	return s.ListRecords(ctx, benchmark.Filter{Config: &cfg, Limit: n})
}
