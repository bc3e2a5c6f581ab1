package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"pirbench/internal/benchmark"
)

// SQLiteStore implements benchmark.Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and applies migrations
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			size_exponent INTEGER NOT NULL,
			record_size INTEGER NOT NULL,
			basis INTEGER NOT NULL,
			metrics TEXT NOT NULL,
			captured_at INTEGER NOT NULL,
			raw_log_path TEXT NOT NULL DEFAULT '',
			metrics_log_path TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_config_captured ON runs(size_exponent, record_size, captured_at DESC);`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRecord inserts a completed run.
func (s *SQLiteStore) SaveRecord(ctx context.Context, rec benchmark.Record) error {
	args, err := recordArgs(rec)
	if err != nil {
		return err
	}
	query := `INSERT INTO runs (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// ListRecords returns matching runs, newest first.
func (s *SQLiteStore) ListRecords(ctx context.Context, f benchmark.Filter) ([]benchmark.Record, error) {
	query, args := listQuery(f, func(int) string { return "?" })
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// LatestRecords returns the n newest runs of cfg.
func (s *SQLiteStore) LatestRecords(ctx context.Context, cfg benchmark.RunConfig, n int) ([]benchmark.Record, error) {
	return s.ListRecords(ctx, benchmark.Filter{Config: &cfg, Limit: n})
}
