package db

import (
	"fmt"
	"strings"

	"pirbench/internal/benchmark"
)

// DefaultSQLitePath is used when a sqlite store has no connection string.
const DefaultSQLitePath = ".pirbench.db"

// DefaultJSONPath is used when a json store has no connection string.
const DefaultJSONPath = ".pirbench.json"

// StoreConfig holds configuration for the storage backend
type StoreConfig struct {
	Type             string // "sqlite", "postgres", "json" or "none"
	ConnectionString string // File path for SQLite and JSON, DSN for Postgres
}

// NewStore creates a new Store instance based on the provided configuration.
// Type "none" returns a nil Store: records are not persisted.
func NewStore(config StoreConfig) (benchmark.Store, error) {
	switch strings.ToLower(config.Type) {
	case "postgres", "postgresql":
		if config.ConnectionString == "" {
			return nil, fmt.Errorf("postgres connection string is required")
		}
		return NewPostgresStore(config.ConnectionString)
	case "sqlite", "sqlite3", "":
		if config.ConnectionString == "" {
			config.ConnectionString = DefaultSQLitePath
		}
		return NewSQLiteStore(config.ConnectionString)
	case "json":
		if config.ConnectionString == "" {
			config.ConnectionString = DefaultJSONPath
		}
		return benchmark.NewFileStore(config.ConnectionString)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}
