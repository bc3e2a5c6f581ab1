package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Filter narrows a ListRecords call.
type Filter struct {
	Config *RunConfig // only records of this configuration
	Limit  int        // zero means no limit
}

// Store defines the interface for storing completed runs.
type Store interface {
	SaveRecord(ctx context.Context, rec Record) error
	// ListRecords returns matching records, newest first.
	ListRecords(ctx context.Context, f Filter) ([]Record, error)
	// LatestRecords returns the n newest records of cfg.
	LatestRecords(ctx context.Context, cfg RunConfig, n int) ([]Record, error)
	Close() error
}

// Apply filters records (already sorted newest first).
func (f Filter) Apply(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if f.Config != nil && r.Config != *f.Config {
			continue
		}
		out = append(out, r)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

// FileStore implements Store using a JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) SaveRecord(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadAll()
	if err != nil {
		return err
	}

	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	return os.WriteFile(s.path, data, 0644)
}

func (s *FileStore) ListRecords(ctx context.Context, f Filter) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadAll()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CapturedAt.After(records[j].CapturedAt)
	})
	return f.Apply(records), nil
}

func (s *FileStore) LatestRecords(ctx context.Context, cfg RunConfig, n int) ([]Record, error) {
	return s.ListRecords(ctx, Filter{Config: &cfg, Limit: n})
}

func (s *FileStore) Close() error {
	return nil
}

// loadAll returns records in file order.
func (s *FileStore) loadAll() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, err
	}

	if len(data) == 0 {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}
	return records, nil
}
