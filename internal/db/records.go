// Package db persists benchmark records in SQL databases.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pirbench/internal/benchmark"
)

// recordColumns is the column order shared by every query.
const recordColumns = `id, size_exponent, record_size, basis, metrics, captured_at, raw_log_path, metrics_log_path`

// encodeMetrics stores metrics as a JSON array so their order survives.
func encodeMetrics(m benchmark.Metrics) (string, error) {
	if m == nil {
		m = benchmark.Metrics{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode metrics: %w", err)
	}
	return string(data), nil
}

// recordArgs returns the values for recordColumns.
func recordArgs(rec benchmark.Record) ([]any, error) {
	metrics, err := encodeMetrics(rec.Metrics)
	if err != nil {
		return nil, err
	}
	return []any{
		rec.ID.String(),
		rec.Config.SizeExponent,
		rec.Config.RecordSize,
		rec.Basis,
		metrics,
		rec.CapturedAt.UnixNano(),
		rec.RawLogPath,
		rec.MetricsLogPath,
	}, nil
}

// scanRecords reads rows selected with recordColumns.
func scanRecords(rows *sql.Rows) ([]benchmark.Record, error) {
	defer rows.Close()

	var results []benchmark.Record
	for rows.Next() {
		var (
			rec        benchmark.Record
			id         string
			metrics    string
			capturedAt int64
		)
		err := rows.Scan(&id, &rec.Config.SizeExponent, &rec.Config.RecordSize, &rec.Basis,
			&metrics, &capturedAt, &rec.RawLogPath, &rec.MetricsLogPath)
		if err != nil {
			return nil, err
		}

		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid record id %q: %w", id, err)
		}
		if err := json.Unmarshal([]byte(metrics), &rec.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode metrics of record %s: %w", id, err)
		}
		rec.CapturedAt = time.Unix(0, capturedAt).UTC()
		results = append(results, rec)
	}
	return results, rows.Err()
}

// listQuery builds a newest-first select for f. placeholder renders the
// n-th bind parameter in the driver's syntax.
func listQuery(f benchmark.Filter, placeholder func(n int) string) (string, []any) {
	query := `SELECT ` + recordColumns + ` FROM runs`
	var args []any
	if f.Config != nil {
		query += fmt.Sprintf(` WHERE size_exponent = %s AND record_size = %s`, placeholder(1), placeholder(2))
		args = append(args, f.Config.SizeExponent, f.Config.RecordSize)
	}
	query += ` ORDER BY captured_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += ` LIMIT ` + placeholder(len(args))
	}
	return query, args
}
