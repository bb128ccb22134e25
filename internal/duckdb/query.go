package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RunRecord is one exported suite as stored in suite_runs.
type RunRecord struct {
	RunID        string
	Label        string
	OutputHash   string
	ConfigKey    string
	BaseExamples int
	Variants     int
	ExportedAt   time.Time
}

// ListRuns returns exported suites, newest first.
func ListRuns(ctx context.Context, db *sql.DB) ([]RunRecord, error) {
	rows, err := db.QueryContext(ctx, `SELECT CAST(run_id AS VARCHAR), label, output_hash, config_key,
	  base_examples, variants, exported_at
	FROM suite_runs
	ORDER BY exported_at DESC, label`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.RunID, &rec.Label, &rec.OutputHash, &rec.ConfigKey, &rec.BaseExamples, &rec.Variants, &rec.ExportedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SplitOperatorCount is one cell of the split by operator view.
type SplitOperatorCount struct {
	Split    string
	Operator string
	Variants int
}

// SplitOperatorCounts reads the split by operator breakdown of one exported run.
func SplitOperatorCounts(ctx context.Context, db *sql.DB, runID string) ([]SplitOperatorCount, error) {
	rows, err := db.QueryContext(ctx, `SELECT split, operator, CAST(variants AS BIGINT)
	FROM v_split_operator
	WHERE run_id = ?
	ORDER BY split, operator`, runID)
	if err != nil {
		return nil, fmt.Errorf("query split operator counts: %w", err)
	}
	defer rows.Close()
	var out []SplitOperatorCount
	for rows.Next() {
		var cell SplitOperatorCount
		var n int64
		if err := rows.Scan(&cell.Split, &cell.Operator, &n); err != nil {
			return nil, fmt.Errorf("scan split operator count: %w", err)
		}
		cell.Variants = int(n)
		out = append(out, cell)
	}
	return out, rows.Err()
}
