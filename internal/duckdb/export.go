// Package duckdb exports built suites into a DuckDB database for ad hoc analysis.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sort"
	"strings"

	duckdb "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/manifest"
)

// ExportResult describes one exported suite.
type ExportResult struct {
	RunID     string
	ConfigKey string
	Variants  int
	// Created is false when a run with the same output hash was already present.
	Created bool
}

// ExportSuite stores the manifest and rows of a suite under a fresh run id. A suite whose
// output hash was exported before is left untouched and its existing run id is returned.
func ExportSuite(ctx context.Context, db *sql.DB, label string, man manifest.Manifest, rows []dataset.VariantExample) (ExportResult, error) {
	if ctx == nil {
		return ExportResult{}, errors.New("duckdb: context is nil")
	}
	if db == nil {
		return ExportResult{}, errors.New("duckdb: db is nil")
	}
	if strings.TrimSpace(man.OutputHash) == "" {
		return ExportResult{}, errors.New("duckdb: manifest has no output hash")
	}
	if len(rows) != man.Totals.Variants {
		return ExportResult{}, fmt.Errorf("duckdb: manifest lists %d variants, got %d rows", man.Totals.Variants, len(rows))
	}
	if strings.TrimSpace(label) == "" {
		label = shortHash(man.OutputHash)
	}
	echo, err := CanonicalJSON(man.ConfigEcho)
	if err != nil {
		return ExportResult{}, fmt.Errorf("canonical config echo: %w", err)
	}
	key := fingerprintBytes(echo)

	conn, err := db.Conn(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	id := uuid.NewString()
	if _, err := conn.ExecContext(
		ctx,
		`INSERT INTO suite_runs (
		  run_id, label, output_hash, image_hash, config_key, config_echo,
		  raw_records, base_examples, variants, dropped, exported_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, now())
		ON CONFLICT (output_hash) DO NOTHING`,
		id,
		label,
		man.OutputHash,
		nullableString(man.ImageHash),
		key,
		string(echo),
		man.Totals.RawRecords,
		man.Totals.BaseExamples,
		man.Totals.Variants,
		man.Totals.Dropped,
	); err != nil {
		return ExportResult{}, fmt.Errorf("insert run: %w", err)
	}
	var existing string
	if err := conn.QueryRowContext(ctx, "SELECT CAST(run_id AS VARCHAR) FROM suite_runs WHERE output_hash = ?", man.OutputHash).Scan(&existing); err != nil {
		return ExportResult{}, fmt.Errorf("lookup run id: %w", err)
	}
	if existing != id {
		return ExportResult{RunID: existing, ConfigKey: key, Variants: len(rows)}, nil
	}

	if err := appendVariants(conn, id, rows); err != nil {
		return ExportResult{}, errors.Join(err, discardRun(ctx, conn, id))
	}
	if err := insertChecks(ctx, conn, id, man.IntegrityChecks); err != nil {
		return ExportResult{}, errors.Join(err, discardRun(ctx, conn, id))
	}
	return ExportResult{RunID: id, ConfigKey: key, Variants: len(rows), Created: true}, nil
}

func appendVariants(conn *sql.Conn, runID string, rows []dataset.VariantExample) error {
	parsed, err := uuid.Parse(runID)
	if err != nil {
		return fmt.Errorf("parse run id: %w", err)
	}
	appender, err := newAppender(conn, "suite_variants")
	if err != nil {
		return fmt.Errorf("open variant appender: %w", err)
	}
	for _, row := range rows {
		if err := appender.AppendRow(
			duckdb.UUID(parsed),
			row.ExampleID,
			row.BaseID,
			row.SourceImageID,
			string(row.Family),
			string(row.Operator),
			string(row.CorruptModality),
			int32(row.Severity),
			row.TextInput,
			row.QuestionText,
			row.GoldAnswer,
			nullableBool(row.HardSwapFlag),
			string(row.OracleAction),
			string(row.Split),
			row.HeldoutFamilyFlag,
			row.HeldoutSeverityFlag,
			nullableString(row.CorruptionFamily),
			nullableString(row.CorruptionSeedKey),
		); err != nil {
			_ = appender.Close()
			return fmt.Errorf("append variant %s: %w", row.ExampleID, err)
		}
	}
	if err := appender.Close(); err != nil {
		return fmt.Errorf("flush variants: %w", err)
	}
	return nil
}

func insertChecks(ctx context.Context, conn *sql.Conn, runID string, checks map[string]manifest.Status) error {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO suite_integrity (run_id, check_name, status) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, runID, name, string(checks[name])); err != nil {
			return fmt.Errorf("insert check %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// discardRun removes a partially exported run.
func discardRun(ctx context.Context, conn *sql.Conn, runID string) error {
	for _, table := range []string{"suite_integrity", "suite_variants", "suite_runs"} {
		if _, err := conn.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", runID); err != nil {
			return fmt.Errorf("discard %s: %w", table, err)
		}
	}
	return nil
}

// newAppender creates a DuckDB appender for bulk inserts into table.
func newAppender(conn *sql.Conn, table string) (*duckdb.Appender, error) {
	var appender *duckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		rawConn, ok := driverConn.(driver.Conn)
		if !ok {
			return fmt.Errorf("duckdb driver connection unavailable (got %T)", driverConn)
		}
		var err error
		appender, err = duckdb.NewAppenderFromConn(rawConn, "", table)
		return err
	}); err != nil {
		return nil, err
	}
	if appender == nil {
		return nil, errors.New("duckdb appender initialization failed")
	}
	return appender, nil
}

func nullableString(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func nullableBool(value *bool) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
