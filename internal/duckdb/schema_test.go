package duckdb_test

import (
	"testing"

	"conflictsuite/internal/duckdb"
	"conflictsuite/internal/duckdb/testing"
	"conflictsuite/internal/testutil"
)

// TestEnsureSchemaCreatesTables verifies the export tables and view exist.
func TestEnsureSchemaCreatesTables(t *testing.T) {
	db := duckdbtesting.Open(t)
	for _, table := range []string{"suite_runs", "suite_variants", "suite_integrity"} {
		if duckdbtesting.QueryInt(t, db, "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?", table) != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}
	if duckdbtesting.QueryInt(t, db, "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = 'v_split_operator' AND table_type = 'VIEW'") != 1 {
		t.Fatalf("expected view v_split_operator to exist")
	}
}

// TestEnsureSchemaIsIdempotent verifies the schema can be applied to an existing database.
func TestEnsureSchemaIsIdempotent(t *testing.T) {
	ctx := testutil.Context(t, unitTimeout)
	db := duckdbtesting.Open(t)
	if err := duckdb.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("expected schema to apply twice: %v", err)
	}
	if err := duckdb.EnsureSchema(ctx, nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}

// TestSchemaRejectsDuplicateOutputHash verifies a suite hash can be stored once.
func TestSchemaRejectsDuplicateOutputHash(t *testing.T) {
	ctx := testutil.Context(t, unitTimeout)
	db := duckdbtesting.Open(t)
	insert := `INSERT INTO suite_runs (run_id, label, output_hash, config_key, config_echo, raw_records,
  base_examples, variants, dropped, exported_at)
VALUES (?, 'a', 'abc', 'k', '{}', 1, 1, 1, 0, TIMESTAMP '2024-01-01 00:00:00')`
	if _, err := db.ExecContext(ctx, insert, "6f1a2c3e-0000-4000-8000-000000000001"); err != nil {
		t.Fatalf("insert first run: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert, "6f1a2c3e-0000-4000-8000-000000000002"); err == nil {
		t.Fatalf("expected unique output_hash violation")
	}
	if got := duckdbtesting.QueryInt(t, db, "SELECT COUNT(*) FROM suite_runs"); got != 1 {
		t.Fatalf("expected 1 run, got %d", got)
	}
}

// TestSchemaAllowsNullableVariantColumns verifies optional row fields are nullable.
func TestSchemaAllowsNullableVariantColumns(t *testing.T) {
	ctx := testutil.Context(t, unitTimeout)
	db := duckdbtesting.Open(t)
	_, err := db.ExecContext(ctx, `INSERT INTO suite_variants (run_id, example_id, base_id, source_image_id,
  family, operator, corrupt_modality, severity, text_input, question_text, gold_answer, oracle_action,
  split, heldout_family_flag, heldout_severity_flag)
VALUES ('6f1a2c3e-0000-4000-8000-000000000001', 'vqa-1::clean', 'vqa-1', 1, 'count', 'clean', 'none', 0,
  'two dogs', 'how many dogs?', '2', 'require_agreement', 'train', false, false)`)
	if err != nil {
		t.Fatalf("insert variant without optional columns: %v", err)
	}
	if got := duckdbtesting.QueryInt(t, db, "SELECT COUNT(*) FROM suite_variants WHERE hard_swap_flag IS NULL AND corruption_family IS NULL"); got != 1 {
		t.Fatalf("expected nullable optional columns, got %d", got)
	}
}
