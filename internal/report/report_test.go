package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"conflictsuite/internal/config"
	"conflictsuite/internal/manifest"
)

func sampleManifest(t *testing.T) manifest.Manifest {
	t.Helper()
	echo, err := json.Marshal(config.Default().Echo())
	if err != nil {
		t.Fatalf("encode echo: %v", err)
	}
	return manifest.Manifest{
		Counts: manifest.Counts{
			Split:    map[string]int{"train": 6, "test_ood_family": 2},
			Operator: map[string]int{"clean": 4, "text_edit": 4},
			Family:   map[string]int{"existence": 8},
			Severity: map[string]int{"0": 4, "1": 4},
		},
		OutputHash: "0123456789abcdef0123",
		ConfigEcho: echo,
		IntegrityChecks: map[string]manifest.Status{
			manifest.CheckExampleIDUnique: manifest.StatusPass,
			manifest.CheckSchemaComplete:  manifest.StatusFail,
		},
		Drops:     map[string]int{"family_unmatched": 2},
		Fallbacks: map[string]int{},
		Totals:    manifest.Totals{RawRecords: 6, BaseExamples: 4, Variants: 8, Dropped: 2},
	}
}

// TestNewViewSortsAndAnnotates verifies sorted rows, shares and severity notes.
func TestNewViewSortsAndAnnotates(t *testing.T) {
	view := NewView(sampleManifest(t))
	if len(view.Splits) != 2 || view.Splits[0].Label != "test_ood_family" {
		t.Fatalf("unexpected split rows %+v", view.Splits)
	}
	if view.Splits[1].Share != "75.0%" {
		t.Fatalf("unexpected share %q", view.Splits[1].Share)
	}
	if view.Severities[0].Note != "uncorrupted" {
		t.Fatalf("unexpected severity 0 note %q", view.Severities[0].Note)
	}
	if !strings.Contains(view.Severities[1].Note, "15%") {
		t.Fatalf("expected occlusion area in note, got %q", view.Severities[1].Note)
	}
	if len(view.Checks) != 2 || view.Checks[0].Label != manifest.CheckExampleIDUnique {
		t.Fatalf("unexpected checks %+v", view.Checks)
	}
	if view.Echo.Seed != 7 {
		t.Fatalf("expected echo to decode, got seed %d", view.Echo.Seed)
	}
}

// TestRenderHTMLEscapesAndListsChecks verifies the HTML page content.
func TestRenderHTMLEscapesAndListsChecks(t *testing.T) {
	man := sampleManifest(t)
	man.Drops["<script>"] = 1
	html, err := RenderHTML(context.Background(), man)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"<!DOCTYPE html>", "schema_complete", `class="fail"`, "&lt;script&gt;", "test_ood_family"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in report", want)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("expected drop label to be escaped")
	}
}

// TestSummaryListsFailedChecks verifies the console summary.
func TestSummaryListsFailedChecks(t *testing.T) {
	out := Summary(sampleManifest(t), true)
	for _, want := range []string{"Suite 0123456789ab", "Variants: 8", "train", "Failed checks: schema_complete"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}
}

// TestLoadResolvesDirectory verifies Load accepts an output directory.
func TestLoadResolvesDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := manifest.Write(filepath.Join(dir, "manifest.json"), sampleManifest(t)); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	man, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if man.Totals.Variants != 8 {
		t.Fatalf("unexpected totals %+v", man.Totals)
	}
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if err := WriteHTML(context.Background(), filepath.Join(dir, "nested", "report.html"), man); err != nil {
		t.Fatalf("write html: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nested", "report.html")); err != nil {
		t.Fatalf("expected report file: %v", err)
	}
}

// TestSeverityNoteDescribesOcclusion verifies occlusion notes per level and passthrough for other families.
func TestSeverityNoteDescribesOcclusion(t *testing.T) {
	cases := map[string]string{
		"0": "uncorrupted",
		"2": "vision rows occlude 30% of the image",
		"3": "vision rows occlude 45% of the image",
	}
	for label, want := range cases {
		if got := severityNote("occlusion", label); got != want {
			t.Fatalf("severity %s: expected %q, got %q", label, want, got)
		}
	}
	if got := severityNote("blur", "2"); got != "blur" {
		t.Fatalf("expected corruption family passthrough, got %q", got)
	}
}
