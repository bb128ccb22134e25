package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	return Default()
}

// TestDefaultConfigValidates verifies the normalized defaults pass validation.
func TestDefaultConfigValidates(t *testing.T) {
	cfg := validConfig()
	if err := Validate(&cfg); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.HeldOutFamily != "attribute_color" || cfg.HeldOutSeverity != 3 {
		t.Fatalf("unexpected held-out defaults %q/%d", cfg.HeldOutFamily, cfg.HeldOutSeverity)
	}
	if len(cfg.Families) != 3 {
		t.Fatalf("expected all families active, got %v", cfg.Families)
	}
}

// TestNormalizeOrdersFamilies verifies equivalent family lists echo identically.
func TestNormalizeOrdersFamilies(t *testing.T) {
	cfg := Config{Version: 1, Families: []string{"attribute_color", "existence"}}
	Normalize(&cfg)
	if strings.Join(cfg.Families, ",") != "existence,attribute_color" {
		t.Fatalf("unexpected family order %v", cfg.Families)
	}
}

// TestValidateRatiosMustSumToOne verifies the ratio invariant.
func TestValidateRatiosMustSumToOne(t *testing.T) {
	cfg := validConfig()
	cfg.SplitRatios = SplitRatios{Train: 0.7, Val: 0.2, TestID: 0.2}

	err := Validate(&cfg)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "split_ratios") {
		t.Fatalf("expected split_ratios error, got %q", err.Error())
	}
}

// TestValidateHeldOutFamilyMustBeActive verifies cross-field family checks.
func TestValidateHeldOutFamilyMustBeActive(t *testing.T) {
	cfg := validConfig()
	cfg.Families = []string{"existence", "count"}

	err := Validate(&cfg)
	if err == nil || !strings.Contains(err.Error(), "held_out_family") {
		t.Fatalf("expected held_out_family error, got %v", err)
	}

	cfg.HeldOutFamily = HeldOutNone
	if err := Validate(&cfg); err != nil {
		t.Fatalf("expected disabled held-out family to validate, got %v", err)
	}
	if cfg.HeldOutEnabled() {
		t.Fatalf("expected held-out family to be disabled")
	}
}

// TestValidateReportsTagIssuesByYAMLName verifies validator failures use config field names.
func TestValidateReportsTagIssuesByYAMLName(t *testing.T) {
	cfg := validConfig()
	cfg.Version = 2
	cfg.HeldOutSeverity = 4
	cfg.HardSwapJaccardRange = []float64{0.8, 0.3}
	cfg.Families = append(cfg.Families, "relation")

	err := Validate(&cfg)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := map[string]bool{}
	for _, issue := range validationErr.Issues {
		fields[issue.Field] = true
	}
	for _, want := range []string{"version", "held_out_severity", "hard_swap_jaccard_range", "families[3]"} {
		if !fields[want] {
			t.Fatalf("expected issue for %s, got %v", want, validationErr.Issues)
		}
	}
}

// TestValidateRejectsMultiWordColor verifies lexicon construction errors surface as issues.
func TestValidateRejectsMultiWordColor(t *testing.T) {
	cfg := validConfig()
	cfg.Lexicon.Colors = []string{"red", "navy blue"}

	err := Validate(&cfg)
	if err == nil || !strings.Contains(err.Error(), "lexicon") {
		t.Fatalf("expected lexicon error, got %v", err)
	}
}

// TestLoadResolvesPathsAgainstProjectRoot verifies relative paths in the config directory.
func TestLoadResolvesPathsAgainstProjectRoot(t *testing.T) {
	root := t.TempDir()
	path := ConfigPath(root)
	if err := Scaffold(path, DefaultScaffoldOptions()); err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	if err := Scaffold(path, DefaultScaffoldOptions()); err == nil {
		t.Fatalf("expected scaffold to refuse overwrite")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OutputDir != filepath.Join(root, "conflict-suite") {
		t.Fatalf("unexpected output dir %q", cfg.OutputDir)
	}
	if len(cfg.Inputs.Questions) != 1 || cfg.Inputs.Questions[0] != filepath.Join(root, "data", "questions.jsonl") {
		t.Fatalf("unexpected questions path %v", cfg.Inputs.Questions)
	}

	found, err := FindConfigPath(filepath.Join(root))
	if err != nil || found != path {
		t.Fatalf("expected to find %q, got %q (%v)", path, found, err)
	}
}

// TestParseConfigUnknownField verifies unknown fields are rejected.
func TestParseConfigUnknownField(t *testing.T) {
	data := []byte("version: 1\nunknown: true\n")
	if _, err := ParseConfig(data); err == nil {
		t.Fatalf("expected parse error for unknown field")
	}
}

// TestParseConfigRejectsMultipleDocs verifies multiple YAML docs are rejected.
func TestParseConfigRejectsMultipleDocs(t *testing.T) {
	data := []byte("version: 1\n---\nversion: 1\n")
	if _, err := ParseConfig(data); err == nil {
		t.Fatalf("expected parse error for multiple documents")
	}
}

// TestLoadRejectsInvalidFile verifies Load surfaces validation failures.
func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("version: 1\nheld_out_severity: 9\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

// TestNormalizeDefaultsOptionalSwitches verifies consistency filtering and all severities are on by default.
func TestNormalizeDefaultsOptionalSwitches(t *testing.T) {
	cfg := validConfig()
	if !cfg.ConsistencyFilterEnabled() || cfg.EnforceTemplateDisjointness {
		t.Fatalf("unexpected switch defaults filter=%v templates=%v", cfg.ConsistencyFilterEnabled(), cfg.EnforceTemplateDisjointness)
	}
	if len(cfg.Vision.Severities) != 3 || cfg.Vision.Severities[0] != 1 || cfg.Vision.Severities[2] != 3 {
		t.Fatalf("unexpected default severities %v", cfg.Vision.Severities)
	}
	echo := cfg.Echo()
	if !echo.ConsistencyFilter || echo.EnforceTemplateDisjointness || len(echo.Vision.Severities) != 3 {
		t.Fatalf("unexpected echo %+v", echo)
	}
}

// TestParseConfigReadsOptionalSwitches verifies explicit values survive normalization.
func TestParseConfigReadsOptionalSwitches(t *testing.T) {
	cfg, err := ParseConfig([]byte("version: 1\nseed: 7\nconsistency_filter: false\nenforce_template_disjointness: true\nvision:\n  severities: [3, 1]\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.ConsistencyFilterEnabled() || !cfg.EnforceTemplateDisjointness {
		t.Fatalf("expected explicit switches, got filter=%v templates=%v", cfg.ConsistencyFilterEnabled(), cfg.EnforceTemplateDisjointness)
	}
	if len(cfg.Vision.Severities) != 2 || cfg.Vision.Severities[0] != 1 || cfg.Vision.Severities[1] != 3 {
		t.Fatalf("expected sorted severities, got %v", cfg.Vision.Severities)
	}
}

// TestValidateRejectsBadSeverities verifies severity range and duplicate checks.
func TestValidateRejectsBadSeverities(t *testing.T) {
	for _, severities := range [][]int{{0, 2}, {1, 4}, {2, 2}} {
		cfg := validConfig()
		cfg.Vision.Severities = severities
		err := Validate(&cfg)
		if err == nil || !strings.Contains(err.Error(), "vision.severities") {
			t.Fatalf("severities %v: expected vision.severities error, got %v", severities, err)
		}
	}
}
