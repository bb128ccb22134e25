package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/oracle"
)

// Integrity check failure classes.
var (
	ErrSchemaViolation            = errors.New("schema violation")
	ErrSplitDisjointnessViolation = errors.New("split disjointness violation")
)

// Status is the outcome of one named check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	// StatusSkip marks an optional check that was not enabled for the suite.
	StatusSkip Status = "skip"
)

// Failed reports whether the check failed. Skipped checks do not fail.
func (s Status) Failed() bool {
	return s == StatusFail
}

// Check names, in reporting order.
const (
	CheckExampleIDUnique          = "example_id_unique"
	CheckSourceImageSplitDisjoint = "source_image_split_disjoint"
	CheckSchemaComplete           = "schema_complete"
	CheckCleanDefaults            = "clean_defaults"
	CheckHardSwapFlagScope        = "hard_swap_flag_scope"
	CheckOracleActionConsistent   = "oracle_action_consistent"
	CheckHeldoutFlagsConsistent   = "heldout_flags_consistent"
	CheckTemplateSplitDisjoint    = "template_split_disjoint"
)

// CheckNames lists every check in reporting order.
var CheckNames = []string{
	CheckExampleIDUnique,
	CheckSourceImageSplitDisjoint,
	CheckSchemaComplete,
	CheckCleanDefaults,
	CheckHardSwapFlagScope,
	CheckOracleActionConsistent,
	CheckHeldoutFlagsConsistent,
	CheckTemplateSplitDisjoint,
}

const rowSchemaURL = "https://conflictsuite.local/schema/row_schema.json"

//go:embed row_schema.json
var rowSchema string

// Violation is one failed assertion. Line is 1-based.
type Violation struct {
	Check     string `json:"check"`
	Line      int    `json:"line"`
	ExampleID string `json:"example_id,omitempty"`
	Message   string `json:"message"`
}

// Report lists the violations found in one payload. Checks without violations passed unless
// they are listed in Skipped.
type Report struct {
	Rows       int         `json:"rows"`
	Violations []Violation `json:"violations"`
	Skipped    []string    `json:"skipped,omitempty"`
}

// Statuses returns pass, fail or skip for every check.
func (r Report) Statuses() map[string]Status {
	out := make(map[string]Status, len(CheckNames))
	for _, name := range CheckNames {
		out[name] = StatusPass
	}
	for _, name := range r.Skipped {
		out[name] = StatusSkip
	}
	for _, v := range r.Violations {
		out[v.Check] = StatusFail
	}
	return out
}

// Failed returns the names of failed checks in reporting order.
func (r Report) Failed() []string {
	statuses := r.Statuses()
	var out []string
	for _, name := range CheckNames {
		if statuses[name] == StatusFail {
			out = append(out, name)
		}
	}
	return out
}

// Err returns nil when every check passed. Otherwise the error names the failed checks and
// wraps ErrSplitDisjointnessViolation and/or ErrSchemaViolation.
func (r Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	var errs []error
	schemaFailed := false
	for _, name := range failed {
		if name == CheckSourceImageSplitDisjoint || name == CheckTemplateSplitDisjoint {
			errs = append(errs, ErrSplitDisjointnessViolation)
			continue
		}
		schemaFailed = true
	}
	if schemaFailed {
		errs = append(errs, ErrSchemaViolation)
	}
	return fmt.Errorf("integrity checks failed (%s): %w", strings.Join(failed, ", "), errors.Join(errs...))
}

// Expectations optionally pins the held-out settings the suite was built with. Zero values
// skip the corresponding assertions.
type Expectations struct {
	HeldOutFamily   dataset.Family
	HeldOutSeverity int
	// EnforceTemplateDisjointness enables template_split_disjoint; it is skipped otherwise.
	EnforceTemplateDisjointness bool
}

// Checker validates emitted suite files. It never modifies its input.
type Checker struct {
	schema *jsonschema.Schema
	expect Expectations
}

// NewChecker compiles the row schema.
func NewChecker(expect Expectations) (*Checker, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(rowSchemaURL, strings.NewReader(rowSchema)); err != nil {
		return nil, fmt.Errorf("add row schema: %w", err)
	}
	schema, err := compiler.Compile(rowSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile row schema: %w", err)
	}
	return &Checker{schema: schema, expect: expect}, nil
}

// CheckFile validates the suite file at path.
func (c *Checker) CheckFile(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return c.Check(data)
}

// Check validates a JSONL payload. Malformed rows are reported as schema violations rather
// than returned as errors.
func (c *Checker) Check(payload []byte) (Report, error) {
	lines, err := dataset.ReadLines(bytes.NewReader(payload))
	if err != nil {
		return Report{}, err
	}
	state := newCheckState(c.expect)
	for i, line := range lines {
		state.row(i+1, line, c.schema)
	}
	return state.finish(len(lines)), nil
}

type checkState struct {
	expect        Expectations
	violations    []Violation
	ids           map[string]int
	imageSplit    map[int64]map[dataset.Split]string
	templateSplit map[string]map[dataset.Split]string
}

func newCheckState(expect Expectations) *checkState {
	return &checkState{
		expect:        expect,
		ids:           map[string]int{},
		imageSplit:    map[int64]map[dataset.Split]string{},
		templateSplit: map[string]map[dataset.Split]string{},
	}
}

func (s *checkState) fail(check string, line int, id, format string, args ...any) {
	s.violations = append(s.violations, Violation{Check: check, Line: line, ExampleID: id, Message: fmt.Sprintf(format, args...)})
}

func (s *checkState) row(line int, raw []byte, schema *jsonschema.Schema) {
	var doc any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		s.fail(CheckSchemaComplete, line, "", "invalid json: %v", err)
		return
	}
	if err := schema.Validate(doc); err != nil {
		s.fail(CheckSchemaComplete, line, "", "%v", err)
	}
	var row dataset.VariantExample
	if err := json.Unmarshal(raw, &row); err != nil {
		s.fail(CheckSchemaComplete, line, "", "decode row: %v", err)
		return
	}
	id := row.ExampleID

	if first, dup := s.ids[id]; dup {
		s.fail(CheckExampleIDUnique, line, id, "duplicate of line %d", first)
	} else {
		s.ids[id] = line
	}

	if row.Split.IsInDistribution() {
		recordSplit(s.imageSplit, row.SourceImageID, row.Split, id)
		if s.expect.EnforceTemplateDisjointness {
			recordSplit(s.templateSplit, dataset.TemplateID(row.QuestionText), row.Split, id)
		}
	}

	if row.Operator == dataset.OperatorClean && (row.CorruptModality != dataset.ModalityNone || row.Severity != 0) {
		s.fail(CheckCleanDefaults, line, id, "clean row has modality %s severity %d", row.CorruptModality, row.Severity)
	}

	switch {
	case row.Operator == dataset.OperatorSwapHard && row.HardSwapFlag == nil:
		s.fail(CheckHardSwapFlagScope, line, id, "swap_hard row without hard_swap_flag")
	case row.Operator != dataset.OperatorSwapHard && row.HardSwapFlag != nil:
		s.fail(CheckHardSwapFlagScope, line, id, "hard_swap_flag on %s row", row.Operator)
	}

	if want, err := oracle.ActionFor(row.CorruptModality); err == nil && want != row.OracleAction {
		s.fail(CheckOracleActionConsistent, line, id, "modality %s expects %s, got %s", row.CorruptModality, want, row.OracleAction)
	}

	s.heldout(line, row)
}

func (s *checkState) heldout(line int, row dataset.VariantExample) {
	id := row.ExampleID
	switch row.Split {
	case dataset.SplitTestOODFamily:
		if !row.HeldoutFamilyFlag || row.HeldoutSeverityFlag {
			s.fail(CheckHeldoutFlagsConsistent, line, id, "test_ood_family row must carry only heldout_family_flag")
		}
		if s.expect.HeldOutFamily != "" && row.Family != s.expect.HeldOutFamily {
			s.fail(CheckHeldoutFlagsConsistent, line, id, "family %s is not the held-out family %s", row.Family, s.expect.HeldOutFamily)
		}
	case dataset.SplitTestOODSeverity:
		if row.HeldoutFamilyFlag || !row.HeldoutSeverityFlag {
			s.fail(CheckHeldoutFlagsConsistent, line, id, "test_ood_severity row must carry only heldout_severity_flag")
		}
		if row.CorruptModality == dataset.ModalityNone {
			s.fail(CheckHeldoutFlagsConsistent, line, id, "uncorrupted row in test_ood_severity")
		}
		if s.expect.HeldOutSeverity > 0 && row.Severity < s.expect.HeldOutSeverity {
			s.fail(CheckHeldoutFlagsConsistent, line, id, "severity %d below held-out severity %d", row.Severity, s.expect.HeldOutSeverity)
		}
	default:
		if row.HeldoutFamilyFlag || row.HeldoutSeverityFlag {
			s.fail(CheckHeldoutFlagsConsistent, line, id, "held-out flag set on %s row", row.Split)
		}
		if s.expect.HeldOutFamily != "" && row.Family == s.expect.HeldOutFamily {
			s.fail(CheckHeldoutFlagsConsistent, line, id, "held-out family row in %s", row.Split)
		}
	}
}

// recordSplit remembers the first example id seen for key in split.
func recordSplit[K comparable](seen map[K]map[dataset.Split]string, key K, split dataset.Split, id string) {
	splits, ok := seen[key]
	if !ok {
		splits = map[dataset.Split]string{}
		seen[key] = splits
	}
	if _, dup := splits[split]; !dup {
		splits[split] = id
	}
}

// overlap describes the in-distribution splits holding a key, or "" when there is at most one.
func overlap(splits map[dataset.Split]string) string {
	if len(splits) < 2 {
		return ""
	}
	names := make([]string, 0, len(splits))
	for _, split := range dataset.InDistributionSplits {
		if id, ok := splits[split]; ok {
			names = append(names, fmt.Sprintf("%s (%s)", split, id))
		}
	}
	return strings.Join(names, ", ")
}

func (s *checkState) finish(rows int) Report {
	images := make([]int64, 0, len(s.imageSplit))
	for image := range s.imageSplit {
		images = append(images, image)
	}
	sort.Slice(images, func(i, j int) bool { return images[i] < images[j] })
	for _, image := range images {
		if where := overlap(s.imageSplit[image]); where != "" {
			s.fail(CheckSourceImageSplitDisjoint, 0, "", "image %d appears in %s", image, where)
		}
	}

	report := Report{Rows: rows}
	if !s.expect.EnforceTemplateDisjointness {
		report.Skipped = []string{CheckTemplateSplitDisjoint}
	}
	templates := make([]string, 0, len(s.templateSplit))
	for template := range s.templateSplit {
		templates = append(templates, template)
	}
	sort.Strings(templates)
	for _, template := range templates {
		if where := overlap(s.templateSplit[template]); where != "" {
			s.fail(CheckTemplateSplitDisjoint, 0, "", "question template %s appears in %s", template, where)
		}
	}
	report.Violations = s.violations
	return report
}
