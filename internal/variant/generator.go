// Package variant expands base examples into labeled perturbation variants.
package variant

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/donor"
	"conflictsuite/internal/family"
)

// DefaultCorruptionFamily is the vision corruption declared when none is configured.
const DefaultCorruptionFamily = "occlusion"

// Options tunes generation.
type Options struct {
	Seed             int64
	JaccardRange     donor.Range
	CorruptionFamily string
	// Severities are the vision_corrupt levels generated per base; empty means 1 through
	// dataset.MaxSeverity.
	Severities []int
	EnableBoth bool
}

// Result holds the variants of one base example and any fallbacks taken producing them.
type Result struct {
	Variants  []dataset.VariantExample
	Fallbacks []dataset.FallbackReason
}

// Generator is safe for concurrent use once built.
type Generator struct {
	rules   family.Rules
	index   *donor.Index
	options Options
}

// NewGenerator returns a generator reading donors from index.
func NewGenerator(rules family.Rules, index *donor.Index, options Options) *Generator {
	if options.CorruptionFamily == "" {
		options.CorruptionFamily = DefaultCorruptionFamily
	}
	options.Severities = uniqueSeverities(options.Severities)
	return &Generator{rules: rules, index: index, options: options}
}

// PerBase returns how many variants each base example yields.
func (g *Generator) PerBase() int {
	n := 4 + len(g.options.Severities)
	if g.options.EnableBoth {
		n++
	}
	return n
}

// Generate emits the variants of base in a fixed operator order. Oracle action and split are
// left empty for the later stages.
func (g *Generator) Generate(base dataset.BaseExample) (Result, error) {
	handler, err := g.rules.For(base.Family)
	if err != nil {
		return Result{}, err
	}
	var result Result

	easyText := base.SupportCaptionText
	if easy, ok := g.index.EasyDonor(base); ok {
		easyText = easy.CaptionText
	} else {
		result.Fallbacks = append(result.Fallbacks, dataset.FallbackEasyPoolEmpty)
	}

	hardText, hardOK := easyText, false
	hard, err := g.index.HardDonor(base, g.options.JaccardRange)
	switch {
	case err == nil:
		hardText, hardOK = hard.CaptionText, true
	case errors.Is(err, donor.ErrDonorSearchExhausted):
		result.Fallbacks = append(result.Fallbacks, dataset.FallbackDonorSearchExhausted)
	default:
		return Result{}, fmt.Errorf("generate %s: %w", base.ExampleID, err)
	}

	edited := handler.EditText(base.SupportCaptionText, base.GoldAnswer, g.picker(base, dataset.OperatorTextEdit))

	result.Variants = append(result.Variants,
		g.variant(base, dataset.OperatorClean, dataset.ModalityNone, 0, base.SupportCaptionText),
		g.variant(base, dataset.OperatorSwapEasy, dataset.ModalityText, 1, easyText),
		g.variant(base, dataset.OperatorSwapHard, dataset.ModalityText, 1, hardText).WithHardSwapFlag(hardOK),
		g.variant(base, dataset.OperatorTextEdit, dataset.ModalityText, 1, edited),
	)
	for _, severity := range g.options.Severities {
		result.Variants = append(result.Variants, g.vision(g.variant(base, dataset.OperatorVisionCorrupt, dataset.ModalityVision, severity, base.SupportCaptionText)))
	}
	if g.options.EnableBoth {
		top := g.options.Severities[len(g.options.Severities)-1]
		result.Variants = append(result.Variants, g.vision(g.variant(base, dataset.OperatorBoth, dataset.ModalityBoth, top, edited)))
	}
	return result, nil
}

func (g *Generator) variant(base dataset.BaseExample, op dataset.Operator, modality dataset.CorruptModality, severity int, text string) dataset.VariantExample {
	return dataset.VariantExample{
		ExampleID:       dataset.VariantID(base.ExampleID, op, severity),
		BaseID:          base.ExampleID,
		SourceImageID:   base.SourceImageID,
		Family:          base.Family,
		Operator:        op,
		CorruptModality: modality,
		Severity:        severity,
		TextInput:       text,
		QuestionText:    base.QuestionText,
		GoldAnswer:      base.GoldAnswer,
	}
}

// vision attaches the metadata the materialization tool consumes.
func (g *Generator) vision(v dataset.VariantExample) dataset.VariantExample {
	v.CorruptionFamily = g.options.CorruptionFamily
	v.CorruptionSeedKey = dataset.SeedKey(g.options.Seed, v.BaseID, g.options.CorruptionFamily, strconv.Itoa(v.Severity))
	return v
}

func (g *Generator) picker(base dataset.BaseExample, op dataset.Operator) family.Picker {
	return func(n int) int {
		return dataset.SeedPick(n, g.options.Seed, base.ExampleID, string(op))
	}
}

// uniqueSeverities returns the sorted distinct severities, defaulting to every level.
func uniqueSeverities(severities []int) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, severity := range severities {
		if _, dup := seen[severity]; dup {
			continue
		}
		seen[severity] = struct{}{}
		out = append(out, severity)
	}
	if len(out) == 0 {
		for severity := 1; severity <= dataset.MaxSeverity; severity++ {
			out = append(out, severity)
		}
	}
	sort.Ints(out)
	return out
}
