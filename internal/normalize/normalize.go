// Package normalize classifies raw questions into families and canonicalizes their answers.
package normalize

import (
	"fmt"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/family"
)

// Result is a raw record that passed family inference and answer normalization.
type Result struct {
	Record     dataset.RawQARecord
	Family     dataset.Family
	GoldAnswer string
}

// Normalizer is safe for concurrent use.
type Normalizer struct {
	rules  family.Rules
	active map[dataset.Family]struct{}
}

// New returns a normalizer restricted to the active families. An empty active list enables all.
func New(rules family.Rules, active []dataset.Family) Normalizer {
	set := map[dataset.Family]struct{}{}
	if len(active) == 0 {
		active = dataset.AllFamilies
	}
	for _, f := range active {
		set[f] = struct{}{}
	}
	return Normalizer{rules: rules, active: set}
}

// InferFamily returns the first family whose question pattern matches, in canonical order.
func (n Normalizer) InferFamily(question string) (dataset.Family, error) {
	normalized := family.NormalizeText(question)
	for _, f := range dataset.AllFamilies {
		handler, err := n.rules.For(f)
		if err != nil {
			return "", err
		}
		if handler.MatchesQuestion(normalized) {
			return f, nil
		}
	}
	return "", dataset.ErrFamilyUnmatched
}

// Normalize infers the record's family and normalizes its answer. Rejections wrap one of the
// dataset drop errors.
func (n Normalizer) Normalize(record dataset.RawQARecord) (Result, error) {
	f, err := n.InferFamily(record.QuestionText)
	if err != nil {
		return Result{}, fmt.Errorf("question %d: %w", record.QuestionID, err)
	}
	if _, ok := n.active[f]; !ok {
		return Result{}, fmt.Errorf("question %d (%s): %w", record.QuestionID, f, dataset.ErrFamilyInactive)
	}
	handler, err := n.rules.For(f)
	if err != nil {
		return Result{}, err
	}
	gold, err := handler.NormalizeAnswer(record.RawAnswer)
	if err != nil {
		return Result{}, fmt.Errorf("question %d answer %q: %w", record.QuestionID, record.RawAnswer, err)
	}
	return Result{Record: record, Family: f, GoldAnswer: gold}, nil
}
