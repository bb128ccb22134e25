// Package family holds the per-family rule sets: question matching, answer normalization,
// caption support and answer-bearing text edits.
//
// Every family in dataset.AllFamilies must have exactly one handler; NewRules fails otherwise,
// so a family added without rules is caught at startup and by the package tests.
package family

import (
	"fmt"

	"conflictsuite/internal/dataset"
)

// Picker returns a deterministic index in [0, n). n is always positive.
type Picker func(n int) int

// Handler is the rule set for one family.
type Handler interface {
	// Family returns the family the handler serves.
	Family() dataset.Family
	// AnswerType returns the donor bucket of the family's answers.
	AnswerType() dataset.AnswerType
	// MatchesQuestion reports whether a normalized question belongs to the family.
	MatchesQuestion(normalized string) bool
	// NormalizeAnswer returns the canonical gold answer or dataset.ErrAnswerNormalizeFailed.
	NormalizeAnswer(raw string) (string, error)
	// Supports reports whether caption is evidence for gold.
	Supports(question, gold, caption string) bool
	// EditText perturbs the answer-bearing content of text.
	EditText(text, gold string, pick Picker) string
}

// Rules resolves handlers by family.
type Rules struct {
	lexicon  *Lexicon
	handlers map[dataset.Family]Handler
}

// NewRules builds one handler per known family.
func NewRules(lex *Lexicon) (Rules, error) {
	if lex == nil {
		return Rules{}, fmt.Errorf("family: lexicon is nil")
	}
	rules := Rules{lexicon: lex, handlers: map[dataset.Family]Handler{}}
	for _, f := range dataset.AllFamilies {
		handler, err := newHandler(f, lex)
		if err != nil {
			return Rules{}, err
		}
		rules.handlers[f] = handler
	}
	return rules, nil
}

func newHandler(f dataset.Family, lex *Lexicon) (Handler, error) {
	switch f {
	case dataset.FamilyExistence:
		return existence{lex: lex}, nil
	case dataset.FamilyCount:
		return count{lex: lex}, nil
	case dataset.FamilyAttributeColor:
		return color{lex: lex}, nil
	default:
		return nil, fmt.Errorf("family: no rules for %q", f)
	}
}

// For returns the handler for f.
func (r Rules) For(f dataset.Family) (Handler, error) {
	handler, ok := r.handlers[f]
	if !ok {
		return nil, fmt.Errorf("family: no rules for %q", f)
	}
	return handler, nil
}

// Lexicon returns the vocabularies the rules were built with.
func (r Rules) Lexicon() *Lexicon {
	return r.lexicon
}
