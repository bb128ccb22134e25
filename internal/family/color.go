package family

import (
	"regexp"
	"strings"

	"conflictsuite/internal/dataset"
)

var colorPrefix = regexp.MustCompile(`^what color\b`)

type color struct {
	lex *Lexicon
}

func (color) Family() dataset.Family         { return dataset.FamilyAttributeColor }
func (color) AnswerType() dataset.AnswerType { return dataset.AnswerColor }

func (color) MatchesQuestion(normalized string) bool {
	return colorPrefix.MatchString(normalized)
}

func (c color) NormalizeAnswer(raw string) (string, error) {
	normalized := NormalizeText(raw)
	if !c.lex.IsColor(normalized) {
		return "", dataset.ErrAnswerNormalizeFailed
	}
	return normalized, nil
}

func (color) Supports(_, gold, caption string) bool {
	for _, token := range Tokenize(caption) {
		if token.Text == gold {
			return true
		}
	}
	return false
}

// EditText rewrites every mention of the gold color to one other vocabulary color. Text that
// does not mention the gold color has its first color swapped instead, and text without any
// color gets one appended.
func (c color) EditText(text, gold string, pick Picker) string {
	tokens := Tokenize(text)
	var targets []Token
	for _, token := range tokens {
		if token.Text == gold {
			targets = append(targets, token)
		}
	}
	current := gold
	if len(targets) == 0 {
		for _, token := range tokens {
			if c.lex.IsColor(token.Text) {
				targets, current = []Token{token}, token.Text
				break
			}
		}
	}
	alternatives := c.alternatives(current, gold)
	if len(alternatives) == 0 {
		return text
	}
	replacement := alternatives[pick(len(alternatives))]
	if len(targets) == 0 {
		return strings.TrimRight(text, ". ") + " " + replacement + "."
	}
	for i := len(targets) - 1; i >= 0; i-- {
		target := targets[i]
		text = replaceSpan(text, target.Start, target.End, matchCase(text[target.Start:target.End], replacement))
	}
	return text
}

func (c color) alternatives(current, gold string) []string {
	var out []string
	for _, candidate := range c.lex.Colors() {
		if candidate != current && candidate != gold {
			out = append(out, candidate)
		}
	}
	return out
}
