package family

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"conflictsuite/internal/dataset"
)

var countPrefix = regexp.MustCompile(`^how many\b`)

// maxDigitEdit bounds digit replacements so edits stay plausible counts.
const maxDigitEdit = 99

type count struct {
	lex *Lexicon
}

func (count) Family() dataset.Family         { return dataset.FamilyCount }
func (count) AnswerType() dataset.AnswerType { return dataset.AnswerInteger }

func (count) MatchesQuestion(normalized string) bool {
	return countPrefix.MatchString(normalized)
}

func (c count) NormalizeAnswer(raw string) (string, error) {
	normalized := NormalizeText(raw)
	value, ok := c.lex.NumberValue(normalized)
	if !ok {
		return "", dataset.ErrAnswerNormalizeFailed
	}
	return strconv.Itoa(value), nil
}

// Numbers returns the set of values written as digits or number words in text.
func (c count) Numbers(text string) map[int]struct{} {
	out := map[int]struct{}{}
	for _, token := range Tokenize(text) {
		if value, ok := c.lex.NumberValue(token.Text); ok {
			out[value] = struct{}{}
		}
	}
	return out
}

func (c count) Supports(_, gold, caption string) bool {
	want, err := strconv.Atoi(gold)
	if err != nil {
		return false
	}
	_, ok := c.Numbers(caption)[want]
	return ok
}

// EditText rewrites every number token carrying the gold value, keeping each token's surface
// form. Text that never states the gold value has its first number rewritten instead, and text
// without numbers gets a fabricated clause.
func (c count) EditText(text, gold string, _ Picker) string {
	want, err := strconv.Atoi(gold)
	if err != nil {
		want = -1
	}
	var targets []Token
	var first *Token
	tokens := Tokenize(text)
	for i := range tokens {
		value, ok := c.lex.NumberValue(tokens[i].Text)
		if !ok {
			continue
		}
		if first == nil {
			first = &tokens[i]
		}
		if value == want {
			targets = append(targets, tokens[i])
		}
	}
	if len(targets) == 0 {
		if first == nil {
			return fmt.Sprintf("%s. There are %d objects.", strings.TrimRight(text, ". "), fabricatedCount(want))
		}
		targets = []Token{*first}
	}
	for i := len(targets) - 1; i >= 0; i-- {
		target := targets[i]
		text = replaceSpan(text, target.Start, target.End, c.rewriteNumber(text[target.Start:target.End], want))
	}
	return text
}

// rewriteNumber returns a different count than both the token's value and gold, written as
// digits or as a number word like the original token.
func (c count) rewriteNumber(original string, gold int) string {
	value, _ := c.lex.NumberValue(strings.ToLower(original))
	if isDigits(original) {
		return strconv.Itoa(differentValue(value, gold, func(v int) bool { return v >= 0 && v <= maxDigitEdit }))
	}
	replacement := differentValue(value, gold, func(v int) bool {
		_, ok := c.lex.NumberWord(v)
		return ok
	})
	word, ok := c.lex.NumberWord(replacement)
	if !ok {
		return strconv.Itoa(replacement)
	}
	return matchCase(original, word)
}

// differentValue walks outward from n (n+1, n-1, n+2, ...) to the first allowed value that
// differs from both n and gold.
func differentValue(n, gold int, allowed func(int) bool) int {
	for step := 1; step <= maxDigitEdit+1; step++ {
		for _, candidate := range []int{n + step, n - step} {
			if candidate != gold && candidate != n && allowed(candidate) {
				return candidate
			}
		}
	}
	return n + 1
}

func fabricatedCount(gold int) int {
	if gold < 0 {
		return 3
	}
	return gold + 1
}

// matchCase capitalizes word when original starts with an upper-case letter.
func matchCase(original, word string) string {
	if original == "" || word == "" {
		return word
	}
	first := original[:1]
	if strings.ToUpper(first) == first && strings.ToLower(first) != first {
		return strings.ToUpper(word[:1]) + word[1:]
	}
	return word
}
