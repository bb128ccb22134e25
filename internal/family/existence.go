package family

import (
	"regexp"
	"strings"

	"conflictsuite/internal/dataset"
)

var (
	existencePrefix = regexp.MustCompile(`^(is|are)\b`)
	negationWord    = regexp.MustCompile(`(?i)\bnot\b`)
	auxiliaryVerb   = regexp.MustCompile(`(?i)\b(is|are|was|were|has|have|do|does|did|can)\b`)
)

type existence struct {
	lex *Lexicon
}

func (existence) Family() dataset.Family         { return dataset.FamilyExistence }
func (existence) AnswerType() dataset.AnswerType { return dataset.AnswerBoolean }

func (existence) MatchesQuestion(normalized string) bool {
	return existencePrefix.MatchString(normalized)
}

func (existence) NormalizeAnswer(raw string) (string, error) {
	switch NormalizeText(raw) {
	case "yes", "y", "true":
		return "yes", nil
	case "no", "n", "false":
		return "no", nil
	default:
		return "", dataset.ErrAnswerNormalizeFailed
	}
}

// Supports treats subject-token overlap as evidence for "yes" and its absence as evidence for
// "no". The "no" direction is an approximation: absence from a caption is not verified absence
// from the image.
func (e existence) Supports(question, gold, caption string) bool {
	subject := e.lex.ContentTokens(question)
	if len(subject) == 0 {
		return false
	}
	overlap := false
	for _, token := range Tokenize(caption) {
		if _, ok := subject[FoldPlural(token.Text)]; ok {
			overlap = true
			break
		}
	}
	if gold == "yes" {
		return overlap
	}
	return !overlap
}

func (existence) EditText(text, _ string, _ Picker) string {
	if loc := negationWord.FindStringIndex(text); loc != nil {
		edited := text[:loc[0]] + text[loc[1]:]
		return strings.Join(strings.Fields(edited), " ")
	}
	if loc := auxiliaryVerb.FindStringIndex(text); loc != nil {
		return text[:loc[1]] + " not" + text[loc[1]:]
	}
	return "not " + text
}
