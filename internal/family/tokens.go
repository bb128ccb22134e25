package family

import (
	"regexp"
	"strconv"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Token is a lower-cased word with its byte span in the source text.
type Token struct {
	Text  string
	Start int
	End   int
}

// Tokenize splits text into alphanumeric tokens.
func Tokenize(text string) []Token {
	spans := tokenPattern.FindAllStringIndex(text, -1)
	out := make([]Token, 0, len(spans))
	for _, span := range spans {
		out = append(out, Token{
			Text:  strings.ToLower(text[span[0]:span[1]]),
			Start: span[0],
			End:   span[1],
		})
	}
	return out
}

// NormalizeText lower-cases text and collapses runs of whitespace.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// FoldPlural maps simple English plurals onto their singular form.
func FoldPlural(token string) string {
	n := len(token)
	switch {
	case n > 4 && strings.HasSuffix(token, "ies"):
		return token[:n-3] + "y"
	case n > 3 && strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") && !strings.HasSuffix(token, "us"):
		return token[:n-1]
	default:
		return token
	}
}

// replaceSpan substitutes text[start:end] with replacement.
func replaceSpan(text string, start, end int, replacement string) string {
	return text[:start] + replacement + text[end:]
}

func isDigits(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseDigits(token string) (int, bool) {
	value, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return value, true
}
