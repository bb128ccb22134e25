package family

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultColors is the closed color vocabulary used when none is configured.
var DefaultColors = []string{"red", "blue", "green", "yellow", "black", "white", "brown", "gray", "orange", "pink", "purple"}

// DefaultNumberWords maps number words to values, zero through twenty.
var DefaultNumberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
}

// DefaultStopWords are removed before subject and noun token comparisons.
var DefaultStopWords = []string{
	"a", "an", "the", "is", "are", "was", "were", "there", "this", "that", "these", "those",
	"on", "in", "at", "of", "to", "for", "with", "and", "or", "any", "some",
	"how", "many", "what", "color", "colour", "image", "picture", "photo",
}

// Lexicon holds the closed vocabularies consulted by family rules. It is immutable after
// construction and safe for concurrent use.
type Lexicon struct {
	colors       []string
	colorSet     map[string]struct{}
	numberWords  map[string]int
	wordForValue map[int]string
	stopWords    map[string]struct{}
}

// NewLexicon validates and indexes the vocabularies.
func NewLexicon(colors []string, numberWords map[string]int, stopWords []string) (*Lexicon, error) {
	lex := &Lexicon{
		colorSet:     map[string]struct{}{},
		numberWords:  map[string]int{},
		wordForValue: map[int]string{},
		stopWords:    map[string]struct{}{},
	}
	for _, color := range colors {
		normalized := NormalizeText(color)
		if normalized == "" || strings.Contains(normalized, " ") {
			return nil, fmt.Errorf("color %q must be a single word", color)
		}
		if _, dup := lex.colorSet[normalized]; dup {
			continue
		}
		lex.colorSet[normalized] = struct{}{}
		lex.colors = append(lex.colors, normalized)
	}
	words := make([]string, 0, len(numberWords))
	for word := range numberWords {
		words = append(words, word)
	}
	sort.Strings(words)
	for _, word := range words {
		value := numberWords[word]
		normalized := NormalizeText(word)
		if normalized == "" || strings.Contains(normalized, " ") {
			return nil, fmt.Errorf("number word %q must be a single word", word)
		}
		if value < 0 {
			return nil, fmt.Errorf("number word %q has negative value %d", word, value)
		}
		lex.numberWords[normalized] = value
		if _, taken := lex.wordForValue[value]; !taken {
			lex.wordForValue[value] = normalized
		}
	}
	for _, word := range stopWords {
		lex.stopWords[NormalizeText(word)] = struct{}{}
	}
	return lex, nil
}

// DefaultLexicon returns the lexicon built from the package defaults.
func DefaultLexicon() *Lexicon {
	lex, err := NewLexicon(DefaultColors, DefaultNumberWords, DefaultStopWords)
	if err != nil {
		panic(err)
	}
	return lex
}

// Colors returns the color vocabulary in configured order.
func (l *Lexicon) Colors() []string {
	return append([]string(nil), l.colors...)
}

// IsColor reports whether token is a vocabulary color.
func (l *Lexicon) IsColor(token string) bool {
	_, ok := l.colorSet[token]
	return ok
}

// NumberValue returns the value of a digit string or number word.
func (l *Lexicon) NumberValue(token string) (int, bool) {
	if isDigits(token) {
		return parseDigits(token)
	}
	value, ok := l.numberWords[token]
	return value, ok
}

// NumberWord returns the number word for value, if the table has one.
func (l *Lexicon) NumberWord(value int) (string, bool) {
	word, ok := l.wordForValue[value]
	return word, ok
}

// IsStopWord reports whether token is a stop word.
func (l *Lexicon) IsStopWord(token string) bool {
	_, ok := l.stopWords[token]
	return ok
}

// ContentTokens returns the plural-folded tokens of text that are not stop words and are
// longer than two runes.
func (l *Lexicon) ContentTokens(text string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, token := range Tokenize(text) {
		if l.IsStopWord(token.Text) || len([]rune(token.Text)) <= 2 {
			continue
		}
		out[FoldPlural(token.Text)] = struct{}{}
	}
	return out
}
