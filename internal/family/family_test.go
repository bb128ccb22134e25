package family

import (
	"errors"
	"strings"
	"testing"

	"conflictsuite/internal/dataset"
)

func firstPick(int) int { return 0 }

func mustRules(t *testing.T) Rules {
	t.Helper()
	rules, err := NewRules(DefaultLexicon())
	if err != nil {
		t.Fatalf("new rules: %v", err)
	}
	return rules
}

func mustHandler(t *testing.T, f dataset.Family) Handler {
	t.Helper()
	handler, err := mustRules(t).For(f)
	if err != nil {
		t.Fatalf("handler for %s: %v", f, err)
	}
	return handler
}

// TestEveryFamilyHasHandler verifies the rule set is exhaustive over known families.
func TestEveryFamilyHasHandler(t *testing.T) {
	rules := mustRules(t)
	for _, f := range dataset.AllFamilies {
		handler, err := rules.For(f)
		if err != nil {
			t.Fatalf("missing handler for %s: %v", f, err)
		}
		if handler.Family() != f {
			t.Fatalf("handler for %s reports family %s", f, handler.Family())
		}
	}
	if _, err := rules.For(dataset.Family("relation")); err == nil {
		t.Fatalf("expected error for unknown family")
	}
}

// TestNormalizeAnswers covers the per-family normalization tables.
func TestNormalizeAnswers(t *testing.T) {
	cases := []struct {
		family dataset.Family
		raw    string
		want   string
		ok     bool
	}{
		{dataset.FamilyExistence, "Y", "yes", true},
		{dataset.FamilyExistence, " TRUE ", "yes", true},
		{dataset.FamilyExistence, "n", "no", true},
		{dataset.FamilyExistence, "maybe", "", false},
		{dataset.FamilyCount, "3", "3", true},
		{dataset.FamilyCount, "03", "3", true},
		{dataset.FamilyCount, "three", "3", true},
		{dataset.FamilyCount, "Twenty", "20", true},
		{dataset.FamilyCount, "a few", "", false},
		{dataset.FamilyAttributeColor, "Red", "red", true},
		{dataset.FamilyAttributeColor, "teal", "", false},
	}
	for _, tc := range cases {
		got, err := mustHandler(t, tc.family).NormalizeAnswer(tc.raw)
		if !tc.ok {
			if !errors.Is(err, dataset.ErrAnswerNormalizeFailed) {
				t.Fatalf("%s %q: expected normalize failure, got %q, %v", tc.family, tc.raw, got, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%s %q: expected %q, got %q (%v)", tc.family, tc.raw, tc.want, got, err)
		}
	}
}

// TestExistenceSupport verifies subject overlap supports yes and its absence supports no.
func TestExistenceSupport(t *testing.T) {
	handler := mustHandler(t, dataset.FamilyExistence)
	question := "Is there a dog?"
	if handler.Supports(question, "yes", "a red car") {
		t.Fatalf("caption without subject must not support yes")
	}
	if !handler.Supports(question, "yes", "two dogs") {
		t.Fatalf("plural subject should support yes")
	}
	if !handler.Supports(question, "no", "a red car") {
		t.Fatalf("absent subject should support no")
	}
	if handler.Supports("Is it?", "yes", "anything at all") {
		t.Fatalf("empty subject must support nothing")
	}
}

// TestCountSupport verifies digits and number words both count as evidence.
func TestCountSupport(t *testing.T) {
	handler := mustHandler(t, dataset.FamilyCount)
	if !handler.Supports("How many dogs?", "2", "Two dogs sit on grass.") {
		t.Fatalf("number word should support")
	}
	if !handler.Supports("How many dogs?", "12", "a pack of 12 dogs") {
		t.Fatalf("digits should support")
	}
	if handler.Supports("How many dogs?", "3", "two dogs and one cat") {
		t.Fatalf("missing value must not support")
	}
}

// TestColorSupportIsWholeWord verifies substrings do not match.
func TestColorSupportIsWholeWord(t *testing.T) {
	handler := mustHandler(t, dataset.FamilyAttributeColor)
	if !handler.Supports("What color is the car?", "red", "A Red car.") {
		t.Fatalf("expected case-insensitive whole-word match")
	}
	if handler.Supports("What color is the car?", "red", "a reddish car") {
		t.Fatalf("substring must not match")
	}
}

// TestExistenceEditFlipsNegation covers removal, insertion and prefix fallbacks.
func TestExistenceEditFlipsNegation(t *testing.T) {
	handler := mustHandler(t, dataset.FamilyExistence)
	cases := map[string]string{
		"A bicycle is next to a tree.":     "A bicycle is not next to a tree.",
		"The dog is not on the sofa.":      "The dog is on the sofa.",
		"Two bicycles leaning on a fence.": "not Two bicycles leaning on a fence.",
	}
	for input, want := range cases {
		if got := handler.EditText(input, "yes", firstPick); got != want {
			t.Fatalf("edit %q: expected %q, got %q", input, want, got)
		}
	}
}

// TestCountEditTargetsGoldToken verifies the gold-valued token is rewritten in its own form.
func TestCountEditTargetsGoldToken(t *testing.T) {
	handler := mustHandler(t, dataset.FamilyCount)
	if got := handler.EditText("Two dogs sit on grass.", "2", firstPick); got != "Three dogs sit on grass." {
		t.Fatalf("unexpected word edit %q", got)
	}
	if got := handler.EditText("2 dogs and 3 cats", "3", firstPick); got != "2 dogs and 4 cats" {
		t.Fatalf("unexpected digit edit %q", got)
	}
	got := handler.EditText("A dog on grass.", "1", firstPick)
	if !strings.HasSuffix(got, "There are 2 objects.") {
		t.Fatalf("expected fabricated clause, got %q", got)
	}
}

// TestColorEditReplacesColor verifies the replacement differs from the original and gold.
func TestColorEditReplacesColor(t *testing.T) {
	handler := mustHandler(t, dataset.FamilyAttributeColor)
	got := handler.EditText("A red car is parked.", "red", firstPick)
	if strings.Contains(got, "red") {
		t.Fatalf("expected red to be replaced, got %q", got)
	}
	if got != "A blue car is parked." {
		t.Fatalf("unexpected color edit %q", got)
	}
}

// TestColorEditRemovesGoldSupport verifies the gold color is rewritten wherever it appears,
// even behind another color or with a two-color vocabulary.
func TestColorEditRemovesGoldSupport(t *testing.T) {
	lex, err := NewLexicon([]string{"red", "blue"}, DefaultNumberWords, nil)
	if err != nil {
		t.Fatalf("new lexicon: %v", err)
	}
	twoColors, err := NewRules(lex)
	if err != nil {
		t.Fatalf("new rules: %v", err)
	}
	small, err := twoColors.For(dataset.FamilyAttributeColor)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	full := mustHandler(t, dataset.FamilyAttributeColor)

	cases := []struct {
		handler Handler
		text    string
		gold    string
		want    string
	}{
		{full, "A blue sky over a red car.", "red", "A blue sky over a blue car."},
		{full, "Red paint on a red car.", "red", "Blue paint on a blue car."},
		{small, "A blue bus by a red car.", "red", "A blue bus by a blue car."},
		{small, "A red bus.", "red", "A blue bus."},
	}
	for _, tc := range cases {
		got := tc.handler.EditText(tc.text, tc.gold, firstPick)
		if got != tc.want {
			t.Fatalf("edit %q: expected %q, got %q", tc.text, tc.want, got)
		}
		if tc.handler.Supports("what color is the car?", tc.gold, got) {
			t.Fatalf("edited %q still supports %s", got, tc.gold)
		}
	}
}

// TestColorEditWithoutGoldSwapsFirstColor verifies text lacking the gold color still changes.
func TestColorEditWithoutGoldSwapsFirstColor(t *testing.T) {
	handler := mustHandler(t, dataset.FamilyAttributeColor)
	if got := handler.EditText("A blue bus.", "red", firstPick); got != "A green bus." {
		t.Fatalf("unexpected edit %q", got)
	}
	if got := handler.EditText("A bus.", "red", firstPick); got != "A bus blue." {
		t.Fatalf("unexpected appended color %q", got)
	}
}

// TestCountEditRemovesGoldSupport verifies every mention of the gold count is rewritten.
func TestCountEditRemovesGoldSupport(t *testing.T) {
	handler := mustHandler(t, dataset.FamilyCount)
	cases := map[string]string{
		"Two dogs and 2 cats.":        "Three dogs and 3 cats.",
		"2 dogs, 2 cats and 5 birds.": "3 dogs, 3 cats and 5 birds.",
	}
	for input, want := range cases {
		got := handler.EditText(input, "2", firstPick)
		if got != want {
			t.Fatalf("edit %q: expected %q, got %q", input, want, got)
		}
		if handler.Supports("how many dogs?", "2", got) {
			t.Fatalf("edited %q still supports 2", got)
		}
	}
}

// TestNewLexiconRejectsMultiWordColor verifies the closed vocabulary is single-token.
func TestNewLexiconRejectsMultiWordColor(t *testing.T) {
	if _, err := NewLexicon([]string{"navy blue"}, DefaultNumberWords, nil); err == nil {
		t.Fatalf("expected error for multi-word color")
	}
}
