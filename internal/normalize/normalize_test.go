package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/family"
)

func newNormalizer(t *testing.T, active ...dataset.Family) Normalizer {
	t.Helper()
	rules, err := family.NewRules(family.DefaultLexicon())
	require.NoError(t, err)
	return New(rules, active)
}

func TestInferFamily(t *testing.T) {
	n := newNormalizer(t)
	cases := map[string]dataset.Family{
		"Is there a dog?":           dataset.FamilyExistence,
		"  ARE   there two cats?":   dataset.FamilyExistence,
		"How many cats?":            dataset.FamilyCount,
		"What color is the car?":    dataset.FamilyAttributeColor,
		"what   color are the bags": dataset.FamilyAttributeColor,
	}
	for question, want := range cases {
		got, err := n.InferFamily(question)
		require.NoError(t, err, question)
		assert.Equal(t, want, got, question)
	}

	for _, question := range []string{"Where is the ball?", "Island view?", "How much is it?"} {
		_, err := n.InferFamily(question)
		assert.ErrorIs(t, err, dataset.ErrFamilyUnmatched, question)
	}
}

func TestNormalizeAnswers(t *testing.T) {
	n := newNormalizer(t)
	cases := []struct {
		question string
		answer   string
		want     string
	}{
		{"Is there a dog?", "Y", "yes"},
		{"How many cats?", "3", "3"},
		{"How many cats?", "three", "3"},
		{"What color is the car?", "RED", "red"},
	}
	for _, tc := range cases {
		result, err := n.Normalize(dataset.RawQARecord{QuestionID: 1, ImageID: 1, QuestionText: tc.question, RawAnswer: tc.answer})
		require.NoError(t, err)
		assert.Equal(t, tc.want, result.GoldAnswer)
	}

	_, err := n.Normalize(dataset.RawQARecord{QuestionID: 2, QuestionText: "What color is the car?", RawAnswer: "teal"})
	assert.ErrorIs(t, err, dataset.ErrAnswerNormalizeFailed)

	reason, ok := dataset.ReasonFor(err)
	require.True(t, ok)
	assert.Equal(t, dataset.DropAnswerNormalizeFailed, reason)
}

func TestNormalizeRejectsInactiveFamily(t *testing.T) {
	n := newNormalizer(t, dataset.FamilyExistence)
	_, err := n.Normalize(dataset.RawQARecord{QuestionID: 3, QuestionText: "How many cats?", RawAnswer: "2"})
	assert.ErrorIs(t, err, dataset.ErrFamilyInactive)

	result, err := n.Normalize(dataset.RawQARecord{QuestionID: 4, QuestionText: "Is it a cat?", RawAnswer: "no"})
	require.NoError(t, err)
	assert.Equal(t, dataset.FamilyExistence, result.Family)
}
