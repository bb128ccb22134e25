package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/donor"
	"conflictsuite/internal/family"
)

func fixtureBases() []dataset.BaseExample {
	return []dataset.BaseExample{
		{ExampleID: "vqa-1", SourceImageID: 1, Family: dataset.FamilyExistence, QuestionText: "Is there a dog?", GoldAnswer: "yes", SupportCaptionText: "A dog is on a red sofa."},
		{ExampleID: "vqa-2", SourceImageID: 2, Family: dataset.FamilyExistence, QuestionText: "Is there a dog?", GoldAnswer: "yes", SupportCaptionText: "A dog near a red car."},
		{ExampleID: "vqa-3", SourceImageID: 3, Family: dataset.FamilyCount, QuestionText: "How many giraffes?", GoldAnswer: "2", SupportCaptionText: "Two giraffes by a tree."},
		{ExampleID: "vqa-4", SourceImageID: 4, Family: dataset.FamilyAttributeColor, QuestionText: "What color is the bus?", GoldAnswer: "yellow", SupportCaptionText: "A yellow bus on a street."},
	}
}

func newGenerator(t *testing.T, options Options) *Generator {
	t.Helper()
	rules, err := family.NewRules(family.DefaultLexicon())
	require.NoError(t, err)
	idx, err := donor.NewIndex(fixtureBases(), rules, options.Seed)
	require.NoError(t, err)
	return NewGenerator(rules, idx, options)
}

func byOperator(rows []dataset.VariantExample) map[string]dataset.VariantExample {
	out := map[string]dataset.VariantExample{}
	for _, row := range rows {
		out[row.ExampleID] = row
	}
	return out
}

func TestGenerateEmitsSevenVariants(t *testing.T) {
	gen := newGenerator(t, Options{Seed: 3, JaccardRange: donor.Range{Min: 0.2, Max: 0.7}})
	result, err := gen.Generate(fixtureBases()[0])
	require.NoError(t, err)
	require.Len(t, result.Variants, 7)
	assert.Equal(t, 7, gen.PerBase())

	rows := byOperator(result.Variants)
	require.Len(t, rows, 7, "variant ids must be unique")

	clean := rows["vqa-1::clean"]
	assert.Equal(t, dataset.ModalityNone, clean.CorruptModality)
	assert.Equal(t, 0, clean.Severity)
	assert.Equal(t, "A dog is on a red sofa.", clean.TextInput)
	assert.Nil(t, clean.HardSwapFlag)

	hard := rows["vqa-1::swap_hard"]
	assert.True(t, hard.HardSwapSatisfied())
	assert.Equal(t, "A dog near a red car.", hard.TextInput)

	edit := rows["vqa-1::text_edit"]
	assert.Equal(t, "A dog is not on a red sofa.", edit.TextInput)
	assert.Equal(t, dataset.ModalityText, edit.CorruptModality)

	for severity := 1; severity <= 3; severity++ {
		row, ok := rows[dataset.VariantID("vqa-1", dataset.OperatorVisionCorrupt, severity)]
		require.True(t, ok)
		assert.Equal(t, severity, row.Severity)
		assert.Equal(t, DefaultCorruptionFamily, row.CorruptionFamily)
		assert.NotEmpty(t, row.CorruptionSeedKey)
		assert.Equal(t, dataset.ModalityVision, row.CorruptModality)
	}
	assert.Empty(t, result.Fallbacks)
}

func TestHardSwapFallsBackToEasyDonor(t *testing.T) {
	gen := newGenerator(t, Options{Seed: 11, JaccardRange: donor.Range{Min: 0.2, Max: 0.7}})
	result, err := gen.Generate(fixtureBases()[2])
	require.NoError(t, err)

	rows := byOperator(result.Variants)
	easy := rows["vqa-3::swap_easy"]
	hard := rows["vqa-3::swap_hard"]
	assert.Equal(t, dataset.OperatorSwapHard, hard.Operator)
	require.NotNil(t, hard.HardSwapFlag)
	assert.False(t, *hard.HardSwapFlag)
	assert.Equal(t, easy.TextInput, hard.TextInput)
	assert.NotEqual(t, "Two giraffes by a tree.", easy.TextInput)
	assert.Equal(t, []dataset.FallbackReason{dataset.FallbackDonorSearchExhausted}, result.Fallbacks)
}

func TestEnableBothAddsAbstainCandidate(t *testing.T) {
	gen := newGenerator(t, Options{Seed: 5, JaccardRange: donor.Range{Min: 0.2, Max: 0.7}, EnableBoth: true})
	result, err := gen.Generate(fixtureBases()[3])
	require.NoError(t, err)
	require.Len(t, result.Variants, 8)

	both := byOperator(result.Variants)["vqa-4::both"]
	assert.Equal(t, dataset.ModalityBoth, both.CorruptModality)
	assert.Equal(t, dataset.MaxSeverity, both.Severity)
	assert.NotContains(t, both.TextInput, "yellow")
	assert.NotEmpty(t, both.CorruptionSeedKey)
}

func TestGenerateIsDeterministic(t *testing.T) {
	options := Options{Seed: 21, JaccardRange: donor.Range{Min: 0.2, Max: 0.7}}
	first := newGenerator(t, options)
	second := newGenerator(t, options)
	for _, base := range fixtureBases() {
		a, err := first.Generate(base)
		require.NoError(t, err)
		b, err := second.Generate(base)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestGenerateUsesConfiguredSeverities(t *testing.T) {
	gen := newGenerator(t, Options{Seed: 3, Severities: []int{2, 1, 2}, EnableBoth: true})
	assert.Equal(t, 7, gen.PerBase())

	result, err := gen.Generate(fixtureBases()[3])
	require.NoError(t, err)
	require.Len(t, result.Variants, 7)
	rows := byOperator(result.Variants)
	assert.Contains(t, rows, "vqa-4::vision_corrupt:1")
	assert.Contains(t, rows, "vqa-4::vision_corrupt:2")
	assert.NotContains(t, rows, "vqa-4::vision_corrupt:3")
	assert.Equal(t, 2, rows["vqa-4::both"].Severity)
}
