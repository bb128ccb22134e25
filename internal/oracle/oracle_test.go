package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conflictsuite/internal/dataset"
)

func TestActionTable(t *testing.T) {
	cases := map[dataset.CorruptModality]dataset.Action{
		dataset.ModalityNone:   dataset.ActionRequireAgreement,
		dataset.ModalityText:   dataset.ActionTrustVision,
		dataset.ModalityVision: dataset.ActionTrustText,
		dataset.ModalityBoth:   dataset.ActionAbstain,
	}
	for modality, want := range cases {
		got, err := ActionFor(modality)
		require.NoError(t, err)
		assert.Equal(t, want, got, modality)
	}
	_, err := ActionFor("audio")
	assert.Error(t, err)
}

func TestLabelDoesNotMutateInput(t *testing.T) {
	rows := []dataset.VariantExample{
		{ExampleID: "vqa-1::clean", CorruptModality: dataset.ModalityNone},
		{ExampleID: "vqa-1::swap_easy", CorruptModality: dataset.ModalityText},
	}
	labeled, err := LabelAll(rows)
	require.NoError(t, err)
	assert.Equal(t, dataset.ActionRequireAgreement, labeled[0].OracleAction)
	assert.Equal(t, dataset.ActionTrustVision, labeled[1].OracleAction)
	assert.Empty(t, rows[0].OracleAction)
}
