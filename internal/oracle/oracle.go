// Package oracle maps corruption metadata to the arbitration action a policy should take.
package oracle

import (
	"fmt"

	"conflictsuite/internal/dataset"
)

var actions = map[dataset.CorruptModality]dataset.Action{
	dataset.ModalityNone:   dataset.ActionRequireAgreement,
	dataset.ModalityText:   dataset.ActionTrustVision,
	dataset.ModalityVision: dataset.ActionTrustText,
	dataset.ModalityBoth:   dataset.ActionAbstain,
}

// ActionFor returns the action for a corruption modality.
func ActionFor(modality dataset.CorruptModality) (dataset.Action, error) {
	action, ok := actions[modality]
	if !ok {
		return "", fmt.Errorf("oracle: unknown corrupt modality %q", modality)
	}
	return action, nil
}

// Label returns a copy of v carrying its oracle action.
func Label(v dataset.VariantExample) (dataset.VariantExample, error) {
	action, err := ActionFor(v.CorruptModality)
	if err != nil {
		return dataset.VariantExample{}, fmt.Errorf("%s: %w", v.ExampleID, err)
	}
	return v.WithOracleAction(action), nil
}

// LabelAll labels every variant, returning new rows.
func LabelAll(rows []dataset.VariantExample) ([]dataset.VariantExample, error) {
	out := make([]dataset.VariantExample, 0, len(rows))
	for _, row := range rows {
		labeled, err := Label(row)
		if err != nil {
			return nil, err
		}
		out = append(out, labeled)
	}
	return out, nil
}
