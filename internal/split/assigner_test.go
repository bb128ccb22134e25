package split

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conflictsuite/internal/dataset"
)

func bases(images int) []dataset.BaseExample {
	var out []dataset.BaseExample
	for i := 0; i < images; i++ {
		// Two questions per image.
		for q := 0; q < 2; q++ {
			out = append(out, dataset.BaseExample{
				ExampleID:     fmt.Sprintf("vqa-%d", i*10+q),
				SourceImageID: int64(i),
				Family:        dataset.AllFamilies[i%len(dataset.AllFamilies)],
			})
		}
	}
	return out
}

func TestAssignImagesPartitionsByRatio(t *testing.T) {
	images := make([]int64, 20)
	for i := range images {
		images[i] = int64(i + 100)
	}
	assigned := AssignImages(images, 1, DefaultRatios)
	counts := map[dataset.Split]int{}
	for _, split := range assigned {
		counts[split]++
	}
	assert.Equal(t, 14, counts[dataset.SplitTrain])
	assert.Equal(t, 3, counts[dataset.SplitVal])
	assert.Equal(t, 3, counts[dataset.SplitTestID])
}

func TestAssignImagesIgnoresInputOrder(t *testing.T) {
	forward := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	backward := []int64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	assert.Equal(t, AssignImages(forward, 42, DefaultRatios), AssignImages(backward, 42, DefaultRatios))
}

func TestVariantsOfOneImageShareBaseSplit(t *testing.T) {
	assigner := NewAssigner(Policy{Seed: 3, Ratios: DefaultRatios, HeldOutSeverity: 3}, bases(30))
	perImage := map[int64]dataset.Split{}
	for _, b := range bases(30) {
		for _, op := range []dataset.Operator{dataset.OperatorClean, dataset.OperatorSwapEasy} {
			modality := dataset.ModalityNone
			severity := 0
			if op != dataset.OperatorClean {
				modality, severity = dataset.ModalityText, 1
			}
			row, err := assigner.Assign(dataset.VariantExample{
				ExampleID: dataset.VariantID(b.ExampleID, op, 0), SourceImageID: b.SourceImageID,
				Family: b.Family, Operator: op, CorruptModality: modality, Severity: severity,
			})
			require.NoError(t, err)
			require.True(t, row.Split.IsInDistribution())
			if prev, ok := perImage[b.SourceImageID]; ok {
				assert.Equal(t, prev, row.Split)
			}
			perImage[b.SourceImageID] = row.Split
		}
	}
}

func TestFamilyOverrideWinsOverSeverity(t *testing.T) {
	assigner := NewAssigner(Policy{
		Seed: 1, Ratios: DefaultRatios,
		HeldOutFamily: dataset.FamilyCount, HeldOutSeverity: 2,
	}, bases(3))

	row, err := assigner.Assign(dataset.VariantExample{
		ExampleID: "vqa-10::vision_corrupt:3", SourceImageID: 1, Family: dataset.FamilyCount,
		Operator: dataset.OperatorVisionCorrupt, CorruptModality: dataset.ModalityVision, Severity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, dataset.SplitTestOODFamily, row.Split)
	assert.True(t, row.HeldoutFamilyFlag)
	assert.False(t, row.HeldoutSeverityFlag)

	row, err = assigner.Assign(dataset.VariantExample{
		ExampleID: "vqa-0::vision_corrupt:2", SourceImageID: 0, Family: dataset.FamilyExistence,
		Operator: dataset.OperatorVisionCorrupt, CorruptModality: dataset.ModalityVision, Severity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, dataset.SplitTestOODSeverity, row.Split)
	assert.True(t, row.HeldoutSeverityFlag)

	row, err = assigner.Assign(dataset.VariantExample{
		ExampleID: "vqa-0::vision_corrupt:1", SourceImageID: 0, Family: dataset.FamilyExistence,
		Operator: dataset.OperatorVisionCorrupt, CorruptModality: dataset.ModalityVision, Severity: 1,
	})
	require.NoError(t, err)
	assert.True(t, row.Split.IsInDistribution())
	assert.False(t, row.HeldoutFamilyFlag || row.HeldoutSeverityFlag)
}

func TestHardSwapOverride(t *testing.T) {
	hard := dataset.VariantExample{
		ExampleID: "vqa-0::swap_hard", SourceImageID: 0, Family: dataset.FamilyExistence,
		Operator: dataset.OperatorSwapHard, CorruptModality: dataset.ModalityText, Severity: 1,
	}.WithHardSwapFlag(true)

	disabled := NewAssigner(Policy{Seed: 1, Ratios: DefaultRatios, HeldOutSeverity: 3}, bases(3))
	row, err := disabled.Assign(hard)
	require.NoError(t, err)
	assert.True(t, row.Split.IsInDistribution())

	enabled := NewAssigner(Policy{Seed: 1, Ratios: DefaultRatios, HeldOutSeverity: 3, EnableHardSwapOOD: true}, bases(3))
	row, err = enabled.Assign(hard)
	require.NoError(t, err)
	assert.Equal(t, dataset.SplitTestOODHardSwap, row.Split)

	row, err = enabled.Assign(hard.WithHardSwapFlag(false))
	require.NoError(t, err)
	assert.True(t, row.Split.IsInDistribution())
}

func TestAssignRejectsUnknownImage(t *testing.T) {
	assigner := NewAssigner(Policy{Seed: 1, Ratios: DefaultRatios, HeldOutSeverity: 3}, bases(2))
	_, err := assigner.Assign(dataset.VariantExample{ExampleID: "x", SourceImageID: 999})
	assert.Error(t, err)
}
