package donor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/family"
)

var defaultRange = Range{Min: 0.2, Max: 0.7}

func base(id string, image int64, f dataset.Family, caption string) dataset.BaseExample {
	return dataset.BaseExample{ExampleID: id, SourceImageID: image, Family: f, SupportCaptionText: caption}
}

func fixtureBases() []dataset.BaseExample {
	return []dataset.BaseExample{
		base("vqa-1", 1, dataset.FamilyExistence, "a dog on a red sofa"),
		base("vqa-2", 2, dataset.FamilyExistence, "a dog near a red car"),
		base("vqa-3", 3, dataset.FamilyExistence, "a tall giraffe"),
		base("vqa-4", 1, dataset.FamilyExistence, "a dog on a red sofa"),
		base("vqa-5", 4, dataset.FamilyCount, "two dogs on a red sofa"),
	}
}

func newIndex(t *testing.T, bases []dataset.BaseExample, seed int64) *Index {
	t.Helper()
	rules, err := family.NewRules(family.DefaultLexicon())
	require.NoError(t, err)
	idx, err := NewIndex(bases, rules, seed)
	require.NoError(t, err)
	return idx
}

func TestJaccard(t *testing.T) {
	set := func(tokens ...string) map[string]struct{} {
		out := map[string]struct{}{}
		for _, token := range tokens {
			out[token] = struct{}{}
		}
		return out
	}
	assert.Equal(t, 1.0, Jaccard(set(), set()))
	assert.Equal(t, 0.0, Jaccard(set(), set("dog")))
	assert.InDelta(t, 0.4, Jaccard(set("dog", "red", "sofa"), set("dog", "near", "red", "car")), 1e-9)
}

func TestHardDonorFindsBucketNeighbour(t *testing.T) {
	idx := newIndex(t, fixtureBases(), 7)
	assert.Equal(t, 5, idx.Len())
	entry, ok := idx.Lookup("vqa-5")
	require.True(t, ok)
	assert.Equal(t, dataset.AnswerInteger, entry.AnswerType)
	_, ok = idx.Lookup("vqa-404")
	assert.False(t, ok)

	donor, err := idx.HardDonor(fixtureBases()[0], defaultRange)
	require.NoError(t, err)
	assert.Equal(t, "vqa-2", donor.ExampleID)
}

func TestHardDonorExhausted(t *testing.T) {
	idx := newIndex(t, fixtureBases(), 7)
	_, err := idx.HardDonor(fixtureBases()[2], defaultRange)
	assert.ErrorIs(t, err, ErrDonorSearchExhausted)

	// The count base is alone in its bucket.
	_, err = idx.HardDonor(fixtureBases()[4], defaultRange)
	assert.ErrorIs(t, err, ErrDonorSearchExhausted)
}

func TestHardDonorZeroLowerBoundScansBucket(t *testing.T) {
	idx := newIndex(t, fixtureBases(), 7)
	donor, err := idx.HardDonor(fixtureBases()[2], Range{Min: 0, Max: 0.1})
	require.NoError(t, err)
	assert.NotEqual(t, int64(3), donor.SourceImageID)
	assert.Equal(t, dataset.FamilyExistence, donor.Family)
}

func TestEasyDonorExcludesSourceImage(t *testing.T) {
	bases := fixtureBases()
	for seed := int64(0); seed < 64; seed++ {
		idx := newIndex(t, bases, seed)
		for _, b := range bases {
			donor, ok := idx.EasyDonor(b)
			require.True(t, ok)
			assert.NotEqual(t, b.SourceImageID, donor.SourceImageID, "seed %d base %s", seed, b.ExampleID)
		}
	}
}

func TestEasyDonorEmptyPool(t *testing.T) {
	idx := newIndex(t, []dataset.BaseExample{
		base("vqa-1", 1, dataset.FamilyExistence, "a dog"),
		base("vqa-2", 1, dataset.FamilyCount, "two dogs"),
	}, 1)
	_, ok := idx.EasyDonor(dataset.BaseExample{ExampleID: "vqa-1", SourceImageID: 1})
	assert.False(t, ok)
}

func TestDonorChoiceIgnoresInputOrder(t *testing.T) {
	bases := fixtureBases()
	reversed := make([]dataset.BaseExample, len(bases))
	for i := range bases {
		reversed[len(bases)-1-i] = bases[i]
	}
	a := newIndex(t, bases, 99)
	b := newIndex(t, reversed, 99)
	for _, base := range bases {
		da, okA := a.EasyDonor(base)
		db, okB := b.EasyDonor(base)
		require.Equal(t, okA, okB)
		assert.Equal(t, da.ExampleID, db.ExampleID)
	}
}

func TestNewIndexRejectsDuplicateIDs(t *testing.T) {
	rules, err := family.NewRules(family.DefaultLexicon())
	require.NoError(t, err)
	_, err = NewIndex([]dataset.BaseExample{
		base("vqa-1", 1, dataset.FamilyExistence, "a dog"),
		base("vqa-1", 2, dataset.FamilyExistence, "a cat"),
	}, rules, 0)
	assert.Error(t, err)
}
