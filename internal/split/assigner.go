// Package split assigns variants to dataset splits.
//
// Base splits are decided per source image, so every variant of an image starts in the same
// split. Out-of-distribution overrides are then applied per variant in a fixed priority order.
package split

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"conflictsuite/internal/dataset"
)

// Ratios are the train/val/test_id fractions of distinct source images.
type Ratios struct {
	Train  float64
	Val    float64
	TestID float64
}

// DefaultRatios is the 70/15/15 partition.
var DefaultRatios = Ratios{Train: 0.70, Val: 0.15, TestID: 0.15}

// Policy configures both assignment phases. An empty HeldOutFamily disables the family override.
type Policy struct {
	Seed              int64
	Ratios            Ratios
	HeldOutFamily     dataset.Family
	HeldOutSeverity   int
	EnableHardSwapOOD bool
}

// Assigner holds the per-image base splits. It is read-only after construction.
type Assigner struct {
	policy Policy
	images map[int64]dataset.Split
}

// NewAssigner performs base assignment over the distinct source images of bases.
func NewAssigner(policy Policy, bases []dataset.BaseExample) *Assigner {
	seen := map[int64]struct{}{}
	var images []int64
	for _, base := range bases {
		if _, ok := seen[base.SourceImageID]; ok {
			continue
		}
		seen[base.SourceImageID] = struct{}{}
		images = append(images, base.SourceImageID)
	}
	return &Assigner{policy: policy, images: AssignImages(images, policy.Seed, policy.Ratios)}
}

// AssignImages orders images by seeded hash and cuts the order by ratio: floor(n*train) images
// to train, floor(n*val) to val, the remainder to test_id.
func AssignImages(images []int64, seed int64, ratios Ratios) map[int64]dataset.Split {
	type keyed struct {
		id  int64
		key uint64
	}
	order := make([]keyed, 0, len(images))
	for _, id := range images {
		order = append(order, keyed{id: id, key: dataset.SeedHash(seed, "split", strconv.FormatInt(id, 10))})
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].key != order[j].key {
			return order[i].key < order[j].key
		}
		return order[i].id < order[j].id
	})
	n := len(order)
	nTrain := cut(n, ratios.Train)
	nVal := cut(n, ratios.Val)
	if nTrain+nVal > n {
		nVal = n - nTrain
	}
	out := make(map[int64]dataset.Split, n)
	for i, item := range order {
		switch {
		case i < nTrain:
			out[item.id] = dataset.SplitTrain
		case i < nTrain+nVal:
			out[item.id] = dataset.SplitVal
		default:
			out[item.id] = dataset.SplitTestID
		}
	}
	return out
}

// cut floors n*ratio, tolerating float error just below an integer.
func cut(n int, ratio float64) int {
	return int(math.Floor(float64(n)*ratio + 1e-9))
}

// BaseSplit returns the base split of an image.
func (a *Assigner) BaseSplit(imageID int64) (dataset.Split, bool) {
	split, ok := a.images[imageID]
	return split, ok
}

// ImageSplits returns a copy of the per-image base splits.
func (a *Assigner) ImageSplits() map[int64]dataset.Split {
	out := make(map[int64]dataset.Split, len(a.images))
	for k, v := range a.images {
		out[k] = v
	}
	return out
}

// Assign returns a copy of v placed in its final split. The family override wins over the
// severity override, which wins over the hard-swap override. The held-out flags record which
// override fired.
func (a *Assigner) Assign(v dataset.VariantExample) (dataset.VariantExample, error) {
	base, ok := a.images[v.SourceImageID]
	if !ok {
		return dataset.VariantExample{}, fmt.Errorf("split: %s has unassigned image %d", v.ExampleID, v.SourceImageID)
	}
	p := a.policy
	switch {
	case p.HeldOutFamily != "" && v.Family == p.HeldOutFamily:
		return v.WithSplit(dataset.SplitTestOODFamily, true, false), nil
	case v.CorruptModality != dataset.ModalityNone && v.Severity >= p.HeldOutSeverity:
		return v.WithSplit(dataset.SplitTestOODSeverity, false, true), nil
	case p.EnableHardSwapOOD && v.HardSwapSatisfied():
		return v.WithSplit(dataset.SplitTestOODHardSwap, false, false), nil
	default:
		return v.WithSplit(base, false, false), nil
	}
}

// AssignAll assigns every row, returning new rows.
func (a *Assigner) AssignAll(rows []dataset.VariantExample) ([]dataset.VariantExample, error) {
	out := make([]dataset.VariantExample, 0, len(rows))
	for _, row := range rows {
		assigned, err := a.Assign(row)
		if err != nil {
			return nil, err
		}
		out = append(out, assigned)
	}
	return out, nil
}
