// Package sampling draws stratified pilot subsets of a generated suite.
package sampling

import (
	"sort"
	"strconv"

	"conflictsuite/internal/dataset"
)

// StrategyStratifiedBase samples whole base groups stratified by family and split.
const StrategyStratifiedBase = "stratified_base"

// Manifest describes a pilot sample.
type Manifest struct {
	Strategy             string                    `json:"strategy"`
	Seed                 int64                     `json:"seed"`
	BaseSampleSize       int                       `json:"base_sample_size"`
	SelectedBaseCount    int                       `json:"selected_base_count"`
	SelectedExampleCount int                       `json:"selected_example_count"`
	StrataCountsFull     map[string]int            `json:"strata_counts_full"`
	StrataCountsSelected map[string]int            `json:"strata_counts_selected"`
	Distributions        map[string]map[string]int `json:"distributions"`
}

// Pilot keeps every variant of up to size base examples. Bases are stratified by the family
// and split of their clean row, strata receive largest-remainder shares of size, and bases
// within a stratum are ranked by seeded hash of their id.
func Pilot(rows []dataset.VariantExample, size int, seed int64) ([]dataset.VariantExample, Manifest) {
	manifest := Manifest{
		Strategy:             StrategyStratifiedBase,
		Seed:                 seed,
		BaseSampleSize:       size,
		StrataCountsFull:     map[string]int{},
		StrataCountsSelected: map[string]int{},
		Distributions:        map[string]map[string]int{},
	}

	reps := representatives(rows)
	strata := map[string][]string{}
	for baseID, rep := range reps {
		key := string(rep.Family) + "::" + string(rep.Split)
		strata[key] = append(strata[key], baseID)
	}
	sizes := map[string]int{}
	for key, ids := range strata {
		sizes[key] = len(ids)
		manifest.StrataCountsFull[key] = len(ids)
		manifest.StrataCountsSelected[key] = 0
	}

	total := size
	if total > len(reps) {
		total = len(reps)
	}
	selected := map[string]struct{}{}
	for key, count := range allocate(total, sizes) {
		ids := rankBySeed(strata[key], seed)
		for _, id := range ids[:count] {
			selected[id] = struct{}{}
		}
		manifest.StrataCountsSelected[key] = count
	}

	var out []dataset.VariantExample
	for _, row := range rows {
		if _, ok := selected[row.BaseID]; ok {
			out = append(out, row)
		}
	}
	out = dataset.CanonicalVariants(out)

	manifest.SelectedBaseCount = len(selected)
	manifest.SelectedExampleCount = len(out)
	manifest.Distributions = distributions(out)
	return out, manifest
}

// representatives picks each base's clean row, or its lowest example id without one.
func representatives(rows []dataset.VariantExample) map[string]dataset.VariantExample {
	out := map[string]dataset.VariantExample{}
	for _, row := range rows {
		current, ok := out[row.BaseID]
		switch {
		case !ok:
			out[row.BaseID] = row
		case current.Operator == dataset.OperatorClean:
		case row.Operator == dataset.OperatorClean || row.ExampleID < current.ExampleID:
			out[row.BaseID] = row
		}
	}
	return out
}

// allocate splits total across strata proportionally by size. Floors go first, then leftover
// units go to the largest fractional parts, ties broken by key.
func allocate(total int, sizes map[string]int) map[string]int {
	out := make(map[string]int, len(sizes))
	n := 0
	for _, size := range sizes {
		n += size
	}
	if total <= 0 || n == 0 {
		for key := range sizes {
			out[key] = 0
		}
		return out
	}

	type remainder struct {
		key  string
		frac float64
	}
	keys := make([]string, 0, len(sizes))
	for key := range sizes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	assigned := 0
	fracs := make([]remainder, 0, len(keys))
	for _, key := range keys {
		exact := float64(sizes[key]) / float64(n) * float64(total)
		count := int(exact)
		out[key] = count
		assigned += count
		fracs = append(fracs, remainder{key: key, frac: exact - float64(count)})
	}
	sort.SliceStable(fracs, func(i, j int) bool { return fracs[i].frac > fracs[j].frac })
	for i := 0; i < total-assigned && i < len(fracs); i++ {
		out[fracs[i].key]++
	}
	for key, size := range sizes {
		if out[key] > size {
			out[key] = size
		}
	}
	return out
}

func rankBySeed(ids []string, seed int64) []string {
	out := append([]string(nil), ids...)
	sort.Slice(out, func(i, j int) bool {
		hi := dataset.SeedHash(seed, "pilot", out[i])
		hj := dataset.SeedHash(seed, "pilot", out[j])
		if hi != hj {
			return hi < hj
		}
		return out[i] < out[j]
	})
	return out
}

func distributions(rows []dataset.VariantExample) map[string]map[string]int {
	out := map[string]map[string]int{
		"family":   {},
		"operator": {},
		"severity": {},
		"split":    {},
	}
	for _, row := range rows {
		out["family"][string(row.Family)]++
		out["operator"][string(row.Operator)]++
		out["severity"][strconv.Itoa(row.Severity)]++
		out["split"][string(row.Split)]++
	}
	return out
}
