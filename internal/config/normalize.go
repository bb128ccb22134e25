package config

import (
	"sort"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/family"
	"conflictsuite/internal/variant"
)

// Defaults applied by Normalize.
const (
	DefaultSeed            = 7
	DefaultHeldOutFamily   = string(dataset.FamilyAttributeColor)
	DefaultHeldOutSeverity = dataset.MaxSeverity
	DefaultInputFormat     = "jsonl"
	DefaultOutputDir       = "conflict-suite"
)

// DefaultJaccardRange is the hard-swap similarity window.
var DefaultJaccardRange = []float64{0.2, 0.7}

// DefaultVisionSeverities are the vision_corrupt severities generated per base.
var DefaultVisionSeverities = []int{1, 2, 3}

// Normalize fills unset fields with defaults.
func Normalize(cfg *Config) {
	if len(cfg.Families) == 0 {
		for _, f := range dataset.AllFamilies {
			cfg.Families = append(cfg.Families, string(f))
		}
	}
	if cfg.SplitRatios == (SplitRatios{}) {
		cfg.SplitRatios = SplitRatios{Train: 0.70, Val: 0.15, TestID: 0.15}
	}
	if len(cfg.HardSwapJaccardRange) == 0 {
		cfg.HardSwapJaccardRange = append([]float64(nil), DefaultJaccardRange...)
	}
	if cfg.HeldOutFamily == "" {
		cfg.HeldOutFamily = DefaultHeldOutFamily
	}
	if cfg.HeldOutSeverity == 0 {
		cfg.HeldOutSeverity = DefaultHeldOutSeverity
	}
	if cfg.Vision.CorruptionFamily == "" {
		cfg.Vision.CorruptionFamily = variant.DefaultCorruptionFamily
	}
	if len(cfg.Vision.Severities) == 0 {
		cfg.Vision.Severities = append([]int(nil), DefaultVisionSeverities...)
	}
	sort.Ints(cfg.Vision.Severities)
	if cfg.ConsistencyFilter == nil {
		enabled := true
		cfg.ConsistencyFilter = &enabled
	}
	if cfg.Inputs.Format == "" {
		cfg.Inputs.Format = DefaultInputFormat
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if len(cfg.Lexicon.Colors) == 0 {
		cfg.Lexicon.Colors = append([]string(nil), family.DefaultColors...)
	}
	if len(cfg.Lexicon.NumberWords) == 0 {
		cfg.Lexicon.NumberWords = make(map[string]int, len(family.DefaultNumberWords))
		for word, value := range family.DefaultNumberWords {
			cfg.Lexicon.NumberWords[word] = value
		}
	}
	if cfg.Lexicon.StopWords == nil {
		cfg.Lexicon.StopWords = append([]string(nil), family.DefaultStopWords...)
	}
	cfg.Families = sortedFamilies(cfg.Families)
}

// sortedFamilies orders families canonically so equivalent configs echo identically.
func sortedFamilies(families []string) []string {
	rank := map[string]int{}
	for i, f := range dataset.AllFamilies {
		rank[string(f)] = i
	}
	out := append([]string(nil), families...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, okI := rank[out[i]]
		rj, okJ := rank[out[j]]
		if okI != okJ {
			return okI
		}
		if !okI {
			return out[i] < out[j]
		}
		return ri < rj
	})
	return out
}
