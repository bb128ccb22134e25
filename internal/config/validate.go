package config

import (
	"fmt"
	"math"
	"strings"

	"conflictsuite/internal/family"
)

const ratioTolerance = 1e-6

// Validate checks a normalized config. All issues are reported together.
func Validate(cfg *Config) error {
	collector := &issueCollector{}
	collectTagIssues(cfg, collector.add)
	validateFamilies(cfg, collector.add)
	validateRatios(cfg, collector.add)
	validateJaccard(cfg, collector.add)
	validateLexicon(cfg, collector.add)
	validateInputs(cfg, collector.add)
	return collector.result()
}

func validateFamilies(cfg *Config, add issueAdder) {
	seen := map[string]struct{}{}
	for _, f := range cfg.Families {
		if _, dup := seen[f]; dup {
			add("families", fmt.Sprintf("duplicate family %q", f))
		}
		seen[f] = struct{}{}
	}
	if !cfg.HeldOutEnabled() {
		return
	}
	if _, ok := seen[cfg.HeldOutFamily]; !ok {
		add("held_out_family", fmt.Sprintf("family %q is not active", cfg.HeldOutFamily))
	}
}

func validateRatios(cfg *Config, add issueAdder) {
	r := cfg.SplitRatios
	sum := r.Train + r.Val + r.TestID
	if math.Abs(sum-1) > ratioTolerance {
		add("split_ratios", fmt.Sprintf("must sum to 1, got %g", sum))
	}
}

func validateJaccard(cfg *Config, add issueAdder) {
	if len(cfg.HardSwapJaccardRange) != 2 {
		return
	}
	if cfg.HardSwapJaccardRange[0] > cfg.HardSwapJaccardRange[1] {
		add("hard_swap_jaccard_range", fmt.Sprintf("min %g exceeds max %g", cfg.HardSwapJaccardRange[0], cfg.HardSwapJaccardRange[1]))
	}
}

func validateLexicon(cfg *Config, add issueAdder) {
	if _, err := family.NewLexicon(cfg.Lexicon.Colors, cfg.Lexicon.NumberWords, cfg.Lexicon.StopWords); err != nil {
		add("lexicon", err.Error())
	}
}

func validateInputs(cfg *Config, add issueAdder) {
	in := cfg.Inputs
	for i, path := range append(append(append([]string(nil), in.Questions...), in.Annotations...), in.Captions...) {
		if strings.TrimSpace(path) == "" {
			add(fmt.Sprintf("inputs[%d]", i), "path is empty")
		}
	}
	if in.Format == "vqa" && len(in.Questions) > 0 && len(in.Annotations) == 0 {
		add("inputs.annotations", "is required for vqa inputs")
	}
	if in.Format == "jsonl" && len(in.Annotations) > 0 {
		add("inputs.annotations", "is only used with vqa inputs")
	}
}
