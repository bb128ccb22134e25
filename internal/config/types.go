package config

// HeldOutNone disables the held-out family override.
const HeldOutNone = "none"

// Config is the suite build configuration.
type Config struct {
	Version              int          `yaml:"version" json:"version" validate:"eq=1"`
	Seed                 int64        `yaml:"seed" json:"seed"`
	Workers              int          `yaml:"workers" json:"-" validate:"gte=0,lte=1024"`
	OutputDir            string       `yaml:"output_dir" json:"-"`
	Inputs               InputsConfig `yaml:"inputs" json:"-"`
	Families             []string     `yaml:"families" json:"families" validate:"dive,oneof=existence count attribute_color"`
	SplitRatios          SplitRatios  `yaml:"split_ratios" json:"split_ratios"`
	HardSwapJaccardRange []float64    `yaml:"hard_swap_jaccard_range" json:"hard_swap_jaccard_range" validate:"len=2,dive,gte=0,lte=1"`
	HeldOutFamily        string       `yaml:"held_out_family" json:"held_out_family" validate:"oneof=existence count attribute_color none"`
	HeldOutSeverity      int          `yaml:"held_out_severity" json:"held_out_severity" validate:"gte=1,lte=3"`
	EnableBothCorrupted  bool         `yaml:"enable_both_corrupted" json:"enable_both_corrupted"`
	EnableHardSwapOOD    bool         `yaml:"enable_hard_swap_ood" json:"enable_hard_swap_ood"`
	MaxPerFamily         int          `yaml:"max_per_family" json:"max_per_family" validate:"gte=0"`
	// ConsistencyFilter defaults to true. When false the first caption of the image supports
	// every question on it.
	ConsistencyFilter *bool `yaml:"consistency_filter" json:"-"`
	// EnforceTemplateDisjointness fails the build when a question template appears in more
	// than one of train, val and test_id.
	EnforceTemplateDisjointness bool         `yaml:"enforce_template_disjointness" json:"enforce_template_disjointness"`
	Vision                      VisionConfig `yaml:"vision" json:"vision"`
	Lexicon                     Lexicon      `yaml:"lexicon" json:"lexicon"`
}

// InputsConfig locates the raw records. Relative paths resolve against the config's directory.
type InputsConfig struct {
	Format      string   `yaml:"format" validate:"oneof=jsonl vqa"`
	Questions   []string `yaml:"questions"`
	Annotations []string `yaml:"annotations"`
	Captions    []string `yaml:"captions"`
}

// SplitRatios are the base split fractions of distinct source images.
type SplitRatios struct {
	Train  float64 `yaml:"train" json:"train" validate:"gte=0,lte=1"`
	Val    float64 `yaml:"val" json:"val" validate:"gte=0,lte=1"`
	TestID float64 `yaml:"test_id" json:"test_id" validate:"gte=0,lte=1"`
}

// VisionConfig describes the vision corruption metadata emitted for vision rows.
type VisionConfig struct {
	CorruptionFamily string `yaml:"corruption_family" json:"corruption_family" validate:"required"`
	Severities       []int  `yaml:"severities" json:"severities" validate:"min=1,unique,dive,gte=1,lte=3"`
	ImageDir         string `yaml:"image_dir" json:"-"`
}

// Lexicon holds the closed vocabularies.
type Lexicon struct {
	Colors      []string       `yaml:"colors" json:"colors" validate:"min=2,dive,required"`
	NumberWords map[string]int `yaml:"number_words" json:"number_words" validate:"min=1,dive,keys,required,endkeys,gte=0"`
	StopWords   []string       `yaml:"stop_words" json:"stop_words"`
}

// ConsistencyFilterEnabled reports whether bases need a caption supporting their answer.
func (cfg Config) ConsistencyFilterEnabled() bool {
	return cfg.ConsistencyFilter == nil || *cfg.ConsistencyFilter
}

// HeldOutEnabled reports whether a held-out family is configured.
func (cfg Config) HeldOutEnabled() bool {
	return cfg.HeldOutFamily != "" && cfg.HeldOutFamily != HeldOutNone
}

// Echo is the configuration recorded in the manifest. It omits paths and worker counts.
type Echo struct {
	Version                     int          `json:"version"`
	Seed                        int64        `json:"seed"`
	Families                    []string     `json:"families"`
	SplitRatios                 SplitRatios  `json:"split_ratios"`
	HardSwapJaccardRange        []float64    `json:"hard_swap_jaccard_range"`
	HeldOutFamily               string       `json:"held_out_family"`
	HeldOutSeverity             int          `json:"held_out_severity"`
	EnableBothCorrupted         bool         `json:"enable_both_corrupted"`
	EnableHardSwapOOD           bool         `json:"enable_hard_swap_ood"`
	MaxPerFamily                int          `json:"max_per_family"`
	ConsistencyFilter           bool         `json:"consistency_filter"`
	EnforceTemplateDisjointness bool         `json:"enforce_template_disjointness"`
	Vision                      VisionConfig `json:"vision"`
	Lexicon                     Lexicon      `json:"lexicon"`
}

// Echo returns the reproducibility-relevant settings.
func (cfg Config) Echo() Echo {
	return Echo{
		Version:                     cfg.Version,
		Seed:                        cfg.Seed,
		Families:                    cfg.Families,
		SplitRatios:                 cfg.SplitRatios,
		HardSwapJaccardRange:        cfg.HardSwapJaccardRange,
		HeldOutFamily:               cfg.HeldOutFamily,
		HeldOutSeverity:             cfg.HeldOutSeverity,
		EnableBothCorrupted:         cfg.EnableBothCorrupted,
		EnableHardSwapOOD:           cfg.EnableHardSwapOOD,
		MaxPerFamily:                cfg.MaxPerFamily,
		ConsistencyFilter:           cfg.ConsistencyFilterEnabled(),
		EnforceTemplateDisjointness: cfg.EnforceTemplateDisjointness,
		Vision:                      cfg.Vision,
		Lexicon:                     cfg.Lexicon,
	}
}
