package runner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"conflictsuite/internal/config"
	"conflictsuite/internal/consistency"
	"conflictsuite/internal/dataset"
	"conflictsuite/internal/donor"
	"conflictsuite/internal/family"
	"conflictsuite/internal/ingest"
	"conflictsuite/internal/normalize"
	"conflictsuite/internal/oracle"
	"conflictsuite/internal/split"
	"conflictsuite/internal/variant"
)

// Pipeline runs the build stages for one configuration. It is not safe for concurrent use;
// each stage fans out internally.
type Pipeline struct {
	cfg      config.Config
	rules    family.Rules
	active   []dataset.Family
	workers  int
	paths    OutputPaths
	params   RunParams
	observer PipelineObserver
	now      func() time.Time
	metrics  *buildMetrics
	stages   []StageTiming
}

// NewPipeline resolves rules, workers and output paths for cfg.
func NewPipeline(cfg config.Config, params RunParams) (*Pipeline, error) {
	rules, err := RulesFor(cfg)
	if err != nil {
		return nil, err
	}
	active := make([]dataset.Family, 0, len(cfg.Families))
	for _, name := range cfg.Families {
		f, err := dataset.ParseFamily(name)
		if err != nil {
			return nil, fmt.Errorf("families: %w", err)
		}
		active = append(active, f)
	}
	outputDir := params.OutputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	paths, err := NewOutputPaths(outputDir)
	if err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if params.Workers > 0 {
		workers = params.Workers
	}
	workers = resolveWorkers(workers)
	now := params.Deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		cfg:      cfg,
		rules:    rules,
		active:   active,
		workers:  workers,
		paths:    paths,
		params:   params,
		observer: wrapObserver(workers, params.Observer),
		now:      now,
		metrics:  newBuildMetrics(),
	}, nil
}

// RulesFor builds the family rules from the configured lexicon.
func RulesFor(cfg config.Config) (family.Rules, error) {
	lex, err := family.NewLexicon(cfg.Lexicon.Colors, cfg.Lexicon.NumberWords, cfg.Lexicon.StopWords)
	if err != nil {
		return family.Rules{}, fmt.Errorf("lexicon: %w", err)
	}
	return family.NewRules(lex)
}

// SourcesFromConfig maps the configured inputs onto ingest sources.
func SourcesFromConfig(cfg config.Config) ingest.Sources {
	return ingest.Sources{
		Format:      ingest.Format(cfg.Inputs.Format),
		Questions:   cfg.Inputs.Questions,
		Annotations: cfg.Inputs.Annotations,
		Captions:    cfg.Inputs.Captions,
	}
}

// Paths returns the resolved output locations.
func (p *Pipeline) Paths() OutputPaths {
	return p.paths
}

// Workers returns the resolved worker count.
func (p *Pipeline) Workers() int {
	return p.workers
}

// Stages returns the timings of the stages run so far.
func (p *Pipeline) Stages() []StageTiming {
	return append([]StageTiming(nil), p.stages...)
}

func (p *Pipeline) stage(stage Stage, total int, fn func() (int, error)) error {
	start := p.now()
	p.observer.OnStageEvent(StageEvent{Stage: stage, Type: StageStarted, Total: total, EmittedAt: start})
	done, err := fn()
	finished := p.now()
	elapsed := finished.Sub(start)
	if err != nil {
		p.observer.OnStageEvent(StageEvent{Stage: stage, Type: StageFailed, Total: total, Elapsed: elapsed, Error: err.Error(), EmittedAt: finished})
		return err
	}
	p.stages = append(p.stages, StageTiming{Stage: stage, Elapsed: elapsed})
	p.metrics.observeStage(stage, elapsed)
	p.observer.OnStageEvent(StageEvent{Stage: stage, Type: StageFinished, Done: done, Total: total, Elapsed: elapsed, EmittedAt: finished})
	return nil
}

// Ingest loads the configured raw inputs.
func (p *Pipeline) Ingest(ctx context.Context) (ingest.Raw, error) {
	if err := ctx.Err(); err != nil {
		return ingest.Raw{}, err
	}
	var raw ingest.Raw
	err := p.stage(StageIngest, 0, func() (int, error) {
		var err error
		raw, err = ingest.Load(SourcesFromConfig(p.cfg))
		return len(raw.Questions), err
	})
	return raw, err
}

type baseSlot struct {
	base   dataset.BaseExample
	reason dataset.DropReason
	kept   bool
}

// BuildBase normalizes every raw question and keeps those a caption supports. Per-record
// rejections are counted; any other error aborts.
func (p *Pipeline) BuildBase(ctx context.Context, raw ingest.Raw) (BaseResult, error) {
	if err := checkDuplicateQuestions(raw.Questions); err != nil {
		return BaseResult{}, err
	}
	captions := consistency.GroupCaptions(raw.Captions)
	normalizer := normalize.New(p.rules, p.active)
	filter := consistency.New(p.rules)
	if !p.cfg.ConsistencyFilterEnabled() {
		filter = filter.FirstCaptionOnly()
	}

	var slots []baseSlot
	total := len(raw.Questions)
	err := p.stage(StageFilter, total, func() (int, error) {
		ticker := newProgressTicker(p.observer, StageFilter, total, p.now)
		var err error
		slots, err = parallelMap(ctx, p.workers, raw.Questions, func(record dataset.RawQARecord) (baseSlot, error) {
			result, err := normalizer.Normalize(record)
			if err == nil {
				var base dataset.BaseExample
				base, err = filter.Apply(result, captions[record.ImageID])
				if err == nil {
					return baseSlot{base: base, kept: true}, nil
				}
			}
			reason, ok := dataset.ReasonFor(err)
			if !ok {
				return baseSlot{}, err
			}
			return baseSlot{reason: reason}, nil
		}, ticker.tick)
		return total, err
	})
	if err != nil {
		return BaseResult{}, err
	}

	drops := dataset.DropCounts{}.Merge(raw.Drops)
	bases := make([]dataset.BaseExample, 0, len(slots))
	for _, slot := range slots {
		if slot.kept {
			bases = append(bases, slot.base)
			continue
		}
		drops = drops.Add(slot.reason, 1)
	}
	bases, capped := capPerFamily(bases, p.cfg.MaxPerFamily, p.cfg.Seed)
	if capped > 0 {
		drops = drops.Add(dataset.DropMaxPerFamily, capped)
	}
	return BaseResult{
		Bases:      dataset.CanonicalBases(bases),
		RawRecords: total + raw.Drops.Total(),
		Drops:      drops,
	}, nil
}

func checkDuplicateQuestions(records []dataset.RawQARecord) error {
	seen := make(map[int64]struct{}, len(records))
	for _, record := range records {
		if _, ok := seen[record.QuestionID]; ok {
			return fmt.Errorf("duplicate question_id %d", record.QuestionID)
		}
		seen[record.QuestionID] = struct{}{}
	}
	return nil
}

// capPerFamily keeps at most limit bases per family, ranked by seeded hash of their id.
func capPerFamily(bases []dataset.BaseExample, limit int, seed int64) ([]dataset.BaseExample, int) {
	if limit <= 0 {
		return bases, 0
	}
	byFamily := map[dataset.Family][]dataset.BaseExample{}
	for _, base := range bases {
		byFamily[base.Family] = append(byFamily[base.Family], base)
	}
	kept := make([]dataset.BaseExample, 0, len(bases))
	dropped := 0
	for _, f := range dataset.AllFamilies {
		group := byFamily[f]
		sort.Slice(group, func(i, j int) bool {
			hi := dataset.SeedHash(seed, "max_per_family", group[i].ExampleID)
			hj := dataset.SeedHash(seed, "max_per_family", group[j].ExampleID)
			if hi != hj {
				return hi < hj
			}
			return group[i].ExampleID < group[j].ExampleID
		})
		if len(group) > limit {
			dropped += len(group) - limit
			group = group[:limit]
		}
		kept = append(kept, group...)
	}
	return kept, dropped
}

// Generate expands bases into labeled, split-assigned variants in canonical order.
func (p *Pipeline) Generate(ctx context.Context, bases []dataset.BaseExample) (GenerateResult, error) {
	bases = dataset.CanonicalBases(bases)

	var index *donor.Index
	err := p.stage(StageDonorIndex, len(bases), func() (int, error) {
		var err error
		index, err = donor.NewIndex(bases, p.rules, p.cfg.Seed)
		if err != nil {
			return 0, err
		}
		return index.Len(), nil
	})
	if err != nil {
		return GenerateResult{}, err
	}

	generator := variant.NewGenerator(p.rules, index, p.variantOptions())
	var results []variant.Result
	err = p.stage(StageGenerate, len(bases), func() (int, error) {
		ticker := newProgressTicker(p.observer, StageGenerate, len(bases), p.now)
		var err error
		results, err = parallelMap(ctx, p.workers, bases, generator.Generate, ticker.tick)
		return len(results), err
	})
	if err != nil {
		return GenerateResult{}, err
	}

	rows := make([]dataset.VariantExample, 0, len(bases)*generator.PerBase())
	fallbacks := dataset.FallbackCounts{}
	for _, result := range results {
		rows = append(rows, result.Variants...)
		for _, reason := range result.Fallbacks {
			fallbacks = fallbacks.Add(reason, 1)
		}
	}

	err = p.stage(StageLabel, len(rows), func() (int, error) {
		var err error
		rows, err = oracle.LabelAll(rows)
		return len(rows), err
	})
	if err != nil {
		return GenerateResult{}, err
	}

	err = p.stage(StageSplit, len(rows), func() (int, error) {
		assigner := split.NewAssigner(p.splitPolicy(), bases)
		var err error
		rows, err = assigner.AssignAll(rows)
		return len(rows), err
	})
	if err != nil {
		return GenerateResult{}, err
	}
	return GenerateResult{Rows: dataset.CanonicalVariants(rows), Fallbacks: fallbacks}, nil
}

func (p *Pipeline) variantOptions() variant.Options {
	bounds := donor.Range{}
	if len(p.cfg.HardSwapJaccardRange) == 2 {
		bounds = donor.Range{Min: p.cfg.HardSwapJaccardRange[0], Max: p.cfg.HardSwapJaccardRange[1]}
	}
	return variant.Options{
		Seed:             p.cfg.Seed,
		JaccardRange:     bounds,
		CorruptionFamily: p.cfg.Vision.CorruptionFamily,
		Severities:       p.cfg.Vision.Severities,
		EnableBoth:       p.cfg.EnableBothCorrupted,
	}
}

func (p *Pipeline) heldOutFamily() dataset.Family {
	if !p.cfg.HeldOutEnabled() {
		return ""
	}
	return dataset.Family(p.cfg.HeldOutFamily)
}

func (p *Pipeline) splitPolicy() split.Policy {
	return split.Policy{
		Seed: p.cfg.Seed,
		Ratios: split.Ratios{
			Train:  p.cfg.SplitRatios.Train,
			Val:    p.cfg.SplitRatios.Val,
			TestID: p.cfg.SplitRatios.TestID,
		},
		HeldOutFamily:     p.heldOutFamily(),
		HeldOutSeverity:   p.cfg.HeldOutSeverity,
		EnableHardSwapOOD: p.cfg.EnableHardSwapOOD,
	}
}
