package runner

import (
	"context"

	"conflictsuite/internal/config"
	"conflictsuite/internal/ingest"
)

// Run ingests the configured inputs and builds the full suite.
func Run(ctx context.Context, cfg config.Config, params RunParams) (Summary, error) {
	return execute(cfg, params, func(p *Pipeline) (Summary, error) {
		raw, err := p.Ingest(ctx)
		if err != nil {
			return Summary{Paths: p.paths}, err
		}
		return p.build(ctx, raw)
	})
}

// RunRaw builds the full suite from already loaded records.
func RunRaw(ctx context.Context, cfg config.Config, raw ingest.Raw, params RunParams) (Summary, error) {
	return execute(cfg, params, func(p *Pipeline) (Summary, error) {
		return p.build(ctx, raw)
	})
}

// RunFromBases generates and finalizes a suite from a previous base build.
func RunFromBases(ctx context.Context, cfg config.Config, base BaseResult, params RunParams) (Summary, error) {
	return execute(cfg, params, func(p *Pipeline) (Summary, error) {
		gen, err := p.Generate(ctx, base.Bases)
		if err != nil {
			return Summary{Paths: p.paths}, err
		}
		return p.Finalize(ctx, base, gen)
	})
}

// BuildBases ingests the configured inputs and writes only the base examples.
func BuildBases(ctx context.Context, cfg config.Config, params RunParams) (BaseResult, OutputPaths, error) {
	var result BaseResult
	summary, err := execute(cfg, params, func(p *Pipeline) (Summary, error) {
		summary := Summary{Paths: p.paths}
		raw, err := p.Ingest(ctx)
		if err != nil {
			return summary, err
		}
		result, err = p.BuildBase(ctx, raw)
		if err != nil {
			return summary, err
		}
		err = p.stage(StageWrite, len(result.Bases), func() (int, error) {
			return len(result.Bases), p.WriteBases(result)
		})
		return summary, err
	})
	return result, summary.Paths, err
}

func (p *Pipeline) build(ctx context.Context, raw ingest.Raw) (Summary, error) {
	base, err := p.BuildBase(ctx, raw)
	if err != nil {
		return Summary{Paths: p.paths}, err
	}
	gen, err := p.Generate(ctx, base.Bases)
	if err != nil {
		return Summary{Paths: p.paths}, err
	}
	return p.Finalize(ctx, base, gen)
}

func execute(cfg config.Config, params RunParams, fn func(*Pipeline) (Summary, error)) (Summary, error) {
	p, err := NewPipeline(cfg, params)
	if err != nil {
		return Summary{}, err
	}
	start := p.now()
	p.observer.OnRunStart(RunInfo{
		Seed:      cfg.Seed,
		Workers:   p.workers,
		OutputDir: p.paths.Root,
		Families:  cfg.Families,
	})
	summary, err := fn(p)
	summary.Stages = p.Stages()
	summary.Elapsed = p.now().Sub(start)
	p.observer.OnRunEnd(summary, err)
	return summary, err
}
