package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"conflictsuite/internal/config"
	"conflictsuite/internal/dataset"
	"conflictsuite/internal/manifest"
	"conflictsuite/internal/report"
)

// ErrIntegrityFailed reports a suite that failed at least one integrity check. The manifest is
// not written in that case.
var ErrIntegrityFailed = errors.New("integrity check failed")

// Expectations returns the held-out settings the integrity checker should enforce.
func (p *Pipeline) Expectations() manifest.Expectations {
	return manifest.Expectations{
		HeldOutFamily:               p.heldOutFamily(),
		HeldOutSeverity:             p.cfg.HeldOutSeverity,
		EnforceTemplateDisjointness: p.cfg.EnforceTemplateDisjointness,
	}
}

// ExpectationsFor returns the held-out settings recorded in a manifest's config echo.
func ExpectationsFor(man manifest.Manifest) (manifest.Expectations, error) {
	if len(man.ConfigEcho) == 0 {
		return manifest.Expectations{}, nil
	}
	var echo config.Echo
	if err := json.Unmarshal(man.ConfigEcho, &echo); err != nil {
		return manifest.Expectations{}, fmt.Errorf("decode config echo: %w", err)
	}
	expect := manifest.Expectations{
		HeldOutSeverity:             echo.HeldOutSeverity,
		EnforceTemplateDisjointness: echo.EnforceTemplateDisjointness,
	}
	if echo.HeldOutFamily != "" && echo.HeldOutFamily != config.HeldOutNone {
		expect.HeldOutFamily = dataset.Family(echo.HeldOutFamily)
	}
	return expect, nil
}

// WriteBases writes base_examples.jsonl and its stats sidecar.
func (p *Pipeline) WriteBases(base BaseResult) error {
	if err := dataset.WriteFile(p.paths.BasesPath(), dataset.CanonicalBases(base.Bases)); err != nil {
		return err
	}
	stats := BaseStats{RawRecords: base.RawRecords, Drops: base.Drops}
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encode base stats: %w", err)
	}
	if err := os.WriteFile(p.paths.BaseStatsPath(), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write base stats: %w", err)
	}
	return nil
}

// LoadBases reads a base build written by WriteBases. A missing stats sidecar counts every base
// as a raw record with no drops.
func LoadBases(paths OutputPaths) (BaseResult, error) {
	bases, err := dataset.ReadFile[dataset.BaseExample](paths.BasesPath())
	if err != nil {
		return BaseResult{}, err
	}
	result := BaseResult{Bases: dataset.CanonicalBases(bases), RawRecords: len(bases), Drops: dataset.DropCounts{}}
	data, err := os.ReadFile(paths.BaseStatsPath())
	switch {
	case errors.Is(err, os.ErrNotExist):
		return result, nil
	case err != nil:
		return BaseResult{}, fmt.Errorf("read base stats: %w", err)
	}
	var stats BaseStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return BaseResult{}, fmt.Errorf("parse base stats: %w", err)
	}
	result.RawRecords = stats.RawRecords
	if stats.Drops != nil {
		result.Drops = stats.Drops
	}
	return result, nil
}

// Finalize writes the base examples and the suite, checks the emitted suite, and writes the
// manifest last. A failed check returns ErrIntegrityFailed with the report attached to the
// summary.
func (p *Pipeline) Finalize(ctx context.Context, base BaseResult, gen GenerateResult) (Summary, error) {
	summary := Summary{Paths: p.paths}
	if err := os.MkdirAll(p.paths.Root, 0o755); err != nil {
		return summary, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(p.paths.ManifestPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return summary, fmt.Errorf("remove stale manifest: %w", err)
	}

	rows := dataset.CanonicalVariants(gen.Rows)
	var payload []byte
	err := p.stage(StageWrite, len(rows), func() (int, error) {
		if err := p.WriteBases(base); err != nil {
			return 0, err
		}
		var err error
		payload, err = dataset.MarshalVariants(rows)
		if err != nil {
			return 0, err
		}
		if err := os.WriteFile(p.paths.SuitePath(), payload, 0o644); err != nil {
			return 0, fmt.Errorf("write %s: %w", filepath.Base(p.paths.SuitePath()), err)
		}
		return len(rows), nil
	})
	if err != nil {
		return summary, err
	}

	err = p.stage(StageIntegrity, len(rows), func() (int, error) {
		checker, err := manifest.NewChecker(p.Expectations())
		if err != nil {
			return 0, err
		}
		summary.Report, err = checker.CheckFile(p.paths.SuitePath())
		if err != nil {
			return 0, err
		}
		if checkErr := summary.Report.Err(); checkErr != nil {
			return summary.Report.Rows, fmt.Errorf("%w: %w", ErrIntegrityFailed, checkErr)
		}
		return summary.Report.Rows, nil
	})
	if err != nil {
		return summary, err
	}

	err = p.stage(StageManifest, len(rows), func() (int, error) {
		builder, err := manifest.NewBuilder().WithConfigEcho(p.cfg.Echo())
		if err != nil {
			return 0, err
		}
		builder = builder.
			WithRawRecords(base.RawRecords).
			WithBaseExamples(len(base.Bases)).
			WithDrops(base.Drops).
			WithFallbacks(gen.Fallbacks).
			WithOutput(rows, payload).
			WithIntegrity(summary.Report)
		if dir := p.cfg.Vision.ImageDir; dir != "" {
			hash, err := manifest.HashDirectory(dir)
			if err != nil {
				return 0, err
			}
			builder = builder.WithImageHash(hash)
		}
		man, err := builder.Finalize()
		if err != nil {
			return 0, err
		}
		if p.params.WriteReport {
			if err := report.WriteHTML(ctx, p.paths.ReportPath(), man); err != nil {
				return 0, err
			}
		}
		if p.params.WriteMetrics {
			p.metrics.record(man, rows)
			if err := p.metrics.write(p.paths.MetricsPath()); err != nil {
				return 0, err
			}
		}
		if err := manifest.Write(p.paths.ManifestPath(), man); err != nil {
			return 0, err
		}
		summary.Manifest = man
		return len(rows), nil
	})
	if err != nil {
		return summary, err
	}
	return summary, nil
}
