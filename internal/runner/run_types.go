package runner

import (
	"time"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/manifest"
)

// RunDependencies allows injecting clocks for a run.
type RunDependencies struct {
	Now func() time.Time
}

// RunParams configures a run invocation.
type RunParams struct {
	// OutputDir overrides the configured output directory.
	OutputDir string
	// Workers overrides the configured worker count when positive.
	Workers      int
	Observer     PipelineObserver
	WriteReport  bool
	WriteMetrics bool
	Deps         RunDependencies
}

// BaseResult is the output of the base-building stages.
type BaseResult struct {
	Bases      []dataset.BaseExample
	RawRecords int
	Drops      dataset.DropCounts
}

// BaseStats is the sidecar written next to base_examples.jsonl so a later generate step can
// report the same totals as a full run.
type BaseStats struct {
	RawRecords int                `json:"raw_records"`
	Drops      dataset.DropCounts `json:"drops"`
}

// GenerateResult is the output of the variant stages: labeled, split-assigned rows in
// canonical order.
type GenerateResult struct {
	Rows      []dataset.VariantExample
	Fallbacks dataset.FallbackCounts
}

// StageTiming records the wall time of one stage.
type StageTiming struct {
	Stage   Stage
	Elapsed time.Duration
}

// Summary describes a finished build.
type Summary struct {
	Manifest manifest.Manifest
	Report   manifest.Report
	Paths    OutputPaths
	Stages   []StageTiming
	Elapsed  time.Duration
}
