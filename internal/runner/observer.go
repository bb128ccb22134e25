package runner

import "time"

// Stage names one step of the suite build.
type Stage string

const (
	// StageIngest loads raw question and caption records.
	StageIngest Stage = "ingest"
	// StageFilter normalizes answers and applies the caption consistency filter.
	StageFilter Stage = "filter"
	// StageDonorIndex builds the shared donor index.
	StageDonorIndex Stage = "donor_index"
	// StageGenerate expands base examples into variants.
	StageGenerate Stage = "generate"
	// StageLabel attaches oracle actions.
	StageLabel Stage = "label"
	// StageSplit assigns splits and held-out flags.
	StageSplit Stage = "split"
	// StageWrite serializes base examples and the suite.
	StageWrite Stage = "write"
	// StageIntegrity runs the integrity checks over the emitted suite.
	StageIntegrity Stage = "integrity"
	// StageManifest writes the manifest and side outputs.
	StageManifest Stage = "manifest"
)

// AllStages lists the stages of a full run in execution order.
var AllStages = []Stage{
	StageIngest,
	StageFilter,
	StageDonorIndex,
	StageGenerate,
	StageLabel,
	StageSplit,
	StageWrite,
	StageIntegrity,
	StageManifest,
}

// StageEventType identifies a stage status update for observers.
type StageEventType string

const (
	// StageStarted marks a stage beginning.
	StageStarted StageEventType = "started"
	// StageProgress reports per-record progress inside a stage.
	StageProgress StageEventType = "progress"
	// StageFinished marks a stage completing.
	StageFinished StageEventType = "finished"
	// StageFailed marks a stage aborting the run.
	StageFailed StageEventType = "failed"
)

// StageEvent carries a single status update for a stage.
type StageEvent struct {
	Stage     Stage
	Type      StageEventType
	Done      int
	Total     int
	Elapsed   time.Duration
	Error     string
	EmittedAt time.Time
}

// RunInfo describes a run as it starts.
type RunInfo struct {
	Seed      int64
	Workers   int
	OutputDir string
	Families  []string
}

// PipelineObserver receives run lifecycle events for UI or logging.
type PipelineObserver interface {
	// OnRunStart signals the start of a run.
	OnRunStart(info RunInfo)
	// OnStageEvent delivers a stage status update.
	OnStageEvent(event StageEvent)
	// OnRunEnd signals run completion. err is nil on success.
	OnRunEnd(summary Summary, err error)
}

type nopObserver struct{}

func (nopObserver) OnRunStart(RunInfo) {}
func (nopObserver) OnStageEvent(StageEvent) {}
func (nopObserver) OnRunEnd(Summary, error) {}
