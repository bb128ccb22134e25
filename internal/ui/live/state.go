package live

import (
	"time"

	"conflictsuite/internal/runner"
)

// StageStatus is the display status of a stage row.
type StageStatus string

const (
	StatusPending StageStatus = "pending"
	StatusRunning StageStatus = "running"
	StatusDone    StageStatus = "done"
	StatusFailed  StageStatus = "failed"
)

// StageRow holds UI state for a single stage.
type StageRow struct {
	Stage     runner.Stage
	Status    StageStatus
	Done      int
	Total     int
	StartedAt time.Time
	Elapsed   time.Duration
	Error     string
}

// State captures the live UI state for a build.
type State struct {
	Seed       int64
	Workers    int
	OutputDir  string
	StartedAt  time.Time
	Rows       []StageRow
	LastEvent  string
	Finished   bool
	OutputHash string
}

// NewState lists every stage as pending.
func NewState(info runner.RunInfo, startedAt time.Time) State {
	rows := make([]StageRow, 0, len(runner.AllStages))
	for _, stage := range runner.AllStages {
		rows = append(rows, StageRow{Stage: stage, Status: StatusPending})
	}
	return State{
		Seed:      info.Seed,
		Workers:   info.Workers,
		OutputDir: info.OutputDir,
		StartedAt: startedAt,
		Rows:      rows,
	}
}

// Completed counts stages that finished.
func (s State) Completed() int {
	n := 0
	for _, row := range s.Rows {
		if row.Status == StatusDone {
			n++
		}
	}
	return n
}
