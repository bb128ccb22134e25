package live

import "conflictsuite/internal/runner"

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventRunStart signals the start of a run.
	EventRunStart EventKind = iota
	// EventStage delivers a stage status update.
	EventStage
	// EventRunEnd signals run completion.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind       EventKind
	Info       runner.RunInfo
	Stage      runner.StageEvent
	OutputHash string
	Error      string
}
