package live

import (
	"fmt"

	"conflictsuite/internal/runner"
)

// Reduce applies a stage event to the UI state.
func Reduce(state State, event runner.StageEvent) State {
	index := rowIndex(state, event.Stage)
	if index < 0 {
		state.Rows = append(state.Rows, StageRow{Stage: event.Stage, Status: StatusPending})
		index = len(state.Rows) - 1
	}
	rows := append([]StageRow(nil), state.Rows...)
	row := rows[index]
	switch event.Type {
	case runner.StageStarted:
		row.Status = StatusRunning
		row.Total = event.Total
		row.StartedAt = event.EmittedAt
	case runner.StageProgress:
		row.Status = StatusRunning
		row.Done = event.Done
		row.Total = event.Total
	case runner.StageFinished:
		row.Status = StatusDone
		row.Done = event.Done
		row.Elapsed = event.Elapsed
	case runner.StageFailed:
		row.Status = StatusFailed
		row.Elapsed = event.Elapsed
		row.Error = event.Error
	}
	rows[index] = row
	state.Rows = rows
	if message := formatLastEvent(event); message != "" {
		state.LastEvent = message
	}
	return state
}

func rowIndex(state State, stage runner.Stage) int {
	for i, row := range state.Rows {
		if row.Stage == stage {
			return i
		}
	}
	return -1
}

// formatLastEvent creates a short footer message for the event.
func formatLastEvent(event runner.StageEvent) string {
	switch event.Type {
	case runner.StageStarted:
		return fmt.Sprintf("%s started", event.Stage)
	case runner.StageFinished:
		return fmt.Sprintf("%s finished (%s)", event.Stage, formatDuration(event.Elapsed))
	case runner.StageFailed:
		return fmt.Sprintf("%s failed: %s", event.Stage, event.Error)
	default:
		return ""
	}
}
