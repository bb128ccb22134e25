package live

import (
	"strings"
	"testing"
	"time"

	"conflictsuite/internal/runner"
	"conflictsuite/internal/testutil"
)

// TestReduceStageLifecycle verifies started, progress and finished transitions.
func TestReduceStageLifecycle(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		start := time.Now()
		state := NewState(runner.RunInfo{Seed: 7, Workers: 4}, start)
		if len(state.Rows) != len(runner.AllStages) {
			t.Fatalf("expected a row per stage, got %d", len(state.Rows))
		}
		state = Reduce(state, event(runner.StageFilter, runner.StageStarted, 40, 0, start))
		state = Reduce(state, event(runner.StageFilter, runner.StageProgress, 40, 10, start))
		row := state.Rows[rowIndex(state, runner.StageFilter)]
		if row.Status != StatusRunning || row.Done != 10 {
			t.Fatalf("expected running row at 10, got %+v", row)
		}
		if !strings.HasPrefix(formatProgress(row), "#####...............") {
			t.Fatalf("unexpected progress %q", formatProgress(row))
		}
		done := event(runner.StageFilter, runner.StageFinished, 40, 40, start.Add(time.Second))
		done.Elapsed = time.Second
		state = Reduce(state, done)
		row = state.Rows[rowIndex(state, runner.StageFilter)]
		if row.Status != StatusDone || formatRowDuration(row, time.Now()) != "1s" {
			t.Fatalf("expected finished row, got %+v", row)
		}
		if state.Completed() != 1 {
			t.Fatalf("expected 1 completed stage, got %d", state.Completed())
		}
		if !strings.Contains(state.LastEvent, "filter finished") {
			t.Fatalf("unexpected last event %q", state.LastEvent)
		}
	})
}

// TestReduceStageFailure verifies failures keep their error text.
func TestReduceStageFailure(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := NewState(runner.RunInfo{}, time.Now())
		failed := event(runner.StageIntegrity, runner.StageFailed, 0, 0, time.Now())
		failed.Error = "schema violation"
		state = Reduce(state, failed)
		row := state.Rows[rowIndex(state, runner.StageIntegrity)]
		if row.Status != StatusFailed || row.Error != "schema violation" {
			t.Fatalf("expected failed row, got %+v", row)
		}
		if !strings.Contains(state.LastEvent, "schema violation") {
			t.Fatalf("unexpected last event %q", state.LastEvent)
		}
	})
}

// TestReduceDoesNotMutateInput verifies reductions copy rows.
func TestReduceDoesNotMutateInput(t *testing.T) {
	before := NewState(runner.RunInfo{}, time.Now())
	_ = Reduce(before, event(runner.StageIngest, runner.StageStarted, 0, 0, time.Now()))
	if before.Rows[0].Status != StatusPending {
		t.Fatalf("expected input state untouched, got %s", before.Rows[0].Status)
	}
}

// TestRowsForStateRendersPlainText verifies table rows without styling.
func TestRowsForStateRendersPlainText(t *testing.T) {
	state := NewState(runner.RunInfo{}, time.Now())
	rows := rowsForState(state, time.Now(), true)
	if len(rows) != len(runner.AllStages) {
		t.Fatalf("expected %d rows, got %d", len(runner.AllStages), len(rows))
	}
	if rows[0][0] != string(runner.StageIngest) || rows[0][1] != string(StatusPending) {
		t.Fatalf("unexpected first row %v", rows[0])
	}
}

// event builds a StageEvent for testing.
func event(stage runner.Stage, kind runner.StageEventType, total, done int, when time.Time) runner.StageEvent {
	return runner.StageEvent{Stage: stage, Type: kind, Total: total, Done: done, EmittedAt: when}
}

// runWithTimeout executes a test body with a timeout.
func runWithTimeout(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	ctx := testutil.Context(t, timeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("test timed out")
	}
}
