package runner

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/testutil"
)

// TestParallelMapKeepsInputOrder verifies results land in their input slot.
func TestParallelMapKeepsInputOrder(t *testing.T) {
	items := make([]int, 200)
	for i := range items {
		items[i] = i
	}
	var ticks atomic.Int64
	out, err := parallelMap(testutil.Context(t, 0), 16, items, func(v int) (string, error) {
		return fmt.Sprintf("item-%d", v), nil
	}, func() { ticks.Add(1) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range out {
		if v != fmt.Sprintf("item-%d", i) {
			t.Fatalf("slot %d holds %q", i, v)
		}
	}
	if ticks.Load() != int64(len(items)) {
		t.Fatalf("expected %d ticks, got %d", len(items), ticks.Load())
	}
}

// TestParallelMapReturnsFirstError verifies a failing item aborts the map.
func TestParallelMapReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	_, err := parallelMap(testutil.Context(t, 0), 4, []int{1, 2, 3, 4, 5}, func(v int) (int, error) {
		if v == 3 {
			return 0, boom
		}
		return v, nil
	}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

// TestCapPerFamilyIsOrderIndependent verifies the cap keeps the same bases for any input order.
func TestCapPerFamilyIsOrderIndependent(t *testing.T) {
	var bases []dataset.BaseExample
	for i := 0; i < 9; i++ {
		bases = append(bases, dataset.BaseExample{
			ExampleID: dataset.BaseIDForQuestion(int64(i)),
			Family:    dataset.AllFamilies[i%2],
		})
	}
	reversed := make([]dataset.BaseExample, len(bases))
	for i := range bases {
		reversed[len(bases)-1-i] = bases[i]
	}

	a, droppedA := capPerFamily(append([]dataset.BaseExample(nil), bases...), 2, 11)
	b, droppedB := capPerFamily(reversed, 2, 11)
	if droppedA != 5 || droppedB != 5 {
		t.Fatalf("expected 5 dropped, got %d and %d", droppedA, droppedB)
	}
	if len(a) != 4 {
		t.Fatalf("expected 4 kept, got %d", len(a))
	}
	for i := range a {
		if a[i].ExampleID != b[i].ExampleID {
			t.Fatalf("kept bases differ at %d: %s vs %s", i, a[i].ExampleID, b[i].ExampleID)
		}
	}

	same, dropped := capPerFamily(bases, 0, 11)
	if dropped != 0 || len(same) != len(bases) {
		t.Fatalf("expected zero limit to keep everything")
	}
}

// TestLogObserverWritesStageLines verifies the slog observer output.
func TestLogObserverWritesStageLines(t *testing.T) {
	var buf bytes.Buffer
	observer := NewLogObserver(NewLogger(&buf, true))
	observer.OnRunStart(RunInfo{Seed: 7, Workers: 2, Families: []string{"existence"}})
	observer.OnStageEvent(StageEvent{Stage: StageFilter, Type: StageStarted, Total: 3})
	observer.OnStageEvent(StageEvent{Stage: StageFilter, Type: StageFinished, Done: 3, Total: 3})
	observer.OnRunEnd(Summary{}, errors.New("disk full"))

	out := buf.String()
	for _, want := range []string{"run started", "seed=7", "stage started", "stage=filter", "stage finished", "run failed", "disk full"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output:\n%s", want, out)
		}
	}

	buf.Reset()
	quiet := NewLogObserver(NewLogger(&buf, false))
	quiet.OnStageEvent(StageEvent{Stage: StageFilter, Type: StageProgress, Done: 1, Total: 3})
	if buf.Len() != 0 {
		t.Fatalf("expected progress to be debug-only, got %q", buf.String())
	}
}

// TestOutputPaths verifies file locations under the output root.
func TestOutputPaths(t *testing.T) {
	paths, err := NewOutputPaths("out")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paths.SuitePath() != filepath.Join("out", "conflict_suite.jsonl") || paths.ManifestPath() != filepath.Join("out", "manifest.json") {
		t.Fatalf("unexpected paths %q %q", paths.SuitePath(), paths.ManifestPath())
	}
	if _, err := NewOutputPaths("  "); err == nil {
		t.Fatalf("expected error for empty root")
	}
}
