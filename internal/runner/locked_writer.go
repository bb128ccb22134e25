package runner

import (
	"sync"
	"sync/atomic"
	"time"
)

// lockedObserver serializes calls into an underlying observer.
type lockedObserver struct {
	mu   sync.Mutex
	next PipelineObserver
}

func (l *lockedObserver) OnRunStart(info RunInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next.OnRunStart(info)
}

func (l *lockedObserver) OnStageEvent(event StageEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next.OnStageEvent(event)
}

func (l *lockedObserver) OnRunEnd(summary Summary, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next.OnRunEnd(summary, err)
}

// wrapObserver returns a concurrency-safe observer when workers > 1.
func wrapObserver(workers int, observer PipelineObserver) PipelineObserver {
	if observer == nil {
		return nopObserver{}
	}
	if workers <= 1 {
		return observer
	}
	return &lockedObserver{next: observer}
}

// progressTicker emits throttled progress events from worker goroutines.
type progressTicker struct {
	observer PipelineObserver
	stage    Stage
	total    int
	step     int
	done     atomic.Int64
	now      func() time.Time
}

func newProgressTicker(observer PipelineObserver, stage Stage, total int, now func() time.Time) *progressTicker {
	step := total / 100
	if step < 1 {
		step = 1
	}
	return &progressTicker{observer: observer, stage: stage, total: total, step: step, now: now}
}

func (p *progressTicker) tick() {
	done := int(p.done.Add(1))
	if done%p.step != 0 && done != p.total {
		return
	}
	p.observer.OnStageEvent(StageEvent{
		Stage:     p.stage,
		Type:      StageProgress,
		Done:      done,
		Total:     p.total,
		EmittedAt: p.now(),
	})
}
