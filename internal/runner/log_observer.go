package runner

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns a text logger. verbose lowers the level to debug.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// LogObserver reports run lifecycle events through a structured logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver wraps logger. A nil logger discards everything.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnRunStart(info RunInfo) {
	o.logger.Info("run started",
		"seed", info.Seed,
		"workers", info.Workers,
		"output_dir", info.OutputDir,
		"families", strings.Join(info.Families, ","),
	)
}

func (o *LogObserver) OnStageEvent(event StageEvent) {
	stage := slog.String("stage", string(event.Stage))
	switch event.Type {
	case StageStarted:
		o.logger.Debug("stage started", stage, "total", event.Total)
	case StageProgress:
		o.logger.Debug("stage progress", stage, "done", event.Done, "total", event.Total)
	case StageFinished:
		o.logger.Info("stage finished", stage, "items", event.Done, "elapsed", event.Elapsed)
	case StageFailed:
		o.logger.Error("stage failed", stage, "error", event.Error)
	}
}

func (o *LogObserver) OnRunEnd(summary Summary, err error) {
	if err != nil {
		o.logger.Error("run failed", "error", err, "elapsed", summary.Elapsed)
		return
	}
	o.logger.Info("run finished",
		"base_examples", summary.Manifest.Totals.BaseExamples,
		"variants", summary.Manifest.Totals.Variants,
		"dropped", summary.Manifest.Totals.Dropped,
		"output_hash", summary.Manifest.OutputHash,
		"elapsed", summary.Elapsed,
	)
}
