package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"conflictsuite/internal/config"
	"conflictsuite/internal/runner"
	"conflictsuite/internal/ui/live"
)

// pipelineFlags are the options shared by the commands that run pipeline stages.
type pipelineFlags struct {
	configPath *string
	outputDir  *string
	workers    *int
	uiMode     *string
	verbose    *bool
	noColor    *bool
	noReport   *bool
	metrics    *bool
}

func registerPipelineFlags(flags *flag.FlagSet) *pipelineFlags {
	return &pipelineFlags{
		configPath: flags.String("config", "", "Path to config file (default: search for .conflictsuite/config.yml)"),
		outputDir:  flags.String("output-dir", "", "Override the configured output directory"),
		workers:    flags.Int("workers", 0, "Override the configured worker count"),
		uiMode:     flags.String("ui", "auto", "Progress display: auto|live|plain"),
		verbose:    flags.Bool("verbose", false, "Log debug progress (disables the live UI)"),
		noColor:    flags.Bool("no-color", false, "Disable colored output"),
		noReport:   flags.Bool("no-report", false, "Skip writing report.html"),
		metrics:    flags.Bool("metrics", false, "Write Prometheus textfile metrics to metrics.prom"),
	}
}

// session carries the observer and parameters of one pipeline command.
type session struct {
	cfg     config.Config
	params  runner.RunParams
	logger  *slog.Logger
	live    *live.Controller
	noColor bool
}

// startSession loads the config and picks the live or log observer.
func (f *pipelineFlags) startSession(stdout, stderr io.Writer) (*session, error) {
	if *f.workers < 0 {
		return nil, fmt.Errorf("--workers must be >= 0")
	}
	cfg, err := loadConfig(*f.configPath)
	if err != nil {
		return nil, err
	}
	decision, err := resolveUIMode(*f.uiMode, *f.verbose, *f.noColor, stdout)
	if err != nil {
		return nil, err
	}
	if decision.warning != "" {
		fmt.Fprintln(stderr, decision.warning)
	}
	s := &session{
		cfg:     cfg,
		logger:  runner.NewLogger(stderr, *f.verbose),
		noColor: decision.noColor,
		params: runner.RunParams{
			OutputDir:    strings.TrimSpace(*f.outputDir),
			Workers:      *f.workers,
			WriteReport:  !*f.noReport,
			WriteMetrics: *f.metrics,
		},
	}
	if decision.useLive {
		s.live = live.Start(stdout, live.Options{NoColor: decision.noColor})
		s.params.Observer = s.live
	} else {
		s.params.Observer = runner.NewLogObserver(s.logger)
	}
	return s, nil
}

// finish stops the live UI, if any, and waits for it to restore the terminal.
func (s *session) finish() {
	if s.live == nil {
		return
	}
	s.live.Close()
	s.live.Wait()
}

// commandContext returns a context cancelled on interrupt.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// outputPaths resolves the output directory of a read-only command: the flag wins, otherwise
// the configured output directory is used.
func outputPaths(outputDir, configPath string) (runner.OutputPaths, error) {
	if dir := strings.TrimSpace(outputDir); dir != "" {
		return runner.NewOutputPaths(dir)
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return runner.OutputPaths{}, fmt.Errorf("%w (or pass --output-dir)", err)
	}
	return runner.NewOutputPaths(cfg.OutputDir)
}
