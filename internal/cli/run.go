package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"conflictsuite/internal/manifest"
	"conflictsuite/internal/report"
	"conflictsuite/internal/runner"
)

var runSuite = runner.Run

// runRun builds the handler for the run command.
func runRun(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		opts := registerPipelineFlags(flags)
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}

		s, err := opts.startSession(stdout, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Run failed: %v\n", err)
			return ExitError
		}
		ctx, cancel := commandContext()
		defer cancel()
		summary, err := runSuite(ctx, s.cfg, s.params)
		s.finish()
		return printRunResult(stdout, stderr, summary, err, s.noColor)
	}
}

// printRunResult prints the end-of-run summary, or the failure with any failed checks.
func printRunResult(stdout, stderr io.Writer, summary runner.Summary, err error, noColor bool) int {
	if err != nil {
		fmt.Fprintf(stderr, "Run failed: %v\n", err)
		if errors.Is(err, runner.ErrIntegrityFailed) {
			printViolations(stderr, summary.Report.Violations)
		}
		return ExitError
	}
	fmt.Fprint(stdout, report.Summary(summary.Manifest, noColor))
	fmt.Fprintf(stdout, "Suite: %s\n", summary.Paths.SuitePath())
	fmt.Fprintf(stdout, "Manifest: %s\n", summary.Paths.ManifestPath())
	return ExitOK
}

// maxPrintedViolations bounds the violations echoed to the console.
const maxPrintedViolations = 20

func printViolations(w io.Writer, violations []manifest.Violation) {
	for i, v := range violations {
		if i == maxPrintedViolations {
			fmt.Fprintf(w, "  ... %d more\n", len(violations)-i)
			return
		}
		id := v.ExampleID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "  line %d %s [%s]: %s\n", v.Line, id, v.Check, v.Message)
	}
}
