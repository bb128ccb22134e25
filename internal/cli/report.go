package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"conflictsuite/internal/report"
)

// runReport builds the handler for the report command.
func runReport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .conflictsuite/config.yml)")
		outputDir := flags.String("output-dir", "", "Suite directory (default: configured output directory)")
		outPath := flags.String("out", "", "Report path (default: <output-dir>/report.html)")
		noColor := flags.Bool("no-color", false, "Disable colored output")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}

		paths, err := outputPaths(*outputDir, *configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Report failed: %v\n", err)
			return ExitError
		}
		man, err := report.Load(paths.ManifestPath())
		if err != nil {
			fmt.Fprintf(stderr, "Report failed: %v\n", err)
			return ExitError
		}
		target := strings.TrimSpace(*outPath)
		if target == "" {
			target = paths.ReportPath()
		}
		ctx, cancel := commandContext()
		defer cancel()
		if err := report.WriteHTML(ctx, target, man); err != nil {
			fmt.Fprintf(stderr, "Report failed: %v\n", err)
			return ExitError
		}
		decision, err := resolveUIMode("plain", false, *noColor, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "Report failed: %v\n", err)
			return ExitError
		}
		fmt.Fprint(stdout, report.Summary(man, decision.noColor))
		fmt.Fprintf(stdout, "Report: %s\n", target)
		return ExitOK
	}
}
