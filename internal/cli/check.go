package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"conflictsuite/internal/manifest"
	"conflictsuite/internal/runner"
)

// runCheck builds the handler for the check command.
func runCheck(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .conflictsuite/config.yml)")
		outputDir := flags.String("output-dir", "", "Suite directory (default: configured output directory)")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}

		paths, err := outputPaths(*outputDir, *configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Check failed: %v\n", err)
			return ExitError
		}
		man, err := manifest.Read(paths.ManifestPath())
		haveManifest := err == nil
		switch {
		case errors.Is(err, os.ErrNotExist):
			fmt.Fprintf(stderr, "No manifest at %s; checking rows without held-out expectations.\n", paths.ManifestPath())
		case err != nil:
			fmt.Fprintf(stderr, "Check failed: %v\n", err)
			return ExitError
		}
		expect, err := runner.ExpectationsFor(man)
		if err != nil {
			fmt.Fprintf(stderr, "Check failed: %v\n", err)
			return ExitError
		}
		checker, err := manifest.NewChecker(expect)
		if err != nil {
			fmt.Fprintf(stderr, "Check failed: %v\n", err)
			return ExitError
		}
		rep, err := checker.CheckFile(paths.SuitePath())
		if err != nil {
			fmt.Fprintf(stderr, "Check failed: %v\n", err)
			return ExitError
		}

		statuses := rep.Statuses()
		for _, name := range manifest.CheckNames {
			fmt.Fprintf(stdout, "%-32s %s\n", name, statuses[name])
		}
		code := ExitOK
		if len(rep.Violations) > 0 {
			printViolations(stderr, rep.Violations)
			code = ExitError
		}
		if haveManifest {
			ok, got, err := manifest.VerifyOutputHash(paths.SuitePath(), man)
			switch {
			case err != nil:
				fmt.Fprintf(stderr, "Check failed: %v\n", err)
				return ExitError
			case ok:
				fmt.Fprintf(stdout, "%-32s %s\n", "output_hash", manifest.StatusPass)
			default:
				fmt.Fprintf(stdout, "%-32s %s\n", "output_hash", manifest.StatusFail)
				fmt.Fprintf(stderr, "  output hash %s does not match manifest %s\n", got, man.OutputHash)
				code = ExitError
			}
		}
		fmt.Fprintf(stdout, "Rows checked: %d\n", rep.Rows)
		return code
	}
}
