package cli

import (
	"flag"
	"fmt"
	"io"

	"conflictsuite/internal/runner"
)

// runBuildBase builds the handler for the build-base command.
func runBuildBase(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
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
			fmt.Fprintf(stderr, "Build failed: %v\n", err)
			return ExitError
		}
		ctx, cancel := commandContext()
		defer cancel()
		base, paths, err := runner.BuildBases(ctx, s.cfg, s.params)
		s.finish()
		if err != nil {
			fmt.Fprintf(stderr, "Build failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Base examples: %d of %d raw records (%d dropped)\n", len(base.Bases), base.RawRecords, base.Drops.Total())
		for _, reason := range base.Drops.Reasons() {
			fmt.Fprintf(stdout, "  %-22s %d\n", reason, base.Drops[reason])
		}
		fmt.Fprintf(stdout, "Bases: %s\n", paths.BasesPath())
		return ExitOK
	}
}

// runGenerate builds the handler for the generate command.
func runGenerate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
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
			fmt.Fprintf(stderr, "Generate failed: %v\n", err)
			return ExitError
		}
		base, err := loadBaseBuild(s)
		if err != nil {
			s.finish()
			fmt.Fprintf(stderr, "Generate failed: %v (run build-base first)\n", err)
			return ExitError
		}
		ctx, cancel := commandContext()
		defer cancel()
		summary, err := runner.RunFromBases(ctx, s.cfg, base, s.params)
		s.finish()
		return printRunResult(stdout, stderr, summary, err, s.noColor)
	}
}

// loadBaseBuild reads the base examples written by build-base into the session's output dir.
func loadBaseBuild(s *session) (runner.BaseResult, error) {
	root := s.params.OutputDir
	if root == "" {
		root = s.cfg.OutputDir
	}
	paths, err := runner.NewOutputPaths(root)
	if err != nil {
		return runner.BaseResult{}, err
	}
	return runner.LoadBases(paths)
}
