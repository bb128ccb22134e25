package cli

import (
	"fmt"
	"io"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  conflictsuite <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"conflictsuite <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("init", "Scaffold .conflictsuite/config.yml", []string{
		"conflictsuite init [--config <path>]",
	}, runInit),
	command("validate", "Validate the suite configuration", []string{
		"conflictsuite validate [--config <path>]",
	}, runValidate),
	command("build-base", "Ingest raw records and write base examples", []string{
		"conflictsuite build-base [--config <path>] [--output-dir <dir>] [--workers <n>]",
	}, runBuildBase),
	command("generate", "Generate the suite from previously built base examples", []string{
		"conflictsuite generate [--config <path>] [--output-dir <dir>] [--workers <n>] [--no-report]",
	}, runGenerate),
	command("run", "Build the full conflict suite", []string{
		"conflictsuite run [--config <path>] [--output-dir <dir>] [--workers <n>] [--ui auto|live|plain]",
	}, runRun),
	command("check", "Re-run integrity checks on an emitted suite", []string{
		"conflictsuite check [--config <path>] [--output-dir <dir>]",
	}, runCheck),
	command("sample", "Draw a stratified pilot sample of an emitted suite", []string{
		"conflictsuite sample --size <n> [--config <path>] [--output-dir <dir>]",
	}, runSample),
	command("export", "Load an emitted suite into a DuckDB database", []string{
		"conflictsuite export --db <path> [--label <name>] [--output-dir <dir>]",
		"conflictsuite export --db <path> --list",
	}, runExport),
	command("report", "Render the HTML report of an emitted suite", []string{
		"conflictsuite report [--output-dir <dir>] [--out <path>]",
	}, runReport),
}
