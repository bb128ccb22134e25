package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/duckdb"
	"conflictsuite/internal/manifest"
)

// runExport builds the handler for the export command.
func runExport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .conflictsuite/config.yml)")
		outputDir := flags.String("output-dir", "", "Suite directory (default: configured output directory)")
		dbPath := flags.String("db", "", "DuckDB database file")
		label := flags.String("label", "", "Run label (default: output hash prefix)")
		list := flags.Bool("list", false, "List exported suites instead of exporting")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if strings.TrimSpace(*dbPath) == "" {
			fmt.Fprintln(stderr, "--db is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		ctx, cancel := commandContext()
		defer cancel()
		db, err := duckdb.Open(ctx, *dbPath)
		if err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return ExitError
		}
		defer db.Close()

		if *list {
			runs, err := duckdb.ListRuns(ctx, db)
			if err != nil {
				fmt.Fprintf(stderr, "Export failed: %v\n", err)
				return ExitError
			}
			fmt.Fprintf(stdout, "%-36s  %-16s  %-12s  %8s  %s\n", "RUN", "LABEL", "HASH", "VARIANTS", "EXPORTED")
			for _, run := range runs {
				fmt.Fprintf(stdout, "%-36s  %-16s  %-12s  %8d  %s\n",
					run.RunID, run.Label, shortHash(run.OutputHash), run.Variants, run.ExportedAt.Format("2006-01-02 15:04:05"))
			}
			return ExitOK
		}

		paths, err := outputPaths(*outputDir, *configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return ExitError
		}
		man, err := manifest.Read(paths.ManifestPath())
		if err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return ExitError
		}
		ok, got, err := manifest.VerifyOutputHash(paths.SuitePath(), man)
		if err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return ExitError
		}
		if !ok {
			fmt.Fprintf(stderr, "Export failed: suite hash %s does not match manifest %s\n", got, man.OutputHash)
			return ExitError
		}
		rows, err := dataset.ReadFile[dataset.VariantExample](paths.SuitePath())
		if err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return ExitError
		}
		res, err := duckdb.ExportSuite(ctx, db, *label, man, rows)
		if err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return ExitError
		}
		if res.Created {
			fmt.Fprintf(stdout, "Exported %d variants as run %s\n", res.Variants, res.RunID)
		} else {
			fmt.Fprintf(stdout, "Suite already exported as run %s\n", res.RunID)
		}
		return ExitOK
	}
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
