package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"conflictsuite/internal/dataset"
	"conflictsuite/internal/manifest"
	"conflictsuite/internal/runner"
	"conflictsuite/internal/sampling"
)

// runSample builds the handler for the sample command.
func runSample(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .conflictsuite/config.yml)")
		outputDir := flags.String("output-dir", "", "Suite directory (default: configured output directory)")
		size := flags.Int("size", 0, "Number of base examples to keep")
		seed := flags.Int64("seed", 0, "Sampling seed (default: the suite's seed)")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if *size <= 0 {
			fmt.Fprintln(stderr, "--size must be > 0")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		seedSet := false
		flags.Visit(func(f *flag.Flag) {
			if f.Name == "seed" {
				seedSet = true
			}
		})

		paths, err := outputPaths(*outputDir, *configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Sample failed: %v\n", err)
			return ExitError
		}
		sampleSeed := *seed
		if !seedSet {
			sampleSeed, err = suiteSeed(paths)
			if err != nil {
				fmt.Fprintf(stderr, "Sample failed: %v\n", err)
				return ExitError
			}
		}
		rows, err := dataset.ReadFile[dataset.VariantExample](paths.SuitePath())
		if err != nil {
			fmt.Fprintf(stderr, "Sample failed: %v\n", err)
			return ExitError
		}

		pilot, pilotManifest := sampling.Pilot(rows, *size, sampleSeed)
		if err := dataset.WriteFile(paths.PilotPath(), pilot); err != nil {
			fmt.Fprintf(stderr, "Sample failed: %v\n", err)
			return ExitError
		}
		data, err := json.MarshalIndent(pilotManifest, "", "  ")
		if err != nil {
			fmt.Fprintf(stderr, "Sample failed: encode pilot manifest: %v\n", err)
			return ExitError
		}
		if err := os.WriteFile(paths.PilotManifestPath(), append(data, '\n'), 0o644); err != nil {
			fmt.Fprintf(stderr, "Sample failed: write pilot manifest: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Selected %d bases, %d examples (seed %d)\n",
			pilotManifest.SelectedBaseCount, pilotManifest.SelectedExampleCount, sampleSeed)
		fmt.Fprintf(stdout, "Pilot: %s\n", paths.PilotPath())
		fmt.Fprintf(stdout, "Pilot manifest: %s\n", paths.PilotManifestPath())
		return ExitOK
	}
}

// suiteSeed reads the seed recorded in the suite's manifest.
func suiteSeed(paths runner.OutputPaths) (int64, error) {
	man, err := manifest.Read(paths.ManifestPath())
	if err != nil {
		return 0, fmt.Errorf("%w (or pass --seed)", err)
	}
	var echo struct {
		Seed int64 `json:"seed"`
	}
	if err := json.Unmarshal(man.ConfigEcho, &echo); err != nil {
		return 0, fmt.Errorf("decode config echo: %w", err)
	}
	return echo.Seed, nil
}
