//go:build cucumber

package cucumber

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"conflictsuite/internal/cli"
)

// iRunCommand executes a CLI command for the scenario.
func (s *featureState) iRunCommand(command string) error {
	args := strings.Fields(command)
	if len(args) == 0 {
		return fmt.Errorf("command is empty")
	}
	if args[0] == "conflictsuite" {
		args = args[1:]
	}
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = cli.Run(args, &s.stdout, &s.stderr)
	return nil
}

// iRemoveTheLastRowOfTheSuite truncates the emitted suite by one line.
func (s *featureState) iRemoveTheLastRowOfTheSuite() error {
	dir, err := s.outputDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "conflict_suite.jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read suite: %w", err)
	}
	lines := strings.SplitAfter(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) < 2 {
		return fmt.Errorf("suite has %d rows", len(lines))
	}
	return os.WriteFile(path, []byte(strings.Join(lines[:len(lines)-1], "")), 0o644)
}
