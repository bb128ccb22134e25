//go:build cucumber

package cucumber

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"conflictsuite/internal/manifest"
)

// theExitCodeIs asserts the CLI exit code.
func (s *featureState) theExitCodeIs(code int) error {
	if s.exitCode != code {
		return fmt.Errorf("expected exit code %d, got %d (stderr: %s)", code, s.exitCode, s.stderr.String())
	}
	return nil
}

// theExitCodeIsNonZero asserts that the CLI returned an error code.
func (s *featureState) theExitCodeIsNonZero() error {
	if s.exitCode == 0 {
		return fmt.Errorf("expected non-zero exit code")
	}
	return nil
}

func (s *featureState) theOutputContains(text string) error {
	if !strings.Contains(s.stdout.String(), text) {
		return fmt.Errorf("expected %q in output, got %q", text, s.stdout.String())
	}
	return nil
}

func (s *featureState) theErrorOutputContains(text string) error {
	if !strings.Contains(s.stderr.String(), text) {
		return fmt.Errorf("expected %q in error output, got %q", text, s.stderr.String())
	}
	return nil
}

// theOutputListsCommands asserts the output contains expected command names.
func (s *featureState) theOutputListsCommands(table *godog.Table) error {
	output := s.stdout.String()
	for _, row := range table.Rows {
		for _, cell := range row.Cells {
			command := strings.TrimSpace(cell.Value)
			if command == "" {
				continue
			}
			if !strings.Contains(output, command) {
				return fmt.Errorf("expected command %q in output", command)
			}
		}
	}
	return nil
}

// readManifest loads the manifest of the scenario's output directory, or of dir under the
// project when given.
func (s *featureState) readManifest(dir string) (manifest.Manifest, error) {
	root, err := s.outputDir()
	if err != nil {
		return manifest.Manifest{}, err
	}
	if dir != "" {
		root = filepath.Join(s.projectDir, dir)
	}
	return manifest.Read(filepath.Join(root, "manifest.json"))
}

func (s *featureState) theManifestReportsVariants(n int) error {
	man, err := s.readManifest("")
	if err != nil {
		return err
	}
	if man.Totals.Variants != n {
		return fmt.Errorf("expected %d variants, got %d", n, man.Totals.Variants)
	}
	return nil
}

func (s *featureState) theManifestCountsRows(n int, dimension, label string) error {
	man, err := s.readManifest("")
	if err != nil {
		return err
	}
	counts := map[string]map[string]int{
		"split":    man.Counts.Split,
		"operator": man.Counts.Operator,
		"family":   man.Counts.Family,
		"severity": man.Counts.Severity,
	}[dimension]
	if counts[label] != n {
		return fmt.Errorf("expected %d rows for %s %q, got %d", n, dimension, label, counts[label])
	}
	return nil
}

func (s *featureState) theManifestCountsDropped(n int) error {
	man, err := s.readManifest("")
	if err != nil {
		return err
	}
	if man.Totals.Dropped != n {
		return fmt.Errorf("expected %d dropped records, got %d (%v)", n, man.Totals.Dropped, man.Drops)
	}
	return nil
}

func (s *featureState) everyIntegrityCheckPassed() error {
	man, err := s.readManifest("")
	if err != nil {
		return err
	}
	for _, name := range manifest.CheckNames {
		if status, ok := man.IntegrityChecks[name]; !ok || status.Failed() {
			return fmt.Errorf("check %s is %q", name, man.IntegrityChecks[name])
		}
	}
	return nil
}

func (s *featureState) iRememberTheOutputHash() error {
	man, err := s.readManifest("")
	if err != nil {
		return err
	}
	s.rememberedHash = man.OutputHash
	return nil
}

func (s *featureState) theManifestInHasTheRememberedHash(dir string) error {
	man, err := s.readManifest(dir)
	if err != nil {
		return err
	}
	if s.rememberedHash == "" || man.OutputHash != s.rememberedHash {
		return fmt.Errorf("expected output hash %q, got %q", s.rememberedHash, man.OutputHash)
	}
	return nil
}

func (s *featureState) theFileExistsInTheOutputDirectory(name string) error {
	dir, err := s.outputDir()
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("expected %s: %w", name, err)
	}
	return nil
}
