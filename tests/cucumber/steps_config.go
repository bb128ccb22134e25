//go:build cucumber

package cucumber

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"conflictsuite/internal/config"
	"conflictsuite/internal/testutil"
)

// projectOutputDir is the output folder written into scenario configs.
const projectOutputDir = "suite"

// aProjectWithFixtureImages writes a fixture corpus and config into a temp project and makes it
// the working directory.
func (s *featureState) aProjectWithFixtureImages(images int) error {
	dir, err := os.MkdirTemp("", "conflictsuite-feature-*")
	if err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}
	s.projectDir = dir
	questions, captions, err := testutil.SuiteFixture(images).Write(filepath.Join(dir, "data"))
	if err != nil {
		return err
	}
	s.configPath = config.ConfigPath(dir)
	if err := config.Scaffold(s.configPath, config.ScaffoldOptions{
		OutputDir: projectOutputDir,
		Questions: questions,
		Captions:  captions,
	}); err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	s.previousWD = wd
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("chdir project: %w", err)
	}
	return nil
}

// theConfigSets replaces a top-level scalar in the scenario config, appending it when absent.
func (s *featureState) theConfigSets(key, value string) error {
	if s.configPath == "" {
		return fmt.Errorf("no config in this scenario")
	}
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	line := key + ": " + value
	pattern := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(key) + `:.*$`)
	var updated []byte
	if pattern.Match(data) {
		updated = pattern.ReplaceAll(data, []byte(line))
	} else {
		updated = append(data, []byte(line+"\n")...)
	}
	return os.WriteFile(s.configPath, updated, 0o644)
}
