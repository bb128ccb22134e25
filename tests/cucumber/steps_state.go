//go:build cucumber

package cucumber

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cucumber/godog"
)

// featureState holds scenario state for cucumber CLI tests.
type featureState struct {
	projectDir     string
	configPath     string
	previousWD     string
	stdout         bytes.Buffer
	stderr         bytes.Buffer
	exitCode       int
	rememberedHash string
}

// InitializeScenario wires cucumber steps to the feature state.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &featureState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		state.cleanup()
		return ctx, nil
	})

	ctx.Step(`^a project with (\d+) fixture images$`, state.aProjectWithFixtureImages)
	ctx.Step(`^the config sets "([^"]+)" to "([^"]+)"$`, state.theConfigSets)
	ctx.Step(`^I run "([^"]+)"$`, state.iRunCommand)
	ctx.Step(`^I remove the last row of the suite$`, state.iRemoveTheLastRowOfTheSuite)
	ctx.Step(`^I remember the output hash$`, state.iRememberTheOutputHash)
	ctx.Step(`^the exit code is (\d+)$`, state.theExitCodeIs)
	ctx.Step(`^the exit code is non-zero$`, state.theExitCodeIsNonZero)
	ctx.Step(`^the output contains "([^"]+)"$`, state.theOutputContains)
	ctx.Step(`^the error output contains "([^"]+)"$`, state.theErrorOutputContains)
	ctx.Step(`^the output lists these commands:$`, state.theOutputListsCommands)
	ctx.Step(`^the manifest reports (\d+) variants$`, state.theManifestReportsVariants)
	ctx.Step(`^the manifest counts (\d+) rows for (split|operator|family|severity) "([^"]+)"$`, state.theManifestCountsRows)
	ctx.Step(`^the manifest counts (\d+) dropped records$`, state.theManifestCountsDropped)
	ctx.Step(`^every integrity check passed$`, state.everyIntegrityCheckPassed)
	ctx.Step(`^the manifest in "([^"]+)" has the remembered output hash$`, state.theManifestInHasTheRememberedHash)
	ctx.Step(`^the file "([^"]+)" exists in the output directory$`, state.theFileExistsInTheOutputDirectory)
}

// reset clears buffers and resets state before each scenario.
func (s *featureState) reset() {
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = 0
	s.projectDir = ""
	s.configPath = ""
	s.previousWD = ""
	s.rememberedHash = ""
}

// cleanup restores the working directory and removes temporary files.
func (s *featureState) cleanup() {
	if s.previousWD != "" {
		_ = os.Chdir(s.previousWD)
	}
	if s.projectDir != "" {
		_ = os.RemoveAll(s.projectDir)
	}
}

// outputDir returns the configured output directory of the scenario project.
func (s *featureState) outputDir() (string, error) {
	if s.projectDir == "" {
		return "", fmt.Errorf("no project in this scenario")
	}
	return filepath.Join(s.projectDir, projectOutputDir), nil
}
