package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// addGitignoreEntry appends the output folder to the project's .gitignore as a directory
// pattern. It reports false when an equivalent entry is already present.
func addGitignoreEntry(projectRoot, outputDir string) (bool, error) {
	entry, err := gitignoreDirEntry(projectRoot, outputDir)
	if err != nil {
		return false, err
	}

	path := filepath.Join(projectRoot, ".gitignore")
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("read .gitignore: %w", err)
	}
	bare := strings.TrimSuffix(entry, "/")
	for _, line := range strings.Split(string(existing), "\n") {
		switch strings.TrimSpace(line) {
		case entry, bare, "/" + bare, "/" + entry:
			return false, nil
		}
	}

	updated := string(existing)
	if updated != "" && !strings.HasSuffix(updated, "\n") {
		updated += "\n"
	}
	updated += entry + "\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return false, fmt.Errorf("write .gitignore: %w", err)
	}
	return true, nil
}

// gitignoreDirEntry converts an output folder into a slash-separated pattern relative to the
// project root, ending in "/".
func gitignoreDirEntry(projectRoot, outputDir string) (string, error) {
	if strings.TrimSpace(outputDir) == "" {
		return "", fmt.Errorf("output dir is required")
	}
	clean := filepath.Clean(outputDir)
	if filepath.IsAbs(clean) {
		rel, err := filepath.Rel(projectRoot, clean)
		if err != nil {
			return "", fmt.Errorf("resolve output dir: %w", err)
		}
		clean = rel
	}
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("output dir %q is outside the project root", outputDir)
	}
	return filepath.ToSlash(clean) + "/", nil
}
