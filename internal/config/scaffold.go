package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfig = `version: 1
seed: 7
workers: 0
output_dir: %q

inputs:
  format: jsonl
  questions:
    - %q
  captions:
    - %q

families: [existence, count, attribute_color]
split_ratios:
  train: 0.70
  val: 0.15
  test_id: 0.15
hard_swap_jaccard_range: [0.2, 0.7]
held_out_family: attribute_color
held_out_severity: 3
enable_both_corrupted: false
enable_hard_swap_ood: false
max_per_family: 0
consistency_filter: true
enforce_template_disjointness: false

vision:
  corruption_family: occlusion
  severities: [1, 2, 3]
`

// ScaffoldOptions are the values asked for by init.
type ScaffoldOptions struct {
	OutputDir string
	Questions string
	Captions  string
}

// DefaultScaffoldOptions returns the paths written when init runs without answers.
func DefaultScaffoldOptions() ScaffoldOptions {
	return ScaffoldOptions{
		OutputDir: DefaultOutputDir,
		Questions: "data/questions.jsonl",
		Captions:  "data/captions.jsonl",
	}
}

// Scaffold writes a starter config at path. It refuses to overwrite an existing file.
func Scaffold(path string, opts ScaffoldOptions) error {
	if path == "" {
		return fmt.Errorf("config path is required")
	}
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", path)
		}
		return fmt.Errorf("config file already exists at %q", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(fmt.Sprintf(defaultConfig, opts.OutputDir, opts.Questions, opts.Captions)), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
