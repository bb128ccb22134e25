package runner

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputPaths describes filesystem locations for build outputs.
type OutputPaths struct {
	Root string
}

// NewOutputPaths validates and constructs output paths metadata.
func NewOutputPaths(root string) (OutputPaths, error) {
	if strings.TrimSpace(root) == "" {
		return OutputPaths{}, fmt.Errorf("output root is empty")
	}
	return OutputPaths{Root: root}, nil
}

// BasesPath returns the path to base_examples.jsonl.
func (o OutputPaths) BasesPath() string {
	return filepath.Join(o.Root, "base_examples.jsonl")
}

// BaseStatsPath returns the path to the base build statistics.
func (o OutputPaths) BaseStatsPath() string {
	return filepath.Join(o.Root, "base_stats.json")
}

// SuitePath returns the path to conflict_suite.jsonl.
func (o OutputPaths) SuitePath() string {
	return filepath.Join(o.Root, "conflict_suite.jsonl")
}

// ManifestPath returns the path to manifest.json.
func (o OutputPaths) ManifestPath() string {
	return filepath.Join(o.Root, "manifest.json")
}

// ReportPath returns the path to the HTML report.
func (o OutputPaths) ReportPath() string {
	return filepath.Join(o.Root, "report.html")
}

// MetricsPath returns the path to the Prometheus textfile.
func (o OutputPaths) MetricsPath() string {
	return filepath.Join(o.Root, "metrics.prom")
}

// PilotPath returns the path to a pilot sample of the suite.
func (o OutputPaths) PilotPath() string {
	return filepath.Join(o.Root, "pilot_suite.jsonl")
}

// PilotManifestPath returns the path to the pilot sampling manifest.
func (o OutputPaths) PilotManifestPath() string {
	return filepath.Join(o.Root, "pilot_manifest.json")
}
