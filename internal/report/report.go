// Package report renders a built suite's manifest for people: an HTML page and a console
// summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"conflictsuite/internal/config"
	"conflictsuite/internal/manifest"
)

// View is the manifest reshaped into sorted tables.
type View struct {
	Title      string
	OutputHash string
	ImageHash  string
	Totals     manifest.Totals
	Checks     []Row
	Splits     []Row
	Operators  []Row
	Families   []Row
	Severities []Row
	Drops      []Row
	Fallbacks  []Row
	Echo       config.Echo
}

// Row is one label with its count, share and optional note.
type Row struct {
	Label string
	Count int
	Share string
	Note  string
}

// NewView builds the view of man.
func NewView(man manifest.Manifest) View {
	view := View{
		Title:      "Conflict suite",
		OutputHash: man.OutputHash,
		ImageHash:  man.ImageHash,
		Totals:     man.Totals,
		Splits:     countRows(man.Counts.Split, man.Totals.Variants),
		Operators:  countRows(man.Counts.Operator, man.Totals.Variants),
		Families:   countRows(man.Counts.Family, man.Totals.Variants),
		Severities: countRows(man.Counts.Severity, man.Totals.Variants),
		Drops:      countRows(man.Drops, man.Totals.RawRecords),
		Fallbacks:  countRows(man.Fallbacks, 0),
	}
	if len(man.ConfigEcho) > 0 {
		_ = json.Unmarshal(man.ConfigEcho, &view.Echo)
	}
	for i, row := range view.Severities {
		view.Severities[i].Note = severityNote(view.Echo.Vision.CorruptionFamily, row.Label)
	}
	for _, name := range manifest.CheckNames {
		status, ok := man.IntegrityChecks[name]
		if !ok {
			continue
		}
		view.Checks = append(view.Checks, Row{Label: name, Note: string(status)})
	}
	return view
}

func countRows(counts map[string]int, total int) []Row {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	rows := make([]Row, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, Row{Label: label, Count: counts[label], Share: formatShare(counts[label], total)})
	}
	return rows
}

// Load reads the manifest at path. A directory resolves to its manifest.json.
func Load(path string) (manifest.Manifest, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return manifest.Manifest{}, fmt.Errorf("manifest path is required")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "manifest.json")
	}
	return manifest.Read(path)
}

func severityLabel(label string) int {
	n, err := strconv.Atoi(label)
	if err != nil {
		return -1
	}
	return n
}
