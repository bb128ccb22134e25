package report

import (
	"fmt"

	"conflictsuite/internal/variant"
)

// formatShare returns count as a percentage of total, or "" without a total.
func formatShare(count, total int) string {
	if total <= 0 {
		return ""
	}
	return fmt.Sprintf("%.1f%%", float64(count)/float64(total)*100)
}

// severityNote describes what a severity level means for the declared corruption family.
func severityNote(corruptionFamily, label string) string {
	severity := severityLabel(label)
	if severity <= 0 {
		return "uncorrupted"
	}
	if corruptionFamily != variant.DefaultCorruptionFamily {
		return corruptionFamily
	}
	return fmt.Sprintf("vision rows occlude %.0f%% of the image", occlusionArea(severity)*100)
}

// occlusionArea is the image fraction the occlusion renderer covers at each severity.
func occlusionArea(severity int) float64 {
	switch severity {
	case 1:
		return 0.15
	case 2:
		return 0.30
	case 3:
		return 0.45
	default:
		return 0
	}
}
