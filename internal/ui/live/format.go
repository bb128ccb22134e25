package live

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const progressWidth = 20

// fmtInt converts an int to string.
func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// formatProgress renders a bar and a done/total count.
func formatProgress(row StageRow) string {
	if row.Total <= 0 {
		if row.Status == StatusDone {
			return fmtInt(row.Done)
		}
		return ""
	}
	done := row.Done
	if row.Status == StatusDone {
		done = row.Total
	}
	filled := done * progressWidth / row.Total
	if filled > progressWidth {
		filled = progressWidth
	}
	bar := strings.Repeat("#", filled) + strings.Repeat(".", progressWidth-filled)
	return bar + " " + fmtInt(done) + "/" + fmtInt(row.Total)
}

// formatDuration renders a rounded duration for display.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(time.Millisecond).String()
}

// formatRowDuration returns elapsed or running time for a row.
func formatRowDuration(row StageRow, now time.Time) string {
	switch row.Status {
	case StatusDone, StatusFailed:
		return formatDuration(row.Elapsed)
	case StatusRunning:
		if !row.StartedAt.IsZero() {
			return formatDuration(now.Sub(row.StartedAt))
		}
	}
	return ""
}

// formatStatus renders a status string for a row.
func formatStatus(row StageRow, noColor bool) string {
	text := string(row.Status)
	if noColor {
		return text
	}
	return statusStyle(row.Status).Render(text)
}

// statusStyle selects a style for a given status.
func statusStyle(status StageStatus) lipgloss.Style {
	color := lipgloss.Color("246")
	switch status {
	case StatusRunning:
		color = lipgloss.Color("33")
	case StatusDone:
		color = lipgloss.Color("42")
	case StatusFailed:
		color = lipgloss.Color("196")
	}
	return lipgloss.NewStyle().Foreground(color)
}
