package live

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the run header line.
func renderHeader(state State, now time.Time, noColor bool) string {
	line := "Conflict suite build | seed " + fmtInt64(state.Seed) + " | workers " + fmtInt(state.Workers)
	if !state.StartedAt.IsZero() {
		line += " | Elapsed: " + now.Sub(state.StartedAt).Round(100*time.Millisecond).String()
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderSummary renders the stage counts line.
func renderSummary(state State, noColor bool) string {
	line := "Stages: " + fmtInt(state.Completed()) + "/" + fmtInt(len(state.Rows)) + " | Output: " + state.OutputDir
	if state.OutputHash != "" {
		line += " | Hash: " + state.OutputHash
	}
	return stylize(line, noColor, lipgloss.Color("242"))
}

// renderFooter renders the last event line.
func renderFooter(state State, noColor bool) string {
	if state.LastEvent == "" {
		return ""
	}
	return stylize("Last event: "+state.LastEvent, noColor, lipgloss.Color("244"))
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func fmtInt64(value int64) string {
	return strconv.FormatInt(value, 10)
}
