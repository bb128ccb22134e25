package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"conflictsuite/internal/manifest"
)

// Summary renders the end-of-run console summary: totals, a split by operator table and any
// failed checks.
func Summary(man manifest.Manifest, noColor bool) string {
	view := NewView(man)
	var b strings.Builder
	b.WriteString(stylize(fmt.Sprintf("Suite %s", shortHash(view.OutputHash)), noColor, lipgloss.Color("33")))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Raw: %d  Base: %d  Variants: %d  Dropped: %d\n",
		view.Totals.RawRecords, view.Totals.BaseExamples, view.Totals.Variants, view.Totals.Dropped))

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Split", Width: 20},
			{Title: "Rows", Width: 8},
			{Title: "Share", Width: 8},
		}),
		table.WithRows(tableRows(view.Splits)),
		table.WithHeight(len(view.Splits)+3),
		table.WithStyles(tableStyles(noColor)),
	)
	b.WriteString(t.View())
	b.WriteString("\n")

	var failed []string
	passed := 0
	for _, check := range view.Checks {
		switch manifest.Status(check.Note) {
		case manifest.StatusPass:
			passed++
		case manifest.StatusSkip:
		default:
			failed = append(failed, check.Label)
		}
	}
	if len(failed) == 0 {
		b.WriteString(stylize(fmt.Sprintf("All %d integrity checks passed", passed), noColor, lipgloss.Color("34")))
	} else {
		b.WriteString(stylize("Failed checks: "+strings.Join(failed, ", "), noColor, lipgloss.Color("160")))
	}
	b.WriteString("\n")
	return b.String()
}

func tableRows(rows []Row) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, table.Row{row.Label, fmt.Sprint(row.Count), row.Share})
	}
	return out
}

func tableStyles(noColor bool) table.Styles {
	styles := table.DefaultStyles()
	if noColor {
		styles.Selected = lipgloss.NewStyle()
		return styles
	}
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	styles.Selected = lipgloss.NewStyle()
	return styles
}

func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
