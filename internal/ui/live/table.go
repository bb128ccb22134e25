package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// defaultColumns returns the stage table layout.
func defaultColumns() []table.Column {
	return columnsForWidth(80)
}

// columnsForWidth fits the progress column to the terminal.
func columnsForWidth(width int) []table.Column {
	progress := width - 14 - 10 - 12 - 8
	if progress < 12 {
		progress = 12
	}
	return []table.Column{
		{Title: "Stage", Width: 14},
		{Title: "Status", Width: 10},
		{Title: "Progress", Width: progress},
		{Title: "Elapsed", Width: 12},
	}
}

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, now time.Time, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		rows = append(rows, table.Row{
			string(row.Stage),
			formatStatus(row, noColor),
			formatProgress(row),
			formatRowDuration(row, now),
		})
	}
	return rows
}
