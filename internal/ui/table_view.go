package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starchart/internal/chart"
	"github.com/litescript/ls-starchart/internal/state"
)

// Styles for the table view
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	mutedRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// TableModel lists the chart rows with their derived positions.
type TableModel struct {
	width    int
	height   int
	cursor   int
	snapshot state.Snapshot

	// onlyPlotted hides rows that are not drawn.
	onlyPlotted bool
}

// NewTableModel creates a table view.
func NewTableModel() TableModel {
	return TableModel{}
}

// Init implements the Bubble Tea model interface.
func (m TableModel) Init() tea.Cmd {
	return nil
}

// SetSize updates the viewport size.
func (m TableModel) SetSize(width, height int) TableModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with a new snapshot.
func (m TableModel) UpdateData(snapshot state.Snapshot) TableModel {
	m.snapshot = snapshot
	if n := len(m.rows()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	return m
}

func (m TableModel) rows() []chart.Row {
	if m.snapshot.Current == nil {
		return nil
	}
	if m.onlyPlotted {
		return m.snapshot.Current.Table.Renderable()
	}
	return m.snapshot.Current.Table.Rows
}

// Update handles messages.
func (m TableModel) Update(msg tea.Msg) (TableModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		n := len(m.rows())
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < n-1 {
				m.cursor++
			}
		case "home":
			m.cursor = 0
		case "end":
			if n > 0 {
				m.cursor = n - 1
			}
		case "v":
			m.onlyPlotted = !m.onlyPlotted
			m.cursor = 0
		}
	}
	return m, nil
}

// Selected returns the row under the cursor.
func (m TableModel) Selected() (chart.Row, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return chart.Row{}, false
	}
	return rows[m.cursor], true
}

// View renders the table.
func (m TableModel) View() string {
	if m.snapshot.Current == nil {
		return "Waiting for a chart...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderSummary())
	b.WriteString("\n\n")
	b.WriteString(m.renderRows())
	return b.String()
}

func (m TableModel) renderSummary() string {
	s := m.snapshot.Summary
	var b strings.Builder

	b.WriteString(titleStyle.Render(s.Title))
	b.WriteString("\n")

	plotted := 0.0
	if s.Total > 0 {
		plotted = float64(s.Renderable) / float64(s.Total)
	}
	b.WriteString(fmt.Sprintf("  Plotted   %s %d of %d (mag < %.1f, %s)\n",
		m.renderBar(plotted, 10), s.Renderable, s.Total, s.LimitingMagnitude,
		m.snapshot.Current.MagnitudeSource))
	b.WriteString(fmt.Sprintf("  Rejected  %d below, %d unplottable, %d bad rows\n",
		s.Below, s.Unrenderable, s.ParseErrors))
	if s.Renderable > 0 {
		b.WriteString(fmt.Sprintf("  Magnitude min %.2f / mean %.2f / max %.2f, brightest %s\n",
			s.MinMag, s.MeanMag, s.MaxMag, s.Brightest))
	}
	b.WriteString(fmt.Sprintf("  Sun       %.1f° (%s)", s.SunAltDeg, s.Sky))
	return b.String()
}

// renderBar draws a fraction in [0,1] as a fixed-width bar.
func (m TableModel) renderBar(frac float64, width int) string {
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD"))
	return "[" + style.Render(bar) + "]"
}

// renderAltitude shows altitude as a 5-cell sparkline level.
func renderAltitude(altDeg float64) string {
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	idx := int(altDeg / 90 * float64(len(chars)-1))
	if idx >= len(chars) {
		idx = len(chars) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return strings.Repeat(string(chars[idx]), 5)
}

func (m TableModel) renderRows() string {
	var b strings.Builder

	title := "Stars"
	if m.onlyPlotted {
		title = "Plotted stars"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	header := fmt.Sprintf("%-18s %-16s %6s %7s %7s %8s %8s %-5s",
		"Star", "Constellation", "Mag", "Alt", "Az", "X", "Y", "Alt")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	rows := m.rows()
	if len(rows) == 0 {
		b.WriteString("  No stars\n")
		return b.String()
	}

	maxRows := m.height - 12
	if maxRows < 5 {
		maxRows = 5
	}
	startIdx := 0
	if m.cursor >= maxRows {
		startIdx = m.cursor - maxRows + 1
	}
	endIdx := startIdx + maxRows
	if endIdx > len(rows) {
		endIdx = len(rows)
	}

	for i := startIdx; i < endIdx; i++ {
		r := rows[i]
		line := formatRow(r)

		switch {
		case i == m.cursor:
			b.WriteString(selectedRowStyle.Render(line))
		case r.Err != nil:
			b.WriteString(errorStyle.Render(line))
		case !r.Renderable():
			b.WriteString(mutedRowStyle.Render(line))
		default:
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if len(rows) > maxRows {
		b.WriteString(fmt.Sprintf("\n  Showing %d-%d of %d stars", startIdx+1, endIdx, len(rows)))
	}
	return b.String()
}

func formatRow(r chart.Row) string {
	name := truncate(r.Star.Name, 18)
	con := truncate(r.Star.ParentConstellation, 16)

	switch {
	case r.Err != nil:
		return fmt.Sprintf("%-18s %-16s %6.2f  %s", name, con, r.Star.ApparentMagnitude, truncate(r.Err.Error(), 40))
	case r.Point.Below:
		return fmt.Sprintf("%-18s %-16s %6.2f  never rises here", name, con, r.Star.ApparentMagnitude)
	case !r.Point.Planar.Renderable:
		return fmt.Sprintf("%-18s %-16s %6.2f %7.2f %7.2f %8s %8s", name, con,
			r.Star.ApparentMagnitude, r.Point.AltDeg, r.Point.AzDeg, "-", "-")
	default:
		return fmt.Sprintf("%-18s %-16s %6.2f %7.2f %7.2f %8.4f %8.4f %s", name, con,
			r.Star.ApparentMagnitude, r.Point.AltDeg, r.Point.AzDeg,
			r.Point.Planar.X, r.Point.Planar.Y, renderAltitude(r.Point.AltDeg))
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
