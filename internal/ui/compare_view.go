package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starchart/internal/chart"
	"github.com/litescript/ls-starchart/internal/state"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1)

	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d0c8ff"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// CompareModel shows the current chart next to the stored one, plus the
// event log.
type CompareModel struct {
	width    int
	height   int
	snapshot state.Snapshot
	cmp      state.Comparison
	hasCmp   bool
	history  []state.HistoryEntry
	scroll   int
}

// NewCompareModel creates a comparison view.
func NewCompareModel() CompareModel {
	return CompareModel{}
}

// SetSize updates the viewport size.
func (m CompareModel) SetSize(width, height int) CompareModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData refreshes the view from the state manager.
func (m CompareModel) UpdateData(mgr *state.Manager) CompareModel {
	m.snapshot = mgr.Snapshot()
	m.cmp, m.hasCmp = mgr.Compare()
	m.history = mgr.History()
	return m
}

// Update handles messages.
func (m CompareModel) Update(msg tea.Msg) (CompareModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "down", "j":
			m.scroll++
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		}
	}
	return m, nil
}

// View renders the comparison.
func (m CompareModel) View() string {
	var b strings.Builder

	if m.snapshot.Stored == nil {
		b.WriteString(titleStyle.Render("Compare"))
		b.WriteString("\n  No stored chart. Press [s] on a chart to keep it for comparison.\n\n")
	} else {
		left := summaryPanel("Current", m.snapshot.Current, m.snapshot.Summary)
		right := summaryPanel("Stored", m.snapshot.Stored, m.snapshot.StoredSummary)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
		b.WriteString("\n")
		if m.hasCmp {
			b.WriteString(m.renderDiff())
		}
		b.WriteString("\n")
	}

	b.WriteString(m.renderEvents())
	return b.String()
}

func summaryPanel(label string, c *chart.Chart, s chart.Summary) string {
	if c == nil {
		return panelStyle.Render(label + "\n(none)")
	}
	lines := []string{
		titleStyle.Render(label),
		truncate(c.Title(), 48),
		fmt.Sprintf("mag < %.1f (%s)", s.LimitingMagnitude, c.MagnitudeSource),
		fmt.Sprintf("%d plotted of %d", s.Renderable, s.Total),
		fmt.Sprintf("brightest %s", s.Brightest),
		fmt.Sprintf("sun %.1f° (%s)", s.SunAltDeg, s.Sky),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m CompareModel) renderDiff() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %d in both | %s | %s\n",
		len(m.cmp.Common),
		addedStyle.Render(fmt.Sprintf("+%d only now", len(m.cmp.OnlyCurrent))),
		removedStyle.Render(fmt.Sprintf("-%d only stored", len(m.cmp.OnlyStored)))))

	var lines []string
	for _, name := range m.cmp.OnlyCurrent {
		lines = append(lines, addedStyle.Render("  + "+name))
	}
	for _, name := range m.cmp.OnlyStored {
		lines = append(lines, removedStyle.Render("  - "+name))
	}

	maxLines := m.height - 20
	if maxLines < 5 {
		maxLines = 5
	}
	start := m.scroll
	if start > len(lines) {
		start = len(lines)
	}
	end := start + maxLines
	if end > len(lines) {
		end = len(lines)
	}
	for _, l := range lines[start:end] {
		b.WriteString(l + "\n")
	}
	if len(lines) > maxLines {
		b.WriteString(fmt.Sprintf("  Showing %d-%d of %d differences\n", start+1, end, len(lines)))
	}
	return b.String()
}

func (m CompareModel) renderEvents() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Events"))
	b.WriteString("\n")

	events := m.snapshot.Events
	if len(events) == 0 {
		b.WriteString("  No events\n")
		return b.String()
	}
	if len(events) > 8 {
		events = events[len(events)-8:]
	}
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		line := fmt.Sprintf("  %s %-16s %s", e.Timestamp.Format("15:04:05"), e.Type, e.Location)
		if e.Detail != "" {
			line += " (" + truncate(e.Detail, 40) + ")"
		}
		if e.Type == state.EventRequestFailed {
			b.WriteString(errorStyle.Render(line))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if n := len(m.history); n > 0 {
		b.WriteString(fmt.Sprintf("\n  %d charts this session, last: %s\n", n, truncate(m.history[n-1].Title, 60)))
	}
	return b.String()
}
