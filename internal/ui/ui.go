// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starchart/internal/astro"
	"github.com/litescript/ls-starchart/internal/chart"
	"github.com/litescript/ls-starchart/internal/geocode"
	"github.com/litescript/ls-starchart/internal/state"
	"github.com/litescript/ls-starchart/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewChart ViewMode = iota
	ViewTable
	ViewCompare
)

const (
	magnitudeStep = 0.5
	minMagnitude  = chart.MinLimitingMagnitude
	timeStep      = time.Hour

	defaultRequestTimeout = 20 * time.Second
)

// Charter builds charts. *chart.Service satisfies it.
type Charter interface {
	Chart(ctx context.Context, req chart.Request) (*chart.Chart, error)
}

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// liveTickMsg rebuilds the chart for the current time in live mode.
	liveTickMsg time.Time

	// ChartMsg carries the outcome of a chart request.
	ChartMsg struct {
		Chart    *chart.Chart
		Duration time.Duration
		Err      error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state   *state.Manager
	charts  Charter
	timeout time.Duration

	// req is the request behind the displayed chart; keys edit it and
	// rebuild.
	req chart.Request

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int
	building  bool
	live      bool
	bortleIdx int // index into astro.BortleScales, -1 before first use
	presetIdx int // index into geocode.Presets, -1 before first use

	// Sub-models
	chartView ChartViewModel
	table     TableModel
	compare   CompareModel

	snapshot state.Snapshot
}

// New creates a new root UI model. The first chart is built from req.
func New(stateMgr *state.Manager, charts Charter, req chart.Request, timeout time.Duration) Model {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return Model{
		state:     stateMgr,
		charts:    charts,
		timeout:   timeout,
		req:       req,
		viewMode:  ViewChart,
		bortleIdx: -1,
		presetIdx: -1,
		chartView: NewChartViewModel(),
		table:     NewTableModel(),
		compare:   NewCompareModel(),
	}
}

// Request returns the request the next rebuild will use.
func (m Model) Request() chart.Request {
	return m.req
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.buildCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1":
			m.viewMode = ViewChart
		case "2", "t":
			m.viewMode = ViewTable
		case "3", "o":
			m.viewMode = ViewCompare
		case "tab":
			m.viewMode = (m.viewMode + 1) % 3

		case "+", "=":
			m.req.LimitingMagnitude = chart.Magnitude(m.currentLimit() + magnitudeStep)
			m.req.Bortle, m.req.UseSkyBrightness = 0, false
			cmds = append(cmds, m.rebuild())
		case "-", "_":
			mag := m.currentLimit() - magnitudeStep
			if mag < minMagnitude {
				mag = minMagnitude
			}
			m.req.LimitingMagnitude = chart.Magnitude(mag)
			m.req.Bortle, m.req.UseSkyBrightness = 0, false
			cmds = append(cmds, m.rebuild())

		case "b":
			scales := astro.BortleScales()
			m.bortleIdx = (m.bortleIdx + 1) % len(scales)
			m.req.Bortle = scales[m.bortleIdx]
			m.req.LimitingMagnitude, m.req.UseSkyBrightness = nil, false
			m.statusMsg = fmt.Sprintf("Bortle class %g", m.req.Bortle)
			cmds = append(cmds, m.rebuild())
		case "B":
			m.req.UseSkyBrightness = true
			m.req.LimitingMagnitude, m.req.Bortle = nil, 0
			m.statusMsg = "Looking up sky brightness..."
			cmds = append(cmds, m.rebuild())

		case "]":
			m.live = false
			m.req.Time = m.currentTime().Add(timeStep)
			cmds = append(cmds, m.rebuild())
		case "[":
			m.live = false
			m.req.Time = m.currentTime().Add(-timeStep)
			cmds = append(cmds, m.rebuild())
		case "n":
			m.req.Time = time.Time{}
			cmds = append(cmds, m.rebuild())

		case "p":
			m.presetIdx = (m.presetIdx + 1) % len(geocode.Presets)
			m.req.Location, m.req.Address = nil, ""
			m.req.Preset = geocode.Presets[m.presetIdx].Name
			cmds = append(cmds, m.rebuild())

		case "L":
			m.live = !m.live
			if m.live {
				m.req.Time = time.Time{}
				m.statusMsg = fmt.Sprintf("Live: following the clock every %v", m.state.RefreshInterval())
				cmds = append(cmds, m.rebuild(), m.liveTickCmd())
			} else {
				m.statusMsg = "Live mode off"
			}

		case "s":
			if m.state.Store() {
				m.statusMsg = "Chart stored for comparison"
			} else {
				m.statusMsg = "Nothing to store yet"
			}
			m = m.refresh()
		case "x":
			m.state.ClearStored()
			m.statusMsg = "Stored chart cleared"
			m = m.refresh()

		case "r":
			cmds = append(cmds, m.rebuild())

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Header ~3 lines, footer ~2 lines
		contentHeight := msg.Height - 6
		m.chartView = m.chartView.SetSize(msg.Width, contentHeight)
		m.table = m.table.SetSize(msg.Width, contentHeight)
		m.compare = m.compare.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		m.animTick++

	case liveTickMsg:
		if m.live {
			cmds = append(cmds, m.rebuild(), m.liveTickCmd())
		}

	case ChartMsg:
		m.building = false
		m.state.Update(msg.Chart, msg.Duration, msg.Err)
		if msg.Err != nil {
			m.statusMsg = describeError(msg.Err)
		} else if msg.Chart != nil {
			if !m.live {
				// Pin the instant so later edits keep the same sky.
				m.req.Time = msg.Chart.Table.Observer.Time
			}
			if strings.HasPrefix(m.statusMsg, "Looking up") {
				m.statusMsg = fmt.Sprintf("Sky brightness: Bortle %g", msg.Chart.Bortle)
			}
		}
		m = m.refresh()

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// refresh pushes the latest state into the sub-models.
func (m Model) refresh() Model {
	m.snapshot = m.state.Snapshot()
	m.chartView = m.chartView.UpdateData(m.snapshot)
	m.table = m.table.UpdateData(m.snapshot)
	m.compare = m.compare.UpdateData(m.state)
	return m
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewChart:
		m.chartView, cmd = m.chartView.Update(msg)
	case ViewTable:
		m.table, cmd = m.table.Update(msg)
	case ViewCompare:
		m.compare, cmd = m.compare.Update(msg)
	}
	return cmd
}

func (m Model) currentLimit() float64 {
	if m.snapshot.Current != nil {
		return m.snapshot.Current.Table.LimitingMagnitude
	}
	if m.req.LimitingMagnitude != nil {
		return *m.req.LimitingMagnitude
	}
	return chart.DefaultLimitingMagnitude
}

func (m Model) currentTime() time.Time {
	if !m.req.Time.IsZero() {
		return m.req.Time
	}
	if m.snapshot.Current != nil {
		return m.snapshot.Current.Table.Observer.Time
	}
	return time.Now()
}

// rebuild marks a request in flight and returns the command that runs it.
func (m *Model) rebuild() tea.Cmd {
	m.building = true
	return m.buildCmd()
}

// buildCmd runs the chart request off the UI loop.
func (m Model) buildCmd() tea.Cmd {
	charts, req, timeout := m.charts, m.req, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		c, err := charts.Chart(ctx, req)
		return ChartMsg{Chart: c, Duration: time.Since(start), Err: err}
	}
}

func (m Model) liveTickCmd() tea.Cmd {
	interval := m.state.RefreshInterval()
	if interval <= 0 {
		interval = time.Minute
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return liveTickMsg(t)
	})
}

func describeError(err error) string {
	switch {
	case errors.Is(err, geocode.ErrNotFound):
		return "Invalid address"
	case errors.Is(err, chart.ErrNoSkyBrightness):
		return "Sky brightness lookup not configured"
	default:
		return "Error: " + err.Error()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewChart:
		content = m.chartView.View()
	case ViewTable:
		content = m.table.View()
	case ViewCompare:
		content = m.compare.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs() + "\n"
}

func (m Model) renderLogo() string {
	const logo = "✶ LS-STARCHART ✶"

	var b strings.Builder
	b.WriteString("  ")
	runes := []rune(logo)
	for col, r := range runes {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(gradientColor(col, len(runes))))
		b.WriteString(style.Render(string(r)))
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  horizon star charts · v%s", version.Version)))
	b.WriteString("\n")
	return b.String()
}

// gradientColor blends blue -> violet -> pink across a line of the given
// width.
func gradientColor(col, width int) string {
	xRatio := float64(col) / float64(width)

	var r, g, b float64
	if xRatio < 0.5 {
		t := xRatio / 0.5
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else {
		t := (xRatio - 0.5) / 0.5
		r = 139 + t*(236-139)
		g = 92 + t*(72-92)
		b = 246 + t*(153-246)
	}

	return fmt.Sprintf("#%02X%02X%02X", clampByte(r), clampByte(g), clampByte(b))
}

func clampByte(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return int(v)
	}
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Chart", "[2] Table", "[3] Compare"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.building:
		status = accentStyle.Render(spinner) + dimStyle.Render(" building chart...")
	case m.snapshot.LastError != nil:
		status = errStyle.Render(describeError(m.snapshot.LastError))
	case m.snapshot.Current != nil:
		status = dimStyle.Render(fmt.Sprintf("built in %v", m.snapshot.BuildDuration.Round(time.Millisecond)))
		if m.live {
			status = accentStyle.Render("● live ") + status
		}
	default:
		status = accentStyle.Render(spinner) + dimStyle.Render(" waiting for chart...")
	}

	var help string
	switch m.viewMode {
	case ViewChart:
		help = "j/k: focus | c: constellation | l: labels | +/-: mag | [/]: hour | b/B: bortle/sky | p: preset | s: store | L: live"
	case ViewTable:
		help = "↑↓: navigate | v: plotted only | +/-: mag | [/]: hour"
	case ViewCompare:
		help = "s: store current | x: clear stored | ↑↓: scroll"
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + dimStyle.Render(help)
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
