package ui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starchart/internal/chart"
	"github.com/litescript/ls-starchart/internal/state"
)

const (
	// Star glyphs by magnitude
	glyphStarBright  = '✶' // chart.BrightMagnitude or brighter
	glyphStarMedium  = '✸' // mag 1-3
	glyphStarDim     = '•' // mag 3-4.5
	glyphStarVeryDim = '·' // fainter
	glyphFocused     = '◆'
	glyphRim         = '·'

	colorStarBright  = "255"
	colorStarMedium  = "250"
	colorStarDim     = "244"
	colorStarVeryDim = "240"
	colorHighlight   = "#d0c8ff"
	colorFocused     = "229" // bright gold
	colorRim         = "60"  // muted purple
	colorBackground  = "236"

	// constellationMinStars mirrors the quick-pick list: only constellations
	// with more plotted stars than this are offered.
	constellationMinStars = 5
)

// LabelMode controls which stars carry name labels.
type LabelMode int

const (
	LabelFocused LabelMode = iota // only the focused star
	LabelBright                   // mag <= 1 and the focused star
	LabelAll
	LabelNone
)

func (l LabelMode) String() string {
	switch l {
	case LabelFocused:
		return "focus"
	case LabelBright:
		return "bright"
	case LabelAll:
		return "all"
	default:
		return "off"
	}
}

// ChartViewModel draws the chart disk.
type ChartViewModel struct {
	width  int
	height int

	table *chart.RenderTable

	// Plotted stars, brightest first. Focus walks this list.
	stars    []chart.Row
	focusIdx int

	// Names of the stars drawn with emphasis.
	bright map[string]bool

	constellations []chart.ConstellationCount
	highlight      string // empty = none

	labelMode LabelMode
}

// NewChartViewModel creates a chart view.
func NewChartViewModel() ChartViewModel {
	return ChartViewModel{labelMode: LabelFocused}
}

// SetSize updates the viewport size.
func (m ChartViewModel) SetSize(width, height int) ChartViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData takes the current chart from a snapshot. Focus follows the
// previously focused star by name when it is still plotted.
func (m ChartViewModel) UpdateData(snapshot state.Snapshot) ChartViewModel {
	focused := ""
	if f, ok := m.Focused(); ok {
		focused = f.Star.Name
	}

	if snapshot.Current == nil {
		m.table = nil
		m.stars = nil
		m.bright = nil
		m.constellations = nil
		m.focusIdx = 0
		return m
	}

	m.table = snapshot.Current.Table
	m.stars = m.table.Renderable()
	m.bright = make(map[string]bool)
	for _, r := range m.table.Bright(chart.BrightMagnitude) {
		m.bright[r.Star.Name] = true
	}
	sort.SliceStable(m.stars, func(i, j int) bool {
		return m.stars[i].Star.ApparentMagnitude < m.stars[j].Star.ApparentMagnitude
	})
	m.constellations = m.table.ConstellationCounts(constellationMinStars)

	m.focusIdx = 0
	for i, r := range m.stars {
		if r.Star.Name == focused {
			m.focusIdx = i
			break
		}
	}
	return m
}

// Focused returns the focused star.
func (m ChartViewModel) Focused() (chart.Row, bool) {
	if m.focusIdx < 0 || m.focusIdx >= len(m.stars) {
		return chart.Row{}, false
	}
	return m.stars[m.focusIdx], true
}

// Highlight returns the highlighted constellation, or "".
func (m ChartViewModel) Highlight() string {
	return m.highlight
}

// Update handles messages.
func (m ChartViewModel) Update(msg tea.Msg) (ChartViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "down", "j":
			m = m.focusNext()
		case "up", "k":
			m = m.focusPrev()
		case "l":
			m.labelMode = (m.labelMode + 1) % 4
		case "c":
			m = m.cycleConstellation()
		}
	}
	return m, nil
}

func (m ChartViewModel) focusNext() ChartViewModel {
	if len(m.stars) == 0 {
		return m
	}
	m.focusIdx = (m.focusIdx + 1) % len(m.stars)
	return m
}

func (m ChartViewModel) focusPrev() ChartViewModel {
	if len(m.stars) == 0 {
		return m
	}
	m.focusIdx--
	if m.focusIdx < 0 {
		m.focusIdx = len(m.stars) - 1
	}
	return m
}

// cycleConstellation steps through none -> each listed constellation -> none.
func (m ChartViewModel) cycleConstellation() ChartViewModel {
	if len(m.constellations) == 0 {
		m.highlight = ""
		return m
	}
	if m.highlight == "" {
		m.highlight = m.constellations[0].Name
		return m
	}
	for i, c := range m.constellations {
		if c.Name == m.highlight {
			if i+1 < len(m.constellations) {
				m.highlight = m.constellations[i+1].Name
			} else {
				m.highlight = ""
			}
			return m
		}
	}
	m.highlight = ""
	return m
}

// View renders the chart view.
func (m ChartViewModel) View() string {
	if m.width < 20 || m.height < 10 {
		return "Chart view requires larger terminal"
	}
	if m.table == nil {
		return "No chart yet"
	}

	// Reserve lines for header and status
	viewHeight := m.height - 4

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCanvas(m.width, viewHeight))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m ChartViewModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135")) // violet
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorRim))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorHighlight))

	title := titleStyle.Render(m.table.Observer.Title())

	highlight := dimStyle.Render("No highlight")
	if m.highlight != "" {
		highlight = accentStyle.Render(m.highlight)
	}
	labels := dimStyle.Render("Labels: " + m.labelMode.String())
	limit := dimStyle.Render(fmt.Sprintf("mag < %.1f", m.table.LimitingMagnitude))

	return fmt.Sprintf("%s | %s | %s | %s", title, limit, highlight, labels)
}

func (m ChartViewModel) renderStatus() string {
	focused, ok := m.Focused()
	if !ok {
		return "No stars plotted"
	}

	s := focused.Star
	p := focused.Point
	line1 := fmt.Sprintf(">>> %s (%s) | mag %.2f | Alt:%.1f° Az:%.1f° | %d/%d",
		s.Name, s.ParentConstellation, s.ApparentMagnitude, p.AltDeg, p.AzDeg,
		m.focusIdx+1, len(m.stars))

	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorFocused))
	status := accentStyle.Render(line1)

	if url := s.URL(); url != "" {
		dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorHighlight))
		status += "\n" + dimStyle.Render("    "+url)
	}
	return status
}

// diskGeometry fits the unit disk into a width x height cell grid. Cells are
// about twice as tall as wide, so the horizontal radius is doubled.
type diskGeometry struct {
	cx, cy int
	rx, ry float64
}

func newDiskGeometry(width, height int) diskGeometry {
	ry := float64(height-1) / 2
	rx := 2 * ry
	if maxRx := float64(width-1) / 2; rx > maxRx {
		rx = maxRx
		ry = rx / 2
	}
	return diskGeometry{cx: width / 2, cy: height / 2, rx: rx, ry: ry}
}

// toScreen maps a disk position to a cell. North is up and east is right.
func (g diskGeometry) toScreen(x, y float64) (int, int) {
	return g.cx + int(math.Round(x*g.rx)), g.cy - int(math.Round(y*g.ry))
}

// starPos tracks a drawn star for label placement.
type starPos struct {
	x, y       int
	name       string
	isFocused  bool
	bright     bool
	labelStart int
	labelEnd   int
}

func (m ChartViewModel) renderCanvas(width, height int) string {
	canvas := make([][]rune, height)
	colors := make([][]lipgloss.Color, height)
	for y := 0; y < height; y++ {
		canvas[y] = make([]rune, width)
		colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			canvas[y][x] = ' '
			colors[y][x] = colorBackground
		}
	}

	geo := newDiskGeometry(width, height)
	set := func(x, y int, r rune, c lipgloss.Color) {
		if x >= 0 && x < width && y >= 0 && y < height {
			canvas[y][x] = r
			colors[y][x] = c
		}
	}

	// Horizon
	steps := int(8 * (geo.rx + geo.ry))
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x, y := geo.toScreen(math.Cos(a), math.Sin(a))
		set(x, y, glyphRim, colorRim)
	}

	// Faint stars first so bright ones win shared cells.
	var positions []starPos
	for i := len(m.stars) - 1; i >= 0; i-- {
		r := m.stars[i]
		x, y := geo.toScreen(r.Point.Planar.X, r.Point.Planar.Y)

		glyph, color := starGlyph(r.Star.ApparentMagnitude, m.bright[r.Star.Name])
		if m.highlight != "" && strings.EqualFold(r.Star.ParentConstellation, m.highlight) {
			color = colorHighlight
		}
		isFocused := i == m.focusIdx
		if isFocused {
			glyph, color = glyphFocused, colorFocused
		}
		set(x, y, glyph, color)

		positions = append(positions, starPos{
			x:         x,
			y:         y,
			name:      r.Star.Name,
			isFocused: isFocused,
			bright:    m.bright[r.Star.Name],
		})
	}

	m.renderLabels(canvas, colors, width, height, positions)

	// Cardinal directions on the rim
	for _, c := range []struct {
		label rune
		x, y  float64
	}{
		{'N', 0, 1}, {'S', 0, -1}, {'E', 1, 0}, {'W', -1, 0},
	} {
		x, y := geo.toScreen(c.x, c.y)
		set(x, y, c.label, "252")
	}

	// Observer at the zenith
	set(geo.cx, geo.cy, '+', "46")
	if f, ok := m.Focused(); ok {
		// Keep the focused star visible over the zenith mark.
		x, y := geo.toScreen(f.Point.Planar.X, f.Point.Planar.Y)
		set(x, y, glyphFocused, colorFocused)
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			style := lipgloss.NewStyle().Foreground(colors[y][x])
			b.WriteString(style.Render(string(canvas[y][x])))
		}
		if y < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderLabels writes star names to the right of their glyphs. The focused
// star's label wins overlapping cells.
func (m ChartViewModel) renderLabels(canvas [][]rune, colors [][]lipgloss.Color, width, height int, positions []starPos) {
	if m.labelMode == LabelNone || len(positions) == 0 {
		return
	}

	for i := range positions {
		pos := &positions[i]
		pos.labelStart = pos.x + 2
		labelLen := len([]rune(pos.name))
		if pos.isFocused {
			labelLen += 2
		}
		pos.labelEnd = pos.labelStart + labelLen
	}

	focusedClaims := make(map[int]map[int]bool) // y -> x -> claimed
	for _, pos := range positions {
		if !pos.isFocused {
			continue
		}
		if focusedClaims[pos.y] == nil {
			focusedClaims[pos.y] = make(map[int]bool)
		}
		for x := pos.labelStart; x < pos.labelEnd; x++ {
			focusedClaims[pos.y][x] = true
		}
	}

	for _, pos := range positions {
		show := false
		switch m.labelMode {
		case LabelFocused:
			show = pos.isFocused
		case LabelBright:
			show = pos.isFocused || pos.bright
		case LabelAll:
			show = true
		}
		if !show {
			continue
		}

		labelColor := lipgloss.Color(colorHighlight)
		labelText := pos.name
		if pos.isFocused {
			labelColor = colorFocused
			labelText = "◄ " + pos.name
		}

		for i, r := range []rune(labelText) {
			x := pos.labelStart + i
			if x < 0 || x >= width || pos.y < 0 || pos.y >= height {
				continue
			}
			if !pos.isFocused && focusedClaims[pos.y][x] {
				continue
			}
			canvas[pos.y][x] = r
			colors[pos.y][x] = labelColor
		}
	}
}

// starGlyph returns the glyph and color for a star's magnitude. Brighter
// stars get more prominent symbols.
func starGlyph(mag float64, bright bool) (rune, lipgloss.Color) {
	switch {
	case bright:
		return glyphStarBright, colorStarBright
	case mag <= 3:
		return glyphStarMedium, colorStarMedium
	case mag <= 4.5:
		return glyphStarDim, colorStarDim
	default:
		return glyphStarVeryDim, colorStarVeryDim
	}
}

// Init returns nil cmd
func (m ChartViewModel) Init() tea.Cmd {
	return nil
}
