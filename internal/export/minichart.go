package export

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starchart/internal/chart"
)

// Star glyphs by magnitude.
const (
	glyphBright = '*' // chart.BrightMagnitude or brighter
	glyphMedium = '+' // mag <= 3
	glyphDim    = '.'
	glyphRim    = '·'
)

// MiniChartConfig sizes the ASCII disk.
type MiniChartConfig struct {
	// Height in rows; the width is twice the height so the disk looks round
	// in a terminal cell grid.
	Height int

	// Legend lists up to this many of the brightest plotted stars.
	Legend int

	// Highlight marks the stars of one constellation.
	Highlight string

	// Color styles glyphs with lipgloss.
	Color bool
}

// DefaultMiniChartConfig returns a disk that fits an 80 column terminal.
func DefaultMiniChartConfig() MiniChartConfig {
	return MiniChartConfig{
		Height: 21,
		Legend: 8,
	}
}

var (
	rimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	brightStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	mediumStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	cardinalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)
)

type cell struct {
	r     rune
	style *lipgloss.Style
}

// WriteMiniChart draws the renderable stars of t on an ASCII disk. North is
// at the top, south at the bottom, west on the left and east on the right.
func WriteMiniChart(w io.Writer, t *chart.RenderTable, cfg MiniChartConfig) {
	if cfg.Height < 5 {
		cfg.Height = 5
	}
	height := cfg.Height
	width := 2 * height

	grid := make([][]cell, height)
	for y := range grid {
		grid[y] = make([]cell, width)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}

	// Horizon circle.
	for i := 0; i < 8*height; i++ {
		a := 2 * math.Pi * float64(i) / float64(8*height)
		x, y := toGrid(math.Cos(a), math.Sin(a), width, height)
		grid[y][x] = cell{r: glyphRim, style: &rimStyle}
	}

	var rows []chart.Row
	bright := make(map[string]bool)
	if t != nil {
		rows = t.Renderable()
		for _, r := range t.Bright(chart.BrightMagnitude) {
			bright[r.Star.Name] = true
		}
	}

	// Dim stars first so bright ones win shared cells.
	sorted := append([]chart.Row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Star.ApparentMagnitude > sorted[j].Star.ApparentMagnitude
	})
	for _, r := range sorted {
		x, y := toGrid(r.Point.Planar.X, r.Point.Planar.Y, width, height)
		g, style := starGlyph(r.Star.ApparentMagnitude, bright[r.Star.Name])
		if cfg.Highlight != "" && strings.EqualFold(r.Star.ParentConstellation, cfg.Highlight) {
			style = &highlightStyle
		}
		grid[y][x] = cell{r: g, style: style}
	}

	midX, midY := width/2, height/2
	grid[0][midX] = cell{r: 'N', style: &cardinalStyle}
	grid[height-1][midX] = cell{r: 'S', style: &cardinalStyle}
	grid[midY][0] = cell{r: 'W', style: &cardinalStyle}
	grid[midY][width-1] = cell{r: 'E', style: &cardinalStyle}

	fmt.Fprintln(w, "┌"+strings.Repeat("─", width)+"┐")
	for _, line := range grid {
		var b strings.Builder
		for _, c := range line {
			if cfg.Color && c.style != nil {
				b.WriteString(c.style.Render(string(c.r)))
			} else {
				b.WriteRune(c.r)
			}
		}
		fmt.Fprintln(w, "│"+b.String()+"│")
	}
	fmt.Fprintln(w, "└"+strings.Repeat("─", width)+"┘")

	if len(rows) == 0 {
		fmt.Fprintln(w, "No stars above the limit")
		return
	}

	fmt.Fprintf(w, "%d stars plotted, %d at magnitude %g or brighter\n", len(rows), len(bright), chart.BrightMagnitude)
	legend := cfg.Legend
	if legend > len(sorted) {
		legend = len(sorted)
	}
	for i := 0; i < legend; i++ {
		r := sorted[len(sorted)-1-i]
		g, _ := starGlyph(r.Star.ApparentMagnitude, bright[r.Star.Name])
		fmt.Fprintf(w, "  %c %-20s %5.2f  alt %5.1f° az %5.1f°\n",
			g, truncateStr(r.Star.Name, 20), r.Star.ApparentMagnitude, r.Point.AltDeg, r.Point.AzDeg)
	}
}

// toGrid maps a disk position to a cell, clamped to the grid.
func toGrid(px, py float64, width, height int) (int, int) {
	x := int(math.Round((px + 1) / 2 * float64(width-1)))
	y := int(math.Round((1 - py) / 2 * float64(height-1)))
	return clamp(x, 0, width-1), clamp(y, 0, height-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func starGlyph(mag float64, bright bool) (rune, *lipgloss.Style) {
	switch {
	case bright:
		return glyphBright, &brightStyle
	case mag <= 3:
		return glyphMedium, &mediumStyle
	default:
		return glyphDim, &dimStyle
	}
}
