package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-starchart/internal/catalog"
	"github.com/litescript/ls-starchart/internal/chart"
)

func TestRenderBar(t *testing.T) {
	m := TableModel{}

	tests := []struct {
		frac   float64
		filled int
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
		{1.5, 10},
		{-0.2, 0},
	}
	for _, tt := range tests {
		bar := m.renderBar(tt.frac, 10)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("renderBar(%v) filled = %d, want %d", tt.frac, got, tt.filled)
		}
		if got := strings.Count(bar, "░"); got != 10-tt.filled {
			t.Errorf("renderBar(%v) empty = %d, want %d", tt.frac, got, 10-tt.filled)
		}
	}
}

func TestRenderAltitude(t *testing.T) {
	tests := []struct {
		alt  float64
		want string
	}{
		{-5, "▁▁▁▁▁"},
		{0, "▁▁▁▁▁"},
		{90, "█████"},
		{120, "█████"},
	}
	for _, tt := range tests {
		if got := renderAltitude(tt.alt); got != tt.want {
			t.Errorf("renderAltitude(%v) = %q, want %q", tt.alt, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Sirius", 10, "Sirius"},
		{"Alpha Centauri", 10, "Alpha C..."},
		{"Canis Major", 3, "Can"},
		{"Ægir’s star", 6, "Ægi..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatRow(t *testing.T) {
	star := catalog.StarRecord{Name: "Vega", ParentConstellation: "Lyra", ApparentMagnitude: 0.03}

	bad := formatRow(chart.Row{Star: star, Err: errors.New("bad declination")})
	if !strings.Contains(bad, "bad declination") {
		t.Errorf("error row = %q", bad)
	}

	below := chart.Row{Star: star}
	below.Point.Below = true
	if got := formatRow(below); !strings.Contains(got, "never rises here") {
		t.Errorf("below row = %q", got)
	}

	hidden := formatRow(chart.Row{Star: star})
	if !strings.Contains(hidden, " - ") {
		t.Errorf("unplotted row should dash out X/Y: %q", hidden)
	}

	plotted := chart.Row{Star: star}
	plotted.Point.AltDeg = 45
	plotted.Point.Planar.X = 0.25
	plotted.Point.Planar.Y = -0.5
	plotted.Point.Planar.Renderable = true
	got := formatRow(plotted)
	for _, want := range []string{"Vega", "Lyra", "0.2500", "-0.5000"} {
		if !strings.Contains(got, want) {
			t.Errorf("plotted row %q missing %q", got, want)
		}
	}
}

func TestTableModel_Navigation(t *testing.T) {
	m := NewTableModel().SetSize(120, 40).UpdateData(testSnapshot(t, chart.DefaultLimitingMagnitude))
	all := len(m.rows())
	if all != len(testCatalog().Stars) {
		t.Fatalf("rows = %d, want every catalog entry", all)
	}

	key := func(s string) tea.KeyMsg {
		switch s {
		case "end":
			return tea.KeyMsg{Type: tea.KeyEnd}
		case "home":
			return tea.KeyMsg{Type: tea.KeyHome}
		}
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}

	m, _ = m.Update(key("k"))
	if m.cursor != 0 {
		t.Errorf("k at top moved cursor to %d", m.cursor)
	}
	m, _ = m.Update(key("end"))
	if m.cursor != all-1 {
		t.Errorf("end cursor = %d, want %d", m.cursor, all-1)
	}
	m, _ = m.Update(key("j"))
	if m.cursor != all-1 {
		t.Errorf("j at bottom moved cursor to %d", m.cursor)
	}
	m, _ = m.Update(key("home"))
	if r, ok := m.Selected(); !ok || r.Star.Name != "Sirius" {
		t.Errorf("home selects %q, want first catalog row", r.Star.Name)
	}

	m, _ = m.Update(key("v"))
	if !m.onlyPlotted {
		t.Fatal("v should toggle plotted-only")
	}
	for _, r := range m.rows() {
		if !r.Renderable() {
			t.Errorf("plotted-only list contains %q", r.Star.Name)
		}
	}
	if !strings.Contains(m.View(), "Plotted stars") {
		t.Error("plotted-only title missing")
	}
}

func TestTableModel_Empty(t *testing.T) {
	m := NewTableModel()
	if got := m.View(); got != "Waiting for a chart...\n" {
		t.Errorf("empty view = %q", got)
	}
	if _, ok := m.Selected(); ok {
		t.Error("empty table should have no selection")
	}
}
