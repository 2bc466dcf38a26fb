// Package export writes charts as JSON, text tables and ASCII disks.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-starchart/internal/chart"
	"github.com/litescript/ls-starchart/internal/state"
)

// ChartExport is the JSON-serializable representation of a chart.
type ChartExport struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	GeneratedAt       time.Time      `json:"generated_at"`
	Observer          ObserverExport `json:"observer"`
	LimitingMagnitude float64        `json:"limiting_magnitude"`
	MagnitudeSource   string         `json:"magnitude_source,omitempty"`
	Bortle            float64        `json:"bortle,omitempty"`
	Stars             []StarExport   `json:"stars"`
	Summary           SummaryExport  `json:"summary"`
}

// ObserverExport describes where and when the chart was drawn.
type ObserverExport struct {
	Label    string    `json:"label,omitempty"`
	LatDeg   float64   `json:"lat_deg"`
	LonDeg   float64   `json:"lon_deg"`
	Time     time.Time `json:"time"`
	LSTDeg   float64   `json:"lst_deg"`
	Sidereal string    `json:"sidereal_model"`
}

// StarExport is one table row. X and Y are omitted for stars that do not plot.
type StarExport struct {
	Name          string   `json:"name"`
	Constellation string   `json:"constellation"`
	Magnitude     float64  `json:"apparent_magnitude"`
	DistanceLy    float64  `json:"distance_ly,omitempty"`
	URL           string   `json:"url,omitempty"`
	RAdeg         float64  `json:"ra_deg"`
	DecDeg        float64  `json:"dec_deg"`
	HourAngleDeg  float64  `json:"hour_angle_deg"`
	AltDeg        float64  `json:"alt_deg"`
	AzDeg         float64  `json:"az_deg"`
	Below         bool     `json:"below,omitempty"`
	Renderable    bool     `json:"renderable"`
	X             *float64 `json:"x,omitempty"`
	Y             *float64 `json:"y,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// SummaryExport carries the aggregate figures of a chart.
type SummaryExport struct {
	Total        int     `json:"total"`
	Renderable   int     `json:"renderable"`
	Below        int     `json:"below"`
	Unrenderable int     `json:"unrenderable"`
	ParseErrors  int     `json:"parse_errors"`
	MinMag       float64 `json:"min_magnitude"`
	MeanMag      float64 `json:"mean_magnitude"`
	MaxMag       float64 `json:"max_magnitude"`
	Brightest    string  `json:"brightest,omitempty"`
	SunAltDeg    float64 `json:"sun_alt_deg"`
	Sky          string  `json:"sky"`
}

// ExportChart converts a chart to an exportable format.
func ExportChart(c *chart.Chart) *ChartExport {
	if c == nil || c.Table == nil {
		return &ChartExport{Stars: []StarExport{}}
	}

	export := ExportTable(c.Table)
	export.ID = c.ID.String()
	export.GeneratedAt = c.GeneratedAt
	export.MagnitudeSource = string(c.MagnitudeSource)
	export.Bortle = c.Bortle
	return export
}

// ExportTable converts a bare render table. ID and provenance fields are
// left empty.
func ExportTable(t *chart.RenderTable) *ChartExport {
	obs := t.Observer
	export := &ChartExport{
		Title: obs.Title(),
		Observer: ObserverExport{
			Label:    obs.Label,
			LatDeg:   obs.LatDeg,
			LonDeg:   obs.LonDeg,
			Time:     obs.Time,
			LSTDeg:   obs.LSTDeg,
			Sidereal: obs.Sidereal.String(),
		},
		LimitingMagnitude: t.LimitingMagnitude,
		Stars:             make([]StarExport, 0, len(t.Rows)),
	}

	for _, row := range t.Rows {
		export.Stars = append(export.Stars, exportRow(row))
	}

	s := chart.Summarize(t)
	export.Summary = SummaryExport{
		Total:        s.Total,
		Renderable:   s.Renderable,
		Below:        s.Below,
		Unrenderable: s.Unrenderable,
		ParseErrors:  s.ParseErrors,
		MinMag:       s.MinMag,
		MeanMag:      s.MeanMag,
		MaxMag:       s.MaxMag,
		Brightest:    s.Brightest,
		SunAltDeg:    s.SunAltDeg,
		Sky:          s.Sky.String(),
	}
	return export
}

func exportRow(row chart.Row) StarExport {
	star := StarExport{
		Name:          row.Star.Name,
		Constellation: row.Star.ParentConstellation,
		Magnitude:     row.Star.ApparentMagnitude,
		DistanceLy:    row.Star.DistanceLy,
		URL:           row.Star.URL(),
	}
	if row.Err != nil {
		star.Error = row.Err.Error()
		return star
	}

	p := row.Point
	star.RAdeg = p.RAdeg
	star.DecDeg = p.DecDeg
	star.HourAngleDeg = p.HourAngleDeg
	star.AltDeg = p.AltDeg
	star.AzDeg = p.AzDeg
	star.Below = p.Below
	if row.Renderable() {
		x, y := p.Planar.X, p.Planar.Y
		star.Renderable = true
		star.X = &x
		star.Y = &y
	}
	return star
}

// WriteJSON writes the chart as JSON to the given writer.
func (e *ChartExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// WriteSummary writes a text table of the plotted stars followed by the
// chart totals.
func WriteSummary(w io.Writer, c *chart.Chart) {
	if c == nil || c.Table == nil {
		fmt.Fprintln(w, "No chart")
		return
	}

	s := chart.Summarize(c.Table)
	rows := c.Table.Renderable()

	fmt.Fprintln(w, s.Title)
	fmt.Fprintf(w, "Limiting magnitude %.1f (%s)", s.LimitingMagnitude, c.MagnitudeSource)
	if c.Bortle > 0 {
		fmt.Fprintf(w, ", Bortle %g", c.Bortle)
	}
	fmt.Fprintf(w, " | Sun %.1f° (%s)\n", s.SunAltDeg, s.Sky)
	fmt.Fprintln(w, strings.Repeat("─", 78))

	if len(rows) == 0 {
		fmt.Fprintln(w, "No stars plotted")
	} else {
		fmt.Fprintf(w, "%-20s %-16s %6s %8s %8s %8s %8s\n",
			"Star", "Constellation", "Mag", "Alt", "Az", "X", "Y")
		fmt.Fprintln(w, strings.Repeat("─", 78))

		for _, r := range rows {
			fmt.Fprintf(w, "%-20s %-16s %6.2f %8.2f %8.2f %8.4f %8.4f\n",
				truncateStr(r.Star.Name, 20),
				truncateStr(r.Star.ParentConstellation, 16),
				r.Star.ApparentMagnitude,
				r.Point.AltDeg,
				r.Point.AzDeg,
				r.Point.Planar.X,
				r.Point.Planar.Y,
			)
		}
	}

	for _, r := range c.Table.Errors() {
		fmt.Fprintf(w, "! %s: %v\n", r.Star.Name, r.Err)
	}

	fmt.Fprintf(w, "\nTotal: %d stars, %d plotted, %d below, %d unplottable, %d bad rows\n",
		s.Total, s.Renderable, s.Below, s.Unrenderable, s.ParseErrors)
	if s.Renderable > 0 {
		fmt.Fprintf(w, "Magnitudes: min %.2f, mean %.2f, max %.2f (brightest %s)\n",
			s.MinMag, s.MeanMag, s.MaxMag, s.Brightest)
	}
}

// WriteEvents writes the most recent events, oldest first.
func WriteEvents(w io.Writer, events []state.Event, limit int) {
	fmt.Fprintln(w, "Recent events")
	fmt.Fprintln(w, strings.Repeat("─", 60))

	if len(events) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}

	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	for _, e := range events {
		line := fmt.Sprintf("%s  %-16s", e.Timestamp.UTC().Format("15:04:05"), e.Type)
		if e.Location != "" {
			line += " " + e.Location
		}
		if e.Detail != "" {
			line += " (" + e.Detail + ")"
		}
		fmt.Fprintln(w, line)
	}
}

// WriteComparison lists the stars that differ between the current and the
// stored chart.
func WriteComparison(w io.Writer, cmp state.Comparison) {
	fmt.Fprintf(w, "Common: %d | Only current: %d | Only stored: %d\n",
		len(cmp.Common), len(cmp.OnlyCurrent), len(cmp.OnlyStored))
	fmt.Fprintln(w, strings.Repeat("─", 60))

	if len(cmp.OnlyCurrent) == 0 && len(cmp.OnlyStored) == 0 {
		fmt.Fprintln(w, "No differences")
		return
	}
	for _, name := range cmp.OnlyCurrent {
		fmt.Fprintf(w, "+ %s\n", name)
	}
	for _, name := range cmp.OnlyStored {
		fmt.Fprintf(w, "- %s\n", name)
	}
}

func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-2]) + ".."
}
