package chart

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/litescript/ls-starchart/internal/astro"
	"github.com/litescript/ls-starchart/internal/catalog"
)

const (
	// DefaultLimitingMagnitude is used when a request names no limit.
	DefaultLimitingMagnitude = 8.0

	// MinLimitingMagnitude is the brightest limit a request may ask for.
	MinLimitingMagnitude = -1.0

	// BrightMagnitude marks the stars charts draw and label with emphasis.
	BrightMagnitude = 1.0
)

// Magnitude returns a pointer to v for Request.LimitingMagnitude.
func Magnitude(v float64) *float64 {
	return &v
}

// Point is the derived position of one star.
type Point struct {
	RAdeg        float64
	DecDeg       float64
	HourAngleDeg float64
	AltDeg       float64
	AzDeg        float64

	// Below is set when the transform rejected the star outright
	// (|dec - lat| > 90).
	Below  bool
	Planar astro.PlanarPoint
}

// Row pairs a catalog entry with its derived point. Err is set, and Point
// left zero, when the entry's coordinates did not parse.
type Row struct {
	Star  catalog.StarRecord
	Point Point
	Err   error
}

// Renderable reports whether the row can be drawn on the disk.
func (r Row) Renderable() bool {
	return r.Err == nil && r.Point.Planar.Renderable
}

// Options tune BuildTable.
type Options struct {
	// Strict fails the table on the first row whose coordinates do not parse.
	Strict bool

	// Workers > 1 processes rows concurrently. Row order is unchanged.
	Workers int

	// ClipHorizon marks stars with negative altitude unrenderable. Without
	// it only the |dec - lat| > 90 cut applies.
	ClipHorizon bool
}

// RenderTable is the visible subset of a catalog for one observer, in
// catalog order.
type RenderTable struct {
	Observer          ObserverContext
	LimitingMagnitude float64
	Rows              []Row
}

// BuildTable keeps the stars of cat with magnitude < limitingMagnitude and
// computes each one's position for obs. A row whose coordinates do not parse
// carries the error and does not stop the table unless opts.Strict is set.
func BuildTable(cat *catalog.Catalog, obs ObserverContext, limitingMagnitude float64, opts Options) (*RenderTable, error) {
	var visible []catalog.StarRecord
	for _, s := range cat.Stars {
		if s.ApparentMagnitude < limitingMagnitude {
			visible = append(visible, s)
		}
	}

	rows := make([]Row, len(visible))
	plot := func(i int) error {
		p, err := PlotStar(visible[i], obs, opts.ClipHorizon)
		rows[i] = Row{Star: visible[i], Point: p, Err: err}
		if err != nil && opts.Strict {
			return err
		}
		return nil
	}

	if opts.Workers > 1 && len(visible) > 1 {
		var g errgroup.Group
		g.SetLimit(opts.Workers)
		for i := range visible {
			g.Go(func() error { return plot(i) })
		}
		// The first failure in catalog order is reported below.
		_ = g.Wait()
	} else {
		for i := range visible {
			if err := plot(i); err != nil {
				break
			}
		}
	}

	if opts.Strict {
		for _, r := range rows {
			if r.Err != nil {
				return nil, fmt.Errorf("star %q: %w", r.Star.Name, r.Err)
			}
		}
	}

	return &RenderTable{
		Observer:          obs,
		LimitingMagnitude: limitingMagnitude,
		Rows:              rows,
	}, nil
}

// PlotStar parses one record's coordinates and runs them through the hour
// angle, horizontal transform and planar projection.
func PlotStar(s catalog.StarRecord, obs ObserverContext, clipHorizon bool) (Point, error) {
	ra, err := astro.ParseRightAscension(s.RightAscension)
	if err != nil {
		return Point{}, err
	}
	dec, err := astro.ParseDeclination(s.Declination)
	if err != nil {
		return Point{}, err
	}

	ha := astro.HourAngle(obs.LSTDeg, ra)
	h := astro.AltitudeAzimuth(dec, ha, obs.LatDeg)

	p := Point{
		RAdeg:        ra,
		DecDeg:       dec,
		HourAngleDeg: ha,
		AltDeg:       h.AltDeg,
		AzDeg:        h.AzDeg,
		Below:        h.Below,
	}
	if h.Below || (clipHorizon && h.AltDeg < 0) {
		p.Planar = astro.Unrenderable
		return p, nil
	}
	p.Planar = astro.Project(h.AltDeg, h.AzDeg)
	return p, nil
}

// Renderable returns the rows that plot, in order.
func (t *RenderTable) Renderable() []Row {
	return t.filter(func(r Row) bool { return r.Renderable() })
}

// Errors returns the rows whose coordinates failed to parse.
func (t *RenderTable) Errors() []Row {
	return t.filter(func(r Row) bool { return r.Err != nil })
}

// FilterConstellation returns the renderable rows of one constellation.
func (t *RenderTable) FilterConstellation(name string) []Row {
	return t.filter(func(r Row) bool {
		return r.Renderable() && strings.EqualFold(r.Star.ParentConstellation, name)
	})
}

// Bright returns renderable rows at or brighter than maxMag.
func (t *RenderTable) Bright(maxMag float64) []Row {
	return t.filter(func(r Row) bool {
		return r.Renderable() && r.Star.ApparentMagnitude <= maxMag
	})
}

// Find returns the row for a star name (case-insensitive).
func (t *RenderTable) Find(name string) (Row, bool) {
	for _, r := range t.Rows {
		if strings.EqualFold(r.Star.Name, name) {
			return r, true
		}
	}
	return Row{}, false
}

func (t *RenderTable) filter(keep func(Row) bool) []Row {
	var out []Row
	for _, r := range t.Rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// ConstellationCount is the number of renderable stars in a constellation.
type ConstellationCount struct {
	Name  string
	Count int
}

// ConstellationCounts returns constellations with more than minStars
// renderable stars, most populous first, ties by name.
func (t *RenderTable) ConstellationCounts(minStars int) []ConstellationCount {
	counts := make(map[string]int)
	for _, r := range t.Rows {
		if r.Renderable() && r.Star.ParentConstellation != "" {
			counts[r.Star.ParentConstellation]++
		}
	}

	var out []ConstellationCount
	for name, n := range counts {
		if n > minStars {
			out = append(out, ConstellationCount{Name: name, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
