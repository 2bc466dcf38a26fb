package chart

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/litescript/ls-starchart/internal/astro"
)

// Summary holds aggregate figures for a RenderTable.
type Summary struct {
	Title             string
	LimitingMagnitude float64

	Total        int // rows passing the magnitude filter
	Renderable   int
	Below        int // rejected by the |dec - lat| > 90 cut
	Unrenderable int // other projection failures
	ParseErrors  int

	// Magnitude statistics over renderable rows; zero when none plot.
	MinMag    float64
	MeanMag   float64
	MaxMag    float64
	StdDevMag float64
	Brightest string

	MeanAltDeg float64

	SunAltDeg float64
	Sky       astro.SkyCondition
}

// Summarize computes counts and magnitude statistics for t.
func Summarize(t *RenderTable) Summary {
	s := Summary{
		Title:             t.Observer.Title(),
		LimitingMagnitude: t.LimitingMagnitude,
		Total:             len(t.Rows),
	}

	var mags, alts []float64
	var names []string
	for _, r := range t.Rows {
		switch {
		case r.Err != nil:
			s.ParseErrors++
		case r.Point.Below:
			s.Below++
		case !r.Point.Planar.Renderable:
			s.Unrenderable++
		default:
			s.Renderable++
			mags = append(mags, r.Star.ApparentMagnitude)
			alts = append(alts, r.Point.AltDeg)
			names = append(names, r.Star.Name)
		}
	}

	if len(mags) > 0 {
		minIdx := floats.MinIdx(mags)
		s.MinMag = mags[minIdx]
		s.Brightest = names[minIdx]
		s.MaxMag = floats.Max(mags)
		s.MeanMag = stat.Mean(mags, nil)
		if len(mags) > 1 {
			s.StdDevMag = stat.StdDev(mags, nil)
		}
		s.MeanAltDeg = stat.Mean(alts, nil)
	}

	s.SunAltDeg = astro.SunAltitude(t.Observer.Site(), t.Observer.Time)
	s.Sky = astro.GetSkyCondition(s.SunAltDeg)

	return s
}
