// Package chart turns a star catalog into a render-ready table for one
// observer, place and instant.
package chart

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-starchart/internal/astro"
)

// ErrInvalidObserver is returned for coordinates outside the WGS84 ranges.
var ErrInvalidObserver = errors.New("invalid observer location")

// ObserverContext fixes where and when a chart is drawn. Build it with
// NewObserver; it is not modified afterwards.
type ObserverContext struct {
	LatDeg float64
	LonDeg float64

	// Time keeps the zone it was given in; computations use its UTC instant.
	Time  time.Time
	Label string

	Sidereal astro.SiderealModel
	LSTDeg   float64 // local sidereal time, [0,360)
}

// ObserverOption configures NewObserver.
type ObserverOption func(*ObserverContext)

// WithLabel names the site, typically the address or preset it came from.
func WithLabel(label string) ObserverOption {
	return func(o *ObserverContext) {
		o.Label = label
	}
}

// WithSiderealModel selects how local sidereal time is computed.
func WithSiderealModel(m astro.SiderealModel) ObserverOption {
	return func(o *ObserverContext) {
		o.Sidereal = m
	}
}

// NewObserver validates the location and derives the local sidereal time.
func NewObserver(latDeg, lonDeg float64, at time.Time, opts ...ObserverOption) (ObserverContext, error) {
	if math.IsNaN(latDeg) || latDeg < -90 || latDeg > 90 {
		return ObserverContext{}, fmt.Errorf("%w: latitude %v", ErrInvalidObserver, latDeg)
	}
	if math.IsNaN(lonDeg) || lonDeg < -180 || lonDeg > 180 {
		return ObserverContext{}, fmt.Errorf("%w: longitude %v", ErrInvalidObserver, lonDeg)
	}

	o := ObserverContext{
		LatDeg: latDeg,
		LonDeg: lonDeg,
		Time:   at,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.LSTDeg = astro.LocalSiderealTimeModel(at, lonDeg, o.Sidereal)

	return o, nil
}

// Site returns the observer as an astro.Observer.
func (o ObserverContext) Site() astro.Observer {
	return astro.Observer{LatDeg: o.LatDeg, LonDeg: o.LonDeg, Name: o.Label}
}

// At returns a copy of the context moved to another instant.
func (o ObserverContext) At(t time.Time) ObserverContext {
	o.Time = t
	o.LSTDeg = astro.LocalSiderealTimeModel(t, o.LonDeg, o.Sidereal)
	return o
}

// Title formats the chart heading, e.g.
// "Star Chart of Kiruna, Sweden at 22:30 UTC on March 14, 2025".
func (o ObserverContext) Title() string {
	label := o.Label
	if label == "" {
		label = fmt.Sprintf("%.4f, %.4f", o.LatDeg, o.LonDeg)
	}
	utc := o.Time.UTC()
	return fmt.Sprintf("Star Chart of %s at %s UTC on %s", label, utc.Format("15:04"), utc.Format("January 2, 2006"))
}
