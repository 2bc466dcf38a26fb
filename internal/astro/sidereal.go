package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// J2000 is the Julian date of the J2000.0 epoch (2000-01-01 12:00 UTC).
const J2000 = 2451545.0

// SiderealModel selects how local sidereal time is computed.
type SiderealModel int

const (
	// SiderealSimple uses LST = 100.46 + 0.985647*d + lon + 15*UT.
	SiderealSimple SiderealModel = iota

	// SiderealIAU uses the IAU mean sidereal time at Greenwich plus longitude.
	SiderealIAU
)

// String returns the model name.
func (m SiderealModel) String() string {
	switch m {
	case SiderealSimple:
		return "simple"
	case SiderealIAU:
		return "iau"
	default:
		return "unknown"
	}
}

// ParseSiderealModel parses a model name. Unknown names select SiderealSimple.
func ParseSiderealModel(s string) SiderealModel {
	switch s {
	case "iau", "IAU":
		return SiderealIAU
	default:
		return SiderealSimple
	}
}

// JulianDate returns the Julian date of t, converted to UTC first.
func JulianDate(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// DaysSinceJ2000 returns the number of days, including the fraction of the
// day, between the J2000.0 epoch and t.
func DaysSinceJ2000(t time.Time) float64 {
	return JulianDate(t) - J2000
}

// LocalSiderealTime returns the local sidereal time in degrees [0,360) for
// the UTC instant t at east-positive longitude lonDeg.
//
// Only hours and minutes of the time of day enter the 15*UT term; seconds
// are dropped. The day count keeps full precision.
func LocalSiderealTime(t time.Time, lonDeg float64) float64 {
	t = t.UTC()
	d := DaysSinceJ2000(t)
	ut := float64(t.Hour()) + float64(t.Minute())/60

	lst := 100.46 + 0.985647*d + lonDeg + 15*ut
	for lst < 0 {
		lst += 360
	}
	for lst >= 360 {
		lst -= 360
	}
	return lst
}

// LocalSiderealTimeModel dispatches on the requested sidereal model.
func LocalSiderealTimeModel(t time.Time, lonDeg float64, model SiderealModel) float64 {
	if model == SiderealIAU {
		return normalizeAngle360(greenwichMeanSiderealTime(t) + lonDeg)
	}
	return LocalSiderealTime(t, lonDeg)
}

// greenwichMeanSiderealTime calculates GMST in degrees for a given UTC time.
func greenwichMeanSiderealTime(t time.Time) float64 {
	gmst := sidereal.Mean(JulianDate(t)).Angle().Deg()
	return normalizeAngle360(gmst)
}

// normalizeAngle360 normalizes an angle to 0-360 degrees.
func normalizeAngle360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	// A tiny negative angle plus 360 rounds to 360.
	if a >= 360 {
		a = 0
	}
	return a
}
