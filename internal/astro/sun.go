package astro

import (
	"math"
	"time"
)

// SunPosition calculates the apparent equatorial coordinates of the Sun.
// Uses a simplified solar ephemeris based on the Astronomical Almanac.
// Accuracy: ~0.01 degrees for RA, ~0.001 degrees for Dec.
func SunPosition(t time.Time) (raDeg, decDeg float64) {
	// Julian centuries from J2000.0
	T := DaysSinceJ2000(t) / 36525.0

	// Mean longitude of the Sun (degrees)
	L0 := normalizeAngle360(280.46646 + 36000.76983*T + 0.0003032*T*T)

	// Mean anomaly of the Sun (degrees)
	M := normalizeAngle360(357.52911 + 35999.05029*T - 0.0001537*T*T)
	Mrad := degToRad(M)

	// Sun's equation of center (degrees)
	C := (1.914602 - 0.004817*T - 0.000014*T*T) * math.Sin(Mrad)
	C += (0.019993 - 0.000101*T) * math.Sin(2*Mrad)
	C += 0.000289 * math.Sin(3*Mrad)

	sunLon := L0 + C

	// Apparent longitude (aberration and nutation)
	omega := 125.04 - 1934.136*T
	sunLonApp := sunLon - 0.00569 - 0.00478*math.Sin(degToRad(omega))

	// Obliquity of the ecliptic, corrected
	eps0 := 23.439291 - 0.0130042*T - 0.00000016*T*T + 0.000000504*T*T*T
	eps := eps0 + 0.00256*math.Cos(degToRad(omega))

	sunLonRad := degToRad(sunLonApp)
	epsRad := degToRad(eps)

	ra := math.Atan2(math.Cos(epsRad)*math.Sin(sunLonRad), math.Cos(sunLonRad))
	raDeg = radToDeg(ra)
	if raDeg < 0 {
		raDeg += 360
	}

	decDeg = radToDeg(math.Asin(math.Sin(epsRad) * math.Sin(sunLonRad)))

	return raDeg, decDeg
}

// SunAltitude returns the Sun's altitude in degrees for the observer at t.
// It uses the same sidereal time and transform as the star pipeline.
func SunAltitude(obs Observer, t time.Time) float64 {
	ra, dec := SunPosition(t)
	h := AltitudeAzimuth(dec, HourAngle(LocalSiderealTime(t, obs.LonDeg), ra), obs.LatDeg)
	if h.Below {
		return -90
	}
	return h.AltDeg
}

// SkyCondition classifies how dark the sky is from the Sun's altitude.
type SkyCondition int

const (
	SkyDaylight     SkyCondition = iota // Sun above the horizon
	SkyCivil                            // 0 to -6 degrees
	SkyNautical                         // -6 to -12 degrees
	SkyAstronomical                     // -12 to -18 degrees
	SkyDark                             // below -18 degrees
)

// String returns a display name for the condition.
func (c SkyCondition) String() string {
	switch c {
	case SkyDaylight:
		return "daylight"
	case SkyCivil:
		return "civil twilight"
	case SkyNautical:
		return "nautical twilight"
	case SkyAstronomical:
		return "astronomical twilight"
	case SkyDark:
		return "dark"
	default:
		return "unknown"
	}
}

// GetSkyCondition returns the condition for a Sun altitude in degrees.
func GetSkyCondition(sunAltDeg float64) SkyCondition {
	switch {
	case sunAltDeg > 0:
		return SkyDaylight
	case sunAltDeg > -6:
		return SkyCivil
	case sunAltDeg > -12:
		return SkyNautical
	case sunAltDeg > -18:
		return SkyAstronomical
	default:
		return SkyDark
	}
}
