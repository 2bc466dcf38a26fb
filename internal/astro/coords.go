// Package astro provides astronomical coordinate transformations and sky math.
package astro

import "math"

// Observer represents a ground-based observer location.
type Observer struct {
	LatDeg float64 // Latitude in degrees (north positive)
	LonDeg float64 // Longitude in degrees (east positive)
	Name   string  // Optional name for the site
}

// Horizontal is the result of an equatorial to horizontal transform.
type Horizontal struct {
	AltDeg float64
	AzDeg  float64

	// Below is set when |dec - lat| > 90. The object cannot be resolved by
	// the formula and is treated as not visible; AltDeg and AzDeg are zero.
	// This is a coarse cut, not true horizon clipping.
	Below bool
}

// HourAngle returns LST - RA in degrees. Negative values are wrapped by
// adding 360; values of 360 or more are returned unchanged. With LST and RA
// both in [0,360) the result always lies in [0,360).
func HourAngle(lstDeg, raDeg float64) float64 {
	ha := lstDeg - raDeg
	for ha < 0 {
		ha += 360
	}
	return ha
}

// AltitudeAzimuth converts declination and hour angle to altitude and
// azimuth for an observer at latDeg. All angles are in degrees.
//
// When the azimuth cosine falls outside [-1,1] (the denominator vanishes at
// the zenith and the poles) the intermediate angle is taken as 0 instead of
// failing.
func AltitudeAzimuth(decDeg, haDeg, latDeg float64) Horizontal {
	if diff := decDeg - latDeg; diff > 90 || diff < -90 {
		return Horizontal{Below: true}
	}

	dec := degToRad(decDeg)
	ha := degToRad(haDeg)
	lat := degToRad(latDeg)

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	// Rounding can push the sum a hair past 1 at the zenith.
	sinAlt = math.Max(-1, math.Min(1, sinAlt))
	alt := math.Asin(sinAlt)

	cosA := (math.Sin(dec) - math.Sin(alt)*math.Sin(lat)) / (math.Cos(alt) * math.Cos(lat))
	a := 0.0
	if cosA >= -1 && cosA <= 1 {
		a = radToDeg(math.Acos(cosA))
	}

	// West of the meridian (sin HA > 0) the azimuth is measured the other way.
	az := 360 - a
	if math.Sin(ha) < 0 {
		az = a
	}

	return Horizontal{
		AltDeg: radToDeg(alt),
		AzDeg:  az,
	}
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
