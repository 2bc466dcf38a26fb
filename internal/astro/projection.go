package astro

import (
	"math"
)

// PlanarPoint is a position on the unit chart disk.
//
// X and Y are only meaningful when Renderable is true. The disk is drawn
// with south at the bottom, west on the left, north at the top and east on
// the right.
type PlanarPoint struct {
	X          float64
	Y          float64
	Renderable bool
}

// Unrenderable is the zero PlanarPoint: not plotted.
var Unrenderable = PlanarPoint{}

// Project maps altitude and azimuth (degrees) onto the unit disk. The zenith
// lands at the center and the horizon on the rim.
//
// Azimuth must lie in (0,360]. Exactly 0 and 360 are the discontinuity of the
// quadrant mapping and come back Unrenderable, as does any non-finite input
// or result outside [-1,1].
func Project(altDeg, azDeg float64) PlanarPoint {
	if math.IsNaN(altDeg) || math.IsInf(altDeg, 0) {
		return Unrenderable
	}

	theta, ok := chartTheta(azDeg)
	if !ok {
		return Unrenderable
	}

	// phi is the zenith distance.
	phi := degToRad(90 - altDeg)
	sinTheta, cosTheta := math.Sincos(degToRad(theta))

	x := cosTheta * math.Sin(phi)
	y := sinTheta * math.Sin(phi)

	if !onDisk(x) || !onDisk(y) {
		return Unrenderable
	}
	return PlanarPoint{X: x, Y: y, Renderable: true}
}

// chartTheta rotates a compass azimuth into the polar angle of the chart.
//
//	(0,90]    theta = 90 - az
//	(90,180]  theta = 180 - (az - 270)
//	(180,270] theta = 270 - (az - 180)
//	(270,360] theta = 360 - (az - 90)
//
// The last three rows all reduce to 450 - az.
func chartTheta(azDeg float64) (float64, bool) {
	switch {
	case azDeg > 0 && azDeg <= 90:
		return 90 - azDeg, true
	case azDeg > 90 && azDeg < 360:
		return 450 - azDeg, true
	default:
		// 0, 360, out of range and NaN
		return 0, false
	}
}

func onDisk(v float64) bool {
	return !math.IsNaN(v) && v >= -1 && v <= 1
}
