package astro

import (
	"errors"
	"fmt"
)

// ErrInvalidScale is returned for a Bortle value outside the lookup table.
var ErrInvalidScale = errors.New("invalid Bortle scale")

// bortleLimits maps Bortle class to naked-eye limiting magnitude.
// 4.5 is the rural/suburban transition class.
var bortleLimits = map[float64]float64{
	1:   8.0,
	2:   7.5,
	3:   7.0,
	4:   6.5,
	4.5: 6.3,
	5:   6.0,
	6:   5.5,
	7:   5.0,
	8:   4.5,
	9:   4.0,
}

// LimitingMagnitudeFromBortle returns the naked-eye limiting magnitude for a
// Bortle class. Only the exact classes 1-9 and 4.5 are accepted.
func LimitingMagnitudeFromBortle(scale float64) (float64, error) {
	mag, ok := bortleLimits[scale]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	return mag, nil
}

// BortleScales returns the accepted Bortle classes in ascending order.
func BortleScales() []float64 {
	return []float64{1, 2, 3, 4, 4.5, 5, 6, 7, 8, 9}
}
