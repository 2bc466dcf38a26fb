// Package skyquality estimates the Bortle dark-sky class at a location.
package skyquality

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/litescript/ls-starchart/internal/astro"
)

// ErrNoData is returned when the brightness source has no value for a point.
var ErrNoData = errors.New("no sky brightness data")

// Lookup returns the Bortle class (1-9 or 4.5) for a location.
type Lookup interface {
	BortleScale(ctx context.Context, latDeg, lonDeg float64) (float64, error)
}

// naturalBrightness is the natural sky background in mcd/m².
const naturalBrightness = 0.171168465

// SQMFromArtificial converts artificial sky brightness (mcd/m²) to a sky
// quality reading in mag/arcsec².
func SQMFromArtificial(mcd float64) float64 {
	if mcd < 0 {
		mcd = 0
	}
	total := mcd + naturalBrightness
	return math.Log10(total/108000000) / -0.4
}

// sqmClasses lists the lower SQM bound of each class, darkest first.
var sqmClasses = []struct {
	minSQM float64
	class  float64
}{
	{21.99, 1},
	{21.89, 2},
	{21.69, 3},
	{20.49, 4},
	{19.50, 4.5},
	{18.94, 5},
	{18.38, 6},
	{17.80, 7},
	{17.30, 8},
}

// BortleFromSQM classifies a sky quality reading.
func BortleFromSQM(sqm float64) float64 {
	for _, c := range sqmClasses {
		if sqm >= c.minSQM {
			return c.class
		}
	}
	return 9
}

// ParseBortleClass reads a class label such as "Class 4", "4.5" or a range
// like "Class 4-5". Ranges resolve to the brighter (higher) class.
func ParseBortleClass(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(s), "class"))
	if i := strings.LastIndex(s, "-"); i >= 0 {
		s = strings.TrimSpace(s[i+1:])
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", astro.ErrInvalidScale, text)
	}
	if _, err := astro.LimitingMagnitudeFromBortle(v); err != nil {
		return 0, err
	}
	return v, nil
}

// Static always reports the same class.
type Static struct {
	Scale float64
}

// BortleScale returns s.Scale after checking it against the Bortle table.
func (s Static) BortleScale(ctx context.Context, latDeg, lonDeg float64) (float64, error) {
	if _, err := astro.LimitingMagnitudeFromBortle(s.Scale); err != nil {
		return 0, err
	}
	return s.Scale, nil
}
