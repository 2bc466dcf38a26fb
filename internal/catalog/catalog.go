// Package catalog holds the star catalog consumed by the chart pipeline and
// the loaders for the supported on-disk formats.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// WikipediaBase is prepended to StarRecord.Link.
const WikipediaBase = "https://en.wikipedia.org"

//go:embed data/bright_stars.csv
var brightStarsCSV []byte

var (
	// ErrMissingColumn is returned when a catalog lacks a required column.
	ErrMissingColumn = errors.New("catalog: missing required column")

	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("catalog: unsupported file format")
)

// StarRecord is one catalog row. Coordinates stay in their raw sexagesimal
// form; the chart pipeline parses them per request.
type StarRecord struct {
	Name                string  `json:"name" parquet:"name"`
	RightAscension      string  `json:"right_ascension" parquet:"right_ascension"`
	Declination         string  `json:"declination" parquet:"declination"`
	ApparentMagnitude   float64 `json:"apparent_magnitude" parquet:"apparent_magnitude"`
	ParentConstellation string  `json:"parent_constellation" parquet:"parent_constellation"`
	DistanceLy          float64 `json:"distance_ly" parquet:"distance_ly"` // display only
	Link                string  `json:"link,omitempty" parquet:"link"`
}

// URL returns the absolute reference link, or "" when the record has none.
func (r StarRecord) URL() string {
	if r.Link == "" {
		return ""
	}
	if strings.HasPrefix(r.Link, "http://") || strings.HasPrefix(r.Link, "https://") {
		return r.Link
	}
	return WikipediaBase + r.Link
}

// Catalog is an ordered, read-only list of stars.
type Catalog struct {
	Source string
	Stars  []StarRecord
}

// Default returns the embedded bright-star catalog.
func Default() (*Catalog, error) {
	return ReadCSV(bytes.NewReader(brightStarsCSV), "embedded:bright_stars.csv")
}

// Load reads a catalog file, choosing the decoder from the extension:
// .csv, .csv.gz (or .gz) and .parquet.
func Load(path string) (*Catalog, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".csv.gz"), strings.HasSuffix(lower, ".gz"):
		return LoadCSVGzip(path)
	case strings.HasSuffix(lower, ".csv"):
		return LoadCSV(path)
	case strings.HasSuffix(lower, ".parquet"):
		return LoadParquet(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadCSV reads a plain CSV catalog from disk.
func LoadCSV(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return ReadCSV(f, path)
}

// Len returns the number of stars.
func (c *Catalog) Len() int {
	return len(c.Stars)
}

// Find returns the star with the given name (case-insensitive).
func (c *Catalog) Find(name string) (StarRecord, bool) {
	for _, s := range c.Stars {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return StarRecord{}, false
}

// Constellations returns the distinct constellation names, sorted.
func (c *Catalog) Constellations() []string {
	seen := make(map[string]struct{})
	for _, s := range c.Stars {
		if s.ParentConstellation == "" {
			continue
		}
		seen[s.ParentConstellation] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByConstellation returns the stars of one constellation in catalog order.
func (c *Catalog) ByConstellation(name string) []StarRecord {
	var out []StarRecord
	for _, s := range c.Stars {
		if strings.EqualFold(s.ParentConstellation, name) {
			out = append(out, s)
		}
	}
	return out
}
