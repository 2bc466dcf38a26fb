package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column names, matched case-insensitively after trimming.
const (
	colName          = "name"
	colRA            = "right_ascension"
	colDec           = "declination"
	colMagnitude     = "apparent_magnitude"
	colConstellation = "parent_constellation"
	colDistance      = "distance (ly)"
	colLink          = "link"
)

var requiredColumns = []string{
	colName, colRA, colDec, colMagnitude, colConstellation, colDistance, colLink,
}

// columnAliases maps alternate header spellings onto the canonical names.
var columnAliases = map[string]string{
	"distance_ly": colDistance,
	"distance":    colDistance,
}

// ReadCSV decodes a catalog from CSV. The first record is the header; column
// order is free. source labels the catalog in errors and logs.
func ReadCSV(r io.Reader, source string) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty catalog", source)
		}
		return nil, fmt.Errorf("%s: read header: %w", source, err)
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	cr.FieldsPerRecord = len(header)

	cat := &Catalog{Source: source}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}

		line, _ := cr.FieldPos(0)
		star, err := decodeRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, line, err)
		}
		cat.Stars = append(cat.Stars, star)
	}

	return cat, nil
}

func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := columnAliases[key]; ok {
			key = alias
		}
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func decodeRow(rec []string, idx map[string]int) (StarRecord, error) {
	field := func(col string) string {
		return strings.TrimSpace(rec[idx[col]])
	}

	mag, err := strconv.ParseFloat(field(colMagnitude), 64)
	if err != nil {
		return StarRecord{}, fmt.Errorf("apparent_magnitude %q: %w", field(colMagnitude), err)
	}

	var dist float64
	if s := field(colDistance); s != "" {
		dist, err = strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return StarRecord{}, fmt.Errorf("distance %q: %w", s, err)
		}
	}

	return StarRecord{
		Name:                field(colName),
		RightAscension:      field(colRA),
		Declination:         field(colDec),
		ApparentMagnitude:   mag,
		ParentConstellation: field(colConstellation),
		DistanceLy:          dist,
		Link:                field(colLink),
	}, nil
}
