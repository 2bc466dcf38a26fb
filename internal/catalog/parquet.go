package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

const parquetBatch = 1000

// LoadParquet reads a Parquet catalog whose columns follow the StarRecord
// tags (distance is stored as distance_ly).
func LoadParquet(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat catalog: %w", err)
	}

	return ReadParquet(f, info.Size(), path)
}

// ReadParquet decodes a Parquet catalog from r.
func ReadParquet(r io.ReaderAt, size int64, source string) (*Catalog, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("%s: open parquet: %w", source, err)
	}

	for _, col := range []string{colName, colRA, colDec, colMagnitude} {
		if !hasColumn(pf.Schema(), col) {
			return nil, fmt.Errorf("%s: %w: %s", source, ErrMissingColumn, col)
		}
	}

	reader := parquet.NewGenericReader[StarRecord](pf)
	defer reader.Close()

	cat := &Catalog{Source: source}
	buf := make([]StarRecord, parquetBatch)
	for {
		n, err := reader.Read(buf)
		cat.Stars = append(cat.Stars, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: read rows: %w", source, err)
		}
		if n == 0 {
			break
		}
	}

	return cat, nil
}

func hasColumn(schema *parquet.Schema, name string) bool {
	_, ok := schema.Lookup(name)
	return ok
}

// WriteParquet encodes the catalog as Parquet.
func WriteParquet(w io.Writer, c *Catalog) error {
	pw := parquet.NewGenericWriter[StarRecord](w)
	if _, err := pw.Write(c.Stars); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
