package catalog

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/klauspost/pgzip"
)

const gzipBlockSize = 256 * 1024

// LoadCSVGzip reads a gzip-compressed CSV catalog.
func LoadCSVGzip(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return ReadCSVGzip(f, path)
}

// ReadCSVGzip decompresses r with parallel gzip and decodes it as CSV.
func ReadCSVGzip(r io.Reader, source string) (*Catalog, error) {
	gz, err := pgzip.NewReaderN(r, gzipBlockSize, runtime.NumCPU())
	if err != nil {
		return nil, fmt.Errorf("%s: gzip: %w", source, err)
	}
	defer gz.Close()

	return ReadCSV(gz, source)
}
