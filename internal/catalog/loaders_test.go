package catalog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
)

const sampleCSV = `name,right_ascension,declination,apparent_magnitude,parent_constellation,distance (ly),link
Sirius,6h 45m 8.9s,−16° 42′ 58″,-1.46,Canis Major,8.6,/wiki/Sirius
Vega,18h 36m 56.4s,+38° 47′ 2″,0.03,Lyra,25,/wiki/Vega
Deneb,20h 41m 25.9s,+45° 16′ 49″,1.25,Cygnus,"2,615",/wiki/Deneb
`

func TestReadCSV(t *testing.T) {
	cat, err := ReadCSV(strings.NewReader(sampleCSV), "sample")
	if err != nil {
		t.Fatalf("ReadCSV() error: %v", err)
	}

	if cat.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", cat.Len())
	}

	sirius := cat.Stars[0]
	if sirius.Name != "Sirius" || sirius.RightAscension != "6h 45m 8.9s" || sirius.Declination != "−16° 42′ 58″" {
		t.Errorf("unexpected first row: %+v", sirius)
	}
	if sirius.ApparentMagnitude != -1.46 || sirius.DistanceLy != 8.6 {
		t.Errorf("numeric fields: mag=%v dist=%v", sirius.ApparentMagnitude, sirius.DistanceLy)
	}
	if cat.Stars[2].DistanceLy != 2615 {
		t.Errorf("thousands separator: dist=%v, want 2615", cat.Stars[2].DistanceLy)
	}
	if cat.Source != "sample" {
		t.Errorf("Source = %q", cat.Source)
	}
}

func TestReadCSV_HeaderCaseAndOrder(t *testing.T) {
	in := "Link,Apparent_Magnitude, NAME ,Declination,Right_Ascension,Parent_Constellation,Distance_LY\n" +
		"/wiki/Vega,0.03,Vega,+38° 47′ 2″,18h 36m 56.4s,Lyra,25\n"

	cat, err := ReadCSV(strings.NewReader(in), "reordered")
	if err != nil {
		t.Fatalf("ReadCSV() error: %v", err)
	}
	want := StarRecord{
		Name:                "Vega",
		RightAscension:      "18h 36m 56.4s",
		Declination:         "+38° 47′ 2″",
		ApparentMagnitude:   0.03,
		ParentConstellation: "Lyra",
		DistanceLy:          25,
		Link:                "/wiki/Vega",
	}
	if cat.Stars[0] != want {
		t.Errorf("row = %+v, want %+v", cat.Stars[0], want)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"empty", "", nil},
		{"missing column", "name,right_ascension,declination\nSirius,6h 45m 8.9s,−16° 42′ 58″\n", ErrMissingColumn},
		{"bad magnitude", strings.Replace(sampleCSV, "-1.46", "bright", 1), nil},
		{"short row", strings.Replace(sampleCSV, ",/wiki/Vega", "", 1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in), "bad")
			if err == nil {
				t.Fatal("ReadCSV() succeeded, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadCSVGzip(t *testing.T) {
	var buf bytes.Buffer
	gz := pgzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(sampleCSV)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}

	cat, err := ReadCSVGzip(&buf, "sample.csv.gz")
	if err != nil {
		t.Fatalf("ReadCSVGzip() error: %v", err)
	}
	if cat.Len() != 3 || cat.Stars[1].Name != "Vega" {
		t.Errorf("unexpected catalog: %+v", cat.Stars)
	}
}

func TestParquetRoundTrip(t *testing.T) {
	src, err := ReadCSV(strings.NewReader(sampleCSV), "sample")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteParquet(&buf, src); err != nil {
		t.Fatalf("WriteParquet() error: %v", err)
	}

	data := buf.Bytes()
	got, err := ReadParquet(bytes.NewReader(data), int64(len(data)), "sample.parquet")
	if err != nil {
		t.Fatalf("ReadParquet() error: %v", err)
	}

	if got.Len() != src.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), src.Len())
	}
	for i := range src.Stars {
		if got.Stars[i] != src.Stars[i] {
			t.Errorf("row %d = %+v, want %+v", i, got.Stars[i], src.Stars[i])
		}
	}
}

func TestLoad_ByExtension(t *testing.T) {
	dir := t.TempDir()
	src, err := ReadCSV(strings.NewReader(sampleCSV), "sample")
	if err != nil {
		t.Fatal(err)
	}

	csvPath := filepath.Join(dir, "stars.csv")
	if err := os.WriteFile(csvPath, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	gzPath := filepath.Join(dir, "stars.csv.gz")
	var gzBuf bytes.Buffer
	gz := pgzip.NewWriter(&gzBuf)
	gz.Write([]byte(sampleCSV))
	gz.Close()
	if err := os.WriteFile(gzPath, gzBuf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	pqPath := filepath.Join(dir, "stars.parquet")
	var pqBuf bytes.Buffer
	if err := WriteParquet(&pqBuf, src); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pqPath, pqBuf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{csvPath, gzPath, pqPath} {
		cat, err := Load(path)
		if err != nil {
			t.Errorf("Load(%s) error: %v", filepath.Base(path), err)
			continue
		}
		if cat.Len() != 3 {
			t.Errorf("Load(%s) Len() = %d, want 3", filepath.Base(path), cat.Len())
		}
		if cat.Source != path {
			t.Errorf("Load(%s) Source = %q", filepath.Base(path), cat.Source)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load("stars.xlsx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(.xlsx) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want os.ErrNotExist", err)
	}
}
