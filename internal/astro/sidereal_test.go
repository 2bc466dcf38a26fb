package astro

import (
	"math"
	"testing"
	"time"
)

func TestJulianDate(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		expected float64
		tol      float64
	}{
		{
			name:     "J2000 epoch",
			time:     time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
			expected: 2451545.0,
			tol:      0.0001,
		},
		{
			name:     "Unix epoch",
			time:     time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 2440587.5,
			tol:      0.0001,
		},
		{
			name:     "Known date 2024-01-01 00:00 UTC",
			time:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 2460310.5,
			tol:      0.0001,
		},
		{
			name:     "Non-UTC zone is converted",
			time:     time.Date(2000, 1, 1, 7, 0, 0, 0, time.FixedZone("EST", -5*3600)),
			expected: 2451545.0,
			tol:      0.0001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JulianDate(tt.time)
			if math.Abs(got-tt.expected) > tt.tol {
				t.Errorf("JulianDate() = %v, want %v (±%v)", got, tt.expected, tt.tol)
			}
		})
	}
}

func TestDaysSinceJ2000(t *testing.T) {
	if d := DaysSinceJ2000(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)); math.Abs(d) > 1e-9 {
		t.Errorf("DaysSinceJ2000(J2000) = %v, want 0", d)
	}
	if d := DaysSinceJ2000(time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC)); math.Abs(d-0.5) > 1e-6 {
		t.Errorf("DaysSinceJ2000(2000-01-02) = %v, want 0.5", d)
	}
}

func TestLocalSiderealTime_J2000(t *testing.T) {
	// d = 0 and UT = 12h leave 100.46 + 180.
	got := LocalSiderealTime(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC), 0)
	if math.Abs(got-280.46) > 1e-6 {
		t.Errorf("LST at J2000, lon 0 = %v, want 280.46", got)
	}
}

func TestLocalSiderealTime_Range(t *testing.T) {
	times := []time.Time{
		time.Date(1990, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC),
		time.Date(2031, 12, 31, 6, 30, 0, 0, time.UTC),
	}

	for _, tm := range times {
		for lon := -180.0; lon <= 180; lon += 15 {
			lst := LocalSiderealTime(tm, lon)
			if lst < 0 || lst >= 360 {
				t.Errorf("LST(%v, lon=%v) = %v, out of [0,360)", tm, lon, lst)
			}
		}
	}
}

func TestLocalSiderealTime_LongitudeOffset(t *testing.T) {
	tm := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	lst0 := LocalSiderealTime(tm, 0)
	lst90 := LocalSiderealTime(tm, 90)

	want := math.Mod(lst0+90, 360)
	if math.Abs(lst90-want) > 1e-9 {
		t.Errorf("LST at lon=90 = %v, want %v", lst90, want)
	}
}

func TestLocalSiderealTime_IgnoresSecondsInTimeTerm(t *testing.T) {
	a := LocalSiderealTime(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC), 0)
	b := LocalSiderealTime(time.Date(2024, 6, 15, 12, 0, 59, 0, time.UTC), 0)

	// Only the day count moves (~0.0007°); 59 s of UT would add ~0.25°.
	if diff := b - a; diff < 0 || diff > 0.001 {
		t.Errorf("LST moved by %v over 59 seconds, want < 0.001", diff)
	}
}

func TestGreenwichMeanSiderealTime(t *testing.T) {
	gmst := greenwichMeanSiderealTime(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC))

	if math.Abs(gmst-280.46) > 0.1 {
		t.Errorf("GMST at J2000 = %v, want ~280.46", gmst)
	}
	if gmst < 0 || gmst >= 360 {
		t.Errorf("GMST out of range: %v", gmst)
	}
}

func TestLocalSiderealTimeModel_Agreement(t *testing.T) {
	tm := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	for lon := -150.0; lon <= 150; lon += 50 {
		simple := LocalSiderealTimeModel(tm, lon, SiderealSimple)
		iau := LocalSiderealTimeModel(tm, lon, SiderealIAU)

		diff := math.Abs(simple - iau)
		if diff > 180 {
			diff = 360 - diff
		}
		if diff > 0.1 {
			t.Errorf("lon=%v: simple=%v iau=%v differ by %v°", lon, simple, iau, diff)
		}
	}
}

func TestParseSiderealModel(t *testing.T) {
	tests := []struct {
		in   string
		want SiderealModel
	}{
		{"iau", SiderealIAU},
		{"IAU", SiderealIAU},
		{"simple", SiderealSimple},
		{"", SiderealSimple},
		{"bogus", SiderealSimple},
	}

	for _, tt := range tests {
		if got := ParseSiderealModel(tt.in); got != tt.want {
			t.Errorf("ParseSiderealModel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if SiderealIAU.String() != "iau" || SiderealSimple.String() != "simple" {
		t.Error("unexpected model names")
	}
}

func TestNormalizeAngle360(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{725, 5},
		{-90, 270},
		{-1e-14, 0},
		{-360, 0},
		{359.5, 359.5},
	}
	for _, tt := range tests {
		got := normalizeAngle360(tt.in)
		if got < 0 || got >= 360 {
			t.Errorf("normalizeAngle360(%v) = %v, out of [0,360)", tt.in, got)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("normalizeAngle360(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
