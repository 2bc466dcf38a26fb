package astro

import (
	"math"
	"testing"
	"time"
)

func TestHourAngle(t *testing.T) {
	tests := []struct {
		name string
		lst  float64
		ra   float64
		want float64
	}{
		{"positive difference", 100, 40, 60},
		{"negative difference wraps", 10, 350, 20},
		{"equal", 123.4, 123.4, 0},
		// Values of 360 and above are not reduced.
		{"large passes through", 370, 5, 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HourAngle(tt.lst, tt.ra)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("HourAngle(%v, %v) = %v, want %v", tt.lst, tt.ra, got, tt.want)
			}
		})
	}
}

func TestHourAngle_RangeForValidInputs(t *testing.T) {
	for lst := 0.0; lst < 360; lst += 17.5 {
		for ra := 0.0; ra < 360; ra += 13.25 {
			ha := HourAngle(lst, ra)
			if ha < 0 || ha >= 360 {
				t.Fatalf("HourAngle(%v, %v) = %v, out of [0,360)", lst, ra, ha)
			}
		}
	}
}

func TestAltitudeAzimuth_Zenith(t *testing.T) {
	h := AltitudeAzimuth(0, 0, 0)
	if h.Below {
		t.Fatal("zenith object flagged Below")
	}
	if math.Abs(h.AltDeg-90) > 1e-6 {
		t.Errorf("alt = %v, want 90", h.AltDeg)
	}
	if h.AzDeg < 0 || h.AzDeg > 360 {
		t.Errorf("az = %v, out of range", h.AzDeg)
	}
}

func TestAltitudeAzimuth_BelowGuard(t *testing.T) {
	tests := []struct {
		dec, lat float64
		below    bool
	}{
		{-60, 35, true},
		{60, -35, true},
		{-55, 35, false},
		{89.26, 35, false},
		{-90, 0.5, true},
	}

	for _, tt := range tests {
		h := AltitudeAzimuth(tt.dec, 0, tt.lat)
		if h.Below != tt.below {
			t.Errorf("AltitudeAzimuth(dec=%v, lat=%v).Below = %v, want %v", tt.dec, tt.lat, h.Below, tt.below)
		}
		if h.Below && (h.AltDeg != 0 || h.AzDeg != 0) {
			t.Errorf("Below result should carry zero alt/az, got %+v", h)
		}
	}
}

func TestAltitudeAzimuth_MeridianTransit(t *testing.T) {
	// On the meridian (HA = 0) altitude is 90 - |lat - dec|.
	tests := []struct {
		dec, lat float64
	}{
		{20, 40},
		{-10, 30},
		{50, 10},
		{-30, -35},
	}

	for _, tt := range tests {
		h := AltitudeAzimuth(tt.dec, 0, tt.lat)
		want := 90 - math.Abs(tt.lat-tt.dec)
		if math.Abs(h.AltDeg-want) > 1e-9 {
			t.Errorf("dec=%v lat=%v: alt = %v, want %v", tt.dec, tt.lat, h.AltDeg, want)
		}
	}
}

func TestAltitudeAzimuth_EastWest(t *testing.T) {
	// Before transit (HA just under 360, sin HA < 0) the object is in the
	// east; after transit it is in the west.
	east := AltitudeAzimuth(10, 330, 40)
	if east.AzDeg <= 0 || east.AzDeg >= 180 {
		t.Errorf("rising object az = %v, want in (0,180)", east.AzDeg)
	}

	west := AltitudeAzimuth(10, 30, 40)
	if west.AzDeg <= 180 || west.AzDeg >= 360 {
		t.Errorf("setting object az = %v, want in (180,360)", west.AzDeg)
	}

	// Mirror images about the meridian share altitude.
	if math.Abs(east.AltDeg-west.AltDeg) > 1e-9 {
		t.Errorf("symmetric hour angles gave alt %v and %v", east.AltDeg, west.AltDeg)
	}
	if math.Abs((east.AzDeg+west.AzDeg)-360) > 1e-9 {
		t.Errorf("azimuths %v and %v should sum to 360", east.AzDeg, west.AzDeg)
	}
}

func TestAltitudeAzimuth_AzimuthFallback(t *testing.T) {
	// At the pole the azimuth denominator is ~6e-17 and rounding pushes the
	// cosine to about -1.02. The angle falls back to 0, giving az 360.
	h := AltitudeAzimuth(1, 0, 90)
	if h.Below {
		t.Fatal("dec 1 at the pole flagged Below")
	}
	if math.Abs(h.AltDeg-1) > 1e-9 {
		t.Errorf("alt = %v, want 1", h.AltDeg)
	}
	if math.Abs(h.AzDeg-360) > 1e-9 {
		t.Errorf("az = %v, want 360", h.AzDeg)
	}
	if p := Project(h.AltDeg, h.AzDeg); p.Renderable {
		t.Errorf("Project(%v, %v) = %+v, want unrenderable", h.AltDeg, h.AzDeg, p)
	}
}

func TestAltitudeAzimuth_FromSiderealTime(t *testing.T) {
	site := Observer{LatDeg: 35, LonDeg: -117}
	at := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	lst := LocalSiderealTime(at, site.LonDeg)

	// Dec = lat and RA = LST put the star overhead.
	overhead := AltitudeAzimuth(site.LatDeg, HourAngle(lst, lst), site.LatDeg)
	if math.Abs(overhead.AltDeg-90) > 1e-4 {
		t.Errorf("zenith star alt = %v, want 90", overhead.AltDeg)
	}

	// Polaris sits ~0.74° from the pole, so its altitude tracks latitude.
	polaris := AltitudeAzimuth(89.26, HourAngle(lst, 37.95), site.LatDeg)
	if math.Abs(polaris.AltDeg-site.LatDeg) > 1.5 {
		t.Errorf("Polaris alt = %v, want ~%v", polaris.AltDeg, site.LatDeg)
	}

	for ra := 0.0; ra < 360; ra += 30 {
		for dec := -50.0; dec <= 80; dec += 20 {
			h := AltitudeAzimuth(dec, HourAngle(lst, ra), site.LatDeg)
			if h.AzDeg < 0 || h.AzDeg > 360 || h.AltDeg < -90 || h.AltDeg > 90 {
				t.Errorf("ra=%v dec=%v: %+v out of range", ra, dec, h)
			}
		}
	}
}

func TestDegToRad(t *testing.T) {
	tests := []struct {
		deg float64
		rad float64
	}{
		{0, 0},
		{90, math.Pi / 2},
		{180, math.Pi},
		{360, 2 * math.Pi},
		{-90, -math.Pi / 2},
	}

	for _, tt := range tests {
		got := degToRad(tt.deg)
		if math.Abs(got-tt.rad) > 1e-10 {
			t.Errorf("degToRad(%v) = %v, want %v", tt.deg, got, tt.rad)
		}
	}
}

func TestRadToDeg(t *testing.T) {
	tests := []struct {
		rad float64
		deg float64
	}{
		{0, 0},
		{math.Pi / 2, 90},
		{math.Pi, 180},
		{2 * math.Pi, 360},
	}

	for _, tt := range tests {
		got := radToDeg(tt.rad)
		if math.Abs(got-tt.deg) > 1e-10 {
			t.Errorf("radToDeg(%v) = %v, want %v", tt.rad, got, tt.deg)
		}
	}
}
