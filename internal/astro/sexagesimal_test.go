package astro

import (
	"errors"
	"math"
	"strconv"
	"testing"
)

func TestParseRightAscension(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"zero", "0h 0m 0s", 0},
		{"whole hours", "6h 0m 0s", 90},
		{"Sirius", "6h 45m 8.9s", 101.28708333},
		{"Polaris", "2h 31m 49s", 37.95416667},
		{"extra whitespace", "  18h   36m 56.4s ", 279.235},
		{"last second of the day", "23h 59m 59.9s", 359.99958333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRightAscension(tt.in)
			if err != nil {
				t.Fatalf("ParseRightAscension(%q) error: %v", tt.in, err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("ParseRightAscension(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRightAscension_Monotonic(t *testing.T) {
	prev := -1.0
	for h := 0; h < 24; h += 3 {
		for m := 0; m < 60; m += 20 {
			for _, s := range []string{"0", "15.5", "59.9"} {
				in := strconv.Itoa(h) + "h " + strconv.Itoa(m) + "m " + s + "s"
				got, err := ParseRightAscension(in)
				if err != nil {
					t.Fatalf("ParseRightAscension(%q) error: %v", in, err)
				}
				if got <= prev {
					t.Fatalf("ParseRightAscension(%q) = %v, not greater than previous %v", in, got, prev)
				}
				if got < 0 || got >= 360 {
					t.Fatalf("ParseRightAscension(%q) = %v, out of [0,360)", in, got)
				}
				prev = got
			}
		}
	}
}

func TestParseRightAscension_Errors(t *testing.T) {
	inputs := []string{
		"",
		"6h 45m",
		"6h 45m 8.9s extra",
		"6 45 8.9",
		"6h 45s 8.9m",
		"24h 0m 0s",
		"6h 60m 0s",
		"6h 0m 60s",
		"-1h 0m 0s",
		"6.5h 0m 0s",
		"6h 0m NaNs",
		"xh 0m 0s",
	}

	for _, in := range inputs {
		_, err := ParseRightAscension(in)
		if err == nil {
			t.Errorf("ParseRightAscension(%q) succeeded, want error", in)
			continue
		}
		if !errors.Is(err, ErrParse) {
			t.Errorf("ParseRightAscension(%q) error %v does not match ErrParse", in, err)
		}
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Field != "right ascension" {
			t.Errorf("ParseRightAscension(%q) error %v is not a right ascension ParseError", in, err)
		}
	}
}

func TestParseDeclination(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"ascii minus half degree", "-0° 30′ 0″", -0.5},
		{"unicode minus half degree", "−0° 30′ 0″", -0.5},
		{"explicit plus", "+89° 15′ 50″", 89.26388889},
		{"unsigned", "38° 47′ 2″", 38.78388889},
		{"Sirius", "−16° 42′ 58″", -16.71611111},
		{"ascii suffixes", "-52° 41' 46\"", -52.69611111},
		{"fractional seconds", "+7° 24′ 25.4″", 7.40705556},
		{"pole", "+90° 0′ 0″", 90},
		{"south pole", "−90° 0′ 0″", -90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDeclination(tt.in)
			if err != nil {
				t.Fatalf("ParseDeclination(%q) error: %v", tt.in, err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("ParseDeclination(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDeclination_SignNegatesMagnitude(t *testing.T) {
	for _, body := range []string{"0° 30′ 0″", "16° 42′ 58″", "45° 0′ 0.5″"} {
		pos, err := ParseDeclination("+" + body)
		if err != nil {
			t.Fatalf("ParseDeclination(+%s): %v", body, err)
		}
		for _, sign := range []string{"-", "−"} {
			neg, err := ParseDeclination(sign + body)
			if err != nil {
				t.Fatalf("ParseDeclination(%s%s): %v", sign, body, err)
			}
			if neg != -pos {
				t.Errorf("ParseDeclination(%s%s) = %v, want %v", sign, body, neg, -pos)
			}
		}
	}
}

func TestParseDeclination_Errors(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"-16° 42′",
		"16 42 58",
		"-16° -42′ 58″",
		"91° 0′ 0″",
		"90° 0′ 1″",
		"16° 60′ 0″",
		"16° 0′ 60″",
		"16° 0′ Inf″",
		"--16° 42′ 58″",
	}

	for _, in := range inputs {
		_, err := ParseDeclination(in)
		if err == nil {
			t.Errorf("ParseDeclination(%q) succeeded, want error", in)
			continue
		}
		if !errors.Is(err, ErrParse) {
			t.Errorf("ParseDeclination(%q) error %v does not match ErrParse", in, err)
		}
	}
}
