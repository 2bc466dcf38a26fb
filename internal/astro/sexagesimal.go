package astro

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"
)

// ErrParse is matched by every *ParseError.
var ErrParse = errors.New("malformed sexagesimal coordinate")

// ParseError describes a right ascension or declination string that could
// not be parsed.
type ParseError struct {
	Field  string // "right ascension" or "declination"
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %s", e.Field, e.Input, e.Reason)
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

const (
	fieldRA  = "right ascension"
	fieldDec = "declination"
)

// Unit suffixes accepted for declination components.
var (
	degreeSuffixes = []string{"°", "d"}
	minuteSuffixes = []string{"′", "'", "m"}
	secondSuffixes = []string{"″", "\"", "''", "s"}
)

// ParseRightAscension parses "<h>h <m>m <s>s" (hours, minutes and seconds of
// time) into degrees in [0,360).
func ParseRightAscension(text string) (float64, error) {
	fail := func(reason string) (float64, error) {
		return 0, &ParseError{Field: fieldRA, Input: text, Reason: reason}
	}

	tokens := strings.Fields(text)
	if len(tokens) != 3 {
		return fail(fmt.Sprintf("want 3 components, got %d", len(tokens)))
	}

	h, ok := parseIntComponent(tokens[0], []string{"h"})
	if !ok {
		return fail("bad hours component " + strconv.Quote(tokens[0]))
	}
	m, ok := parseIntComponent(tokens[1], []string{"m"})
	if !ok {
		return fail("bad minutes component " + strconv.Quote(tokens[1]))
	}
	s, ok := parseFloatComponent(tokens[2], []string{"s"})
	if !ok {
		return fail("bad seconds component " + strconv.Quote(tokens[2]))
	}

	if h < 0 || h >= 24 {
		return fail("hours out of range")
	}
	if m < 0 || m >= 60 {
		return fail("minutes out of range")
	}
	if s < 0 || s >= 60 {
		return fail("seconds out of range")
	}

	hours := unit.FromSexa(' ', h, m, s)
	return hours * 15, nil
}

// ParseDeclination parses "±D° M′ S″" into signed degrees. A leading '+',
// '-' or Unicode minus sign (U+2212) sets the sign of the whole value.
func ParseDeclination(text string) (float64, error) {
	fail := func(reason string) (float64, error) {
		return 0, &ParseError{Field: fieldDec, Input: text, Reason: reason}
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fail("empty")
	}

	var neg byte = '+'
	switch {
	case strings.HasPrefix(trimmed, "−"):
		neg = '-'
		trimmed = strings.TrimPrefix(trimmed, "−")
	case strings.HasPrefix(trimmed, "-"):
		neg = '-'
		trimmed = trimmed[1:]
	case strings.HasPrefix(trimmed, "+"):
		trimmed = trimmed[1:]
	}

	tokens := strings.Fields(trimmed)
	if len(tokens) != 3 {
		return fail(fmt.Sprintf("want 3 components, got %d", len(tokens)))
	}

	d, ok := parseIntComponent(tokens[0], degreeSuffixes)
	if !ok {
		return fail("bad degrees component " + strconv.Quote(tokens[0]))
	}
	m, ok := parseIntComponent(tokens[1], minuteSuffixes)
	if !ok {
		return fail("bad arcminutes component " + strconv.Quote(tokens[1]))
	}
	s, ok := parseFloatComponent(tokens[2], secondSuffixes)
	if !ok {
		return fail("bad arcseconds component " + strconv.Quote(tokens[2]))
	}

	if d < 0 || m < 0 || m >= 60 || s < 0 || s >= 60 {
		return fail("component out of range")
	}

	deg := unit.FromSexa(neg, d, m, s)
	if deg > 90 || deg < -90 {
		return fail("declination beyond the poles")
	}
	return deg, nil
}

// stripSuffix removes the first matching unit suffix. The suffix is
// required.
func stripSuffix(tok string, suffixes []string) (string, bool) {
	for _, suf := range suffixes {
		if strings.HasSuffix(tok, suf) {
			return strings.TrimSuffix(tok, suf), true
		}
	}
	return "", false
}

func parseIntComponent(tok string, suffixes []string) (int, bool) {
	num, ok := stripSuffix(tok, suffixes)
	if !ok || num == "" {
		return 0, false
	}
	// Signs belong in front of the whole value only.
	if num[0] == '+' || num[0] == '-' {
		return 0, false
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseFloatComponent(tok string, suffixes []string) (float64, bool) {
	num, ok := stripSuffix(tok, suffixes)
	if !ok || num == "" {
		return 0, false
	}
	if num[0] == '+' || num[0] == '-' {
		return 0, false
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
