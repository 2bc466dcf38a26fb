package chart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/litescript/ls-starchart/internal/astro"
	"github.com/litescript/ls-starchart/internal/catalog"
	"github.com/litescript/ls-starchart/internal/geocode"
	"github.com/litescript/ls-starchart/internal/logging"
	"github.com/litescript/ls-starchart/internal/skyquality"
)

var (
	// ErrNoLocation is returned when a request names no place at all.
	ErrNoLocation = errors.New("no location given")

	// ErrNoGeocoder is returned for an address when no geocoder is set.
	ErrNoGeocoder = errors.New("address lookup not configured")

	// ErrNoSkyBrightness is returned when sky brightness is requested but
	// no lookup is set.
	ErrNoSkyBrightness = errors.New("sky brightness lookup not configured")

	// ErrInvalidMagnitude is returned for a limit below MinLimitingMagnitude.
	ErrInvalidMagnitude = errors.New("invalid limiting magnitude")
)

// MagnitudeSource records where a chart's limiting magnitude came from.
type MagnitudeSource string

const (
	MagnitudeDefault       MagnitudeSource = "default"
	MagnitudeExplicit      MagnitudeSource = "explicit"
	MagnitudeBortle        MagnitudeSource = "bortle"
	MagnitudeSkyBrightness MagnitudeSource = "sky-brightness"
)

// Request describes one chart. The location is taken from the first of
// Location, Preset and Address that is set.
type Request struct {
	Location *geocode.Location
	Preset   string
	Address  string

	// Time is the observation instant. Zero means now.
	Time time.Time

	// LimitingMagnitude is used as-is when set, including zero and negative
	// values down to MinLimitingMagnitude. Otherwise Bortle (> 0) is looked
	// up in the magnitude table, then UseSkyBrightness queries the
	// configured lookup, and finally DefaultLimitingMagnitude applies.
	LimitingMagnitude *float64
	Bortle            float64
	UseSkyBrightness  bool
}

// Chart is the result of a request.
type Chart struct {
	ID              uuid.UUID
	Location        geocode.Location
	Bortle          float64 // 0 unless the magnitude came from a Bortle class
	MagnitudeSource MagnitudeSource
	Table           *RenderTable
	GeneratedAt     time.Time
}

// Title returns the table's heading.
func (c *Chart) Title() string {
	return c.Table.Observer.Title()
}

// Service builds charts from requests.
type Service struct {
	catalog  *catalog.Catalog
	geocoder geocode.Geocoder
	sky      skyquality.Lookup
	sidereal astro.SiderealModel
	opts     Options
	logger   *logging.Logger
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithGeocoder sets the address resolver.
func WithGeocoder(g geocode.Geocoder) ServiceOption {
	return func(s *Service) {
		s.geocoder = g
	}
}

// WithSkyBrightness sets the Bortle lookup.
func WithSkyBrightness(l skyquality.Lookup) ServiceOption {
	return func(s *Service) {
		s.sky = l
	}
}

// WithSidereal selects the sidereal time model for new observers.
func WithSidereal(m astro.SiderealModel) ServiceOption {
	return func(s *Service) {
		s.sidereal = m
	}
}

// WithTableOptions sets the options passed to BuildTable.
func WithTableOptions(o Options) ServiceOption {
	return func(s *Service) {
		s.opts = o
	}
}

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock overrides time.Now for requests without a time.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a chart service over cat.
func NewService(cat *catalog.Catalog, opts ...ServiceOption) *Service {
	s := &Service{
		catalog: cat,
		logger:  logging.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog charts are built from.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Chart resolves the request's location and limiting magnitude and builds
// the table. Lookup failures fail the whole request; there is no retry.
func (s *Service) Chart(ctx context.Context, req Request) (*Chart, error) {
	id := uuid.New()
	log := s.logger.With("chart_id", id.String())

	loc, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	at := req.Time
	if at.IsZero() {
		at = s.now()
	}

	obs, err := NewObserver(loc.LatDeg, loc.LonDeg, at, WithLabel(loc.Name), WithSiderealModel(s.sidereal))
	if err != nil {
		return nil, err
	}

	limit, bortle, source, err := s.limitingMagnitude(ctx, req, loc)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	table, err := BuildTable(s.catalog, obs, limit, s.opts)
	if err != nil {
		return nil, fmt.Errorf("build chart table: %w", err)
	}

	log.Debug("built %d rows for %s (limit %.1f from %s) in %v",
		len(table.Rows), obs.Title(), limit, source, time.Since(start))
	if bad := table.Errors(); len(bad) > 0 {
		log.Warn("%d catalog rows have unparseable coordinates, first: %v", len(bad), bad[0].Err)
	}

	return &Chart{
		ID:              id,
		Location:        loc,
		Bortle:          bortle,
		MagnitudeSource: source,
		Table:           table,
		GeneratedAt:     start,
	}, nil
}

// Replot rebuilds prev for another instant, reusing its resolved location
// and limiting magnitude. No lookups are made. A zero at means now.
func (s *Service) Replot(prev *Chart, at time.Time) (*Chart, error) {
	if prev == nil || prev.Table == nil {
		return nil, errors.New("replot: no previous chart")
	}
	if at.IsZero() {
		at = s.now()
	}

	start := time.Now()
	table, err := BuildTable(s.catalog, prev.Table.Observer.At(at), prev.Table.LimitingMagnitude, s.opts)
	if err != nil {
		return nil, fmt.Errorf("build chart table: %w", err)
	}

	return &Chart{
		ID:              uuid.New(),
		Location:        prev.Location,
		Bortle:          prev.Bortle,
		MagnitudeSource: prev.MagnitudeSource,
		Table:           table,
		GeneratedAt:     start,
	}, nil
}

func (s *Service) resolve(ctx context.Context, req Request) (geocode.Location, error) {
	switch {
	case req.Location != nil:
		return *req.Location, nil
	case req.Preset != "":
		loc, ok := geocode.LookupPreset(req.Preset)
		if !ok {
			return geocode.Location{}, fmt.Errorf("%w: unknown preset %q", geocode.ErrNotFound, req.Preset)
		}
		return loc, nil
	case req.Address != "":
		if s.geocoder == nil {
			return geocode.Location{}, ErrNoGeocoder
		}
		loc, err := s.geocoder.Resolve(ctx, req.Address)
		if err != nil {
			return geocode.Location{}, fmt.Errorf("resolve %q: %w", req.Address, err)
		}
		return loc, nil
	default:
		return geocode.Location{}, ErrNoLocation
	}
}

func (s *Service) limitingMagnitude(ctx context.Context, req Request, loc geocode.Location) (float64, float64, MagnitudeSource, error) {
	switch {
	case req.LimitingMagnitude != nil:
		mag := *req.LimitingMagnitude
		if math.IsNaN(mag) || mag < MinLimitingMagnitude {
			return 0, 0, "", fmt.Errorf("%w: %v is below %v", ErrInvalidMagnitude, mag, MinLimitingMagnitude)
		}
		return mag, 0, MagnitudeExplicit, nil
	case req.Bortle > 0:
		mag, err := astro.LimitingMagnitudeFromBortle(req.Bortle)
		if err != nil {
			return 0, 0, "", err
		}
		return mag, req.Bortle, MagnitudeBortle, nil
	case req.UseSkyBrightness:
		if s.sky == nil {
			return 0, 0, "", ErrNoSkyBrightness
		}
		scale, err := s.sky.BortleScale(ctx, loc.LatDeg, loc.LonDeg)
		if err != nil {
			return 0, 0, "", fmt.Errorf("sky brightness at %.4f, %.4f: %w", loc.LatDeg, loc.LonDeg, err)
		}
		mag, err := astro.LimitingMagnitudeFromBortle(scale)
		if err != nil {
			return 0, 0, "", err
		}
		return mag, scale, MagnitudeSkyBrightness, nil
	default:
		return DefaultLimitingMagnitude, 0, MagnitudeDefault, nil
	}
}
