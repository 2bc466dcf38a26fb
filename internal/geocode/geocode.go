// Package geocode resolves free-form addresses to coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMapsCoURL is the maps.co forward geocoding endpoint.
	DefaultMapsCoURL = "https://geocode.maps.co/search"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 15 * time.Second
)

// ErrNotFound is returned when an address yields no result.
var ErrNotFound = errors.New("address not found")

// Location is a resolved place.
type Location struct {
	Name   string  `json:"name" yaml:"name"`
	LatDeg float64 `json:"lat" yaml:"lat"`
	LonDeg float64 `json:"lon" yaml:"lon"`
}

// Geocoder resolves an address to a Location.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (Location, error)
}

// MapsCo queries the geocode.maps.co search API.
type MapsCo struct {
	client  *http.Client
	url     string
	apiKey  string
	timeout time.Duration
}

// Option configures a MapsCo client.
type Option func(*MapsCo)

// WithURL sets a custom search endpoint.
func WithURL(u string) Option {
	return func(m *MapsCo) {
		m.url = u
	}
}

// WithAPIKey sets the maps.co API key.
func WithAPIKey(key string) Option {
	return func(m *MapsCo) {
		m.apiKey = key
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *MapsCo) {
		m.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(m *MapsCo) {
		m.client = client
	}
}

// NewMapsCo creates a maps.co geocoder.
func NewMapsCo(opts ...Option) *MapsCo {
	m := &MapsCo{
		url:     DefaultMapsCoURL,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.client == nil {
		m.client = &http.Client{
			Timeout: m.timeout,
		}
	}

	return m
}

type searchHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve looks the address up and returns the first hit.
func (m *MapsCo) Resolve(ctx context.Context, address string) (Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Location{}, fmt.Errorf("%w: empty address", ErrNotFound)
	}

	params := url.Values{}
	params.Set("q", address)
	if m.apiKey != "" {
		params.Set("api_key", m.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url+"?"+params.Encode(), nil)
	if err != nil {
		return Location{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Location{}, fmt.Errorf("geocode returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var hits []searchHit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return Location{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(hits) == 0 {
		return Location{}, fmt.Errorf("%w: %q", ErrNotFound, address)
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return Location{}, fmt.Errorf("geocode latitude %q: %w", hits[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return Location{}, fmt.Errorf("geocode longitude %q: %w", hits[0].Lon, err)
	}

	return Location{Name: address, LatDeg: lat, LonDeg: lon}, nil
}

// URL returns the configured endpoint.
func (m *MapsCo) URL() string {
	return m.url
}
