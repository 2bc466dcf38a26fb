package skyquality

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultLightPollutionURL is the lightpollutionmap.info point query.
	DefaultLightPollutionURL = "https://www.lightpollutionmap.info/QueryRaster/"

	// DefaultLayer is the World Atlas 2015 artificial brightness layer.
	DefaultLayer = "wa_2015"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 15 * time.Second
)

// LightPollutionMap looks up artificial sky brightness from
// lightpollutionmap.info and classifies it.
type LightPollutionMap struct {
	client  *http.Client
	url     string
	apiKey  string
	layer   string
	timeout time.Duration
}

// Option configures a LightPollutionMap client.
type Option func(*LightPollutionMap)

// WithURL sets a custom query endpoint.
func WithURL(u string) Option {
	return func(c *LightPollutionMap) {
		c.url = u
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *LightPollutionMap) {
		c.apiKey = key
	}
}

// WithLayer selects the raster layer.
func WithLayer(layer string) Option {
	return func(c *LightPollutionMap) {
		c.layer = layer
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *LightPollutionMap) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *LightPollutionMap) {
		c.client = client
	}
}

// NewLightPollutionMap creates a client.
func NewLightPollutionMap(opts ...Option) *LightPollutionMap {
	c := &LightPollutionMap{
		url:     DefaultLightPollutionURL,
		layer:   DefaultLayer,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{
			Timeout: c.timeout,
		}
	}

	return c
}

// Brightness returns the artificial sky brightness at a point in mcd/m².
func (c *LightPollutionMap) Brightness(ctx context.Context, latDeg, lonDeg float64) (float64, error) {
	params := url.Values{}
	params.Set("ql", c.layer)
	params.Set("qt", "point")
	// The service wants five decimals, longitude first.
	params.Set("qd", fmt.Sprintf("%.5f,%.5f", lonDeg, latDeg))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sky brightness request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return 0, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("sky brightness returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return 0, ErrNoData
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unexpected response %q", ErrNoData, text)
	}
	return v, nil
}

// BortleScale implements Lookup.
func (c *LightPollutionMap) BortleScale(ctx context.Context, latDeg, lonDeg float64) (float64, error) {
	mcd, err := c.Brightness(ctx, latDeg, lonDeg)
	if err != nil {
		return 0, err
	}
	return BortleFromSQM(SQMFromArtificial(mcd)), nil
}
