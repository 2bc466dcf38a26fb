// Package config loads ls-starchart settings from YAML with defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/litescript/ls-starchart/internal/astro"
	"github.com/litescript/ls-starchart/internal/chart"
	"github.com/litescript/ls-starchart/internal/geocode"
	"github.com/litescript/ls-starchart/internal/skyquality"
)

// Environment variables consulted for API keys when the file sets none.
const (
	EnvGeocodeAPIKey    = "STARCHART_GEOCODE_API_KEY"
	EnvSkyQualityAPIKey = "STARCHART_SKYQUALITY_API_KEY"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full application configuration.
type Config struct {
	LogLevel   string           `yaml:"log-level,omitempty"`
	Observer   ObserverConfig   `yaml:"observer,omitempty"`
	Catalog    CatalogConfig    `yaml:"catalog,omitempty"`
	Chart      ChartConfig      `yaml:"chart,omitempty"`
	Geocoder   GeocoderConfig   `yaml:"geocoder,omitempty"`
	SkyQuality SkyQualityConfig `yaml:"sky-quality,omitempty"`
	Server     ServerConfig     `yaml:"server,omitempty"`
	UI         UIConfig         `yaml:"ui,omitempty"`
}

// ObserverConfig selects the default site. Coordinates win over a preset,
// and a preset wins over an address.
type ObserverConfig struct {
	Latitude  *float64 `yaml:"latitude,omitempty"`
	Longitude *float64 `yaml:"longitude,omitempty"`
	Label     string   `yaml:"label,omitempty"`
	Preset    string   `yaml:"preset,omitempty"`
	Address   string   `yaml:"address,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (o ObserverConfig) HasCoordinates() bool {
	return o.Latitude != nil && o.Longitude != nil
}

// CatalogConfig names the star catalog. An empty path selects the embedded
// bright-star list.
type CatalogConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ChartConfig tunes chart construction.
type ChartConfig struct {
	LimitingMagnitude *float64 `yaml:"limiting-magnitude,omitempty"`
	Bortle            float64  `yaml:"bortle,omitempty"`
	SkyBrightness     bool     `yaml:"sky-brightness,omitempty"`
	Sidereal          string   `yaml:"sidereal,omitempty"`
	ClipHorizon       bool     `yaml:"clip-horizon,omitempty"`
	Strict            bool     `yaml:"strict,omitempty"`
	Workers           int      `yaml:"workers,omitempty"`
}

// SiderealModel returns the configured sidereal time model.
func (c ChartConfig) SiderealModel() astro.SiderealModel {
	return astro.ParseSiderealModel(c.Sidereal)
}

// GeocoderConfig configures the address lookup.
type GeocoderConfig struct {
	URL     string        `yaml:"url,omitempty"`
	APIKey  string        `yaml:"api-key,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// SkyQualityConfig configures the light pollution lookup.
type SkyQualityConfig struct {
	URL     string        `yaml:"url,omitempty"`
	APIKey  string        `yaml:"api-key,omitempty"`
	Layer   string        `yaml:"layer,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen          string        `yaml:"listen,omitempty"`
	ReadTimeout     time.Duration `yaml:"read-timeout,omitempty"`
	WriteTimeout    time.Duration `yaml:"write-timeout,omitempty"`
	RequestTimeout  time.Duration `yaml:"request-timeout,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout,omitempty"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	RefreshInterval time.Duration `yaml:"refresh-interval,omitempty"`
	MaxEvents       int           `yaml:"max-events,omitempty"`
	MaxHistory      int           `yaml:"max-history,omitempty"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Chart: ChartConfig{
			Sidereal: astro.SiderealSimple.String(),
		},
		Geocoder: GeocoderConfig{
			URL:     geocode.DefaultMapsCoURL,
			Timeout: geocode.DefaultTimeout,
		},
		SkyQuality: SkyQualityConfig{
			URL:     skyquality.DefaultLightPollutionURL,
			Layer:   skyquality.DefaultLayer,
			Timeout: skyquality.DefaultTimeout,
		},
		Server: ServerConfig{
			Listen:          ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  20 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		UI: UIConfig{
			RefreshInterval: time.Minute,
			MaxEvents:       50,
			MaxHistory:      30,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults. API keys fall back to the environment.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg. Fields absent from data keep their values.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if c.Geocoder.APIKey == "" {
		c.Geocoder.APIKey = os.Getenv(EnvGeocodeAPIKey)
	}
	if c.SkyQuality.APIKey == "" {
		c.SkyQuality.APIKey = os.Getenv(EnvSkyQualityAPIKey)
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if o := c.Observer; o.Latitude != nil || o.Longitude != nil {
		if !o.HasCoordinates() {
			return fmt.Errorf("%w: observer needs both latitude and longitude", ErrInvalid)
		}
		if *o.Latitude < -90 || *o.Latitude > 90 {
			return fmt.Errorf("%w: latitude %v out of range", ErrInvalid, *o.Latitude)
		}
		if *o.Longitude < -180 || *o.Longitude > 180 {
			return fmt.Errorf("%w: longitude %v out of range", ErrInvalid, *o.Longitude)
		}
	}
	if p := c.Observer.Preset; p != "" {
		if _, ok := geocode.LookupPreset(p); !ok {
			return fmt.Errorf("%w: unknown preset %q", ErrInvalid, p)
		}
	}
	if m := c.Chart.LimitingMagnitude; m != nil && !(*m >= chart.MinLimitingMagnitude) {
		return fmt.Errorf("%w: limiting magnitude %v is below %v", ErrInvalid, *m, chart.MinLimitingMagnitude)
	}
	if b := c.Chart.Bortle; b != 0 {
		if _, err := astro.LimitingMagnitudeFromBortle(b); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if c.Chart.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", ErrInvalid, c.Chart.Workers)
	}
	if c.UI.RefreshInterval < 0 {
		return fmt.Errorf("%w: refresh interval %v is negative", ErrInvalid, c.UI.RefreshInterval)
	}
	return nil
}

// Marshal encodes the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
