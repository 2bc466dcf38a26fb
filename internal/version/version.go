// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - HTTP API with Prometheus metrics, YAML config, Parquet and gzip catalogs
// 0.2.0 - Sky brightness lookup, Bortle presets, chart comparison in the TUI
// 0.1.0 - Initial release: chart pipeline, TUI disk chart, headless modes
