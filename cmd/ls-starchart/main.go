// Command ls-starchart draws horizon star charts for an observer: an
// interactive terminal chart, text and JSON reports, or an HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-starchart/internal/catalog"
	"github.com/litescript/ls-starchart/internal/chart"
	"github.com/litescript/ls-starchart/internal/config"
	"github.com/litescript/ls-starchart/internal/export"
	"github.com/litescript/ls-starchart/internal/geocode"
	"github.com/litescript/ls-starchart/internal/logging"
	"github.com/litescript/ls-starchart/internal/server"
	"github.com/litescript/ls-starchart/internal/skyquality"
	"github.com/litescript/ls-starchart/internal/state"
	"github.com/litescript/ls-starchart/internal/ui"
	"github.com/litescript/ls-starchart/internal/version"
)

// Observer and chart flags. Only flags given on the command line override
// the configuration file.
var (
	configPath  string
	logLevel    string
	latitude    float64
	longitude   float64
	label       string
	preset      string
	address     string
	timeStr     string
	magnitude   float64
	bortle      float64
	skyLookup   bool
	sidereal    string
	catalogPath string
	clipHorizon bool
	strict      bool
	workers     int
)

// Output modes. Any of them skips the TUI.
var (
	summaryMode   bool
	jsonPath      string
	miniChartMode bool
	highlight     string
	eventsMode    bool
	diffMode      bool
	watchInterval time.Duration
	serveMode     bool
	parquetPath   string
	listPresets   bool
	showVersion   bool
)

const minWatch = 10 * time.Second

func main() {
	flag.StringVar(&configPath, "config", "", "YAML configuration file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Float64Var(&latitude, "lat", 0, "Observer latitude in degrees, north positive")
	flag.Float64Var(&longitude, "lon", 0, "Observer longitude in degrees, east positive")
	flag.StringVar(&label, "label", "", "Display name for --lat/--lon")
	flag.StringVar(&preset, "preset", "", "Named dark-sky site (see --presets)")
	flag.StringVar(&address, "address", "", "Address to geocode")
	flag.StringVar(&timeStr, "time", "", "Observation time, RFC 3339 (default now)")
	flag.Float64Var(&magnitude, "mag", 0, "Limiting magnitude, down to -1 (default from --bortle or 8)")
	flag.Float64Var(&bortle, "bortle", 0, "Bortle class (1-9 or 4.5) for the limiting magnitude")
	flag.BoolVar(&skyLookup, "sky", false, "Look up the Bortle class from the light pollution map")
	flag.StringVar(&sidereal, "sidereal", "", "Sidereal time model (simple, iau)")
	flag.StringVar(&catalogPath, "catalog", "", "Star catalog (.csv, .csv.gz, .parquet); default embedded")
	flag.BoolVar(&clipHorizon, "clip-horizon", false, "Drop stars below the horizon")
	flag.BoolVar(&strict, "strict", false, "Fail on the first catalog row that does not parse")
	flag.IntVar(&workers, "workers", 0, "Rows processed concurrently")

	flag.BoolVar(&summaryMode, "summary", false, "Print a text summary instead of the TUI")
	flag.StringVar(&jsonPath, "json", "", "Export the chart as JSON to a file (use - for stdout)")
	flag.BoolVar(&miniChartMode, "mini-chart", false, "Print an ASCII chart")
	flag.StringVar(&highlight, "highlight", "", "Constellation to mark on the ASCII chart")
	flag.BoolVar(&eventsMode, "events", false, "Print the event log")
	flag.BoolVar(&diffMode, "diff", false, "With --watch, print only stars that appeared or set")
	flag.DurationVar(&watchInterval, "watch", 0, "Rebuild the chart at this interval (e.g. 1m)")
	flag.BoolVar(&serveMode, "serve", false, "Run the HTTP API")
	flag.StringVar(&parquetPath, "export-parquet", "", "Write the loaded catalog as Parquet and exit")
	flag.BoolVar(&listPresets, "presets", false, "List the named sites and exit")
	flag.BoolVar(&showVersion, "version", false, "Print the version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("ls-starchart", version.Version)
		return
	}
	if listPresets {
		for _, p := range geocode.Presets {
			fmt.Printf("%-32s %9.4f %10.4f\n", p.Name, p.LatDeg, p.LonDeg)
		}
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	defer logger.Sync()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("Loaded %d stars from %s", len(cat.Stars), cat.Source)

	if parquetPath != "" {
		if err := writeParquet(parquetPath, cat); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger.Info("Wrote %d stars to %s", len(cat.Stars), parquetPath)
		return
	}

	svc := newService(cat, cfg, logger)

	if serveMode {
		if err := runServer(ctx, cfg, svc, logger); err != nil {
			logger.Error("Server: %v", err)
			os.Exit(1)
		}
		return
	}

	req, err := buildRequest(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	stateMgr := state.NewManager(state.Config{
		MaxHistoryLen:   cfg.UI.MaxHistory,
		MaxEvents:       cfg.UI.MaxEvents,
		RefreshInterval: cfg.UI.RefreshInterval,
	})

	// Headless mode: no TUI. Output that is not a terminal gets the summary.
	headless := summaryMode || jsonPath != "" || miniChartMode || eventsMode || diffMode || watchInterval > 0
	if !headless && !term.IsTerminal(int(os.Stdout.Fd())) {
		summaryMode, headless = true, true
	}
	if headless {
		if err := runHeadless(ctx, svc, stateMgr, req, cfg.Server.RequestTimeout); err != nil {
			reportError(err)
			os.Exit(1)
		}
		return
	}

	// The TUI owns the terminal.
	logger.SetOutput(io.Discard)

	model := ui.New(stateMgr, svc, req, cfg.Server.RequestTimeout)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads --config and applies the flags that were set.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["log-level"] {
		cfg.LogLevel = logLevel
	}
	if set["lat"] || set["lon"] {
		if !set["lat"] || !set["lon"] {
			return config.Config{}, fmt.Errorf("%w: --lat and --lon go together", config.ErrInvalid)
		}
		lat, lon := latitude, longitude
		cfg.Observer.Latitude, cfg.Observer.Longitude = &lat, &lon
		cfg.Observer.Preset, cfg.Observer.Address = "", ""
	}
	if set["label"] {
		cfg.Observer.Label = label
	}
	if set["preset"] {
		cfg.Observer.Latitude, cfg.Observer.Longitude = nil, nil
		cfg.Observer.Preset, cfg.Observer.Address = preset, ""
	}
	if set["address"] {
		cfg.Observer.Latitude, cfg.Observer.Longitude = nil, nil
		cfg.Observer.Preset, cfg.Observer.Address = "", address
	}
	if set["mag"] {
		cfg.Chart.LimitingMagnitude = chart.Magnitude(magnitude)
	}
	if set["bortle"] {
		cfg.Chart.Bortle = bortle
	}
	if set["sky"] {
		cfg.Chart.SkyBrightness = skyLookup
	}
	if set["sidereal"] {
		cfg.Chart.Sidereal = sidereal
	}
	if set["catalog"] {
		cfg.Catalog.Path = catalogPath
	}
	if set["clip-horizon"] {
		cfg.Chart.ClipHorizon = clipHorizon
	}
	if set["strict"] {
		cfg.Chart.Strict = strict
	}
	if set["workers"] {
		cfg.Chart.Workers = workers
	}
	if set["watch"] && watchInterval < minWatch {
		watchInterval = minWatch
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func writeParquet(path string, cat *catalog.Catalog) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	if err := catalog.WriteParquet(f, cat); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// newService wires the chart service to the configured lookups.
func newService(cat *catalog.Catalog, cfg config.Config, logger *logging.Logger) *chart.Service {
	opts := []chart.ServiceOption{
		chart.WithLogger(logger),
		chart.WithSidereal(cfg.Chart.SiderealModel()),
		chart.WithTableOptions(chart.Options{
			Strict:      cfg.Chart.Strict,
			Workers:     cfg.Chart.Workers,
			ClipHorizon: cfg.Chart.ClipHorizon,
		}),
		chart.WithGeocoder(geocode.NewMapsCo(
			geocode.WithURL(cfg.Geocoder.URL),
			geocode.WithAPIKey(cfg.Geocoder.APIKey),
			geocode.WithTimeout(cfg.Geocoder.Timeout),
		)),
	}

	if cfg.SkyQuality.APIKey != "" {
		opts = append(opts, chart.WithSkyBrightness(skyquality.NewLightPollutionMap(
			skyquality.WithURL(cfg.SkyQuality.URL),
			skyquality.WithAPIKey(cfg.SkyQuality.APIKey),
			skyquality.WithLayer(cfg.SkyQuality.Layer),
			skyquality.WithTimeout(cfg.SkyQuality.Timeout),
		)))
	} else if cfg.Chart.SkyBrightness {
		logger.Warn("Sky brightness lookup requested without an API key (set %s)", config.EnvSkyQualityAPIKey)
	}

	return chart.NewService(cat, opts...)
}

// buildRequest turns the observer and chart settings into a chart request.
func buildRequest(cfg config.Config) (chart.Request, error) {
	req := chart.Request{
		Preset:            cfg.Observer.Preset,
		Address:           cfg.Observer.Address,
		LimitingMagnitude: cfg.Chart.LimitingMagnitude,
		Bortle:            cfg.Chart.Bortle,
		UseSkyBrightness:  cfg.Chart.SkyBrightness,
	}
	if cfg.Observer.HasCoordinates() {
		name := cfg.Observer.Label
		if name == "" {
			name = fmt.Sprintf("%.4f, %.4f", *cfg.Observer.Latitude, *cfg.Observer.Longitude)
		}
		req.Location = &geocode.Location{
			Name:   name,
			LatDeg: *cfg.Observer.Latitude,
			LonDeg: *cfg.Observer.Longitude,
		}
	}
	if timeStr != "" {
		t, err := time.Parse(time.RFC3339, timeStr)
		if err != nil {
			return chart.Request{}, fmt.Errorf("--time: %w", err)
		}
		req.Time = t
	}
	return req, nil
}

func runServer(ctx context.Context, cfg config.Config, svc *chart.Service, logger *logging.Logger) error {
	metrics, err := server.NewMetrics(nil)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	srv := server.New(server.Config{
		Addr:            cfg.Server.Listen,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		RequestTimeout:  cfg.Server.RequestTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, svc, metrics, logger)
	return srv.ListenAndServe(ctx)
}

// runHeadless handles all headless modes without starting the TUI.
func runHeadless(ctx context.Context, svc *chart.Service, stateMgr *state.Manager, req chart.Request, timeout time.Duration) error {
	// Watch mode following the clock resolves the location once and
	// replots the last chart on later ticks.
	var last *chart.Chart
	outputOnce := func() error {
		reqCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		var c *chart.Chart
		var err error
		if last != nil && req.Time.IsZero() {
			c, err = svc.Replot(last, time.Time{})
		} else {
			c, err = svc.Chart(reqCtx, req)
		}
		stateMgr.Update(c, time.Since(start), err)
		if err != nil {
			return err
		}
		last = c

		// Diff mode compares each chart with the previous one.
		if diffMode {
			if cmp, ok := stateMgr.Compare(); ok {
				fmt.Printf("%s\n", c.Title())
				export.WriteComparison(os.Stdout, cmp)
			} else {
				export.WriteSummary(os.Stdout, c)
			}
			stateMgr.Store()
			return nil
		}

		// Export JSON if requested
		if jsonPath != "" {
			if err := writeJSON(jsonPath, c); err != nil {
				return err
			}
		}

		if summaryMode {
			export.WriteSummary(os.Stdout, c)
		}

		if miniChartMode {
			cfg := export.DefaultMiniChartConfig()
			cfg.Highlight = highlight
			cfg.Color = term.IsTerminal(int(os.Stdout.Fd()))
			fmt.Println()
			export.WriteMiniChart(os.Stdout, c.Table, cfg)
		}

		if eventsMode {
			fmt.Println()
			export.WriteEvents(os.Stdout, stateMgr.RecentEvents(10), 10)
		}
		return nil
	}

	// Single run
	if watchInterval == 0 {
		return outputOnce()
	}

	// Watch mode: repeat at interval
	if err := outputOnce(); err != nil {
		reportError(err)
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fmt.Println()
			if err := outputOnce(); err != nil {
				reportError(err)
			}
		}
	}
}

func writeJSON(path string, c *chart.Chart) error {
	exp := export.ExportChart(c)
	if path == "-" {
		if err := exp.WriteJSON(os.Stdout); err != nil {
			return fmt.Errorf("write JSON to stdout: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create JSON file: %w", err)
	}
	defer f.Close()
	if err := exp.WriteJSON(f); err != nil {
		return fmt.Errorf("write JSON to file: %w", err)
	}
	return nil
}

func reportError(err error) {
	if errors.Is(err, geocode.ErrNotFound) {
		fmt.Fprintln(os.Stderr, "Invalid address")
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
