// Package server exposes charts over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/litescript/ls-starchart/internal/astro"
	"github.com/litescript/ls-starchart/internal/catalog"
	"github.com/litescript/ls-starchart/internal/chart"
	"github.com/litescript/ls-starchart/internal/export"
	"github.com/litescript/ls-starchart/internal/geocode"
	"github.com/litescript/ls-starchart/internal/logging"
	"github.com/litescript/ls-starchart/internal/skyquality"
	"github.com/litescript/ls-starchart/internal/version"
)

// ErrBadRequest marks query parameters that could not be used.
var ErrBadRequest = errors.New("bad request")

// Charter builds charts. *chart.Service satisfies it.
type Charter interface {
	Chart(ctx context.Context, req chart.Request) (*chart.Chart, error)
	Catalog() *catalog.Catalog
}

// Config holds server settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration // per chart request, 0 for none
	ShutdownTimeout time.Duration
}

// Server serves the chart API.
type Server struct {
	cfg     Config
	charts  Charter
	metrics *Metrics
	logger  *logging.Logger
	router  *mux.Router
}

// New creates a server. metrics may be nil.
func New(cfg Config, charts Charter, metrics *Metrics, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		cfg:     cfg,
		charts:  charts,
		metrics: metrics,
		logger:  logger,
	}
	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.instrument)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/chart", s.handleChart).Methods(http.MethodGet)
	api.HandleFunc("/stars/{name}", s.handleStar).Methods(http.MethodGet)
	api.HandleFunc("/constellations", s.handleConstellations).Methods(http.MethodGet)
	api.HandleFunc("/presets", s.handlePresets).Methods(http.MethodGet)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	return router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("HTTP API shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// statusRecorder captures the response code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, req)

		route := "unmatched"
		if cur := mux.CurrentRoute(req); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		if s.metrics != nil {
			s.metrics.Requests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
			s.metrics.Durations.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
		s.logger.Debug("%s %s -> %d in %v", req.Method, req.URL.RequestURI(), rec.code, time.Since(start))
	})
}

func (s *Server) handleChart(w http.ResponseWriter, req *http.Request) {
	creq, err := parseChartRequest(req)
	if err != nil {
		s.metrics.observeFailure("bad_request")
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := req.Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	c, err := s.charts.Chart(ctx, creq)
	if err != nil {
		code, reason := classify(err)
		s.metrics.observeFailure(reason)
		if code >= http.StatusInternalServerError {
			s.logger.Error("chart request failed: %v", err)
		}
		writeError(w, code, err)
		return
	}

	s.metrics.observeChart(string(c.MagnitudeSource), len(c.Table.Renderable()))

	out := export.ExportChart(c)
	if name := req.URL.Query().Get("constellation"); name != "" {
		kept := out.Stars[:0]
		for _, st := range out.Stars {
			if strings.EqualFold(st.Constellation, name) {
				kept = append(kept, st)
			}
		}
		out.Stars = kept
	}
	if req.URL.Query().Get("renderable") == "true" {
		kept := out.Stars[:0]
		for _, st := range out.Stars {
			if st.Renderable {
				kept = append(kept, st)
			}
		}
		out.Stars = kept
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Chart-ID", out.ID)
	if err := out.WriteJSON(w); err != nil {
		s.logger.Warn("write chart response: %v", err)
	}
}

func (s *Server) handleStar(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	star, ok := s.charts.Catalog().Find(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("star %q not in catalog", name))
		return
	}

	resp := struct {
		catalog.StarRecord
		URL    string  `json:"url,omitempty"`
		RAdeg  float64 `json:"ra_deg"`
		DecDeg float64 `json:"dec_deg"`
	}{StarRecord: star, URL: star.URL()}

	var err error
	if resp.RAdeg, err = astro.ParseRightAscension(star.RightAscension); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if resp.DecDeg, err = astro.ParseDeclination(star.Declination); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConstellations(w http.ResponseWriter, req *http.Request) {
	cat := s.charts.Catalog()
	type entry struct {
		Name  string `json:"name"`
		Stars int    `json:"stars"`
	}
	var out []entry
	for _, name := range cat.Constellations() {
		out = append(out, entry{Name: name, Stars: len(cat.ByConstellation(name))})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePresets(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, geocode.Presets)
}

func (s *Server) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": version.Version,
		"stars":   s.charts.Catalog().Len(),
	})
}

// parseChartRequest reads the chart query parameters:
// lat, lon, label | preset | address; time (RFC 3339); mag | bortle | sky.
// bortle also accepts labels such as "Class 4".
func parseChartRequest(req *http.Request) (chart.Request, error) {
	q := req.URL.Query()
	var out chart.Request

	latStr, lonStr := q.Get("lat"), q.Get("lon")
	switch {
	case latStr != "" || lonStr != "":
		lat, err := parseFloatParam("lat", latStr)
		if err != nil {
			return out, err
		}
		lon, err := parseFloatParam("lon", lonStr)
		if err != nil {
			return out, err
		}
		out.Location = &geocode.Location{Name: q.Get("label"), LatDeg: lat, LonDeg: lon}
	case q.Get("preset") != "":
		out.Preset = q.Get("preset")
	case q.Get("address") != "":
		out.Address = q.Get("address")
	default:
		return out, fmt.Errorf("%w: one of lat/lon, preset or address is required", ErrBadRequest)
	}

	if ts := q.Get("time"); ts != "" {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return out, fmt.Errorf("%w: time must be RFC 3339: %v", ErrBadRequest, err)
		}
		out.Time = t
	}

	if v := q.Get("mag"); v != "" {
		mag, err := parseFloatParam("mag", v)
		if err != nil {
			return out, err
		}
		out.LimitingMagnitude = &mag
	}
	if v := q.Get("bortle"); v != "" {
		b, err := skyquality.ParseBortleClass(v)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		out.Bortle = b
	}
	if v := q.Get("sky"); v != "" {
		sky, err := strconv.ParseBool(v)
		if err != nil {
			return out, fmt.Errorf("%w: sky must be a boolean", ErrBadRequest)
		}
		out.UseSkyBrightness = sky
	}
	return out, nil
}

func parseFloatParam(name, v string) (float64, error) {
	if v == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrBadRequest, name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", ErrBadRequest, name)
	}
	return f, nil
}

// classify maps a chart error to an HTTP status and a metric reason.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, geocode.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, chart.ErrInvalidObserver),
		errors.Is(err, chart.ErrNoLocation),
		errors.Is(err, chart.ErrInvalidMagnitude),
		errors.Is(err, astro.ErrInvalidScale):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, chart.ErrNoGeocoder), errors.Is(err, chart.ErrNoSkyBrightness):
		return http.StatusNotImplemented, "not_configured"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, skyquality.ErrNoData):
		return http.StatusBadGateway, "upstream"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	msg := err.Error()
	if errors.Is(err, geocode.ErrNotFound) {
		msg = "Invalid address: " + msg
	}
	writeJSON(w, code, map[string]string{"error": msg})
}
