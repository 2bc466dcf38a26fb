package server

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors of the HTTP API.
type Metrics struct {
	gatherer prometheus.Gatherer

	Requests      *prometheus.CounterVec
	Durations     *prometheus.HistogramVec
	ChartsBuilt   *prometheus.CounterVec
	ChartFailures *prometheus.CounterVec
	StarsPlotted  prometheus.Histogram
}

// NewMetrics registers the API metrics against reg, defaulting to the global
// Prometheus registry when nil. Registering twice against the same registry
// reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starchart_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"}), "starchart_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "starchart_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route"}), "starchart_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	built, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starchart_charts_built_total",
		Help: "Charts built, labeled by where the limiting magnitude came from.",
	}, []string{"magnitude_source"}), "starchart_charts_built_total")
	if err != nil {
		return nil, err
	}

	failures, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starchart_chart_failures_total",
		Help: "Failed chart requests, labeled by reason.",
	}, []string{"reason"}), "starchart_chart_failures_total")
	if err != nil {
		return nil, err
	}

	plotted, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "starchart_stars_plotted",
		Help:    "Renderable stars per chart.",
		Buckets: prometheus.LinearBuckets(0, 20, 10),
	}), "starchart_stars_plotted")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:      gatherer,
		Requests:      requests,
		Durations:     durations,
		ChartsBuilt:   built,
		ChartFailures: failures,
		StarsPlotted:  plotted,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	gatherer := m.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) observeChart(source string, plotted int) {
	if m == nil {
		return
	}
	m.ChartsBuilt.WithLabelValues(source).Inc()
	m.StarsPlotted.Observe(float64(plotted))
}

func (m *Metrics) observeFailure(reason string) {
	if m == nil {
		return
	}
	m.ChartFailures.WithLabelValues(reason).Inc()
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}
