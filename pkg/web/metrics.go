package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ritzau/deflex-graph/pkg/graph"
)

// Compile results recorded by Metrics.RecordCompile
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the prometheus collectors of the server
type Metrics struct {
	CompilesTotal   *prometheus.CounterVec
	CompileDuration prometheus.Histogram

	NetworkNodes   prometheus.Gauge
	NetworkFlows   prometheus.Gauge
	NetworkBuses   prometheus.Gauge
	NetworkIslands prometheus.Gauge
	NetworkIssues  prometheus.Gauge

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics set on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		CompilesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deflex_graph_compiles_total",
				Help: "Total number of scenario compilations",
			},
			[]string{"result"},
		),
		CompileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "deflex_graph_compile_duration_seconds",
				Help:    "Scenario compilation time in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		NetworkNodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deflex_graph_network_nodes",
			Help: "Nodes in the last compiled network",
		}),
		NetworkFlows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deflex_graph_network_flows",
			Help: "Flows in the last compiled network",
		}),
		NetworkBuses: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deflex_graph_network_buses",
			Help: "Buses in the last compiled network",
		}),
		NetworkIslands: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deflex_graph_network_islands",
			Help: "Weakly connected components of the last compiled network",
		}),
		NetworkIssues: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deflex_graph_network_bus_issues",
			Help: "Buses lacking an input or an output in the last compiled network",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deflex_graph_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deflex_graph_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		registry: reg,
	}
}

// RecordCompile counts a compilation and observes its duration
func (m *Metrics) RecordCompile(result string, duration time.Duration) {
	m.CompilesTotal.WithLabelValues(result).Inc()
	m.CompileDuration.Observe(duration.Seconds())
}

// SetNetwork updates the network gauges from a summary
func (m *Metrics) SetNetwork(s graph.Summary) {
	m.NetworkNodes.Set(float64(s.Nodes))
	m.NetworkFlows.Set(float64(s.Flows))
	m.NetworkBuses.Set(float64(s.Buses))
	m.NetworkIslands.Set(float64(s.Islands))
	m.NetworkIssues.Set(float64(len(s.Issues)))
}

// Registry returns the underlying prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records request counts and latencies by route template
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
