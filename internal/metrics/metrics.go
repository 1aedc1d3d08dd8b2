// Package metrics implements the observability hooks with Prometheus
// collectors. `tephi serve` registers one Metrics value for all three hook
// interfaces.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/tephi/pkg/observability"
)

const namespace = "tephi"

// Metrics holds the Prometheus counters and histograms for the pipeline,
// the cache and the HTTP API.
type Metrics struct {
	// Pipeline metrics.
	Generations        *prometheus.CounterVec   // labels: projection, outcome={success,error}
	GenerateDuration   *prometheus.HistogramVec // labels: projection
	LinesGenerated     *prometheus.CounterVec   // labels: projection
	PointsGenerated    *prometheus.CounterVec   // labels: projection
	EmptyLines         *prometheus.CounterVec   // labels: projection
	MoistConflicts     *prometheus.CounterVec   // labels: projection
	GenerationsRunning prometheus.Gauge
	Renders            *prometheus.CounterVec // labels: outcome
	RenderDuration     prometheus.Histogram

	// Cache metrics.
	CacheLookups *prometheus.CounterVec // labels: key_type, result={hit,miss}
	CacheWrites  *prometheus.CounterVec // labels: key_type
	CacheBytes   *prometheus.CounterVec // labels: key_type

	// HTTP metrics.
	HTTPRequests *prometheus.CounterVec   // labels: method, route, status
	HTTPDuration *prometheus.HistogramVec // labels: method, route
	HTTPInFlight prometheus.Gauge
	HTTPErrors   *prometheus.CounterVec // labels: method, route, code
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which tests use to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Chart generation runs by projection and outcome.",
		}, []string{"projection", "outcome"}),
		GenerateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_duration_seconds",
			Help:      "Time to generate and project all isopleths of a chart.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"projection"}),
		LinesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_generated_total",
			Help:      "Isopleths generated.",
		}, []string{"projection"}),
		PointsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_generated_total",
			Help:      "Isopleth points generated.",
		}, []string{"projection"}),
		EmptyLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_lines_total",
			Help:      "Isopleths whose level lies outside the chart domain.",
		}, []string{"projection"}),
		MoistConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moist_clamp_conflicts_total",
			Help:      "Moist adiabat steps pinned to a temperature bound after a pressure clamp.",
		}, []string{"projection"}),
		GenerationsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generations_running",
			Help:      "Chart generations currently in progress.",
		}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Render runs by outcome.",
		}, []string{"outcome"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time to encode a chart in all requested formats.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by key type and result.",
		}, []string{"key_type", "result"}),
		CacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_writes_total",
			Help:      "Cache writes by key type.",
		}, []string{"key_type"}),
		CacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		HTTPErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Failed HTTP requests by error code.",
		}, []string{"method", "route", "code"}),
	}

	if reg != nil {
		reg.MustRegister(m.collectors()...)
	}
	return m
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Generations,
		m.GenerateDuration,
		m.LinesGenerated,
		m.PointsGenerated,
		m.EmptyLines,
		m.MoistConflicts,
		m.GenerationsRunning,
		m.Renders,
		m.RenderDuration,
		m.CacheLookups,
		m.CacheWrites,
		m.CacheBytes,
		m.HTTPRequests,
		m.HTTPDuration,
		m.HTTPInFlight,
		m.HTTPErrors,
	}
}

// Install registers m as the process-wide pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// =============================================================================
// observability.PipelineHooks
// =============================================================================

func (m *Metrics) OnGenerateStart(context.Context, string, int) {
	m.GenerationsRunning.Inc()
}

func (m *Metrics) OnGenerateComplete(_ context.Context, projection string, stats observability.GenerateStats, d time.Duration, err error) {
	m.GenerationsRunning.Dec()
	m.Generations.WithLabelValues(projection, outcome(err)).Inc()
	m.GenerateDuration.WithLabelValues(projection).Observe(d.Seconds())
	if err != nil {
		return
	}
	m.LinesGenerated.WithLabelValues(projection).Add(float64(stats.Lines))
	m.PointsGenerated.WithLabelValues(projection).Add(float64(stats.Points))
	m.EmptyLines.WithLabelValues(projection).Add(float64(stats.Empty))
	m.MoistConflicts.WithLabelValues(projection).Add(float64(stats.Conflicts))
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.Renders.WithLabelValues(outcome(err)).Inc()
	m.RenderDuration.Observe(d.Seconds())
}

// =============================================================================
// observability.CacheHooks
// =============================================================================

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheWrites.WithLabelValues(keyType).Inc()
	m.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// =============================================================================
// observability.HTTPHooks
// =============================================================================

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.HTTPInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.HTTPInFlight.Dec()
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, route, code string) {
	m.HTTPErrors.WithLabelValues(method, route, code).Inc()
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
