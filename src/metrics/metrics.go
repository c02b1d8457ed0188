package metrics

import (
	"net/http"
	"time"

	"tariff-observer/src/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tariff_observer"

// Metrics owns a private registry so tests and multiple services never
// collide on the global one.
type Metrics struct {
	Registry      *prometheus.Registry
	SourceLoads   *prometheus.CounterVec
	CacheHits     prometheus.Counter
	Diagnostics   *prometheus.CounterVec
	BuildDuration prometheus.Histogram
	PanelsBuilt   prometheus.Gauge
	LastBuild     prometheus.Gauge
}

// -----------------------------------------------------------------------------

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SourceLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_loads_total",
			Help:      "Source load attempts by source and result.",
		}, []string{"source", "result"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_cache_hits_total",
			Help:      "Source tables served from the fetch cache.",
		}),
		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostics emitted while building dashboards.",
		}, []string{"kind", "severity"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Time to load every source and derive the dashboard.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		PanelsBuilt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "panels_built",
			Help:      "Panels in the last dashboard.",
		}),
		LastBuild: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_build_timestamp_seconds",
			Help:      "Unix time of the last successful build.",
		}),
	}

	m.Registry.MustRegister(
		m.SourceLoads, m.CacheHits, m.Diagnostics, m.BuildDuration, m.PanelsBuilt, m.LastBuild,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// -----------------------------------------------------------------------------

// ObserveBuild records one finished dashboard.
func (m *Metrics) ObserveBuild(d *models.MDashboard, took time.Duration) {
	for _, s := range d.Sources {
		result := "loaded"
		switch {
		case !s.Loaded:
			result = "failed"
		case s.FromCache:
			result = "cached"
		}
		m.SourceLoads.WithLabelValues(s.Name, result).Inc()
	}
	m.CacheHits.Add(float64(d.Metrics.CacheHits))
	for _, diag := range d.Diagnostics {
		m.Diagnostics.WithLabelValues(string(diag.Kind), string(diag.Severity)).Inc()
	}
	m.BuildDuration.Observe(took.Seconds())
	m.PanelsBuilt.Set(float64(len(d.Panels)))
	m.LastBuild.Set(float64(d.GeneratedAt.Unix()))
}

// -----------------------------------------------------------------------------

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
