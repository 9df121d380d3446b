// Package metrics exposes pipeline counters through a dedicated Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements export.Observer.
type Metrics struct {
	registry       *prometheus.Registry
	recordsParsed  prometheus.Counter
	exports        *prometheus.CounterVec
	exportDuration prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		recordsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bundlesheet",
			Name:      "records_parsed_total",
			Help:      "Records produced by the parse pipeline.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bundlesheet",
			Name:      "exports_total",
			Help:      "Export attempts by result (ok, empty, error).",
		}, []string{"result"}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bundlesheet",
			Name:      "export_duration_seconds",
			Help:      "Time spent rendering and delivering workbooks.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	reg.MustRegister(m.recordsParsed, m.exports, m.exportDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// ObserveParse counts parsed records.
func (m *Metrics) ObserveParse(n int) {
	m.recordsParsed.Add(float64(n))
}

// ObserveExport records an export outcome.
func (m *Metrics) ObserveExport(result string, d time.Duration) {
	m.exports.WithLabelValues(result).Inc()
	if result == "ok" {
		m.exportDuration.Observe(d.Seconds())
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
