package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several servers can coexist in one process (tests).
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	filteredRows   prometheus.Histogram
	datasetRecords prometheus.Gauge
	reloads        *prometheus.CounterVec
}

// New registers the viewer's collectors plus the Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edu_viewer",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "edu_viewer",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		filteredRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "edu_viewer",
			Name:      "filtered_rows",
			Help:      "Rows left after applying a filter.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		datasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "edu_viewer",
			Name:      "dataset_records",
			Help:      "Records in the current dataset snapshot.",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edu_viewer",
			Name:      "dataset_reloads_total",
			Help:      "Dataset loads by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.filteredRows,
		m.datasetRecords,
		m.reloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveFiltered records the size of a filter result.
func (m *Metrics) ObserveFiltered(rows int) {
	m.filteredRows.Observe(float64(rows))
}

// DatasetLoaded records a load attempt; records is ignored on failure.
func (m *Metrics) DatasetLoaded(records int, err error) {
	if err != nil {
		m.reloads.WithLabelValues("error").Inc()
		return
	}
	m.reloads.WithLabelValues("ok").Inc()
	m.datasetRecords.Set(float64(records))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
