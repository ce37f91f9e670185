// Package metrics exposes Prometheus instruments for crawl cycles and the
// query API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the namespace for all wire-scout metrics.
	Namespace = "wirescout"

	crawlerSubsystem = "crawler"
	apiSubsystem     = "api"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// Crawl cycle metrics
	CyclesTotal          *prometheus.CounterVec
	CycleDurationSeconds prometheus.Histogram
	LinksDiscovered      prometheus.Gauge
	PagesTotal           *prometheus.CounterVec
	WorkersBusy          prometheus.Gauge

	// API metrics
	RequestsTotal          *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec
}

// New creates and registers all metrics on reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	m := &Metrics{}
	m.initCrawlerMetrics(factory)
	m.initAPIMetrics(factory)
	return m
}

func (m *Metrics) initCrawlerMetrics(factory promauto.Factory) {
	m.CyclesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: crawlerSubsystem,
			Name:      "cycles_total",
			Help:      "Total number of crawl cycles by status",
		},
		[]string{"status"},
	)

	m.CycleDurationSeconds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: crawlerSubsystem,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a crawl cycle in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
		},
	)

	m.LinksDiscovered = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: crawlerSubsystem,
			Name:      "links_discovered",
			Help:      "Article links discovered by the last cycle",
		},
	)

	m.PagesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: crawlerSubsystem,
			Name:      "pages_total",
			Help:      "Article pages processed by outcome",
		},
		[]string{"outcome"},
	)

	m.WorkersBusy = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: crawlerSubsystem,
			Name:      "workers_busy",
			Help:      "Number of crawl workers processing a page",
		},
	)
}

func (m *Metrics) initAPIMetrics(factory promauto.Factory) {
	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: apiSubsystem,
			Name:      "requests_total",
			Help:      "Total API requests by route and status code",
		},
		[]string{"route", "code"},
	)

	m.RequestDurationSeconds = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: apiSubsystem,
			Name:      "request_duration_seconds",
			Help:      "API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
}

// ObserveCycle records a finished crawl cycle.
func (m *Metrics) ObserveCycle(discovered int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.CyclesTotal.WithLabelValues(status).Inc()
	m.CycleDurationSeconds.Observe(elapsed.Seconds())
	m.LinksDiscovered.Set(float64(discovered))
}

// ObservePage records one processed page. outcome is "persisted" or a
// failure kind.
func (m *Metrics) ObservePage(outcome string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(outcome).Inc()
}

// WorkerStarted and WorkerDone track busy crawl workers.
func (m *Metrics) WorkerStarted() {
	if m == nil {
		return
	}
	m.WorkersBusy.Inc()
}

func (m *Metrics) WorkerDone() {
	if m == nil {
		return
	}
	m.WorkersBusy.Dec()
}

// ObserveRequest records one API request.
func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDurationSeconds.WithLabelValues(route).Observe(elapsed.Seconds())
}
