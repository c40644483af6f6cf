// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics of the analytics service.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ViewsRecorded  *prometheus.CounterVec
	CacheLookups   *prometheus.CounterVec
	PersistFlushes *prometheus.CounterVec
}

// New creates the collectors on a fresh registry. trackedArticles is sampled
// on every scrape; pass nil to skip that gauge.
func New(trackedArticles func() float64) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analytics_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ViewsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_views_recorded_total",
				Help: "View events applied to the aggregator, by source",
			},
			[]string{"source"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_top_articles_cache_lookups_total",
				Help: "Top-articles cache lookups by result",
			},
			[]string{"result"},
		),
		PersistFlushes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_persist_flushes_total",
				Help: "Batched writes to the view store by outcome",
			},
			[]string{"outcome"},
		),
	}

	if trackedArticles != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "analytics_tracked_articles",
			Help: "Distinct articles held by the aggregator",
		}, trackedArticles)
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
