package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service's Prometheus metrics on a private registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	Searches        *prometheus.CounterVec
	StoreFailures   *prometheus.CounterVec
	WordsDiscovered prometheus.Histogram
	HTTPRequests    *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	searches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Searches by mode and outcome",
		},
		[]string{"mode", "status"},
	)

	storeFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_failures_total",
			Help:      "Edge store failures by operation",
		},
		[]string{"operation"},
	)

	wordsDiscovered := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "network_words_discovered",
			Help:      "Words discovered per network search",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	registry.MustRegister(searches, storeFailures, wordsDiscovered, httpRequests)

	return &Collector{
		registry:        registry,
		Searches:        searches,
		StoreFailures:   storeFailures,
		WordsDiscovered: wordsDiscovered,
		HTTPRequests:    httpRequests,
	}
}

func (c *Collector) RecordSearch(mode, status string) {
	if c == nil {
		return
	}
	c.Searches.WithLabelValues(mode, status).Inc()
}

func (c *Collector) RecordStoreFailure(operation string) {
	if c == nil {
		return
	}
	c.StoreFailures.WithLabelValues(operation).Inc()
}

func (c *Collector) ObserveWords(n int) {
	if c == nil {
		return
	}
	c.WordsDiscovered.Observe(float64(n))
}

func (c *Collector) RecordRequest(method, route, status string) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
