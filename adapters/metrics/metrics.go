// Package metrics provides Prometheus metrics collection for the API client.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "commercekit"

// Collector holds all Prometheus metrics of the client.
// A nil *Collector records nothing.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	TransportErrors  *prometheus.CounterVec
	BatchSize        prometheus.Histogram

	// Token metrics
	TokenFetches   *prometheus.CounterVec
	TokenCacheHits prometheus.Counter

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a collector registered with reg. A nil reg uses the default
// Prometheus registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of API requests by resource and status class",
			},
			[]string{"method", "resource", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "resource"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of API requests currently in flight",
			},
		),
		TransportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transport_errors_total",
				Help:      "Total number of requests that received no response",
			},
			[]string{"type"},
		),
		BatchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_size",
				Help:      "Number of requests per batch",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
			},
		),
		TokenFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_fetches_total",
				Help:      "Total number of token endpoint calls",
			},
			[]string{"result"},
		),
		TokenCacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_cache_hits_total",
				Help:      "Total number of tokens served from cache",
			},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// ObserveRequest records a completed request.
func (c *Collector) ObserveRequest(method, path string, status int, d time.Duration) {
	if c == nil {
		return
	}
	resource := Resource(path)
	c.RequestsTotal.WithLabelValues(method, resource, StatusClass(status)).Inc()
	c.RequestDuration.WithLabelValues(method, resource).Observe(d.Seconds())
}

// ObserveTransportError records a request that got no response.
func (c *Collector) ObserveTransportError(kind string) {
	if c == nil {
		return
	}
	c.TransportErrors.WithLabelValues(kind).Inc()
}

// InFlight adjusts the in-flight gauge by delta.
func (c *Collector) InFlight(delta float64) {
	if c == nil {
		return
	}
	c.RequestsInFlight.Add(delta)
}

// ObserveBatch records the size of a batch.
func (c *Collector) ObserveBatch(n int) {
	if c == nil {
		return
	}
	c.BatchSize.Observe(float64(n))
}

// ObserveTokenFetch records a token endpoint call; result is "ok" or "error".
func (c *Collector) ObserveTokenFetch(result string) {
	if c == nil {
		return
	}
	c.TokenFetches.WithLabelValues(result).Inc()
}

// ObserveTokenCacheHit records a token served from cache.
func (c *Collector) ObserveTokenCacheHit() {
	if c == nil {
		return
	}
	c.TokenCacheHits.Inc()
}

// ObserveReload records a config reload attempt.
func (c *Collector) ObserveReload(err error, at time.Time) {
	if c == nil {
		return
	}
	if err != nil {
		c.ConfigReloadErrors.Inc()
		return
	}
	c.ConfigReloads.Inc()
	c.ConfigLastReload.Set(float64(at.Unix()))
}

// Resource reduces a request path to its resource name to bound label
// cardinality: "/my-project/orders/edits/abc" -> "orders/edits",
// "/my-project/stores/key=x" -> "stores".
func Resource(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return "other"
	}
	parts = parts[1:]
	if len(parts) >= 2 && parts[0] == "orders" && parts[1] == "edits" {
		return "orders/edits"
	}
	if parts[0] == "" {
		return "other"
	}
	return parts[0]
}

// StatusClass returns "2xx", "4xx" and so on.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
