// Package metrics exposes Prometheus collectors for sources, caches, rate
// limiters, retries, aggregation runs and the HTTP API. A nil *Collector is
// valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pulse_comb"

type Collector struct {
	registry *prometheus.Registry

	sourceRequests      *prometheus.CounterVec
	sourceDuration      *prometheus.HistogramVec
	cacheEvents         *prometheus.CounterVec
	limiterWaits        *prometheus.CounterVec
	limiterWaitSeconds  *prometheus.CounterVec
	retryAttempts       *prometheus.CounterVec
	aggregateDuration   prometheus.Histogram
	aggregateItems      prometheus.Gauge
	aggregateFailures   *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	serviceInfo         *prometheus.GaugeVec
}

// New creates a collector backed by its own registry.
func New(version string) *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.sourceRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Source searches by outcome",
		},
		[]string{"source", "outcome"},
	)

	c.sourceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Source search duration in seconds, including retries",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	c.cacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Source cache hits, misses and evictions",
		},
		[]string{"source", "event"},
	)

	c.limiterWaits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_waits_total",
			Help:      "Times a source request was suspended by its rate limiter",
		},
		[]string{"source"},
	)

	c.limiterWaitSeconds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_wait_seconds_total",
			Help:      "Total time spent suspended by rate limiters",
		},
		[]string{"source"},
	)

	c.retryAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_attempts_total",
			Help:      "Retries after transient source failures",
		},
		[]string{"source"},
	)

	c.aggregateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregate_duration_seconds",
			Help:      "Aggregation run duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	c.aggregateItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "aggregate_items",
			Help:      "Items in the pool produced by the last aggregation",
		},
	)

	c.aggregateFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregate_source_failures_total",
			Help:      "Sources that failed during aggregation",
		},
		[]string{"source"},
	)

	c.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	c.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	c.serviceInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_info",
			Help:      "Service information",
		},
		[]string{"version"},
	)

	c.registry.MustRegister(
		c.sourceRequests,
		c.sourceDuration,
		c.cacheEvents,
		c.limiterWaits,
		c.limiterWaitSeconds,
		c.retryAttempts,
		c.aggregateDuration,
		c.aggregateItems,
		c.aggregateFailures,
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.serviceInfo,
	)

	c.serviceInfo.WithLabelValues(version).Set(1)

	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) SourceRequest(source, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.sourceRequests.WithLabelValues(source, outcome).Inc()
	c.sourceDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func (c *Collector) CacheEvent(source, event string) {
	if c == nil {
		return
	}
	c.cacheEvents.WithLabelValues(source, event).Inc()
}

func (c *Collector) LimiterWait(source string, wait time.Duration) {
	if c == nil {
		return
	}
	c.limiterWaits.WithLabelValues(source).Inc()
	c.limiterWaitSeconds.WithLabelValues(source).Add(wait.Seconds())
}

func (c *Collector) Retry(source string) {
	if c == nil {
		return
	}
	c.retryAttempts.WithLabelValues(source).Inc()
}

func (c *Collector) Aggregation(duration time.Duration, items int, failures []string) {
	if c == nil {
		return
	}
	c.aggregateDuration.Observe(duration.Seconds())
	c.aggregateItems.Set(float64(items))
	for _, source := range failures {
		c.aggregateFailures.WithLabelValues(source).Inc()
	}
}

// Middleware records HTTP request counts and durations.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c == nil {
			ctx.Next()
			return
		}

		start := time.Now()
		ctx.Next()

		endpoint := ctx.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.httpRequestsTotal.WithLabelValues(ctx.Request.Method, endpoint, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpRequestDuration.WithLabelValues(ctx.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() gin.HandlerFunc {
	if c == nil {
		return func(ctx *gin.Context) { ctx.Status(404) }
	}
	handler := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
	return func(ctx *gin.Context) {
		handler.ServeHTTP(ctx.Writer, ctx.Request)
	}
}
