package metrics

import (
	"time"

	"mercator-hq/ganymede/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector registers and records all gateway client metrics.
//
// Metrics:
//   - <ns>_<sub>_requests_total: Completed requests by category and outcome
//   - <ns>_<sub>_request_duration_seconds: End-to-end request duration histogram
//   - <ns>_<sub>_retries_total: Retry attempts (excluding the first attempt)
//   - <ns>_<sub>_rate_limit_rejections_total: Requests rejected before dispatch
//   - <ns>_<sub>_queue_depth: Requests currently held for offline replay
//   - <ns>_<sub>_queued_replays_total: Replay settlements by result
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	retriesTotal        *prometheus.CounterVec
	rateLimitRejections *prometheus.CounterVec
	queueDepth          prometheus.Gauge
	queuedReplaysTotal  *prometheus.CounterVec
}

// NewCollector creates a collector backed by the given registry. If registry
// is nil a fresh private registry is created; it can be retrieved with
// Registry or served directly with Handler.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		// Optimized for API gateway latencies (10ms - 30s)
		cfg.RequestDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of gateway requests completed",
			},
			[]string{"category", "outcome"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "End-to-end duration of gateway requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"category"},
		),

		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retries_total",
				Help:      "Total number of retry attempts after a transient failure",
			},
			[]string{"category"},
		),

		rateLimitRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rate_limit_rejections_total",
				Help:      "Total number of requests rejected by the local rate limiter",
			},
			[]string{"category"},
		),

		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "queue_depth",
				Help:      "Number of requests currently queued for offline replay",
			},
		),

		queuedReplaysTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "queued_replays_total",
				Help:      "Total number of queued request replays by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.retriesTotal,
		c.rateLimitRejections,
		c.queueDepth,
		c.queuedReplaysTotal,
	)

	return c
}

// RecordRequest records a completed request.
//
// Parameters:
//   - category: Rate-limit category the request was admitted under
//   - outcome: Final classification ("success", "network", "rate_limit",
//     "server", "client", "auth")
//   - duration: End-to-end duration including retries
func (c *Collector) RecordRequest(category, outcome string, duration time.Duration) {
	if c == nil || !c.config.Enabled {
		return
	}

	c.requestsTotal.WithLabelValues(category, outcome).Inc()
	c.requestDuration.WithLabelValues(category).Observe(duration.Seconds())
}

// RecordRetry records a single retry attempt for the given category.
func (c *Collector) RecordRetry(category string) {
	if c == nil || !c.config.Enabled {
		return
	}

	c.retriesTotal.WithLabelValues(category).Inc()
}

// RecordRateLimitRejection records a request rejected before dispatch
// because its category window was exhausted.
func (c *Collector) RecordRateLimitRejection(category string) {
	if c == nil || !c.config.Enabled {
		return
	}

	c.rateLimitRejections.WithLabelValues(category).Inc()
}

// UpdateQueueDepth sets the current number of queued requests.
func (c *Collector) UpdateQueueDepth(depth int) {
	if c == nil || !c.config.Enabled {
		return
	}

	c.queueDepth.Set(float64(depth))
}

// RecordReplay records the settlement of a queued request replay.
//
// Parameters:
//   - result: "success", "failure", or "cleared"
func (c *Collector) RecordReplay(result string) {
	if c == nil || !c.config.Enabled {
		return
	}

	c.queuedReplaysTotal.WithLabelValues(result).Inc()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
