package config

import "time"

// Config is the root configuration for a gateway client instance.
type Config struct {
	// HTTP contains transport configuration for outbound requests.
	HTTP HTTPConfig `yaml:"http"`

	// Retry contains the bounded exponential-backoff retry policy.
	Retry RetryConfig `yaml:"retry"`

	// Categories is the rate-limit category table. Keys are category
	// names (e.g. "AI_ANALYSIS"); requests that do not name a category
	// use the DEFAULT entry.
	Categories map[string]CategoryConfig `yaml:"categories"`

	// Queue contains offline queue configuration.
	Queue QueueConfig `yaml:"queue"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// HTTPConfig contains transport configuration for outbound requests.
type HTTPConfig struct {
	// BaseURL is prepended to every request endpoint.
	// Example: "https://api.example.com"
	BaseURL string `yaml:"base_url"`

	// Timeout is the per-attempt request timeout.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns is the connection pool size across all hosts.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the connection pool size per host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long idle connections are kept open.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`

	// DefaultHeaders are merged into every outgoing request. Per-request
	// headers take precedence.
	DefaultHeaders map[string]string `yaml:"default_headers"`
}

// RetryConfig contains the retry policy applied to each request.
type RetryConfig struct {
	// MaxAttempts is the total number of dispatch attempts per request,
	// including the first.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// BaseDelay is the backoff before the second attempt; it doubles with
	// each subsequent attempt.
	// Default: 1s
	BaseDelay time.Duration `yaml:"base_delay"`
}

// CategoryConfig contains the rate limits for one category window.
type CategoryConfig struct {
	// MaxRequests is the maximum number of admitted requests per window.
	MaxRequests int `yaml:"max_requests"`

	// Window is the window duration.
	Window time.Duration `yaml:"window"`
}

// QueueConfig contains offline queue configuration.
type QueueConfig struct {
	// Persist enables the SQLite journal so queued requests survive a
	// process restart.
	// Default: false
	Persist bool `yaml:"persist"`

	// JournalPath is the SQLite journal location. Required when Persist
	// is true.
	// Default: "data/queue.db"
	JournalPath string `yaml:"journal_path"`

	// FlushSchedule is a cron expression for periodic redelivery
	// attempts while items are queued (e.g. "*/1 * * * *" for every
	// minute). Empty disables scheduled flushes; the queue still drains
	// on every enqueue.
	FlushSchedule string `yaml:"flush_schedule"`

	// PruneIdleAfter is how long a rate-limit category window may sit
	// unused before the maintenance sweep removes it.
	// Default: 1h
	PruneIdleAfter time.Duration `yaml:"prune_idle_after"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "ganymede"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem label.
	// Default: "gateway"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets are the histogram buckets for request
	// durations, in seconds.
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}
