package config

import "time"

// Default values for configuration fields.
const (
	// HTTP defaults
	DefaultTimeout             = 60 * time.Second
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second

	// Retry defaults
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second

	// Rate-limit defaults (DEFAULT category)
	DefaultCategoryMaxRequests = 60
	DefaultCategoryWindow      = time.Minute

	// Queue defaults
	DefaultJournalPath    = "data/queue.db"
	DefaultPruneIdleAfter = time.Hour

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "ganymede"
	DefaultMetricsSubsystem = "gateway"
)

// Default returns a configuration populated entirely with defaults.
// The HTTP base URL remains empty and must be set by the caller.
func Default() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = DefaultTimeout
	}
	if cfg.HTTP.MaxIdleConns == 0 {
		cfg.HTTP.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.HTTP.MaxIdleConnsPerHost == 0 {
		cfg.HTTP.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if cfg.HTTP.IdleConnTimeout == 0 {
		cfg.HTTP.IdleConnTimeout = DefaultIdleConnTimeout
	}

	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = DefaultBaseDelay
	}

	if cfg.Categories == nil {
		cfg.Categories = make(map[string]CategoryConfig)
	}
	if _, ok := cfg.Categories["DEFAULT"]; !ok {
		cfg.Categories["DEFAULT"] = CategoryConfig{
			MaxRequests: DefaultCategoryMaxRequests,
			Window:      DefaultCategoryWindow,
		}
	}

	if cfg.Queue.JournalPath == "" {
		cfg.Queue.JournalPath = DefaultJournalPath
	}
	if cfg.Queue.PruneIdleAfter == 0 {
		cfg.Queue.PruneIdleAfter = DefaultPruneIdleAfter
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
}
