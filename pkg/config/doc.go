// Package config defines the YAML configuration for the Ganymede gateway
// client.
//
// # Overview
//
// Configuration is loaded from a YAML file, defaulted, and validated:
//
//	cfg, err := config.Load("ganymede.yaml")
//
// The configuration covers the HTTP transport (base URL, timeouts,
// connection pooling), the retry policy, the per-category rate-limit
// table, the offline queue (persistence and flush schedule), and
// telemetry (logging and metrics).
//
// A Watcher can observe the configuration file and deliver validated
// reloads, which the gateway uses to hot-swap the rate-limit category
// table without a restart.
package config
