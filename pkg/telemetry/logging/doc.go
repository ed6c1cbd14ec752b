// Package logging constructs the structured logger used across the
// gateway.
//
// Loggers are slog-based; components derive scoped loggers with
// With("component", ...) so log lines can be filtered per subsystem.
package logging
