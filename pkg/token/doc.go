// Package token supplies auth credentials to the gateway.
//
// # Overview
//
// The gateway consumes credentials read-only through the Provider
// interface and re-reads the token before every dispatch attempt, so a
// refresh that lands between retries is picked up automatically.
//
// Sources include a static token, a Source backed by pluggable stores
// (in-memory for session credentials, file for persistent ones), and a
// Refreshing wrapper that memoizes a single in-flight refresh so
// concurrent requests observing an expired token share one refresh
// round-trip instead of racing.
package token
