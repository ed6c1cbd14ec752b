// Package metrics provides Prometheus instrumentation for the gateway
// client. A Collector owns a private registry and exposes recording
// methods for the request lifecycle: dispatch outcomes, retry attempts,
// rate-limit rejections, queue depth, and offline replay results.
//
// All recording methods are no-ops when metrics are disabled in the
// configuration, so callers never need to guard their call sites.
package metrics
