// Ganymede is a resilient API gateway client.
//
// It wraps outbound API requests with local rate limiting, classified
// retries with exponential backoff, an offline request queue for
// connectivity outages, and newline-delimited JSON stream decoding.
//
// Usage:
//
//	# Validate a configuration file
//	ganymede validate --config config.yaml
//
//	# Issue one request through the resilience pipeline
//	ganymede call /v1/status --config config.yaml
//
//	# Issue a POST with a JSON body and a rate-limit category
//	ganymede call /v1/analyze --method POST --body '{"text":"..."}' --category AI_ANALYSIS
//
//	# Show version information
//	ganymede version
package main

func main() {
	Execute()
}
