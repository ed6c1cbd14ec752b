// Package gateway provides the resilient API client that composes the
// rate limiter, retry coordinator, offline queue, token provider, and
// stream decoder into a single request pipeline.
//
// A Client owns one instance of each collaborator. The request path is:
//
//	validate -> rate-limit admission -> retried dispatch -> offline queue
//
// Rate-limit rejections happen before any dispatch and are never
// retried. Retried dispatch handles transient upstream failures (5xx,
// 429, transport errors) with exponential backoff. Only requests whose
// retries exhaust on a connectivity failure are handed to the offline
// queue; the caller's Request call then settles when the queued request
// is eventually redelivered or the queue is cleared.
package gateway
