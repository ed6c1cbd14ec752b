// Package classify maps raw request failures to typed outcomes and
// retryability verdicts.
//
// # Overview
//
// Every failure observed by the gateway — a transport error, a non-2xx
// response, or a pre-dispatch validation problem — is reduced to an
// Outcome with one of five kinds:
//
//   - Network:   transport-level failure, no response received (retryable)
//   - RateLimit: HTTP 429 from the upstream (retryable)
//   - Server:    HTTP 5xx (retryable)
//   - Auth:      HTTP 401 or 403 (fatal, caller should refresh credentials)
//   - Client:    HTTP 404 and other 4xx, or validation failures (fatal)
//
// Classification is a pure function: calling Classify twice on the same
// error yields the same Outcome, and nothing is mutated or logged.
//
// # Error annotation
//
// Annotate wraps an error together with its Outcome so callers can
// distinguish a fatal rejection from an exhausted retry budget without
// re-deriving the classification:
//
//	var cerr *classify.Error
//	if errors.As(err, &cerr) && cerr.Outcome.Kind == classify.KindNetwork {
//	    // connectivity failure, the gateway will have queued it
//	}
package classify
