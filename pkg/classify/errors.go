package classify

import (
	"fmt"
	"time"
)

// Error pairs an underlying failure with its classified Outcome.
// Every rejection surfaced by the gateway carries one of these, so callers
// never need to re-derive the classification.
type Error struct {
	// Outcome is the classification of the underlying error.
	Outcome Outcome

	// Err is the original underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Outcome.Kind, retryability(e.Outcome), e.Err)
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Err
}

func retryability(o Outcome) string {
	if o.Retryable {
		return "retryable"
	}
	return "fatal"
}

// HTTPError represents a non-2xx response from the upstream.
// It is produced by the gateway's dispatch path and classified by status.
type HTTPError struct {
	// Status is the HTTP status code of the response.
	Status int

	// Endpoint is the request endpoint that produced the response.
	Endpoint string

	// Body is the response body, truncated by the dispatcher.
	Body string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("endpoint %q returned status %d: %s", e.Endpoint, e.Status, e.Body)
	}
	return fmt.Sprintf("endpoint %q returned status %d", e.Endpoint, e.Status)
}

// RateLimitExceededError is a local admission rejection: the per-category
// window was full, so no dispatch occurred. It is never retried and never
// queued.
type RateLimitExceededError struct {
	// Category is the rate-limit category that rejected the request.
	Category string

	// Limit is the configured maximum for the category's window.
	Limit int

	// RetryAfter is the time remaining until the window resets.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for category %q (limit %d, retry after %s)",
		e.Category, e.Limit, e.RetryAfter.Round(time.Millisecond))
}

// QueueClearedError is surfaced to requests still pending in the offline
// queue when an explicit clear is invoked.
type QueueClearedError struct {
	// ID is the queued request's identifier.
	ID string
}

// Error implements the error interface.
func (e *QueueClearedError) Error() string {
	return fmt.Sprintf("queued request %s dropped: queue cleared", e.ID)
}

// ValidationError represents a pre-dispatch request validation failure.
type ValidationError struct {
	// Field is the name of the invalid field.
	Field string

	// Message describes what is invalid about the field.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// CredentialError represents a failure to obtain an auth token before
// dispatch. It is fatal: retrying without a credential cannot succeed.
type CredentialError struct {
	// Cause is the underlying token provider error.
	Cause error
}

// Error implements the error interface.
func (e *CredentialError) Error() string {
	return fmt.Sprintf("failed to obtain auth token: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *CredentialError) Unwrap() error {
	return e.Cause
}
