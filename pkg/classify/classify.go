package classify

import (
	"errors"
	"net/http"
)

// Kind identifies the failure category of a classified outcome.
type Kind string

const (
	// KindNetwork is a transport or connect failure with no response received.
	KindNetwork Kind = "network"

	// KindRateLimit is an HTTP 429 response from the upstream.
	KindRateLimit Kind = "rate_limit"

	// KindServer is an HTTP 5xx response.
	KindServer Kind = "server"

	// KindClient is an HTTP 404 or other 4xx response, or a pre-dispatch
	// validation failure.
	KindClient Kind = "client"

	// KindAuth is an HTTP 401 or 403 response.
	KindAuth Kind = "auth"
)

// Outcome is the typed result of classifying a failure.
// It is a pure value with no identity; equal inputs produce equal outcomes.
type Outcome struct {
	// Kind is the failure category.
	Kind Kind

	// Retryable indicates whether retrying the request may succeed.
	Retryable bool

	// Status is the HTTP status code, or 0 when no response was received.
	Status int
}

// Classify maps an error to its Outcome.
//
// Errors already annotated by this package keep their original outcome, so
// classification is idempotent across layers. Status-bearing errors
// (HTTPError) are classified by status code. Validation and credential
// errors are fatal client/auth failures. Everything else is treated as a
// transport failure: no response was received, so retrying is safe.
func Classify(err error) Outcome {
	var annotated *Error
	if errors.As(err, &annotated) {
		return annotated.Outcome
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return ClassifyStatus(httpErr.Status)
	}

	var limitErr *RateLimitExceededError
	if errors.As(err, &limitErr) {
		// Local admission rejection: no dispatch happened and the window is
		// known to be full, so retrying inside the client cannot succeed.
		return Outcome{Kind: KindRateLimit, Retryable: false}
	}

	var clearedErr *QueueClearedError
	if errors.As(err, &clearedErr) {
		return Outcome{Kind: KindClient, Retryable: false}
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return Outcome{Kind: KindClient, Retryable: false}
	}

	var credErr *CredentialError
	if errors.As(err, &credErr) {
		return Outcome{Kind: KindAuth, Retryable: false}
	}

	// No response received: connect failure, reset, DNS, timeout.
	return Outcome{Kind: KindNetwork, Retryable: true}
}

// ClassifyStatus maps an HTTP status code to its Outcome.
func ClassifyStatus(status int) Outcome {
	switch {
	case status == http.StatusTooManyRequests:
		return Outcome{Kind: KindRateLimit, Retryable: true, Status: status}
	case status >= 500:
		return Outcome{Kind: KindServer, Retryable: true, Status: status}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Outcome{Kind: KindAuth, Retryable: false, Status: status}
	default:
		// 404 and the remaining 4xx family.
		return Outcome{Kind: KindClient, Retryable: false, Status: status}
	}
}

// Annotate wraps err with its classified Outcome. The original error
// remains reachable through Unwrap. Annotating an already annotated error
// returns it unchanged.
func Annotate(err error) error {
	if err == nil {
		return nil
	}

	var annotated *Error
	if errors.As(err, &annotated) {
		return err
	}

	return &Error{Outcome: Classify(err), Err: err}
}
