package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"mercator-hq/ganymede/pkg/classify"
	"mercator-hq/ganymede/pkg/ratelimit"
)

// RequestOptions configures a single request.
type RequestOptions struct {
	// Method is the HTTP method. Defaults to GET.
	Method string

	// Body is marshaled to JSON and sent as the request body. Nil sends
	// no body. A json.RawMessage or []byte is sent as-is.
	Body any

	// Headers are merged over the client's default headers.
	Headers map[string]string

	// RateLimitType names the rate-limit category the request is admitted
	// under. Defaults to "DEFAULT".
	RateLimitType string
}

// BatchItem is one request in a batch.
type BatchItem struct {
	// Endpoint is the request path, relative to the client's base URL.
	Endpoint string

	// Options configures the request.
	Options RequestOptions
}

// BatchResult is the settlement of one batch item. Exactly one of
// Result and Err is meaningful.
type BatchResult struct {
	// Result is the response body on success.
	Result json.RawMessage

	// Err is the classified failure, if any.
	Err error
}

// normalize fills option defaults in place.
func (o *RequestOptions) normalize() {
	if o.Method == "" {
		o.Method = http.MethodGet
	}
	o.Method = strings.ToUpper(o.Method)
	if o.RateLimitType == "" {
		o.RateLimitType = ratelimit.DefaultCategory
	}
}

// validate checks the endpoint and normalized options before any
// admission or dispatch. Failures are fatal client errors.
func (o *RequestOptions) validate(endpoint string) error {
	if endpoint == "" {
		return &classify.ValidationError{Field: "endpoint", Message: "must not be empty"}
	}
	if !strings.HasPrefix(endpoint, "/") {
		return &classify.ValidationError{Field: "endpoint", Message: "must start with '/'"}
	}

	switch o.Method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete:
	default:
		return &classify.ValidationError{
			Field:   "method",
			Message: fmt.Sprintf("unsupported method %q", o.Method),
		}
	}
	return nil
}

// encodeBody marshals the request body once, before the retry loop, so
// every attempt sends identical bytes.
func (o *RequestOptions) encodeBody() ([]byte, error) {
	switch body := o.Body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return body, nil
	case []byte:
		return body, nil
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &classify.ValidationError{
				Field:   "body",
				Message: fmt.Sprintf("not JSON-encodable: %v", err),
			}
		}
		return encoded, nil
	}
}

// isMutating reports whether the method changes upstream state and thus
// carries an auth credential when one is available.
func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
