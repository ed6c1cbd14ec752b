// Package gatewaytest provides an httptest-based mock upstream for
// gateway client tests: scripted status sequences per path, request
// counters, an NDJSON stream endpoint, and an unreachable-server helper
// for connectivity-failure scenarios.
package gatewaytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockServer is a scriptable HTTP upstream for testing the gateway
// client. Each path is configured with a sequence of responses consumed
// in order; the last response repeats once the script is exhausted.
type MockServer struct {
	server *httptest.Server

	mu        sync.Mutex
	scripts   map[string][]MockResponse
	positions map[string]int
	counts    map[string]int
	requests  []RecordedRequest
}

// MockResponse defines one scripted response.
type MockResponse struct {
	StatusCode   int
	Body         any
	Delay        time.Duration
	Headers      map[string]string
	StreamChunks []string // served as NDJSON when non-empty
}

// RecordedRequest captures one received request for assertions.
type RecordedRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

// NewMockServer creates and starts a mock upstream.
func NewMockServer() *MockServer {
	ms := &MockServer{
		scripts:   make(map[string][]MockResponse),
		positions: make(map[string]int),
		counts:    make(map[string]int),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts the server down.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse scripts a single repeating response for a path.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.SetSequence(path, response)
}

// SetSequence scripts a sequence of responses for a path. Responses are
// consumed in order; the final one repeats.
func (ms *MockServer) SetSequence(path string, responses ...MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.scripts[path] = responses
	ms.positions[path] = 0
}

// RequestCount returns how many requests the path has received.
func (ms *MockServer) RequestCount(path string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.counts[path]
}

// Requests returns a copy of every recorded request in arrival order.
func (ms *MockServer) Requests() []RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]RecordedRequest(nil), ms.requests...)
}

// LastRequest returns the most recent request to the path, or nil.
func (ms *MockServer) LastRequest(path string) *RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for i := len(ms.requests) - 1; i >= 0; i-- {
		if ms.requests[i].Path == path {
			req := ms.requests[i]
			return &req
		}
	}
	return nil
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body := make([]byte, 0)
	if r.Body != nil {
		buf := make([]byte, 64*1024)
		for {
			n, err := r.Body.Read(buf)
			if n > 0 {
				body = append(body, buf[:n]...)
			}
			if err != nil {
				break
			}
		}
	}

	ms.mu.Lock()
	ms.counts[r.URL.Path]++
	ms.requests = append(ms.requests, RecordedRequest{
		Method:  r.Method,
		Path:    r.URL.Path,
		Headers: r.Header.Clone(),
		Body:    body,
	})

	script, ok := ms.scripts[r.URL.Path]
	if !ok || len(script) == 0 {
		ms.mu.Unlock()
		http.NotFound(w, r)
		return
	}

	pos := ms.positions[r.URL.Path]
	response := script[pos]
	if pos < len(script)-1 {
		ms.positions[r.URL.Path] = pos + 1
	}
	ms.mu.Unlock()

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	if len(response.StreamChunks) > 0 {
		ms.streamNDJSON(w, response)
		return
	}

	w.WriteHeader(response.StatusCode)

	if response.Body != nil {
		switch v := response.Body.(type) {
		case string:
			_, _ = w.Write([]byte(v))
		case []byte:
			_, _ = w.Write(v)
		default:
			_ = json.NewEncoder(w).Encode(response.Body)
		}
	}
}

// streamNDJSON writes one chunk per line with a flush between lines, so
// the client observes chunk boundaries.
func (ms *MockServer) streamNDJSON(w http.ResponseWriter, response MockResponse) {
	w.Header().Set("Content-Type", "application/x-ndjson")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	status := response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	for _, chunk := range response.StreamChunks {
		fmt.Fprintf(w, "%s\n", chunk)
		flusher.Flush()
		time.Sleep(5 * time.Millisecond)
	}
}

// UnreachableURL returns a base URL that refuses connections, for
// simulating connectivity failures.
func UnreachableURL() string {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url
}

// MockErrorResponse creates an error response with a JSON body.
func MockErrorResponse(statusCode int, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body: map[string]any{
			"error": map[string]any{
				"message": message,
				"code":    statusCode,
			},
		},
	}
}

// MockServerError creates a 500 response.
func MockServerError() MockResponse {
	return MockErrorResponse(http.StatusInternalServerError, "internal server error")
}

// MockAuthError creates a 401 response.
func MockAuthError() MockResponse {
	return MockErrorResponse(http.StatusUnauthorized, "invalid credentials")
}

// MockRateLimitError creates a 429 response with a Retry-After header.
func MockRateLimitError(retryAfter int) MockResponse {
	response := MockErrorResponse(http.StatusTooManyRequests, "rate limit exceeded")
	response.Headers = map[string]string{
		"Retry-After": fmt.Sprintf("%d", retryAfter),
	}
	return response
}
