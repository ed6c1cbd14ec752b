package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"mercator-hq/ganymede/internal/gatewaytest"
	"mercator-hq/ganymede/pkg/classify"
)

func TestBatchRequest_ResultsArePositional(t *testing.T) {
	server := gatewaytest.NewMockServer()
	defer server.Close()
	server.SetResponse("/v1/a", gatewaytest.MockResponse{StatusCode: http.StatusOK, Body: `"a"`})
	server.SetResponse("/v1/b", gatewaytest.MockErrorResponse(http.StatusNotFound, "no b"))
	server.SetResponse("/v1/c", gatewaytest.MockResponse{StatusCode: http.StatusOK, Body: `"c"`})

	client := newTestClient(t, testConfig(server.URL()), ClientOptions{})

	results := client.BatchRequest(context.Background(), []BatchItem{
		{Endpoint: "/v1/a"},
		{Endpoint: "/v1/b"},
		{Endpoint: "/v1/c"},
	})

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || string(results[0].Result) != `"a"` {
		t.Errorf("Unexpected result[0]: %s, %v", results[0].Result, results[0].Err)
	}
	if results[2].Err != nil || string(results[2].Result) != `"c"` {
		t.Errorf("Unexpected result[2]: %s, %v", results[2].Result, results[2].Err)
	}

	// The middle failure settles in place without disturbing the others.
	if results[1].Err == nil {
		t.Fatal("Expected results[1] to carry the 404")
	}
	var classified *classify.Error
	if !errors.As(results[1].Err, &classified) || classified.Outcome.Kind != classify.KindClient {
		t.Errorf("Expected classified client error, got %v", results[1].Err)
	}
}

func TestBatchRequest_RunsConcurrently(t *testing.T) {
	server := gatewaytest.NewMockServer()
	defer server.Close()

	const delay = 100 * time.Millisecond
	for _, path := range []string{"/v1/x", "/v1/y", "/v1/z"} {
		server.SetResponse(path, gatewaytest.MockResponse{
			StatusCode: http.StatusOK,
			Body:       `{}`,
			Delay:      delay,
		})
	}

	client := newTestClient(t, testConfig(server.URL()), ClientOptions{})

	start := time.Now()
	results := client.BatchRequest(context.Background(), []BatchItem{
		{Endpoint: "/v1/x"},
		{Endpoint: "/v1/y"},
		{Endpoint: "/v1/z"},
	})
	elapsed := time.Since(start)

	for i, r := range results {
		if r.Err != nil {
			t.Errorf("Item %d failed: %v", i, r.Err)
		}
	}
	// Serial execution would take at least 3x the delay.
	if elapsed >= 3*delay {
		t.Errorf("Expected concurrent execution, batch took %s", elapsed)
	}
}

func TestBatchRequest_Empty(t *testing.T) {
	server := gatewaytest.NewMockServer()
	defer server.Close()
	client := newTestClient(t, testConfig(server.URL()), ClientOptions{})

	results := client.BatchRequest(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}
