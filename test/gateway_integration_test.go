//go:build integration

package test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/ganymede/internal/gatewaytest"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/gateway"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestQueuePersistenceAcrossRestart verifies that a request queued during
// a connectivity outage survives a process restart via the SQLite journal
// and is redelivered by a fresh client.
func TestQueuePersistenceAcrossRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tmpDir := t.TempDir()
	journalPath := filepath.Join(tmpDir, "queue.db")

	upstream := gatewaytest.NewMockServer()
	defer upstream.Close()
	upstream.SetResponse("/v1/upload", gatewaytest.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"id":"u1"}`,
	})

	// First client points at a dead endpoint, so the request exhausts its
	// retries, lands in the queue, and is journaled.
	deadCfg := config.Default()
	deadCfg.HTTP.BaseURL = gatewaytest.UnreachableURL()
	deadCfg.Retry.MaxAttempts = 1
	deadCfg.Retry.BaseDelay = time.Millisecond
	deadCfg.Queue.Persist = true
	deadCfg.Queue.JournalPath = journalPath

	first, err := gateway.New(deadCfg, gateway.ClientOptions{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// The caller abandons the wait; the queued request stays journaled.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	go first.Request(ctx, "/v1/upload", gateway.RequestOptions{Method: "POST", Body: map[string]string{"file": "a"}})

	deadline := time.Now().Add(5 * time.Second)
	for first.QueueLen() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if first.QueueLen() != 1 {
		t.Fatalf("Expected 1 queued request, got %d", first.QueueLen())
	}

	cancel()
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Second client points at the recovered upstream and restores the
	// journal.
	liveCfg := config.Default()
	liveCfg.HTTP.BaseURL = upstream.URL()
	liveCfg.Queue.Persist = true
	liveCfg.Queue.JournalPath = journalPath

	second, err := gateway.New(liveCfg, gateway.ClientOptions{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer second.Close()

	restored, err := second.RestoreQueue(context.Background())
	if err != nil {
		t.Fatalf("RestoreQueue failed: %v", err)
	}
	if restored != 1 {
		t.Fatalf("Expected 1 restored request, got %d", restored)
	}

	deadline = time.Now().Add(5 * time.Second)
	for upstream.RequestCount("/v1/upload") == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if count := upstream.RequestCount("/v1/upload"); count != 1 {
		t.Errorf("Expected restored request to reach the upstream once, got %d", count)
	}
}

// TestCategoryHotReload verifies that editing the config file tightens a
// rate-limit category on a live client through the watcher.
func TestCategoryHotReload(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	upstream := gatewaytest.NewMockServer()
	defer upstream.Close()
	upstream.SetResponse("/v1/analyze", gatewaytest.MockResponse{StatusCode: http.StatusOK, Body: `{}`})

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	writeConfig := func(maxRequests int) {
		content := fmt.Sprintf(`
http:
  base_url: %q
categories:
  AI_ANALYSIS:
    max_requests: %d
    window: 1m
`, upstream.URL(), maxRequests)
		if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}
	}
	writeConfig(100)

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	client, err := gateway.New(cfg, gateway.ClientOptions{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer client.Close()

	reloaded := make(chan struct{}, 1)
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		watcher := config.NewWatcher(configPath, 50*time.Millisecond, discardLogger())
		watcher.Watch(watchCtx, func(next *config.Config) {
			client.UpdateCategories(next.Categories)
			select {
			case reloaded <- struct{}{}:
			default:
			}
		})
	}()

	// Let the watcher attach before editing the file.
	time.Sleep(200 * time.Millisecond)
	writeConfig(1)

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("Watcher did not deliver the reload")
	}

	opts := gateway.RequestOptions{RateLimitType: "AI_ANALYSIS"}
	if _, err := client.Request(context.Background(), "/v1/analyze", opts); err != nil {
		t.Fatalf("First request failed: %v", err)
	}
	if _, err := client.Request(context.Background(), "/v1/analyze", opts); err == nil {
		t.Error("Expected second request to be rejected under the reloaded limit")
	}
}
