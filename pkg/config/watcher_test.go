package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_DeliversValidatedReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ganymede.yaml")

	initial := "http:\n  base_url: \"https://api.example.com\"\n"
	if err := os.WriteFile(path, []byte(initial), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan *Config, 4)
	go func() {
		_ = NewWatcher(path, 20*time.Millisecond, nil).Watch(ctx, func(cfg *Config) {
			reloads <- cfg
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	updated := "http:\n  base_url: \"https://changed.example.com\"\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("Failed to update config: %v", err)
	}

	select {
	case cfg := <-reloads:
		if cfg.HTTP.BaseURL != "https://changed.example.com" {
			t.Errorf("Expected reloaded base URL, got %s", cfg.HTTP.BaseURL)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for reload")
	}
}

func TestWatcher_RejectsInvalidReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ganymede.yaml")

	if err := os.WriteFile(path, []byte("http:\n  base_url: \"https://api.example.com\"\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan *Config, 4)
	go func() {
		_ = NewWatcher(path, 20*time.Millisecond, nil).Watch(ctx, func(cfg *Config) {
			reloads <- cfg
		})
	}()

	time.Sleep(100 * time.Millisecond)

	// An invalid rewrite must not produce a reload.
	if err := os.WriteFile(path, []byte("http:\n  base_url: \"\"\n"), 0o644); err != nil {
		t.Fatalf("Failed to update config: %v", err)
	}

	select {
	case cfg := <-reloads:
		t.Errorf("Expected invalid configuration to be rejected, got reload with base URL %q", cfg.HTTP.BaseURL)
	case <-time.After(500 * time.Millisecond):
	}
}
