package queue

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store, err := NewSQLiteStore[call](filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	now := time.Now().Truncate(time.Millisecond)
	records := []Record[call]{
		{ID: "a", Payload: call{Endpoint: "/first"}, EnqueuedAt: now},
		{ID: "b", Payload: call{Endpoint: "/second"}, EnqueuedAt: now.Add(time.Millisecond)},
		{ID: "c", Payload: call{Endpoint: "/third"}, EnqueuedAt: now.Add(2 * time.Millisecond)},
	}
	for _, rec := range records {
		if err := store.Append(rec); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	loaded, err := store.LoadPending(context.Background())
	if err != nil {
		t.Fatalf("LoadPending failed: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(loaded))
	}
	for i, rec := range records {
		if loaded[i].ID != rec.ID {
			t.Errorf("Record %d: expected ID %s, got %s (enqueue order must be preserved)", i, rec.ID, loaded[i].ID)
		}
		if loaded[i].Payload.Endpoint != rec.Payload.Endpoint {
			t.Errorf("Record %d: expected endpoint %s, got %s", i, rec.Payload.Endpoint, loaded[i].Payload.Endpoint)
		}
	}
}

func TestSQLiteStore_Remove(t *testing.T) {
	store, err := NewSQLiteStore[call](filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	rec := Record[call]{ID: "a", Payload: call{Endpoint: "/only"}, EnqueuedAt: time.Now()}
	if err := store.Append(rec); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Remove("a"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	// Removing a missing entry is a no-op.
	if err := store.Remove("a"); err != nil {
		t.Errorf("Expected removing missing entry to succeed, got %v", err)
	}

	loaded, err := store.LoadPending(context.Background())
	if err != nil {
		t.Fatalf("LoadPending failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("Expected empty journal, got %d records", len(loaded))
	}
}

func TestQueue_RestoreFromJournal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	// Simulate a previous process that journaled items and crashed.
	seed, err := NewSQLiteStore[call](path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	now := time.Now()
	_ = seed.Append(Record[call]{ID: "x", Payload: call{Endpoint: "/orphan1"}, EnqueuedAt: now})
	_ = seed.Append(Record[call]{ID: "y", Payload: call{Endpoint: "/orphan2"}, EnqueuedAt: now.Add(time.Millisecond)})
	seed.Close()

	store, err := NewSQLiteStore[call](path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer store.Close()

	delivered := make(chan string, 2)
	q := New(func(ctx context.Context, c call) (json.RawMessage, error) {
		delivered <- c.Endpoint
		return nil, nil
	}, Options[call]{Store: store})

	n, err := q.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("Expected 2 restored items, got %d", n)
	}

	for _, want := range []string{"/orphan1", "/orphan2"} {
		select {
		case got := <-delivered:
			if got != want {
				t.Errorf("Expected redelivery of %s, got %s", want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Timed out waiting for restored redelivery")
		}
	}
}
