package queue

import (
	"context"
	"time"
)

// Record is the journaled form of a queued request.
type Record[T any] struct {
	// ID is the queued request's identifier.
	ID string

	// Payload is the request to redeliver.
	Payload T

	// EnqueuedAt is when the request entered the queue.
	EnqueuedAt time.Time
}

// Store journals queued requests so they survive a process restart.
// Implementations must be safe for concurrent use.
type Store[T any] interface {
	// Append journals a queued request.
	Append(rec Record[T]) error

	// Remove deletes a journal entry once the request has settled.
	// No-op if the entry does not exist.
	Remove(id string) error

	// LoadPending returns all journaled requests in enqueue order.
	LoadPending(ctx context.Context) ([]Record[T], error)

	// Close releases any resources held by the store.
	Close() error
}
