package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/ganymede/pkg/classify"
)

// DispatchFunc redelivers a queued payload. It is expected to include the
// caller's full retry pipeline.
type DispatchFunc[T any] func(ctx context.Context, payload T) (json.RawMessage, error)

// Pending is the settlement handle for an enqueued request. It settles
// exactly once: with the dispatch outcome, or with a QueueClearedError.
type Pending struct {
	id   string
	done chan struct{}
	once sync.Once

	result json.RawMessage
	err    error
}

// ID returns the queued request's identifier.
func (p *Pending) ID() string {
	return p.id
}

// Wait blocks until the request settles or ctx is done. Cancelling the
// wait does not remove the item from the queue; redelivery continues.
func (p *Pending) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return p.result, p.err
	}
}

func (p *Pending) settle(result json.RawMessage, err error) {
	p.once.Do(func() {
		p.result = result
		p.err = err
		close(p.done)
	})
}

// entry is a queued request awaiting redelivery.
type entry[T any] struct {
	id         string
	payload    T
	enqueuedAt time.Time
	pending    *Pending
}

// Options configures a Queue.
type Options[T any] struct {
	// Store journals queued items across restarts. Nil disables
	// persistence.
	Store Store[T]

	// Logger receives drain progress and journal failures.
	// Defaults to slog.Default.
	Logger *slog.Logger

	// OnDepthChange is invoked with the queue length after every change.
	// Used to keep a metrics gauge current. May be nil.
	OnDepthChange func(int)
}

// Queue is a FIFO request queue drained serially by a single loop.
//
// Items are dispatched strictly in arrival order with concurrency 1. An
// item whose redelivery fails with a network classification is kept at
// the head and draining pauses until the next Enqueue or Flush; any other
// outcome settles the item.
type Queue[T any] struct {
	dispatch DispatchFunc[T]
	store    Store[T]
	logger   *slog.Logger
	onDepth  func(int)

	mu       sync.Mutex
	items    []*entry[T]
	draining bool
}

// New creates a queue around a dispatch function.
func New[T any](dispatch DispatchFunc[T], opts Options[T]) *Queue[T] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue[T]{
		dispatch: dispatch,
		store:    opts.Store,
		logger:   logger.With("component", "queue"),
		onDepth:  opts.OnDepthChange,
	}
}

// Enqueue appends a request and triggers a drain if one is not already
// running. The returned Pending settles when the request is eventually
// dispatched or the queue is cleared.
func (q *Queue[T]) Enqueue(payload T) *Pending {
	id := uuid.NewString()
	e := &entry[T]{
		id:         id,
		payload:    payload,
		enqueuedAt: time.Now(),
		pending:    &Pending{id: id, done: make(chan struct{})},
	}

	if q.store != nil {
		if err := q.store.Append(Record[T]{ID: e.id, Payload: payload, EnqueuedAt: e.enqueuedAt}); err != nil {
			q.logger.Warn("failed to journal queued request", "id", e.id, "error", err)
		}
	}

	q.mu.Lock()
	q.items = append(q.items, e)
	depth := len(q.items)
	start := !q.draining
	if start {
		q.draining = true
	}
	q.mu.Unlock()

	q.notifyDepth(depth)
	q.logger.Info("request queued for redelivery", "id", e.id, "depth", depth)

	if start {
		go q.drain()
	}
	return e.pending
}

// Flush triggers a drain cycle if items are pending and no drain loop is
// currently running. It returns immediately.
func (q *Queue[T]) Flush() {
	q.mu.Lock()
	start := !q.draining && len(q.items) > 0
	if start {
		q.draining = true
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
}

// Len returns the number of items awaiting redelivery.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear rejects every pending item with a QueueClearedError and empties
// the queue. This is the only way an item leaves the queue without a
// dispatch outcome.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	cleared := q.items
	q.items = nil
	q.mu.Unlock()

	for _, e := range cleared {
		e.pending.settle(nil, &classify.QueueClearedError{ID: e.id})
		q.removeJournal(e.id)
	}

	if len(cleared) > 0 {
		q.notifyDepth(0)
		q.logger.Info("queue cleared", "dropped", len(cleared))
	}
}

// Restore re-enqueues journaled items from the store. The restored items
// have no waiting caller, so their outcomes are logged instead. It
// returns the number of restored items.
func (q *Queue[T]) Restore(ctx context.Context) (int, error) {
	if q.store == nil {
		return 0, nil
	}

	records, err := q.store.LoadPending(ctx)
	if err != nil {
		return 0, err
	}

	for _, rec := range records {
		pending := q.enqueueRestored(rec)
		go func(id string) {
			if _, err := pending.Wait(context.Background()); err != nil {
				q.logger.Warn("restored request failed", "id", id, "error", err)
				return
			}
			q.logger.Info("restored request delivered", "id", id)
		}(rec.ID)
	}
	return len(records), nil
}

// enqueueRestored appends a journaled record without re-journaling it.
func (q *Queue[T]) enqueueRestored(rec Record[T]) *Pending {
	e := &entry[T]{
		id:         rec.ID,
		payload:    rec.Payload,
		enqueuedAt: rec.EnqueuedAt,
		pending:    &Pending{id: rec.ID, done: make(chan struct{})},
	}

	q.mu.Lock()
	q.items = append(q.items, e)
	depth := len(q.items)
	start := !q.draining
	if start {
		q.draining = true
	}
	q.mu.Unlock()

	q.notifyDepth(depth)
	if start {
		go q.drain()
	}
	return e.pending
}

// drain delivers queued items in FIFO order until the queue is empty or
// the head fails with another connectivity error. Exactly one drain loop
// runs at a time.
func (q *Queue[T]) drain() {
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		head := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		result, err := q.dispatch(context.Background(), head.payload)

		if err != nil && classify.Classify(err).Kind == classify.KindNetwork {
			// Connectivity is still out. Put the item back at the head and
			// pause until the next enqueue or flush.
			q.mu.Lock()
			q.items = append([]*entry[T]{head}, q.items...)
			depth := len(q.items)
			q.draining = false
			q.mu.Unlock()

			q.notifyDepth(depth)
			q.logger.Warn("redelivery failed, connectivity still unavailable",
				"id", head.id,
				"depth", depth,
				"error", err,
			)
			return
		}

		head.pending.settle(result, err)
		q.removeJournal(head.id)

		q.mu.Lock()
		depth := len(q.items)
		q.mu.Unlock()
		q.notifyDepth(depth)

		if err != nil {
			q.logger.Warn("queued request settled with failure", "id", head.id, "error", err)
		} else {
			q.logger.Info("queued request delivered", "id", head.id, "depth", depth)
		}
	}
}

func (q *Queue[T]) removeJournal(id string) {
	if q.store == nil {
		return
	}
	if err := q.store.Remove(id); err != nil {
		q.logger.Warn("failed to remove journal entry", "id", id, "error", err)
	}
}

func (q *Queue[T]) notifyDepth(depth int) {
	if q.onDepth != nil {
		q.onDepth(depth)
	}
}
