// Package queue holds requests that exhausted their retries on a
// connectivity failure and redelivers them serially once connectivity
// returns.
//
// # Overview
//
// Enqueue appends an item and hands back a Pending that settles exactly
// once, when the item is eventually dispatched or the queue is cleared:
//
//	pending := q.Enqueue(call)
//	result, err := pending.Wait(ctx)
//
// A single drain loop dequeues strictly in FIFO order with concurrency 1,
// so a connectivity outage never produces a retry storm. An item whose
// redelivery fails with another connectivity classification stays at the
// head and the loop pauses until the next trigger (a new enqueue or an
// explicit Flush); all other outcomes settle the item and pop it. The
// queue never drops items silently — the only way an item disappears
// without settling normally is Clear, which rejects every pending item
// with a QueueClearedError.
//
// # Persistence
//
// An optional Store journals queued items so they survive a process
// restart. Restore re-enqueues journal rows with no waiting caller; their
// outcomes are logged instead.
package queue
