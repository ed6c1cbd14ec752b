// Package retry wraps a single request attempt with bounded
// exponential-backoff retry.
//
// # Overview
//
// Do executes an operation and, when it fails with a retryable
// classification, suspends for BaseDelay * 2^(attempt-1) before trying
// again, up to MaxAttempts total attempts:
//
//	result, err := retry.Do(ctx, retry.Policy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond},
//	    func(ctx context.Context) ([]byte, error) {
//	        return dispatch(ctx)
//	    })
//
// Attempt counters are local to each Do call. There is no shared
// bookkeeping across requests, so unrelated calls to the same endpoint
// never influence each other's budgets.
//
// Non-retryable failures and exhausted budgets return the original error
// annotated with its classification (see package classify). The context
// is checked before every suspension point, so cancellation takes effect
// between attempts and during backoff waits.
package retry
