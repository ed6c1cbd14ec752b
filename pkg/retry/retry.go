package retry

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/ganymede/pkg/classify"
)

// Policy bounds the retry behavior for one logical request.
type Policy struct {
	// MaxAttempts is the total number of dispatch attempts, including the
	// first. Values below 1 are treated as 1.
	MaxAttempts int

	// BaseDelay is the backoff before the second attempt. The delay
	// doubles with each subsequent attempt.
	BaseDelay time.Duration
}

// Delay returns the backoff duration preceding the given attempt.
// Attempt numbering starts at 1; the delay before attempt n is
// BaseDelay * 2^(n-2), so delays are strictly increasing.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	return p.BaseDelay << uint(attempt-2)
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Do runs op under the policy. On success the result is returned as-is.
// On failure the error is classified; non-retryable outcomes and
// exhausted budgets reject immediately with the original error annotated
// with its classification. Retryable failures suspend for the backoff
// delay and try again.
//
// The attempt counter lives on the stack of this call and is never shared.
func Do[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	maxAttempts := policy.attempts()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		outcome := classify.Classify(err)
		if !outcome.Retryable || attempt == maxAttempts {
			return zero, classify.Annotate(err)
		}

		delay := policy.Delay(attempt + 1)
		slog.Debug("attempt failed, backing off",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"kind", outcome.Kind,
			"backoff", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
}
