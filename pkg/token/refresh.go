package token

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// RefreshFunc obtains a fresh credential from an external source.
type RefreshFunc func(ctx context.Context) (string, error)

// Refreshing is a Provider that refreshes the credential on demand.
//
// When the cached token is empty, concurrent callers are collapsed into a
// single refresh via singleflight, so two in-flight requests that both
// observe an expired token trigger exactly one refresh round-trip.
type Refreshing struct {
	refresh RefreshFunc

	mu    sync.RWMutex
	value string

	group singleflight.Group
}

// NewRefreshing creates a refreshing provider around refresh.
func NewRefreshing(refresh RefreshFunc) *Refreshing {
	return &Refreshing{refresh: refresh}
}

// Token implements Provider. It returns the cached credential when one is
// set and otherwise performs (or joins) a refresh.
func (r *Refreshing) Token(ctx context.Context) (string, error) {
	r.mu.RLock()
	value := r.value
	r.mu.RUnlock()

	if value != "" {
		return value, nil
	}

	result, err, _ := r.group.Do("token", func() (any, error) {
		fresh, err := r.refresh(ctx)
		if err != nil {
			return "", err
		}
		r.mu.Lock()
		r.value = fresh
		r.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Invalidate drops the cached credential so the next Token call
// refreshes. Call this after observing an auth failure.
func (r *Refreshing) Invalidate() {
	r.mu.Lock()
	r.value = ""
	r.mu.Unlock()
}
