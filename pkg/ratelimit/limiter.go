package ratelimit

import (
	"sync"
	"time"
)

// DefaultCategory is the fallback category for requests that do not name one.
const DefaultCategory = "DEFAULT"

// Config contains the limits for a single category window.
type Config struct {
	// MaxRequests is the maximum number of admissions per window.
	MaxRequests int

	// Window is the window duration.
	Window time.Duration
}

// CheckResult describes the current state of a category window.
// It is returned by Status for error reporting and metrics.
type CheckResult struct {
	// Category is the category the result describes.
	Category string

	// Limit is the configured maximum for the window.
	Limit int

	// Remaining is how many admissions remain in the current window.
	Remaining int

	// Reset is when the current window expires.
	Reset time.Time

	// RetryAfter is the time until the window resets.
	RetryAfter time.Duration
}

// window tracks admissions for one category.
type window struct {
	cfg      Config
	start    time.Time
	count    int
	lastSeen time.Time
}

// Limiter admits requests per category using fixed-duration windows.
//
// Each Limiter instance owns its own window state; multiple independently
// configured limiters coexist without interference. All state is private
// and mutated only by the limiter's own admission check.
type Limiter struct {
	mu         sync.Mutex
	categories map[string]Config
	windows    map[string]*window
}

// New creates a limiter from a category table. Categories are matched by
// exact name; unknown categories use the DEFAULT entry. If the table has
// no DEFAULT entry, one is added with 60 requests per minute.
func New(categories map[string]Config) *Limiter {
	table := make(map[string]Config, len(categories)+1)
	for name, cfg := range categories {
		table[name] = cfg
	}
	if _, ok := table[DefaultCategory]; !ok {
		table[DefaultCategory] = Config{MaxRequests: 60, Window: time.Minute}
	}

	return &Limiter{
		categories: table,
		windows:    make(map[string]*window),
	}
}

// Admit reports whether a request in the given category may be dispatched.
//
// The category's window is created on first use and reset once its
// duration has elapsed. When the window has capacity the count is
// incremented and Admit returns true; otherwise it returns false with no
// side effect.
func (l *Limiter) Admit(category string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w := l.windowLocked(category, now)
	w.lastSeen = now

	if now.Sub(w.start) >= w.cfg.Window {
		w.start = now
		w.count = 0
	}

	if w.count < w.cfg.MaxRequests {
		w.count++
		return true
	}
	return false
}

// Status returns the current state of a category's window without
// consuming an admission.
func (l *Limiter) Status(category string) CheckResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w := l.windowLocked(category, now)

	count := w.count
	start := w.start
	if now.Sub(start) >= w.cfg.Window {
		count = 0
		start = now
	}

	reset := start.Add(w.cfg.Window)
	retryAfter := reset.Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}

	return CheckResult{
		Category:   category,
		Limit:      w.cfg.MaxRequests,
		Remaining:  w.cfg.MaxRequests - count,
		Reset:      reset,
		RetryAfter: retryAfter,
	}
}

// UpdateCategories replaces the category table. Existing windows for
// categories that remain keep their counts but adopt the new limits;
// windows for removed categories are dropped.
func (l *Limiter) UpdateCategories(categories map[string]Config) {
	l.mu.Lock()
	defer l.mu.Unlock()

	table := make(map[string]Config, len(categories)+1)
	for name, cfg := range categories {
		table[name] = cfg
	}
	if _, ok := table[DefaultCategory]; !ok {
		table[DefaultCategory] = l.categories[DefaultCategory]
	}
	l.categories = table

	for name, w := range l.windows {
		cfg, ok := table[name]
		if !ok {
			if name == DefaultCategory {
				continue
			}
			delete(l.windows, name)
			continue
		}
		w.cfg = cfg
	}
}

// PruneIdle removes windows that have not seen a request within the given
// horizon and returns the number removed. The category map is created
// lazily, so pruning keeps it bounded when category keys are dynamic.
func (l *Limiter) PruneIdle(horizon time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-horizon)
	removed := 0
	for name, w := range l.windows {
		if w.lastSeen.Before(cutoff) {
			delete(l.windows, name)
			removed++
		}
	}
	return removed
}

// windowLocked finds or lazily creates the window for a category.
// Caller must hold the mutex.
func (l *Limiter) windowLocked(category string, now time.Time) *window {
	if w, ok := l.windows[category]; ok {
		return w
	}

	cfg, ok := l.categories[category]
	if !ok {
		cfg = l.categories[DefaultCategory]
	}

	w := &window{cfg: cfg, start: now, lastSeen: now}
	l.windows[category] = w
	return w
}
