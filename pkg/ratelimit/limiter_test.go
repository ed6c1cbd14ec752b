package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestLimiter_AdmitsUpToLimit(t *testing.T) {
	limiter := New(map[string]Config{
		"AI_ANALYSIS": {MaxRequests: 10, Window: time.Minute},
	})

	admitted := 0
	for i := 0; i < 11; i++ {
		if limiter.Admit("AI_ANALYSIS") {
			admitted++
		}
	}

	if admitted != 10 {
		t.Errorf("Expected exactly 10 admissions, got %d", admitted)
	}

	// The 11th rejection must not consume capacity.
	status := limiter.Status("AI_ANALYSIS")
	if status.Remaining != 0 {
		t.Errorf("Expected 0 remaining after limit reached, got %d", status.Remaining)
	}
}

func TestLimiter_WindowReset(t *testing.T) {
	limiter := New(map[string]Config{
		"FAST": {MaxRequests: 2, Window: 50 * time.Millisecond},
	})

	if !limiter.Admit("FAST") || !limiter.Admit("FAST") {
		t.Fatal("Expected first two requests to be admitted")
	}
	if limiter.Admit("FAST") {
		t.Fatal("Expected third request to be rejected")
	}

	// Wait for the window to elapse; the counter must reset.
	time.Sleep(60 * time.Millisecond)

	if !limiter.Admit("FAST") {
		t.Error("Expected admission after window reset")
	}
}

func TestLimiter_UnknownCategoryUsesDefault(t *testing.T) {
	limiter := New(map[string]Config{
		DefaultCategory: {MaxRequests: 1, Window: time.Minute},
	})

	if !limiter.Admit("NEVER_CONFIGURED") {
		t.Fatal("Expected first request in unconfigured category to be admitted")
	}
	if limiter.Admit("NEVER_CONFIGURED") {
		t.Error("Expected unconfigured category to inherit DEFAULT limit of 1")
	}
}

func TestLimiter_CategoriesAreIndependent(t *testing.T) {
	limiter := New(map[string]Config{
		"A": {MaxRequests: 1, Window: time.Minute},
		"B": {MaxRequests: 1, Window: time.Minute},
	})

	if !limiter.Admit("A") {
		t.Fatal("Expected category A to admit")
	}
	if !limiter.Admit("B") {
		t.Error("Expected category B to be unaffected by category A's window")
	}
}

func TestLimiter_Status(t *testing.T) {
	limiter := New(map[string]Config{
		"AI_ANALYSIS": {MaxRequests: 10, Window: time.Minute},
	})

	limiter.Admit("AI_ANALYSIS")
	limiter.Admit("AI_ANALYSIS")

	status := limiter.Status("AI_ANALYSIS")
	if status.Limit != 10 {
		t.Errorf("Expected limit 10, got %d", status.Limit)
	}
	if status.Remaining != 8 {
		t.Errorf("Expected 8 remaining, got %d", status.Remaining)
	}
	if status.RetryAfter <= 0 || status.RetryAfter > time.Minute {
		t.Errorf("Expected retry-after within the window, got %s", status.RetryAfter)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := New(map[string]Config{
		"SHARED": {MaxRequests: 50, Window: time.Minute},
	})

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Admit("SHARED") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 50 {
		t.Errorf("Expected exactly 50 concurrent admissions, got %d", admitted)
	}
}

func TestLimiter_UpdateCategories(t *testing.T) {
	limiter := New(map[string]Config{
		"A": {MaxRequests: 1, Window: time.Minute},
	})

	limiter.Admit("A")
	if limiter.Admit("A") {
		t.Fatal("Expected rejection at original limit")
	}

	limiter.UpdateCategories(map[string]Config{
		"A": {MaxRequests: 5, Window: time.Minute},
	})

	// Count carries over, new limit applies.
	if !limiter.Admit("A") {
		t.Error("Expected admission after limit raise")
	}
}

func TestLimiter_PruneIdle(t *testing.T) {
	limiter := New(map[string]Config{
		DefaultCategory: {MaxRequests: 10, Window: time.Minute},
	})

	limiter.Admit("EPHEMERAL")
	time.Sleep(20 * time.Millisecond)

	removed := limiter.PruneIdle(10 * time.Millisecond)
	if removed != 1 {
		t.Errorf("Expected 1 pruned window, got %d", removed)
	}

	// A pruned category starts fresh.
	if !limiter.Admit("EPHEMERAL") {
		t.Error("Expected admission after prune")
	}
}
