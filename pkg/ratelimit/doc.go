// Package ratelimit provides per-category sliding-window admission for
// outbound requests.
//
// # Overview
//
// Each category (e.g. "AI_ANALYSIS", "DOCUMENT_UPLOAD") owns an
// independent window of fixed duration admitting at most N requests.
// Windows are created lazily on first use and reset once their duration
// has elapsed:
//
//	limiter := ratelimit.New(map[string]ratelimit.Config{
//	    "AI_ANALYSIS": {MaxRequests: 10, Window: time.Minute},
//	})
//	if limiter.Admit("AI_ANALYSIS") {
//	    // dispatch the request
//	}
//
// Admit is a pure admission check: it has no failure mode and no side
// effect on rejection. Categories without explicit configuration fall
// back to the DEFAULT category.
//
// # Thread Safety
//
// The limiter is thread-safe using a single mutex; admission is atomic,
// so concurrent callers can never jointly exceed a window's limit.
package ratelimit
