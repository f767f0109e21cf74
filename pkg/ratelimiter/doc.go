// Package ratelimiter provides fixed-window rate limiting with pluggable
// storage backends.
//
// A FixedWindow limiter counts attempts per key. The first attempt opens a
// window of configurable length; every attempt inside it, allowed or denied,
// increments the same counter. When the window expires the count starts over.
// This matches the lockout semantics wanted for credential verification:
// N attempts per window, with denial that does not reset on retry.
//
// # Storage Backends
//
// Two Store implementations ship with the package:
//
//   - MemoryStore: process-local map, bounded at a configurable capacity
//     (oldest entries evicted when full) with a background sweeper for
//     expired windows. Suitable for tests and single-instance deployments.
//   - RedisStore: shares windows across replicas, window TTL enforced by
//     Redis itself.
//
// # Usage
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.NewFixedWindow(store, ratelimiter.Config{
//	    Limit:  5,
//	    Window: 15 * time.Minute,
//	})
//
//	result, err := limiter.Allow(ctx, "user:"+userID)
//	if !result.Allowed() {
//	    // deny, surface result.RetryAfter()
//	}
package ratelimiter
