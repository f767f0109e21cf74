package ratelimiter

import (
	"context"
	"time"
)

// Store defines the interface for rate limit storage backends.
type Store interface {
	// Increment records one attempt for the key. The first attempt of a
	// window starts it; later attempts join it. Returns the attempt count
	// inside the current window and the time the window expires.
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)

	// Reset clears the window for the given key.
	Reset(ctx context.Context, key string) error
}
