package ratelimiter

import (
	"context"
	"fmt"
)

// RateLimiter defines the interface for rate limiting implementations.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	Reset(ctx context.Context, key string) error
}

// FixedWindow counts attempts per key inside a rolling window of fixed
// length. Once the window opens with the first attempt, every further attempt
// increments the same counter until the window expires.
type FixedWindow struct {
	store  Store
	config Config
}

// NewFixedWindow creates a fixed-window rate limiter over the given store.
func NewFixedWindow(store Store, config Config) (*FixedWindow, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &FixedWindow{store: store, config: config}, nil
}

// Allow records an attempt for key and reports whether it fits the limit.
// The attempt is counted even when denied, so hammering a locked-out key
// never shortens the lockout.
func (fw *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	count, resetAt, err := fw.store.Increment(ctx, key, fw.config.Window)
	if err != nil {
		return nil, err
	}

	return &Result{
		Limit:     fw.config.Limit,
		Remaining: fw.config.Limit - count,
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the window for key, typically after a successful verification.
func (fw *FixedWindow) Reset(ctx context.Context, key string) error {
	return fw.store.Reset(ctx, key)
}

func (c Config) validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, c.Limit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %v", ErrInvalidConfig, c.Window)
	}
	return nil
}
