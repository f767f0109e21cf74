package ratelimiter

import "time"

// Result contains the outcome of a rate limit check.
type Result struct {
	Limit     int       // Maximum attempts per window
	Remaining int       // Attempts left; negative once the limit is exceeded
	ResetAt   time.Time // When the current window expires
}

// Allowed reports whether the attempt fit within the limit.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RemainingAttempts returns Remaining clamped at zero for presentation.
func (r *Result) RemainingAttempts() int {
	return max(r.Remaining, 0)
}

// RetryAfter returns how long to wait before the window resets.
// Returns 0 if the attempt was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Config defines the fixed-window configuration.
type Config struct {
	Limit  int           `env:"RATE_LIMIT_ATTEMPTS" envDefault:"5"`  // Attempts allowed per window
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`  // Window length
}
