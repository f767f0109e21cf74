package enrollment

import "time"

// Session is a pending enrollment: the secret has been shown to the user but
// not yet proven. It lives in a Store until the user verifies a code
// (consumed), the TTL passes (expired), or it is displaced by capacity
// eviction.
type Session struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	Secret        string    `json:"secret"`
	CreatedAt     time.Time `json:"created_at"`
	Attempts      int       `json:"attempts"`
	LastAttemptAt time.Time `json:"last_attempt_at,omitzero"`
}

// ExpiresAt returns the moment the session lapses for the given TTL.
func (s *Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.CreatedAt.Add(ttl)
}

// Expired reports whether the session has outlived the TTL.
func (s *Session) Expired(ttl time.Duration) bool {
	return time.Now().After(s.ExpiresAt(ttl))
}
