package enrollment

import "context"

// Store defines the interface for pending-session persistence. Implementations
// enforce the session TTL: Get never returns a lapsed session.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID. Returns ErrSessionNotFound for unknown
	// IDs and ErrSessionExpired when the TTL has passed.
	Get(ctx context.Context, id string) (*Session, error)

	// Update overwrites an existing session, keeping its expiry.
	Update(ctx context.Context, session *Session) error

	// Delete removes a session. Deleting a missing session is a no-op.
	Delete(ctx context.Context, id string) error
}
