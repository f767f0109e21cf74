package enrollment

import (
	"context"
	"sync"
	"time"
)

const (
	defaultCapacity        = 10_000
	defaultCleanupInterval = 5 * time.Minute
)

// MemoryStore implements Store with a bounded process-local map. State is
// not shared between instances; multi-replica deployments should use
// RedisStore so an enrollment can be verified on any replica.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl             time.Duration
	capacity        int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCapacity bounds the number of stored sessions. When full, the
// oldest-created sessions are evicted to make room.
func WithCapacity(capacity int) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if capacity > 0 {
			ms.capacity = capacity
		}
	}
}

// WithCleanupInterval sets the sweep interval for expired sessions.
// Set to 0 to disable the background sweeper.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.cleanupInterval = interval
	}
}

// NewMemoryStore creates a bounded in-memory store enforcing the given TTL.
func NewMemoryStore(ttl time.Duration, opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		sessions:        make(map[string]*Session),
		ttl:             ttl,
		capacity:        defaultCapacity,
		cleanupInterval: defaultCleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(ms)
	}

	if ms.cleanupInterval > 0 {
		go ms.cleanupLoop()
	}

	return ms
}

func (ms *MemoryStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return ErrInvalidSession
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.sessions[session.ID]; !exists && len(ms.sessions) >= ms.capacity {
		ms.evictOldest(len(ms.sessions) - ms.capacity + 1)
	}

	cp := *session
	ms.sessions[session.ID] = &cp
	return nil
}

func (ms *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	ms.mu.RLock()
	session, exists := ms.sessions[id]
	ms.mu.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}
	if session.Expired(ms.ttl) {
		ms.mu.Lock()
		delete(ms.sessions, id)
		ms.mu.Unlock()
		return nil, ErrSessionExpired
	}

	cp := *session
	return &cp, nil
}

func (ms *MemoryStore) Update(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return ErrInvalidSession
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.sessions[session.ID]; !exists {
		return ErrSessionNotFound
	}

	cp := *session
	ms.sessions[session.ID] = &cp
	return nil
}

func (ms *MemoryStore) Delete(ctx context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.sessions)
}

// evictOldest removes n sessions, expired ones first, then oldest-created.
// Must be called with the lock held.
func (ms *MemoryStore) evictOldest(n int) {
	for id, session := range ms.sessions {
		if n <= 0 {
			return
		}
		if session.Expired(ms.ttl) {
			delete(ms.sessions, id)
			n--
		}
	}

	for n > 0 && len(ms.sessions) > 0 {
		var oldestID string
		var oldest time.Time
		for id, session := range ms.sessions {
			if oldestID == "" || session.CreatedAt.Before(oldest) {
				oldestID = id
				oldest = session.CreatedAt
			}
		}
		delete(ms.sessions, oldestID)
		n--
	}
}

func (ms *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(ms.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.removeExpired()
		case <-ms.stopCleanup:
			return
		}
	}
}

func (ms *MemoryStore) removeExpired() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for id, session := range ms.sessions {
		if session.Expired(ms.ttl) {
			delete(ms.sessions, id)
		}
	}
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (ms *MemoryStore) Close() {
	ms.closeOnce.Do(func() {
		close(ms.stopCleanup)
	})
}
