package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// window tracks attempts for one key.
type window struct {
	count     int
	resetAt   time.Time
	createdAt time.Time // Used by capacity eviction to find the oldest entries
}

// MemoryStore implements Store using process-local storage. State is not
// shared between instances; deployments running more than one replica should
// use RedisStore instead.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window

	capacity        int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets the sweep interval for expired windows.
// Set to 0 to disable the background sweeper.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.cleanupInterval = interval
	}
}

// WithCapacity bounds the number of tracked keys. When the map is full, the
// oldest-created entries are evicted to make room.
func WithCapacity(capacity int) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if capacity > 0 {
			ms.capacity = capacity
		}
	}
}

const (
	defaultCapacity        = 10_000
	defaultCleanupInterval = 5 * time.Minute
)

// NewMemoryStore creates a bounded in-memory store with periodic cleanup.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		windows:         make(map[string]*window),
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

// Increment records an attempt, opening a new window if none is active.
func (ms *MemoryStore) Increment(ctx context.Context, key string, windowLen time.Duration) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	w, exists := ms.windows[key]
	if !exists || now.After(w.resetAt) {
		if !exists && len(ms.windows) >= ms.capacity {
			ms.evictOldest(len(ms.windows) - ms.capacity + 1)
		}
		w = &window{resetAt: now.Add(windowLen), createdAt: now}
		ms.windows[key] = w
	}

	w.count++
	return w.count, w.resetAt, nil
}

// Reset clears the window for the given key.
func (ms *MemoryStore) Reset(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.windows, key)
	return nil
}

// Len returns the number of tracked keys.
func (ms *MemoryStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.windows)
}

// evictOldest removes n entries, expired windows first, then oldest-created.
// Must be called with the lock held.
func (ms *MemoryStore) evictOldest(n int) {
	now := time.Now()
	for key, w := range ms.windows {
		if n <= 0 {
			return
		}
		if now.After(w.resetAt) {
			delete(ms.windows, key)
			n--
		}
	}

	for n > 0 && len(ms.windows) > 0 {
		var oldestKey string
		var oldest time.Time
		for key, w := range ms.windows {
			if oldestKey == "" || w.createdAt.Before(oldest) {
				oldestKey = key
				oldest = w.createdAt
			}
		}
		delete(ms.windows, oldestKey)
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

	now := time.Now()
	for key, w := range ms.windows {
		if now.After(w.resetAt) {
			delete(ms.windows, key)
		}
	}
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (ms *MemoryStore) Close() {
	ms.closeOnce.Do(func() {
		close(ms.stopCleanup)
	})
}
