package credential

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepository implements Repository with process-local storage.
// Intended for tests and single-instance development setups.
type MemoryRepository struct {
	mu    sync.RWMutex
	creds map[string]*Credential
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{creds: make(map[string]*Credential)}
}

func (m *MemoryRepository) Save(ctx context.Context, cred *Credential) error {
	if cred == nil || cred.UserID == "" {
		return ErrInvalidCredential
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.creds[cred.UserID] = copyCredential(cred)
	return nil
}

func (m *MemoryRepository) Get(ctx context.Context, userID string) (*Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cred, ok := m.creds[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCredential(cred), nil
}

func (m *MemoryRepository) ReplaceBackupCodeHashes(ctx context.Context, userID string, hashes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, ok := m.creds[userID]
	if !ok {
		return ErrNotFound
	}
	cred.BackupCodeHashes = slices.Clone(hashes)
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.creds, userID)
	return nil
}

// copyCredential returns a deep copy so callers cannot mutate stored state.
func copyCredential(cred *Credential) *Credential {
	cp := *cred
	cp.BackupCodeHashes = slices.Clone(cred.BackupCodeHashes)
	return &cp
}
