package credential

import (
	"context"
	"time"
)

// Credential is a user's enrolled two-factor credential. The TOTP secret is
// stored only in encrypted form, and backup codes only as bcrypt hashes.
type Credential struct {
	UserID           string
	EncryptedSecret  string
	BackupCodeHashes []string
	EnabledAt        time.Time
}

// Repository defines the storage operations for enrolled credentials.
type Repository interface {
	// Save upserts the credential for its user.
	Save(ctx context.Context, cred *Credential) error

	// Get retrieves the credential for a user.
	// Returns ErrNotFound if the user has no credential.
	Get(ctx context.Context, userID string) (*Credential, error)

	// ReplaceBackupCodeHashes swaps the stored hash set, used when a backup
	// code is burned or when codes are regenerated.
	ReplaceBackupCodeHashes(ctx context.Context, userID string, hashes []string) error

	// Delete removes the credential, disabling two-factor for the user.
	Delete(ctx context.Context, userID string) error
}
