package credential

import (
	"context"
	"embed"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mfakit/pkg/pg"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository over the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate applies the credential schema migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
	return pg.Migrate(ctx, pool, migrationsFS, "migrations", cfg, log)
}

func (r *PostgresRepository) Save(ctx context.Context, cred *Credential) error {
	if cred == nil || cred.UserID == "" {
		return ErrInvalidCredential
	}

	enabledAt := cred.EnabledAt
	if enabledAt.IsZero() {
		enabledAt = time.Now()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO two_factor_credentials (user_id, encrypted_secret, backup_code_hashes, enabled_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			encrypted_secret   = EXCLUDED.encrypted_secret,
			backup_code_hashes = EXCLUDED.backup_code_hashes,
			enabled_at         = EXCLUDED.enabled_at`,
		cred.UserID, cred.EncryptedSecret, cred.BackupCodeHashes, enabledAt,
	)
	if err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*Credential, error) {
	cred := &Credential{}
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, encrypted_secret, backup_code_hashes, enabled_at
		FROM two_factor_credentials
		WHERE user_id = $1`,
		userID,
	).Scan(&cred.UserID, &cred.EncryptedSecret, &cred.BackupCodeHashes, &cred.EnabledAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStorageFailed, err)
	}
	return cred, nil
}

func (r *PostgresRepository) ReplaceBackupCodeHashes(ctx context.Context, userID string, hashes []string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE two_factor_credentials
		SET backup_code_hashes = $2
		WHERE user_id = $1`,
		userID, hashes,
	)
	if err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM two_factor_credentials WHERE user_id = $1`, userID); err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}
