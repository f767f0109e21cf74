package enrollment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"mfakit/pkg/backupcode"
	"mfakit/pkg/credential"
	"mfakit/pkg/qrcode"
	"mfakit/pkg/ratelimiter"
	"mfakit/pkg/secrets"
	"mfakit/pkg/totp"
)

// Enrollment is returned by Begin. The secret and manual entry code are shown
// to the user once; the server keeps the secret only inside the pending
// session until verification succeeds.
type Enrollment struct {
	SessionID       string
	Secret          string
	QRCodeDataURL   string
	ManualEntryCode string
}

// Verification is the outcome of a code check. BackupCodes is populated only
// on the successful attempt that completes enrollment; the plaintext codes
// are never available again.
type Verification struct {
	Allowed           bool
	RemainingAttempts int
	BackupCodes       []string
}

// Recovery is the outcome of a backup code attempt.
type Recovery struct {
	Allowed           bool
	RemainingAttempts int
	RemainingCodes    int
}

// Service drives the two-factor credential lifecycle: enrollment handshake,
// code verification at login, backup-code recovery, and disabling.
type Service struct {
	store     Store
	limiter   ratelimiter.RateLimiter
	creds     credential.Repository
	masterKey []byte

	issuer          string
	backupCodeCount int
	qrSize          int
	log             *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer sets the issuer shown in authenticator apps.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithBackupCodeCount sets the number of backup codes issued per enrollment.
func WithBackupCodeCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.backupCodeCount = n
		}
	}
}

// WithQRCodeSize sets the QR image size in pixels.
func WithQRCodeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.qrSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService wires the lifecycle service together. The master key encrypts
// TOTP secrets at rest and must not be empty.
func NewService(store Store, limiter ratelimiter.RateLimiter, creds credential.Repository, masterKey []byte, opts ...Option) (*Service, error) {
	if store == nil || limiter == nil || creds == nil {
		return nil, errors.New("enrollment: store, limiter, and credential repository are required")
	}
	if len(masterKey) == 0 {
		return nil, secrets.ErrEmptyMasterKey
	}

	s := &Service{
		store:           store,
		limiter:         limiter,
		creds:           creds,
		masterKey:       masterKey,
		issuer:          "mfakit",
		backupCodeCount: backupcode.DefaultCount,
		qrSize:          qrcode.DefaultSize,
		log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Begin starts an enrollment: it generates a fresh secret, renders the
// otpauth QR code, and parks everything in a pending session. Nothing is
// persisted until the user proves possession via Verify.
func (s *Service) Begin(ctx context.Context, userID, email string) (*Enrollment, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if email == "" {
		return nil, ErrMissingEmail
	}

	if _, err := s.creds.Get(ctx, userID); err == nil {
		return nil, ErrAlreadyEnrolled
	} else if !errors.Is(err, credential.ErrNotFound) {
		return nil, errors.Join(ErrEnrollmentFailed, err)
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return nil, errors.Join(ErrEnrollmentFailed, err)
	}

	uri, err := totp.URI(totp.KeyParams{
		Secret:      secret,
		AccountName: email,
		Issuer:      s.issuer,
	})
	if err != nil {
		return nil, errors.Join(ErrEnrollmentFailed, err)
	}

	qr, err := qrcode.DataURL(uri, s.qrSize)
	if err != nil {
		return nil, errors.Join(ErrEnrollmentFailed, err)
	}

	session := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     email,
		Secret:    secret,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, session); err != nil {
		return nil, errors.Join(ErrEnrollmentFailed, err)
	}

	s.log.InfoContext(ctx, "enrollment started",
		slog.String("user_id", userID),
		slog.String("session_id", session.ID),
	)

	return &Enrollment{
		SessionID:       session.ID,
		Secret:          secret,
		QRCodeDataURL:   qr,
		ManualEntryCode: manualEntryCode(secret),
	}, nil
}

// Verify checks a code against a pending session. On success the session is
// consumed, the secret is encrypted and persisted together with freshly
// hashed backup codes, and the plaintext codes are returned exactly once.
//
// The per-user rate limit is checked before the code, and a denied attempt
// reports Allowed=false rather than an error so callers can render a
// "too many attempts" state. Verifier failures of any kind count as a wrong
// code; the reason is never surfaced.
func (s *Service) Verify(ctx context.Context, sessionID, code string) (*Verification, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	limit, err := s.limiter.Allow(ctx, limiterKey(session.UserID))
	if err != nil {
		return nil, errors.Join(ErrVerificationFailed, err)
	}
	if !limit.Allowed() {
		s.log.WarnContext(ctx, "enrollment verification rate limited",
			slog.String("user_id", session.UserID),
			slog.Time("reset_at", limit.ResetAt),
		)
		return &Verification{Allowed: false, RemainingAttempts: 0}, nil
	}

	session.Attempts++
	session.LastAttemptAt = time.Now()
	if err := s.store.Update(ctx, session); err != nil {
		// Attempt bookkeeping is best effort; the limiter already counted it.
		s.log.WarnContext(ctx, "failed to record verification attempt",
			slog.String("session_id", session.ID),
			slog.Any("error", err),
		)
	}

	ok, err := totp.Validate(session.Secret, code)
	if err != nil {
		s.log.DebugContext(ctx, "totp validation error treated as failed attempt",
			slog.String("session_id", session.ID),
			slog.Any("error", err),
		)
		ok = false
	}
	if !ok {
		return &Verification{Allowed: false, RemainingAttempts: limit.RemainingAttempts()}, nil
	}

	codes, err := s.completeEnrollment(ctx, session)
	if err != nil {
		return nil, err
	}

	return &Verification{
		Allowed:           true,
		RemainingAttempts: limit.RemainingAttempts(),
		BackupCodes:       codes,
	}, nil
}

// completeEnrollment consumes the session and persists the credential.
func (s *Service) completeEnrollment(ctx context.Context, session *Session) ([]string, error) {
	encrypted, err := secrets.EncryptString(s.masterKey, session.Secret)
	if err != nil {
		return nil, errors.Join(ErrVerificationFailed, err)
	}

	codes, err := backupcode.Generate(s.backupCodeCount)
	if err != nil {
		return nil, errors.Join(ErrVerificationFailed, err)
	}
	hashes := make([]string, len(codes))
	for i, code := range codes {
		if hashes[i], err = backupcode.Hash(code); err != nil {
			return nil, errors.Join(ErrVerificationFailed, err)
		}
	}

	if err := s.creds.Save(ctx, &credential.Credential{
		UserID:           session.UserID,
		EncryptedSecret:  encrypted,
		BackupCodeHashes: hashes,
		EnabledAt:        time.Now(),
	}); err != nil {
		return nil, errors.Join(ErrVerificationFailed, err)
	}

	if err := s.store.Delete(ctx, session.ID); err != nil {
		s.log.WarnContext(ctx, "failed to delete consumed session",
			slog.String("session_id", session.ID),
			slog.Any("error", err),
		)
	}
	if err := s.limiter.Reset(ctx, limiterKey(session.UserID)); err != nil {
		s.log.WarnContext(ctx, "failed to reset rate limit",
			slog.String("user_id", session.UserID),
			slog.Any("error", err),
		)
	}

	s.log.InfoContext(ctx, "enrollment completed",
		slog.String("user_id", session.UserID),
		slog.String("session_id", session.ID),
	)

	return codes, nil
}

// VerifyLogin checks a TOTP code against the user's enrolled credential, the
// post-enrollment path used at sign-in. It shares the per-user rate limit
// with Verify and resets it on success.
func (s *Service) VerifyLogin(ctx context.Context, userID, code string) (*Verification, error) {
	cred, err := s.creds.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, errors.Join(ErrVerificationFailed, err)
	}

	limit, err := s.limiter.Allow(ctx, limiterKey(userID))
	if err != nil {
		return nil, errors.Join(ErrVerificationFailed, err)
	}
	if !limit.Allowed() {
		return &Verification{Allowed: false, RemainingAttempts: 0}, nil
	}

	secret, err := secrets.DecryptString(s.masterKey, cred.EncryptedSecret)
	if err != nil {
		// A credential that no longer decrypts is a server-side fault, not a
		// wrong code; do not mask it as a failed attempt.
		return nil, errors.Join(ErrVerificationFailed, err)
	}

	ok, err := totp.Validate(secret, code)
	if err != nil {
		ok = false
	}
	if !ok {
		return &Verification{Allowed: false, RemainingAttempts: limit.RemainingAttempts()}, nil
	}

	if err := s.limiter.Reset(ctx, limiterKey(userID)); err != nil {
		s.log.WarnContext(ctx, "failed to reset rate limit",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}

	return &Verification{Allowed: true, RemainingAttempts: limit.RemainingAttempts()}, nil
}

// Recover burns a backup code. Each code works once: the matched hash is
// removed from the stored set.
func (s *Service) Recover(ctx context.Context, userID, code string) (*Recovery, error) {
	cred, err := s.creds.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, errors.Join(ErrVerificationFailed, err)
	}

	limit, err := s.limiter.Allow(ctx, limiterKey(userID))
	if err != nil {
		return nil, errors.Join(ErrVerificationFailed, err)
	}
	if !limit.Allowed() {
		return &Recovery{Allowed: false, RemainingAttempts: 0, RemainingCodes: len(cred.BackupCodeHashes)}, nil
	}

	matched := -1
	for i, hash := range cred.BackupCodeHashes {
		if backupcode.Verify(code, hash) {
			matched = i
			break
		}
	}
	if matched < 0 {
		return &Recovery{
			Allowed:           false,
			RemainingAttempts: limit.RemainingAttempts(),
			RemainingCodes:    len(cred.BackupCodeHashes),
		}, nil
	}

	remaining := make([]string, 0, len(cred.BackupCodeHashes)-1)
	remaining = append(remaining, cred.BackupCodeHashes[:matched]...)
	remaining = append(remaining, cred.BackupCodeHashes[matched+1:]...)
	if err := s.creds.ReplaceBackupCodeHashes(ctx, userID, remaining); err != nil {
		return nil, errors.Join(ErrVerificationFailed, err)
	}

	if err := s.limiter.Reset(ctx, limiterKey(userID)); err != nil {
		s.log.WarnContext(ctx, "failed to reset rate limit",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}

	s.log.InfoContext(ctx, "backup code used",
		slog.String("user_id", userID),
		slog.Int("remaining_codes", len(remaining)),
	)

	return &Recovery{
		Allowed:           true,
		RemainingAttempts: limit.RemainingAttempts(),
		RemainingCodes:    len(remaining),
	}, nil
}

// Disable removes the user's credential, turning two-factor off.
func (s *Service) Disable(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if err := s.creds.Delete(ctx, userID); err != nil {
		return errors.Join(ErrVerificationFailed, err)
	}
	s.log.InfoContext(ctx, "two-factor disabled", slog.String("user_id", userID))
	return nil
}

func limiterKey(userID string) string {
	return "2fa:verify:" + userID
}

// manualEntryCode groups the secret into 4-character blocks for users typing
// it into an authenticator app by hand.
func manualEntryCode(secret string) string {
	var sb strings.Builder
	sb.Grow(len(secret) + len(secret)/4)
	for i, r := range secret {
		if i > 0 && i%4 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
