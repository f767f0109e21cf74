package twofactor

// EnrollRequest starts an enrollment for a user.
type EnrollRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// EnrollResponse carries everything the browser needs to present the secret.
// The secret and manual entry code are shown once and never returned again.
type EnrollResponse struct {
	SessionID       string `json:"session_id"`
	Secret          string `json:"secret"`
	QRCodeDataURL   string `json:"qr_code_data_url"`
	ManualEntryCode string `json:"manual_entry_code"`
}

// VerifyRequest proves possession of the enrolled secret.
type VerifyRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
}

// VerifyResponse reports the attempt outcome. BackupCodes is present only on
// the successful attempt that completes enrollment.
type VerifyResponse struct {
	Allowed           bool     `json:"allowed"`
	RemainingAttempts int      `json:"remaining_attempts"`
	BackupCodes       []string `json:"backup_codes,omitempty"`
}

// LoginRequest checks a TOTP code against an enrolled credential.
type LoginRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

// RecoverRequest burns a single-use backup code.
type RecoverRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

// RecoverResponse reports the recovery outcome and how many codes remain.
type RecoverResponse struct {
	Allowed           bool `json:"allowed"`
	RemainingAttempts int  `json:"remaining_attempts"`
	RemainingCodes    int  `json:"remaining_codes"`
}

// ErrorResponse carries a generic outward-facing message; internal detail
// stays in the logs.
type ErrorResponse struct {
	Error string `json:"error"`
}
