package enrollment

import "errors"

var (
	ErrSessionNotFound    = errors.New("enrollment session not found")
	ErrSessionExpired     = errors.New("enrollment session expired")
	ErrInvalidSession     = errors.New("invalid enrollment session")
	ErrAlreadyEnrolled    = errors.New("two-factor authentication already enabled")
	ErrNotEnrolled        = errors.New("two-factor authentication not enabled")
	ErrMissingUserID      = errors.New("missing user ID")
	ErrMissingEmail       = errors.New("missing email")
	ErrEnrollmentFailed   = errors.New("failed to start enrollment")
	ErrVerificationFailed = errors.New("failed to verify enrollment")
)
