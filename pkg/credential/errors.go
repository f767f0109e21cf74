package credential

import "errors"

var (
	ErrNotFound          = errors.New("credential not found")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrStorageFailed     = errors.New("credential storage failed")
)
