package secrets

import "errors"

var (
	ErrEmptyMasterKey      = errors.New("master key is empty")
	ErrInvalidMasterKey    = errors.New("invalid master key encoding")
	ErrKeyGenerationFailed = errors.New("failed to generate master key")
	ErrEncryptionFailed    = errors.New("encryption failed")
	ErrDecryptionFailed    = errors.New("decryption failed")
	ErrInvalidCiphertext   = errors.New("invalid ciphertext format")
)
