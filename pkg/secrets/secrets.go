package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the per-message PBKDF2 salt length in bytes.
	SaltSize = 64
	// IVSize is the GCM nonce length in bytes.
	IVSize = 16
	// KeySize is the derived AES-256 key length in bytes.
	KeySize = 32
	// Iterations is the PBKDF2-SHA256 iteration count.
	Iterations = 100_000
)

// EncryptString encrypts plaintext under a key derived from masterKey and a
// fresh random salt. The result is one base64 string holding
// salt || iv || ciphertext || tag, so every field needed for decryption
// travels with the blob. Repeated calls over the same input differ because
// both salt and IV are random per call.
func EncryptString(masterKey []byte, plaintext string) (string, error) {
	if len(masterKey) == 0 {
		return "", ErrEmptyMasterKey
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	aead, err := newAEAD(masterKey, salt)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	blob := make([]byte, 0, SaltSize+IVSize+len(plaintext)+aead.Overhead())
	blob = append(blob, salt...)
	blob = append(blob, iv...)
	blob = aead.Seal(blob, iv, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptString reverses EncryptString. It fails closed: malformed input, a
// wrong master key, or any tampered byte yields an error and no plaintext,
// since the GCM tag check rejects the whole message.
func DecryptString(masterKey []byte, encoded string) (string, error) {
	if len(masterKey) == 0 {
		return "", ErrEmptyMasterKey
	}

	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}
	if len(blob) < SaltSize+IVSize {
		return "", ErrInvalidCiphertext
	}

	salt, iv, ciphertext := blob[:SaltSize], blob[SaltSize:SaltSize+IVSize], blob[SaltSize+IVSize:]

	aead, err := newAEAD(masterKey, salt)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	plaintext, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	return string(plaintext), nil
}

// newAEAD derives an AES-256 key from the master key and salt via
// PBKDF2-SHA256 and wraps it in GCM with a 16-byte nonce.
func newAEAD(masterKey, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(masterKey, salt, Iterations, KeySize, sha256.New)
	defer clearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, IVSize)
}

// clearBytes zeros key material once it is no longer needed.
func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
