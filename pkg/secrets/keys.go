package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// GenerateMasterKey creates a new random 32-byte master key.
func GenerateMasterKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrKeyGenerationFailed, err)
	}
	return key, nil
}

// GenerateEncodedMasterKey creates a new master key as a base64 string,
// the form stored in the MFA_MASTER_KEY environment variable.
func GenerateEncodedMasterKey() (string, error) {
	key, err := GenerateMasterKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// DecodeMasterKey decodes a base64 master key from configuration.
func DecodeMasterKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, ErrEmptyMasterKey
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrInvalidMasterKey, err)
	}
	if len(key) == 0 {
		return nil, ErrEmptyMasterKey
	}
	return key, nil
}
