// Package secrets encrypts TOTP secrets for storage at rest.
//
// The scheme is AES-256-GCM under a key derived with PBKDF2-SHA256 (100,000
// iterations) from the application master key and a fresh 64-byte salt. The
// output is a single base64 blob laid out as
//
//	salt(64) || iv(16) || ciphertext || tag(16)
//
// so decryption needs nothing beyond the blob and the master key. Decryption
// fails closed: a wrong key, truncated input, or any flipped byte is caught
// by the GCM authentication tag and surfaces as an error, never as garbage
// plaintext.
//
// # Usage
//
//	key, _ := secrets.DecodeMasterKey(cfg.MasterKey)
//	enc, _ := secrets.EncryptString(key, totpSecret)
//	dec, _ := secrets.DecryptString(key, enc)
//
// Errors wrap package sentinels (ErrDecryptionFailed, ErrInvalidCiphertext,
// ...) and are comparable with errors.Is.
package secrets
