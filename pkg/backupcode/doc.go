// Package backupcode creates and verifies single-use recovery codes offered
// to users who lose access to their authenticator device.
//
// Codes are 8 characters in two dash-separated groups (XXXX-XXXX), drawn from
// an alphabet that omits visually ambiguous characters. Plaintext codes are
// shown once at enrollment; storage holds only bcrypt hashes, and
// verification goes through bcrypt's constant-time comparison.
package backupcode
