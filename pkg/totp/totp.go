package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// Digits is the number of digits in a generated code (RFC 6238 default).
	Digits = 6
	// Period is the code validity window in seconds (RFC 6238 default).
	Period = 30
	// Algorithm is the HMAC algorithm advertised in otpauth URIs.
	Algorithm = "SHA1"

	// secretLen is 160 bits, the RFC 4226 recommended secret size.
	secretLen = 20
)

var (
	// secretRe matches an unpadded or padded Base32 secret.
	secretRe = regexp.MustCompile(`^[A-Z2-7]+=*$`)
	codeRe   = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, Digits))

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// GenerateSecret returns a new random Base32-encoded TOTP secret.
func GenerateSecret() (string, error) {
	buf := make([]byte, secretLen)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrSecretGeneration, err)
	}
	return b32.EncodeToString(buf), nil
}

// KeyParams describes an enrollment for otpauth URI construction.
type KeyParams struct {
	Secret      string // Base32-encoded secret (required)
	AccountName string // user identifier shown in the authenticator app (required)
	Issuer      string // service name shown in the authenticator app (required)
}

// Validate reports whether the parameters are complete and well formed.
func (p KeyParams) Validate() error {
	switch {
	case p.Secret == "":
		return ErrMissingSecret
	case !secretRe.MatchString(p.Secret):
		return ErrInvalidSecret
	case p.AccountName == "":
		return ErrMissingAccountName
	case p.Issuer == "":
		return ErrMissingIssuer
	}
	return nil
}

// URI builds a Key Uri Format string understood by authenticator apps:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func URI(p KeyParams) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("secret", p.Secret)
	q.Set("issuer", p.Issuer)
	q.Set("algorithm", Algorithm)
	q.Set("digits", fmt.Sprintf("%d", Digits))
	q.Set("period", fmt.Sprintf("%d", Period))

	label := fmt.Sprintf("%s:%s", url.PathEscape(p.Issuer), url.PathEscape(p.AccountName))
	return fmt.Sprintf("otpauth://totp/%s?%s", label, q.Encode()), nil
}

// Validate checks a user-supplied code against the secret, accepting the
// previous, current, and next time step to tolerate clock drift.
func Validate(secret, code string) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !codeRe.MatchString(code) {
		return false, ErrInvalidCode
	}

	step := time.Now().Unix() / Period
	for offset := int64(-1); offset <= 1; offset++ {
		if fmt.Sprintf("%0*d", Digits, hotp(key, step+offset)) == code {
			return true, nil
		}
	}
	return false, nil
}

// Code returns the TOTP code for the current time step.
func Code(secret string) (string, error) {
	return CodeAt(secret, time.Now())
}

// CodeAt returns the TOTP code for the time step containing t.
// Useful in tests and for generating codes for a specific moment.
func CodeAt(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", Digits, hotp(key, t.Unix()/Period)), nil
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	if !secretRe.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := b32.DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

// hotp computes the RFC 4226 HMAC-based one-time password for a counter.
func hotp(key []byte, counter int64) int {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: low 4 bits of the last byte pick the offset,
	// the MSB is cleared to keep the extracted value positive.
	off := sum[len(sum)-1] & 0x0f
	v := binary.BigEndian.Uint32(sum[off:off+4]) & 0x7fffffff

	return int(v) % int(math.Pow10(Digits))
}
