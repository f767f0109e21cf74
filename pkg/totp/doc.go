// Package totp implements the RFC 4226 / RFC 6238 one-time-password
// algorithms used for two-factor authentication enrollment and verification.
//
// The package covers secret key creation, otpauth URI construction compatible
// with Google Authenticator, 1Password and similar apps, and code
// generation/validation with a ±1 time-step tolerance for clock drift.
//
// # Usage
//
//	secret, _ := totp.GenerateSecret()
//
//	uri, _ := totp.URI(totp.KeyParams{
//	    Secret:      secret,
//	    AccountName: "alice@example.com",
//	    Issuer:      "Acme",
//	})
//
//	ok, _ := totp.Validate(secret, "123456")
//
// # Error Handling
//
// Exported functions return sentinel errors (ErrInvalidSecret, ErrInvalidCode,
// ...) that can be inspected with errors.Is. Validate returns (false, nil) for
// a well-formed code that simply does not match; callers that must not leak
// failure reasons should collapse any error into a plain rejection.
package totp
