// Package qrcode renders QR code images as PNG bytes or as data-URL strings
// for embedding in web pages, as used by the two-factor enrollment flow to
// present otpauth:// URIs to authenticator apps.
//
// It is a thin wrapper around github.com/skip2/go-qrcode adding input
// validation, a sensible default size, and sentinel errors comparable with
// errors.Is (ErrEmptyContent, ErrGenerationFailed).
package qrcode
