// Package twofactor is the JSON-over-HTTP surface of the two-factor
// credential lifecycle: enrollment, verification, login checks, backup-code
// recovery, and disabling. Outward error messages are deliberately generic;
// causes are logged server-side only.
package twofactor
