// Package enrollment drives the two-factor authentication credential
// lifecycle: the enrollment handshake, code verification, backup-code
// recovery, and disabling.
//
// # Enrollment Handshake
//
// Begin generates a fresh TOTP secret and parks it in a pending Session. The
// session moves through a small state machine:
//
//	Active ──verify ok──▶ Consumed (deleted, credential persisted)
//	   │──TTL passes────▶ Expired  (deleted by sweep or on read)
//	   └──limit hit─────▶ RateLimited (attempts denied until the window resets)
//
// Nothing touches durable storage until the user proves possession of the
// secret; only then is it encrypted under the master key and saved together
// with bcrypt-hashed backup codes. The plaintext backup codes appear in
// exactly one Verification result and are not recoverable afterwards.
//
// # Storage Backends
//
// Pending sessions live behind the Store interface. MemoryStore is a bounded
// process-local map (capacity eviction, background sweep) for tests and
// single-instance deployments; RedisStore shares sessions across replicas
// with expiry enforced by key TTLs. The per-user attempt limit comes from
// pkg/ratelimiter and is injected the same way.
//
// # Error Discipline
//
// A wrong code, a malformed code, and an internally failing verifier all
// produce the same Allowed=false outcome so that responses leak nothing about
// the failure. Rate limiting is likewise reported as a result, not an error.
// Errors are reserved for missing/expired sessions and infrastructure
// failures.
package enrollment
