// Package credential persists enrolled two-factor credentials: the encrypted
// TOTP secret and the bcrypt hashes of unused backup codes.
//
// Storage goes through the Repository interface. MemoryRepository serves
// tests and single-instance setups; PostgresRepository is the production
// backend, with its schema managed by embedded goose migrations.
package credential
