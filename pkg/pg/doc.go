// Package pg bootstraps the PostgreSQL layer: a retrying pgx/v5 connection
// pool, goose/v3 schema migrations from an embedded filesystem, a ping-based
// healthcheck, and error helpers for common SQLSTATE checks.
package pg
