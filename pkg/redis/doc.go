// Package redis connects to a Redis server with startup retries and exposes
// a ping-based healthcheck. The returned go-redis client backs the shared
// session store and rate limiter in multi-replica deployments.
package redis
