// Package config loads struct-tagged configuration from environment
// variables via github.com/caarlos0/env, with optional .env support through
// godotenv and per-type caching so every package sees the same values.
package config
