// Package config loads, normalizes, and validates the TOML configuration for
// the reelsync daemon and CLI.
package config
