// Package config loads converter configuration from environment variables
// and carries build-time version information injected via -ldflags.
package config
