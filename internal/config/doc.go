// Package config loads, normalizes, and validates mfasrt configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MFA_ROOT_DIR. The Config type centralizes every knob the CLI and pipeline
// need: aligner invocation, karaoke colors, matcher settings and logging.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical colors, and clear validation errors.
package config
