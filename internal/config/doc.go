// Package config loads, normalizes, and validates orchard configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from ~/.config/orchard/config.toml or a
// project-local orchard.toml. The Config type centralizes every knob the CLI
// needs, so archive locations, worker counts, and matching thresholds are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
