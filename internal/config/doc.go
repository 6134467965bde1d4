// Package config loads, normalizes, and validates drawdiff configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the DRAWDIFF_PDFDIFF environment
// override for the comparison tool. The Config type centralizes every knob the
// CLI and the comparison runner need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
