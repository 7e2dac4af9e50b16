// Package config loads, normalizes, and validates dit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DIT_API_TOKEN and DIT_NTFY_TOPIC. The Config type centralizes every knob the
// daemon and CLI need, from keyer speed bounds to API rate limits.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
