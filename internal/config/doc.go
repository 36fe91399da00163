// Package config loads, normalizes, and validates Murajaah configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MURAJAAH_API_TOKEN. The Config type centralizes every knob the daemon and
// CLI need: storage directories, the API bind address, the external scorer
// endpoint, delivery settings, and group policy defaults.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
