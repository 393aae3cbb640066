// Package config loads, normalizes, and validates marquee configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY and OPENROUTER_API_KEY. The Config type centralizes every knob
// the CLI and import pipeline need: catalog credentials and retry policy,
// cast/crew selection, enrichment service settings, and notification targets.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
