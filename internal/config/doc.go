// Package config loads, normalizes, and validates tracksel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// JELLYFIN_API_KEY. Track kinds listed in the preferences section are decoded
// through track.Kind's text unmarshaller, so a typo such as "subtitle" fails
// the load instead of being ignored.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, normalized language lists, and clear validation errors.
package config
