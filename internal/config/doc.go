// Package config loads, normalizes, and validates ComicAlive's TOML
// configuration. Defaults live in defaults.go; Load layers a user config file
// over them, expands home-relative paths, and rejects unusable values before
// any pipeline component sees them.
package config
