// Package config loads, normalizes, and validates the TOML configuration file
// that drives every dashrip command.
//
// Load resolves the config path (explicit flag, then the user config dir, then
// a project-local file), merges the file over the repository defaults, expands
// all path fields, and validates the result so downstream code never has to
// re-check basic invariants.
package config
