// Package config loads, normalizes, and validates cuesynth's TOML
// configuration.
//
// Load searches an explicit path, then ~/.config/cuesynth/config.toml, then
// ./cuesynth.toml, and falls back to Default when none exists. Defaults,
// normalization (path expansion and environment fallbacks), and validation
// live in separate files so each concern stays readable.
package config
