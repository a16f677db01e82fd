// Package config loads, normalizes, and validates the pixelpress TOML
// configuration. Load applies repository defaults first, then overlays
// the config file, expands every path field to an absolute path, and
// rejects values the rest of the system cannot interpret. Invalid
// configuration is the only condition surfaced as an error to callers;
// everything downstream treats the returned Config as trustworthy.
package config
