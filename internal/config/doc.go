// Package config loads, normalizes, and validates voicereel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VOICEREEL_FFMPEG, VOICEREEL_FFPROBE and VOICEREEL_FONT_DIR. Each
// [[characters]] entry is one export job; fields it leaves empty are filled
// from the defaults of its layout profile so downstream code never has to
// guess audio patterns, voice table formats, or segment timing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
