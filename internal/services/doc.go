// Package services defines shared utilities consumed by the render workflow
// and its external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, character job IDs, and stage names
//     for logging.
//   - Structured error markers plus the Wrap helper so callers can tell a
//     missing input apart from an ffmpeg failure with errors.Is.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
