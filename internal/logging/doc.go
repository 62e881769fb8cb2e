// Package logging assembles structured slog loggers and formatting helpers used
// across voicereel.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run IDs, character IDs, and stages. The console handler lifts
// those fields into a bracketed header so a batch export stays readable when
// several characters interleave. A no-op logger is provided for tests and
// wiring code that cannot fail.
package logging
