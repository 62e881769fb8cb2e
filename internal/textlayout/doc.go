// Package textlayout breaks text into lines that fit a pixel width and
// positions the resulting blocks on a frame.
//
// Wrapping is greedy and rune-granular: CJK voice lines have no spaces to
// break on, so the engine measures the whole candidate line after every rune
// and starts a new line as soon as the measured width would exceed the limit.
// Measurement is delegated to a Face, which the font provider implements with
// real glyph metrics and tests implement with fixed advances.
package textlayout
