// Package textutil provides small string helpers shared by the render and
// export paths: filename sanitization for frames and outputs, and display
// normalization for character names.
package textutil
