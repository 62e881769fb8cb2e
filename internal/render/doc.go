// Package render produces the still frame shown while a voice line plays.
//
// A Renderer is built once per character from a layout Profile, decoded
// image assets, and a resolved font table. Construction performs the
// expensive work (background resize, blur, and tone adjustment, cover
// overlay, cutout mask) so each RenderText call only composites the
// character at the requested offset and draws the text layer.
package render
