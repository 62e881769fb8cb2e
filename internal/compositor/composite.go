package compositor

import (
	"image"

	"golang.org/x/image/draw"
)

// Composite returns a copy of background with foreground placed at offset.
// Each destination pixel becomes bg*(1-m) + fg*m where m is the mask value
// scaled by the foreground alpha. mask shares the foreground's coordinate
// space; nil means fully opaque. Foreground pixels outside the canvas are
// clipped.
func Composite(background *image.RGBA, foreground image.Image, mask *image.Alpha, offset image.Point) *image.RGBA {
	out := Clone(background)
	if foreground == nil {
		return out
	}

	fb := foreground.Bounds()
	placed := fb.Sub(fb.Min).Add(offset)
	r := placed.Intersect(out.Bounds())
	if r.Empty() {
		return out
	}

	delta := r.Min.Sub(offset)
	sp := fb.Min.Add(delta)
	if mask == nil {
		draw.Draw(out, r, foreground, sp, draw.Over)
		return out
	}
	mp := mask.Bounds().Min.Add(delta)
	draw.DrawMask(out, r, foreground, sp, mask, mp, draw.Over)
	return out
}

// Overlay draws src over dst in place, aligned at dst's origin.
func Overlay(dst *image.RGBA, src image.Image) {
	if dst == nil || src == nil {
		return
	}
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
}

// Clone returns an RGBA copy of src with bounds starting at the origin.
func Clone(src image.Image) *image.RGBA {
	if src == nil {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
	return out
}
