package compositor

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// SoftMask returns a width x height mask that is opaque inside region and
// transparent elsewhere, with the boundary feathered by a Gaussian blur of
// the given sigma. A non-positive sigma yields a hard mask.
func SoftMask(width, height int, region image.Rectangle, sigma float64) *image.Alpha {
	bounds := image.Rect(0, 0, width, height)
	hard := image.NewGray(bounds)
	draw.Draw(hard, region.Intersect(bounds), image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)

	mask := image.NewAlpha(bounds)
	if sigma <= 0 {
		copy(mask.Pix, hard.Pix)
		return mask
	}

	blurred := imaging.Blur(hard, sigma)
	for y := 0; y < height; y++ {
		src := blurred.Pix[y*blurred.Stride : y*blurred.Stride+width*4]
		dst := mask.Pix[y*mask.Stride : y*mask.Stride+width]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return mask
}
