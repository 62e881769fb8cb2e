package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// BackgroundOptions controls backdrop preparation. Brightness and Saturation
// are enhancement factors where 1 leaves the image unchanged; zero values are
// treated as 1.
type BackgroundOptions struct {
	Width      int
	Height     int
	BlurSigma  float64
	Brightness float64
	Saturation float64
}

// Preprocess resizes src to the canvas with Lanczos resampling, blurs it, and
// applies brightness then saturation enhancement.
func Preprocess(src image.Image, opts BackgroundOptions) *image.RGBA {
	img := imaging.Resize(src, opts.Width, opts.Height, imaging.Lanczos)
	if opts.BlurSigma > 0 {
		img = imaging.Blur(img, opts.BlurSigma)
	}

	brightness := factor(opts.Brightness)
	saturation := factor(opts.Saturation)
	if brightness != 1 || saturation != 1 {
		img = imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			r := float64(c.R) * brightness
			g := float64(c.G) * brightness
			b := float64(c.B) * brightness
			if saturation != 1 {
				gray := 0.299*r + 0.587*g + 0.114*b
				r = gray + (r-gray)*saturation
				g = gray + (g-gray)*saturation
				b = gray + (b-gray)*saturation
			}
			return color.NRGBA{R: clamp8(r), G: clamp8(g), B: clamp8(b), A: c.A}
		})
	}
	return Clone(img)
}

// CoverCrop scales src to fill width x height and crops the overflow around
// the center.
func CoverCrop(src image.Image, width, height int) *image.RGBA {
	return Clone(imaging.Fill(src, width, height, imaging.Center, imaging.Lanczos))
}

// Load decodes a PNG or JPEG file.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// LoadNRGBA decodes path and converts it to NRGBA so alpha survives later
// compositing unchanged.
func LoadNRGBA(path string) (*image.NRGBA, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	if n, ok := img.(*image.NRGBA); ok {
		return n, nil
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out, nil
}

// SavePNG writes img to path, replacing the file atomically.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create frame directory: %w", err)
	}
	tmp := filepath.Join(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	if err := imaging.Save(img, tmp, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("encode png %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize png %s: %w", path, err)
	}
	return nil
}

func factor(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
