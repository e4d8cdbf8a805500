package surface

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Blurs wider than this are computed on a downscaled layer; a 200px canvas
// shadow would otherwise need a kernel of several hundred taps per pixel.
const maxDirectSigma = 6.0

// glowSigma converts a canvas shadowBlur value to a Gaussian deviation.
func glowSigma(blur float64) float64 {
	return blur / 2
}

// glowImage builds the shadow of a rendered shape: the shape's coverage,
// tinted with c, multiplied by c's alpha and blurred.
func glowImage(shape image.Image, c Color, blur float64) *image.NRGBA {
	b := shape.Bounds()
	tinted := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	_, _, _, ca := c.Floats()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			_, _, _, a := shape.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := tinted.PixOffset(x, y)
			tinted.Pix[i+0] = c.R
			tinted.Pix[i+1] = c.G
			tinted.Pix[i+2] = c.B
			tinted.Pix[i+3] = uint8(math.Round(float64(a) / 0xffff * ca * 255))
		}
	}

	sigma := glowSigma(blur)
	if sigma <= 0 {
		return tinted
	}
	if sigma <= maxDirectSigma {
		return imaging.Blur(tinted, sigma)
	}

	factor := sigma / maxDirectSigma
	w := max(1, int(float64(b.Dx())/factor))
	h := max(1, int(float64(b.Dy())/factor))
	small := imaging.Resize(tinted, w, h, imaging.Box)
	small = imaging.Blur(small, maxDirectSigma)
	return imaging.Resize(small, b.Dx(), b.Dy(), imaging.Linear)
}
