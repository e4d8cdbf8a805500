package surface

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// foglemanRasterizer paints with fogleman/gg, whose Context exposes the
// backing *image.RGBA directly.
type foglemanRasterizer struct {
	dc *gg.Context
	im *image.RGBA
}

func newFogleman(width, height int) (rasterizer, error) {
	dc := gg.NewContext(width, height)
	im, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("unexpected backing image %T", dc.Image())
	}
	return &foglemanRasterizer{dc: dc, im: im}, nil
}

func (r *foglemanRasterizer) size() (int, int) {
	return r.dc.Width(), r.dc.Height()
}

func (r *foglemanRasterizer) fill(path *Path, p Paint) error {
	switch v := p.(type) {
	case Solid:
		r.dc.SetColor(stdColor(v.Color))
	case *RadialGradient:
		grad := gg.NewRadialGradient(v.CX, v.CY, v.R0, v.CX, v.CY, v.R1)
		for _, s := range v.Stops {
			grad.AddColorStop(s.Offset, stdColor(s.Color))
		}
		r.dc.SetFillStyle(grad)
	default:
		return fmt.Errorf("unsupported paint %T", p)
	}
	r.dc.NewSubPath()
	path.replay(r.dc)
	r.dc.Fill()
	return nil
}

func (r *foglemanRasterizer) stroke(path *Path, width float64, c Color) error {
	r.dc.SetColor(stdColor(c))
	r.dc.SetLineWidth(width)
	r.dc.NewSubPath()
	path.replay(r.dc)
	r.dc.Stroke()
	return nil
}

func (r *foglemanRasterizer) pixels() ([]byte, error) {
	return r.im.Pix, nil
}

func (r *foglemanRasterizer) snapshot() (image.Image, error) {
	out := image.NewRGBA(r.im.Bounds())
	copy(out.Pix, r.im.Pix)
	return out, nil
}

func (r *foglemanRasterizer) drawScaled(src image.Image, sr image.Rectangle, dst Rect, alpha float64) error {
	dr := dst.Bounds()
	if dr.Empty() {
		return nil
	}
	scaled := image.NewRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), src, sr, xdraw.Src, nil)

	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(alpha * 255))})
	xdraw.DrawMask(r.im, dr, scaled, image.Point{}, mask, image.Point{}, xdraw.Over)
	return nil
}

func (r *foglemanRasterizer) composite(img image.Image, at image.Point) error {
	r.dc.DrawImage(img, at.X, at.Y)
	return nil
}

func (r *foglemanRasterizer) layer(width, height int) (rasterizer, error) {
	return newFogleman(width, height)
}

func stdColor(c Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(clamp01(c.A) * 255))}
}
