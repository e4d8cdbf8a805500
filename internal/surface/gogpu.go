package surface

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

// gogpuRasterizer paints with the gogpu/gg software renderer.
type gogpuRasterizer struct {
	dc *gg.Context
}

func newGoGPU(width, height int) (rasterizer, error) {
	dc := gg.NewContext(width, height)
	dc.ClearWithColor(gg.Transparent)
	return &gogpuRasterizer{dc: dc}, nil
}

func (r *gogpuRasterizer) size() (int, int) {
	return r.dc.Width(), r.dc.Height()
}

func (r *gogpuRasterizer) fill(path *Path, p Paint) error {
	r.dc.SetFillBrush(gogpuBrush(p))
	path.replay(r.dc)
	return r.dc.Fill()
}

func (r *gogpuRasterizer) stroke(path *Path, width float64, c Color) error {
	r.dc.SetStrokeBrush(gg.Solid(gogpuColor(c)))
	r.dc.SetLineWidth(width)
	path.replay(r.dc)
	return r.dc.Stroke()
}

func (r *gogpuRasterizer) pixels() ([]byte, error) {
	if err := r.dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}
	return r.dc.ResizeTarget().Data(), nil
}

func (r *gogpuRasterizer) snapshot() (image.Image, error) {
	err := r.dc.FlushGPU()
	if err != nil {
		err = fmt.Errorf("flush: %w", err)
	}
	return r.dc.Image(), err
}

// drawScaled upscales on the CPU first: the software image pattern samples
// the nearest pixel whatever interpolation is requested.
func (r *gogpuRasterizer) drawScaled(src image.Image, sr image.Rectangle, dst Rect, alpha float64) error {
	dr := dst.Bounds()
	if dr.Empty() {
		return nil
	}
	scaled := image.NewRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), src, sr, xdraw.Src, nil)

	// image buffers are read as straight alpha
	faded := image.NewNRGBA(scaled.Bounds())
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(alpha * 255))})
	xdraw.DrawMask(faded, faded.Bounds(), scaled, image.Point{}, mask, image.Point{}, xdraw.Src)

	return r.composite(faded, dr.Min)
}

func (r *gogpuRasterizer) composite(img image.Image, at image.Point) error {
	r.dc.DrawImage(gg.ImageBufFromImage(img), float64(at.X), float64(at.Y))
	return nil
}

func (r *gogpuRasterizer) layer(width, height int) (rasterizer, error) {
	return newGoGPU(width, height)
}

func gogpuColor(c Color) gg.RGBA {
	r, g, b, a := c.Floats()
	return gg.RGBA2(r, g, b, a)
}

func gogpuBrush(p Paint) gg.Brush {
	switch v := p.(type) {
	case Solid:
		return gg.Solid(gogpuColor(v.Color))
	case *RadialGradient:
		grad := gg.NewRadialGradientBrush(v.CX, v.CY, v.R0, v.R1)
		for _, s := range v.Stops {
			grad.AddColorStop(s.Offset, gogpuColor(s.Color))
		}
		return grad
	default:
		return gg.Solid(gg.Transparent)
	}
}
