package surface

import (
	"fmt"
	"image"
	"log/slog"
	"math"
)

// rasterizer is the per-library part of a surface. It paints in its own
// pixel space; translation for offscreen layers is handled by canvas.
type rasterizer interface {
	size() (int, int)
	fill(path *Path, p Paint) error
	stroke(path *Path, width float64, c Color) error
	// pixels returns the live RGBA buffer.
	pixels() ([]byte, error)
	snapshot() (image.Image, error)
	drawScaled(src image.Image, sr image.Rectangle, dst Rect, alpha float64) error
	composite(img image.Image, at image.Point) error
	// layer creates a transparent rasterizer of the same kind.
	layer(width, height int) (rasterizer, error)
}

// canvas implements Surface on top of a rasterizer and adds the glow state.
type canvas struct {
	r        rasterizer
	glow     Color
	glowBlur float64
}

func (c *canvas) Width() int {
	w, _ := c.r.size()
	return w
}

func (c *canvas) Height() int {
	_, h := c.r.size()
	return h
}

func (c *canvas) FillRect(x, y, w, h float64, p Paint) error {
	if err := finite(x, y, w, h); err != nil {
		return fmt.Errorf("fill rect: %w", err)
	}
	if err := validatePaint(p); err != nil {
		return fmt.Errorf("fill rect: %w", err)
	}
	path := RectPath(x, y, w, h)
	return c.paint(path, 0, func(r rasterizer, shifted *Path, dx, dy float64) error {
		return r.fill(shifted, translatePaint(p, dx, dy))
	})
}

func (c *canvas) FillPath(path *Path, p Paint) error {
	if path == nil || len(path.Segments) == 0 {
		return nil
	}
	if err := path.validate(); err != nil {
		return fmt.Errorf("fill path: %w", err)
	}
	if err := validatePaint(p); err != nil {
		return fmt.Errorf("fill path: %w", err)
	}
	return c.paint(path, 0, func(r rasterizer, shifted *Path, dx, dy float64) error {
		return r.fill(shifted, translatePaint(p, dx, dy))
	})
}

func (c *canvas) StrokeLine(x1, y1, x2, y2, width float64, col Color) error {
	if err := finite(x1, y1, x2, y2, width); err != nil {
		return fmt.Errorf("stroke line: %w", err)
	}
	// non-positive widths draw a hairline
	if width <= 0 {
		width = 1
	}
	path := linePath(x1, y1, x2, y2)
	return c.paint(path, width/2, func(r rasterizer, shifted *Path, _, _ float64) error {
		return r.stroke(shifted, width, col)
	})
}

// paint draws the glow layer (if any) and then the shape itself.
func (c *canvas) paint(path *Path, extent float64, draw func(r rasterizer, p *Path, dx, dy float64) error) error {
	if c.glowBlur > 0 && c.glow.A > 0 {
		if err := c.paintGlow(path, extent, draw); err != nil {
			return fmt.Errorf("glow: %w", err)
		}
	}
	return draw(c.r, path, 0, 0)
}

func (c *canvas) paintGlow(path *Path, extent float64, draw func(r rasterizer, p *Path, dx, dy float64) error) error {
	w, h := c.r.size()
	margin := math.Ceil(3*glowSigma(c.glowBlur)) + 1 + extent
	area := expand(path.Bounds(), margin, image.Rect(0, 0, w, h))
	if area.Empty() {
		return nil
	}

	layer, err := c.r.layer(area.Dx(), area.Dy())
	if err != nil {
		return err
	}
	dx, dy := -float64(area.Min.X), -float64(area.Min.Y)
	if err := draw(layer, path.Translate(dx, dy), dx, dy); err != nil {
		return err
	}

	shape, err := layer.snapshot()
	if err != nil {
		return err
	}
	shadow := glowImage(shape, c.glow, c.glowBlur)
	return c.r.composite(shadow, area.Min)
}

func (c *canvas) ReadPixels() ([]byte, error) {
	live, err := c.r.pixels()
	if err != nil {
		return nil, fmt.Errorf("read pixels: %w", err)
	}
	out := make([]byte, len(live))
	copy(out, live)
	return out, nil
}

func (c *canvas) WritePixels(pix []byte) error {
	live, err := c.r.pixels()
	if err != nil {
		return fmt.Errorf("write pixels: %w", err)
	}
	if len(pix) != len(live) {
		return fmt.Errorf("%w: buffer has %d bytes, want %d", ErrInvalidDimensions, len(pix), len(live))
	}
	copy(live, pix)
	return nil
}

func (c *canvas) DrawSelf(src, dst Rect, alpha float64) error {
	if err := finite(src.X, src.Y, src.W, src.H, dst.X, dst.Y, dst.W, dst.H, alpha); err != nil {
		return fmt.Errorf("draw self: %w", err)
	}
	if alpha <= 0 {
		return nil
	}
	snap, err := c.r.snapshot()
	if err != nil {
		return fmt.Errorf("draw self: %w", err)
	}
	sr := src.Bounds().Intersect(snap.Bounds())
	if sr.Empty() || dst.W <= 0 || dst.H <= 0 {
		return nil
	}
	return c.r.drawScaled(snap, sr, dst, clamp01(alpha))
}

func (c *canvas) SetGlow(col Color, blur float64) {
	if math.IsNaN(blur) || blur < 0 {
		blur = 0
	}
	c.glow = col
	c.glowBlur = blur
}

func (c *canvas) Glow() (Color, float64) {
	return c.glow, c.glowBlur
}

// Image returns a copy of the current pixels. A failed flush is logged and
// the last completed frame is returned.
func (c *canvas) Image() image.Image {
	img, err := c.r.snapshot()
	if err != nil {
		slog.Error("Failed to flush surface", "error", err)
	}
	return img
}

// Translate returns a copy of the path shifted by (dx, dy).
func (p *Path) Translate(dx, dy float64) *Path {
	out := &Path{Segments: make([]Segment, len(p.Segments))}
	for i, s := range p.Segments {
		s.X += dx
		s.Y += dy
		s.CX += dx
		s.CY += dy
		out.Segments[i] = s
	}
	return out
}

func translatePaint(p Paint, dx, dy float64) Paint {
	if dx == 0 && dy == 0 {
		return p
	}
	switch v := p.(type) {
	case Solid:
		return v
	case *RadialGradient:
		g := *v
		g.CX += dx
		g.CY += dy
		return &g
	default:
		return p
	}
}

func validatePaint(p Paint) error {
	switch v := p.(type) {
	case Solid:
		return nil
	case *RadialGradient:
		if v == nil {
			return fmt.Errorf("nil gradient")
		}
		if err := finite(v.CX, v.CY, v.R0, v.R1); err != nil {
			return err
		}
		for _, s := range v.Stops {
			if s.Offset < 0 || s.Offset > 1 {
				return fmt.Errorf("gradient stop offset %v outside [0,1]", s.Offset)
			}
		}
		return nil
	case nil:
		return fmt.Errorf("nil paint")
	default:
		return fmt.Errorf("unsupported paint %T", p)
	}
}
