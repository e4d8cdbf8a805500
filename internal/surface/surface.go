package surface

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Surface is the drawing capability the sky generators paint onto.
// Implementations are not safe for concurrent use.
type Surface interface {
	// Width and Height return the pixel dimensions, fixed at creation.
	Width() int
	Height() int

	// FillRect fills an axis-aligned rectangle with the given paint.
	FillRect(x, y, w, h float64, p Paint) error

	// FillPath fills a closed path with the given paint.
	FillPath(path *Path, p Paint) error

	// StrokeLine strokes a single segment with a solid color.
	StrokeLine(x1, y1, x2, y2, width float64, c Color) error

	// ReadPixels returns a copy of the RGBA buffer, row-major, 4 bytes per pixel.
	ReadPixels() ([]byte, error)

	// WritePixels replaces the RGBA buffer. len(pix) must equal Width*Height*4.
	WritePixels(pix []byte) error

	// DrawSelf composites the src region of the current image, scaled to dst,
	// back onto the surface with the given global alpha.
	DrawSelf(src, dst Rect, alpha float64) error

	// SetGlow sets the shadow color and blur radius applied to subsequent
	// fills and strokes. A blur of 0 disables the glow.
	SetGlow(c Color, blur float64)

	// Glow returns the current glow state.
	Glow() (Color, float64)

	// Image returns a snapshot of the surface.
	Image() image.Image
}

// Color is an 8-bit RGB color with a floating point alpha, as used by CSS.
type Color struct {
	R, G, B uint8
	A       float64
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGBA returns a color with the given alpha in [0,1].
func RGBA(r, g, b uint8, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Transparent is fully transparent black.
var Transparent = Color{}

func (c Color) String() string {
	if c.A >= 1 {
		return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%g)", c.R, c.G, c.B, c.A)
}

// Colorful converts the RGB part to a go-colorful color.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// Floats returns the components scaled to [0,1].
func (c Color) Floats() (r, g, b, a float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, clamp01(c.A)
}

// Paint is either a Solid color or a RadialGradient.
type Paint interface {
	isPaint()
}

// Solid paints with a single color.
type Solid struct {
	Color Color
}

func (Solid) isPaint() {}

// Stop is a gradient color stop at a relative offset in [0,1].
type Stop struct {
	Offset float64
	Color  Color
}

// RadialGradient is a concentric gradient around (CX, CY) running from
// radius R0 (offset 0) to R1 (offset 1).
type RadialGradient struct {
	CX, CY float64
	R0, R1 float64
	Stops  []Stop
}

func (*RadialGradient) isPaint() {}

// NewRadialGradient creates a gradient without stops.
func NewRadialGradient(cx, cy, r0, r1 float64) *RadialGradient {
	return &RadialGradient{CX: cx, CY: cy, R0: r0, R1: r1}
}

// AddStop appends a color stop.
func (g *RadialGradient) AddStop(offset float64, c Color) *RadialGradient {
	g.Stops = append(g.Stops, Stop{Offset: offset, Color: c})
	return g
}

// Rect is a floating point rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Bounds converts to an integer rectangle, rounding outwards.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.W)),
		int(math.Ceil(r.Y+r.H)),
	)
}

func finite(vals ...float64) error {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v", ErrNonFinite, v)
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
