package surface

import (
	"image"
	"math"
)

// Verb identifies a path segment.
type Verb int

const (
	MoveTo Verb = iota
	LineTo
	QuadTo
	Close
)

// Segment is a single path command. Quadratic segments carry their control
// point in CX, CY.
type Segment struct {
	Verb   Verb
	X, Y   float64
	CX, CY float64
}

// Path is a sequence of drawing commands in surface coordinates.
type Path struct {
	Segments []Segment
}

// NewPath returns an empty path.
func NewPath() *Path {
	return &Path{}
}

func (p *Path) MoveTo(x, y float64) *Path {
	p.Segments = append(p.Segments, Segment{Verb: MoveTo, X: x, Y: y})
	return p
}

func (p *Path) LineTo(x, y float64) *Path {
	p.Segments = append(p.Segments, Segment{Verb: LineTo, X: x, Y: y})
	return p
}

func (p *Path) QuadTo(cx, cy, x, y float64) *Path {
	p.Segments = append(p.Segments, Segment{Verb: QuadTo, X: x, Y: y, CX: cx, CY: cy})
	return p
}

func (p *Path) Close() *Path {
	p.Segments = append(p.Segments, Segment{Verb: Close})
	return p
}

// RectPath returns the closed outline of a rectangle.
func RectPath(x, y, w, h float64) *Path {
	return NewPath().
		MoveTo(x, y).
		LineTo(x+w, y).
		LineTo(x+w, y+h).
		LineTo(x, y+h).
		Close()
}

// Bounds returns the rectangle enclosing every point and control point.
// Bezier curves stay inside the hull of their control points, so this is
// a conservative bound.
func (p *Path) Bounds() Rect {
	if len(p.Segments) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(x, y float64) {
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	for _, s := range p.Segments {
		switch s.Verb {
		case MoveTo, LineTo:
			grow(s.X, s.Y)
		case QuadTo:
			grow(s.CX, s.CY)
			grow(s.X, s.Y)
		case Close:
		}
	}
	if math.IsInf(minX, 1) {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func (p *Path) validate() error {
	for _, s := range p.Segments {
		if err := finite(s.X, s.Y, s.CX, s.CY); err != nil {
			return err
		}
	}
	return nil
}

// pathSink is implemented by both rasterizer contexts.
type pathSink interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	ClosePath()
}

func (p *Path) replay(dst pathSink) {
	for _, s := range p.Segments {
		switch s.Verb {
		case MoveTo:
			dst.MoveTo(s.X, s.Y)
		case LineTo:
			dst.LineTo(s.X, s.Y)
		case QuadTo:
			dst.QuadraticTo(s.CX, s.CY, s.X, s.Y)
		case Close:
			dst.ClosePath()
		}
	}
}

// linePath strokes are modelled as open two-point paths.
func linePath(x1, y1, x2, y2 float64) *Path {
	return NewPath().MoveTo(x1, y1).LineTo(x2, y2)
}

func expand(r Rect, margin float64, clip image.Rectangle) image.Rectangle {
	b := Rect{X: r.X - margin, Y: r.Y - margin, W: r.W + 2*margin, H: r.H + 2*margin}.Bounds()
	return b.Intersect(clip)
}
