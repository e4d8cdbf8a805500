package sky

import (
	"fmt"
	"math"

	"github.com/cwbudde/nightsky/internal/surface"
)

// Kind selects the drawing recipe for a Point.
type Kind int

const (
	Small Kind = iota
	Big
	FlatSmall
	FlatBig
)

func (k Kind) String() string {
	switch k {
	case Small:
		return "small"
	case Big:
		return "big"
	case FlatSmall:
		return "flat-small"
	case FlatBig:
		return "flat-big"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Point is a star position together with its recipe.
type Point struct {
	X, Y float64
	Kind Kind
}

// Draw paints the point onto the scene surface.
func (p Point) Draw(sc *Scene) error {
	switch p.Kind {
	case Small:
		return drawSmall(sc, p.X, p.Y)
	case Big:
		return drawBig(sc, p.X, p.Y)
	case FlatSmall:
		return drawFlat(sc, p.X, p.Y, false)
	case FlatBig:
		return drawFlat(sc, p.X, p.Y, true)
	default:
		return fmt.Errorf("unknown point kind %v", p.Kind)
	}
}

// drawSmall is a tiny square surrounded by a 1px glow of its own color.
func drawSmall(sc *Scene, x, y float64) error {
	r := sc.Rand
	c := surface.RGB(channel(r, 150, 255), channel(r, 150, 255), channel(r, 150, 255))
	size := uniform(r, 0.1, 1.9)

	sc.Surface.SetGlow(c, 1)
	err := sc.Surface.FillRect(x, y, size, size, surface.Solid{Color: c})
	sc.Surface.SetGlow(c, 0)
	return err
}

// drawBig fills a square with a radial gradient fading to transparent at
// its inscribed circle. With a Branch lens, half of the stars also get a
// spike polygon filled with the same gradient.
func drawBig(sc *Scene, x, y float64) error {
	r := sc.Rand
	size := uniform(r, 2, 6)
	center := surface.RGB(channel(r, 200, 255), channel(r, 200, 255), channel(r, 200, 255))
	middle := surface.RGBA(channel(r, 150, 255), channel(r, 150, 255), channel(r, 150, 255), 0.5)

	branch, lens := sc.Lens.(Branch)
	inner := 0.8 * size
	if lens {
		inner = 0.01 * size
	}
	grad := starGradient(x, y, inner, size, center, middle)

	flare := false
	spike := 0.0
	if lens {
		flare = r.Intn(2) == 0
		if flare {
			spike = uniform(r, 0.5, 3)
		}
	}

	if err := sc.Surface.FillRect(x-size, y-size, 2*size, 2*size, grad); err != nil {
		return err
	}
	if !flare {
		return nil
	}
	return sc.Surface.FillPath(spikePath(x, y, size, spike, branch.N), grad)
}

func starGradient(x, y, r0, r1 float64, center, middle surface.Color) *surface.RadialGradient {
	return surface.NewRadialGradient(x, y, r0, r1).
		AddStop(0, center).
		AddStop(0.5, middle).
		AddStop(1, surface.Transparent)
}

// spikePath returns a star polygon with n tips at radius r, the first one
// straight up. Inner vertices sit halfway between tips at in*√2, so for
// four branches they land on (x±in, y±in).
func spikePath(x, y, r, in float64, n int) *surface.Path {
	p := surface.NewPath()
	step := math.Pi / float64(n)
	for i := 0; i < 2*n; i++ {
		angle := -math.Pi/2 + float64(i)*step
		radius := r
		if i%2 == 1 {
			radius = in * math.Sqrt2
		}
		px := x + radius*math.Cos(angle)
		py := y + radius*math.Sin(angle)
		if i == 0 {
			p.MoveTo(px, py)
		} else {
			p.LineTo(px, py)
		}
	}
	return p.Close()
}

// drawFlat fills a plain square without glow.
func drawFlat(sc *Scene, x, y float64, big bool) error {
	r := sc.Rand
	c := surface.RGB(channel(r, 150, 255), channel(r, 150, 255), channel(r, 150, 255))
	size := 5.0
	if !big {
		size = uniform(r, 0.1, 1.9)
	}
	return sc.Surface.FillRect(x, y, size, size, surface.Solid{Color: c})
}
