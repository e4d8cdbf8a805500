package sky

import (
	"math"

	"github.com/cwbudde/nightsky/internal/surface"
)

const (
	galaxyOverhang = 100
	galaxyStrokes  = 20
	galaxyStep     = 10
)

// Band is the straight line a galaxy is drawn along. Its endpoints lie
// outside the surface so the band crosses it edge to edge.
type Band struct {
	X1, Y1, X2, Y2 float64
	// Horizontal is true when the band runs from the left edge to the right.
	Horizontal bool
}

// Length returns the distance between the endpoints.
func (b Band) Length() float64 {
	return math.Hypot(b.X2-b.X1, b.Y2-b.Y1)
}

// At returns the point at fraction t along the band.
func (b Band) At(t float64) (float64, float64) {
	return b.X1 + t*(b.X2-b.X1), b.Y1 + t*(b.Y2-b.Y1)
}

// chooseBand picks the galaxy direction. Taller surfaces favour a
// horizontal band: left to right with probability h/(h+w).
func chooseBand(sc *Scene) Band {
	r := sc.Rand
	w, h := float64(sc.width()), float64(sc.height())
	if r.Float64() < h/(h+w) {
		return Band{
			X1: -galaxyOverhang, Y1: uniform(r, 0, h),
			X2: w + galaxyOverhang, Y2: uniform(r, 0, h),
			Horizontal: true,
		}
	}
	return Band{
		X1: uniform(r, 0, w), Y1: -galaxyOverhang,
		X2: uniform(r, 0, w), Y2: h + galaxyOverhang,
	}
}

// drawGalaxy strokes a stack of faint, progressively wider lines along a
// random band and scatters flat small stars around it. It returns the
// number of stars placed.
func drawGalaxy(sc *Scene) (int, error) {
	r := sc.Rand
	band := chooseBand(sc)

	haze := surface.RGBA(channel(r, 150, 255), channel(r, 150, 255), channel(r, 150, 255), uniform(r, 0.005, 0.01))
	for i := 0; i < galaxyStrokes; i++ {
		width := float64(i * galaxyStep)
		if err := sc.Surface.StrokeLine(band.X1, band.Y1, band.X2, band.Y2, width, haze); err != nil {
			return 0, err
		}
	}

	length := band.Length()
	nb := int(math.Floor(uniform(r, length/7, length/2)))
	spread := uniform(r, 25, 40)
	for i := 0; i < nb; i++ {
		x, y := band.At(float64(i) / float64(nb))
		x += uniform(r, -spread, spread)
		y += uniform(r, -spread, spread)
		if err := (Point{X: x, Y: y, Kind: FlatSmall}).Draw(sc); err != nil {
			return i, err
		}
	}
	return nb, nil
}
