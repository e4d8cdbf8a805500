package sky

import (
	"github.com/cwbudde/nightsky/internal/surface"
)

const cloudGlow = 200

// drawClouds fills a few translucent grey blobs bounded by quadratic
// curves, each with a wide glow of its own color.
func drawClouds(sc *Scene) (int, error) {
	n := intn(sc.Rand, 1, 4)
	for i := 0; i < n; i++ {
		if err := drawCloud(sc); err != nil {
			return i, err
		}
	}
	return n, nil
}

func drawCloud(sc *Scene) error {
	r := sc.Rand
	w, h := float64(sc.width()), float64(sc.height())

	g := channel(r, 0, 50)
	c := surface.RGBA(g, g, g, uniform(r, 0.01, 0.08))

	point := func() (float64, float64) {
		return uniform(r, -0.5*w, 1.5*w), uniform(r, -0.5*h, 1.5*h)
	}

	sx, sy := point()
	path := surface.NewPath().MoveTo(sx, sy)
	m := intn(r, 1, 3)
	for j := 0; j < m; j++ {
		cx, cy := point()
		px, py := point()
		path.QuadTo(cx, cy, px, py)
	}
	cx, cy := point()
	path.QuadTo(cx, cy, sx, sy).Close()

	sc.Surface.SetGlow(c, cloudGlow)
	err := sc.Surface.FillPath(path, surface.Solid{Color: c})
	sc.Surface.SetGlow(c, 0)
	return err
}
