package sky

import (
	"github.com/cwbudde/nightsky/internal/surface"
)

const (
	backgroundAlpha = 230
	hazeStart       = 8
	hazeGrowth      = 4
)

// synthesizeBackground overwrites every pixel with per-pixel noise around
// a random dark base color, then softens it by repeatedly drawing a random
// square of the surface back over the whole surface at low opacity. It
// returns the number of haze passes.
func synthesizeBackground(sc *Scene) (int, error) {
	r := sc.Rand
	pix, err := sc.Surface.ReadPixels()
	if err != nil {
		return 0, err
	}

	base := [3]int{intn(r, 10, 80), intn(r, 10, 80), intn(r, 10, 80)}
	for i := range pix {
		switch (i + 1) % 4 {
		case 0:
			pix[i] = backgroundAlpha
		case 1:
			pix[i] = uint8(intn(r, 0, base[0]))
		case 2:
			pix[i] = uint8(intn(r, 0, base[1]))
		default:
			pix[i] = uint8(intn(r, 0, base[2]))
		}
	}
	if err := sc.Surface.WritePixels(pix); err != nil {
		return 0, err
	}

	w, h := sc.width(), sc.height()
	full := surface.Rect{W: float64(w), H: float64(h)}
	passes := 0
	for size := hazeStart; size < w; size *= hazeGrowth {
		x := intn(r, 0, w-size)
		y := intn(r, 0, h-size)
		src := surface.Rect{X: float64(x), Y: float64(y), W: float64(size), H: float64(size)}
		if err := sc.Surface.DrawSelf(src, full, 4/float64(size)); err != nil {
			return passes, err
		}
		passes++
	}
	return passes, nil
}
