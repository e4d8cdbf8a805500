package sky

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/nightsky/internal/surface"
)

func TestBackgroundNoiseAndHaze(t *testing.T) {
	sc, rec := newScene(800, 600, 1, NoLens{})

	passes, err := synthesizeBackground(sc)
	require.NoError(t, err)
	assert.Equal(t, 4, passes, "haze sizes 8, 32, 128 and 512 are below the width")

	pix, _ := rec.ReadPixels()
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != backgroundAlpha {
			t.Fatalf("pixel %d has alpha %d, want %d", i/4, pix[i], backgroundAlpha)
		}
	}
	for i := 0; i < len(pix); i++ {
		if i%4 != 3 && pix[i] >= 80 {
			t.Fatalf("noise byte %d = %d exceeds the darkest base bound", i, pix[i])
		}
	}

	size := 8.0
	for _, op := range rec.Ops {
		if op.Kind != surface.OpDrawSelf {
			continue
		}
		assert.Equal(t, surface.Rect{W: 800, H: 600}, op.Rect)
		assert.Equal(t, size, op.Src.W)
		assert.InDelta(t, 4/size, op.Alpha, 1e-12)
		assert.LessOrEqual(t, op.Src.Y+op.Src.H, 600.0)
		size *= 4
	}
}

func TestBackgroundTallSurfaceClampsOffsets(t *testing.T) {
	sc, rec := newScene(600, 20, 9, NoLens{})

	_, err := synthesizeBackground(sc)
	require.NoError(t, err)
	for _, op := range rec.Ops {
		if op.Kind == surface.OpDrawSelf && op.Src.W > 20 {
			assert.Zero(t, op.Src.Y)
		}
	}
}

func TestBaseStarCount(t *testing.T) {
	sc, rec := newScene(100, 100, 2, NoLens{})

	n, err := drawBaseStars(sc, IntRange{Min: 500, Max: 501})
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.Equal(t, 20, rec.Count(surface.OpFillRect))

	for _, op := range rec.Ops {
		assert.GreaterOrEqual(t, op.Rect.X, 0.0)
		assert.Less(t, op.Rect.X, 100.0)
		assert.Equal(t, op.Rect.X, float64(int(op.Rect.X)), "positions are whole pixels")
	}
}

func TestBaseStarCountFloors(t *testing.T) {
	sc, _ := newScene(33, 17, 4, NoLens{})

	n, err := drawBaseStars(sc, IntRange{Min: 300, Max: 301})
	require.NoError(t, err)
	assert.Equal(t, 33*17/300, n)
}

func TestClusterOffsets(t *testing.T) {
	sc, rec := newScene(400, 400, 8, NoLens{})

	n, err := scatterCluster(sc, 200, 150, 50, 30)
	require.NoError(t, err)
	assert.Equal(t, 25, n, "the first five members are skipped")

	for _, op := range rec.Ops {
		assert.GreaterOrEqual(t, op.Rect.X, 150.0)
		assert.Less(t, op.Rect.X, 250.0)
		assert.GreaterOrEqual(t, op.Rect.Y, 100.0)
		assert.Less(t, op.Rect.Y, 200.0)
	}
}

func TestClusterBelowSkipDrawsNothing(t *testing.T) {
	sc, rec := newScene(100, 100, 8, NoLens{})

	n, err := scatterCluster(sc, 50, 50, 40, 3)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, rec.Ops)
}

func TestClosestStarsAreBig(t *testing.T) {
	sc, rec := newScene(300, 200, 12, NoLens{})

	n, err := drawClosest(sc, IntRange{Min: 10, Max: 40})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 10)
	assert.Less(t, n, 40)
	assert.Equal(t, n, rec.Count(surface.OpFillRect))
	for _, op := range rec.Ops {
		_, ok := op.Paint.(*surface.RadialGradient)
		assert.True(t, ok)
	}
}

func TestGalaxyStrokes(t *testing.T) {
	sc, rec := newScene(800, 600, 21, NoLens{})

	n, err := drawGalaxy(sc)
	require.NoError(t, err)

	var strokes []surface.Op
	for _, op := range rec.Ops {
		if op.Kind == surface.OpStrokeLine {
			strokes = append(strokes, op)
		}
	}
	require.Len(t, strokes, 20)
	for i, op := range strokes {
		assert.Equal(t, float64(i*10), op.Width)
		assert.Equal(t, strokes[0].Color, op.Color)
	}
	assert.GreaterOrEqual(t, strokes[0].Color.A, 0.005)
	assert.Less(t, strokes[0].Color.A, 0.01)

	first := strokes[0].Path.Segments
	x1, y1, x2, y2 := first[0].X, first[0].Y, first[1].X, first[1].Y
	if x1 == -100 {
		assert.Equal(t, 900.0, x2)
	} else {
		assert.Equal(t, -100.0, y1)
		assert.Equal(t, 700.0, y2)
	}

	band := Band{X1: x1, Y1: y1, X2: x2, Y2: y2}
	assert.GreaterOrEqual(t, float64(n), band.Length()/7-1)
	assert.Less(t, float64(n), band.Length()/2)
	assert.Equal(t, n, rec.Count(surface.OpFillRect))
}

func TestGalaxyReproducible(t *testing.T) {
	a, recA := newScene(640, 480, 99, NoLens{})
	b, recB := newScene(640, 480, 99, NoLens{})

	_, err := drawGalaxy(a)
	require.NoError(t, err)
	_, err = drawGalaxy(b)
	require.NoError(t, err)

	assert.Equal(t, recA.Ops, recB.Ops)
}

func TestGalaxyDirectionFrequency(t *testing.T) {
	rec := surface.NewRecorder(1920, 1080)
	r := rand.New(rand.NewSource(5))
	sc := &Scene{Surface: rec, Rand: r}

	const trials = 4000
	horizontal := 0
	for i := 0; i < trials; i++ {
		if chooseBand(sc).Horizontal {
			horizontal++
		}
	}
	assert.InDelta(t, 1080.0/3000.0, float64(horizontal)/trials, 0.03)
}

func TestGalaxyBandEndpoints(t *testing.T) {
	const w, h = 800.0, 600.0
	rec := surface.NewRecorder(int(w), int(h))
	sc := &Scene{Surface: rec, Rand: rand.New(rand.NewSource(17))}

	for i := 0; i < 500; i++ {
		b := chooseBand(sc)
		if b.Horizontal {
			require.Equal(t, float64(-galaxyOverhang), b.X1)
			require.Equal(t, w+galaxyOverhang, b.X2)
			for _, y := range []float64{b.Y1, b.Y2} {
				require.GreaterOrEqual(t, y, 0.0)
				require.Less(t, y, h)
			}
			continue
		}
		require.Equal(t, float64(-galaxyOverhang), b.Y1)
		require.Equal(t, h+galaxyOverhang, b.Y2)
		for _, x := range []float64{b.X1, b.X2} {
			require.GreaterOrEqual(t, x, 0.0)
			require.Less(t, x, w)
		}
	}
}

func TestCloudsGlowAndReset(t *testing.T) {
	sc, rec := newScene(500, 400, 17, NoLens{})

	n, err := drawClouds(sc)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
	assert.Less(t, n, 4)
	require.Equal(t, n, rec.Count(surface.OpFillPath))

	for _, op := range rec.Ops {
		assert.Equal(t, float64(cloudGlow), op.GlowBlur)
		c := op.Paint.(surface.Solid).Color
		assert.Equal(t, c.R, c.G)
		assert.Equal(t, c.G, c.B)
		assert.Less(t, int(c.R), 50)
		assert.GreaterOrEqual(t, c.A, 0.01)
		assert.Less(t, c.A, 0.08)

		segs := op.Path.Segments
		last := segs[len(segs)-2]
		assert.Equal(t, surface.QuadTo, last.Verb)
		assert.Equal(t, segs[0].X, last.X, "the outline closes on its start point")
		assert.Equal(t, segs[0].Y, last.Y)
	}

	_, blur := rec.Glow()
	assert.Zero(t, blur)
}
