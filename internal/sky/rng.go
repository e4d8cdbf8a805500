package sky

import (
	"math/rand"
	"time"
)

// NewRand returns the random source for one render. A zero seed is replaced
// by a clock-derived one; the seed actually used is returned so the render
// can be replayed.
func NewRand(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
		if seed == 0 {
			seed = 1
		}
	}
	return rand.New(rand.NewSource(seed)), seed
}

// uniform samples [lo, hi). An empty range collapses to lo.
func uniform(r *rand.Rand, lo, hi float64) float64 {
	if !(hi > lo) {
		return lo
	}
	return lo + r.Float64()*(hi-lo)
}

// intn samples the integers in [lo, hi). An empty range collapses to lo.
func intn(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo)
}

// channel samples a color channel in [lo, hi).
func channel(r *rand.Rand, lo, hi int) uint8 {
	return uint8(intn(r, lo, hi))
}
