package sky

import (
	"math/rand"

	"github.com/cwbudde/nightsky/internal/surface"
)

// LensEffect selects how the closest stars are drawn. It is either NoLens
// or Branch.
type LensEffect interface {
	isLens()
}

// NoLens draws big stars as a plain radial glow.
type NoLens struct{}

// Branch adds an N-pointed spike polygon to a random half of the big stars.
type Branch struct {
	N int
}

func (NoLens) isLens() {}
func (Branch) isLens() {}

// Scene is the state shared by every generator during one render.
type Scene struct {
	Surface surface.Surface
	Rand    *rand.Rand
	Lens    LensEffect
	Flat    bool
}

func (s *Scene) width() int  { return s.Surface.Width() }
func (s *Scene) height() int { return s.Surface.Height() }

// smallKind and bigKind pick the recipe a generator hands its points to.
func (s *Scene) smallKind() Kind {
	if s.Flat {
		return FlatSmall
	}
	return Small
}

func (s *Scene) bigKind() Kind {
	if s.Flat {
		return FlatBig
	}
	return Big
}
