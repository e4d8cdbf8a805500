package surface

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// Backend identifies a rasterizer implementation.
type Backend string

const (
	BackendGoGPU    Backend = "gogpu"
	BackendFogleman Backend = "fogleman"
)

var (
	// ErrUnknownBackend is returned when the name does not match a known backend.
	ErrUnknownBackend = errors.New("unknown surface backend")
	// ErrBackendUnavailable indicates the backend failed to initialise.
	ErrBackendUnavailable = errors.New("surface backend unavailable")
	// ErrInvalidDimensions is returned for negative surface sizes or a pixel
	// buffer of the wrong length.
	ErrInvalidDimensions = errors.New("invalid surface dimensions")
	// ErrNonFinite is returned when a coordinate or size is NaN or infinite.
	ErrNonFinite = errors.New("non-finite drawing value")
)

// NormalizeBackend maps arbitrary user input to a canonical backend identifier.
func NormalizeBackend(name string) Backend {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gogpu", "gg", "default":
		return BackendGoGPU
	case "fogleman", "classic-gg":
		return BackendFogleman
	default:
		return Backend(name)
	}
}

// SupportedBackends returns the list of backends understood by New.
func SupportedBackends() []Backend {
	return []Backend{BackendGoGPU, BackendFogleman}
}

// New acquires a transparent surface of the given size on the named backend.
func New(name string, width, height int) (Surface, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	backend := NormalizeBackend(name)
	if backend != BackendGoGPU && backend != BackendFogleman {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	if width == 0 || height == 0 {
		return &canvas{r: empty{width, height}}, nil
	}

	var r rasterizer
	var err error
	switch backend {
	case BackendGoGPU:
		r, err = newGoGPU(width, height)
	case BackendFogleman:
		r, err = newFogleman(width, height)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, backend, err)
	}

	return &canvas{r: r}, nil
}

// empty stands in for a surface with a zero dimension. Every drawing call
// is a no-op since there are no pixels to touch.
type empty struct{ w, h int }

func (e empty) size() (int, int) { return e.w, e.h }
func (empty) fill(*Path, Paint) error { return nil }
func (empty) stroke(*Path, float64, Color) error { return nil }
func (empty) pixels() ([]byte, error) { return nil, nil }
func (empty) drawScaled(image.Image, image.Rectangle, Rect, float64) error { return nil }
func (empty) composite(image.Image, image.Point) error { return nil }
func (e empty) layer(int, int) (rasterizer, error) { return e, nil }

func (e empty) snapshot() (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, e.w, e.h)), nil
}
