package store

import "image"

// Store persists finished renders: a JSON record plus the PNG image.
// Implementations must be safe for concurrent use.
//
// Error conventions:
//   - Load, Delete and OpenImage return a *NotFoundError (matching
//     ErrNotFound) when the render does not exist
//   - other failures are wrapped with context using %w
type Store interface {
	// SaveRender atomically writes the record for a render, replacing any
	// previous record with the same ID.
	SaveRender(id string, r *Render) error

	// SaveImage atomically writes the rendered image as sky.png and returns
	// its path.
	SaveImage(id string, img image.Image) (string, error)

	// LoadRender reads the record for a render.
	LoadRender(id string) (*Render, error)

	// ListRenders returns metadata for every stored render, newest first.
	ListRenders() ([]RenderInfo, error)

	// DeleteRender removes the render directory with all artifacts:
	// render.json, sky.png and trace.jsonl.
	DeleteRender(id string) error

	// ImagePath returns where the PNG for a render lives, or a
	// *NotFoundError if it has not been written.
	ImagePath(id string) (string, error)
}

// ErrNotFound matches any *NotFoundError via errors.Is.
var ErrNotFound = &NotFoundError{}

// NotFoundError reports a missing render.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return "render not found: " + e.ID
	}
	return "render not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
