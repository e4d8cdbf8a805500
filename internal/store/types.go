package store

import (
	"time"
)

// RenderConfig is the persisted copy of the settings a render ran with.
// It mirrors the request so the store does not depend on the server.
type RenderConfig struct {
	Preset  string `json:"preset"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Seed    int64  `json:"seed"` // requested seed, 0 = clock
	Backend string `json:"backend,omitempty"`
}

// StageSummary is the per-stage outcome kept with a render.
type StageSummary struct {
	Stage      string  `json:"stage"`
	Elements   int     `json:"elements"`
	DurationMs float64 `json:"durationMs"`
}

// Render is the record of one finished sky.
type Render struct {
	ID string `json:"id"`

	Config RenderConfig `json:"config"`

	// Seed is the seed that was actually used. Rendering Config with this
	// seed reproduces the image.
	Seed int64 `json:"seed"`

	Stars      int            `json:"stars"`
	Stages     []StageSummary `json:"stages"`
	DurationMs float64        `json:"durationMs"`
	Timestamp  time.Time      `json:"timestamp"`
}

// RenderInfo is the listing view of a render.
type RenderInfo struct {
	ID        string    `json:"id"`
	Preset    string    `json:"preset"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Seed      int64     `json:"seed"`
	Stars     int       `json:"stars"`
	Timestamp time.Time `json:"timestamp"`
	HasImage  bool      `json:"hasImage"`
}

// NewRender creates a record stamped with the current time.
func NewRender(id string, cfg RenderConfig, seed int64, stars int, stages []StageSummary, duration time.Duration) *Render {
	return &Render{
		ID:         id,
		Config:     cfg,
		Seed:       seed,
		Stars:      stars,
		Stages:     stages,
		DurationMs: float64(duration) / float64(time.Millisecond),
		Timestamp:  time.Now(),
	}
}

// ToInfo drops the stage details.
func (r *Render) ToInfo() RenderInfo {
	return RenderInfo{
		ID:        r.ID,
		Preset:    r.Config.Preset,
		Width:     r.Config.Width,
		Height:    r.Config.Height,
		Seed:      r.Seed,
		Stars:     r.Stars,
		Timestamp: r.Timestamp,
	}
}

// Validate checks the record before it is written.
func (r *Render) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if r.Config.Preset == "" {
		return &ValidationError{Field: "Config.Preset", Reason: "cannot be empty"}
	}
	if r.Config.Width < 0 {
		return &ValidationError{Field: "Config.Width", Reason: "cannot be negative"}
	}
	if r.Config.Height < 0 {
		return &ValidationError{Field: "Config.Height", Reason: "cannot be negative"}
	}
	if r.Config.Seed != 0 && r.Config.Seed != r.Seed {
		return &ValidationError{Field: "Seed", Reason: "must match the requested seed"}
	}
	if r.Stars < 0 {
		return &ValidationError{Field: "Stars", Reason: "cannot be negative"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	for _, s := range r.Stages {
		if s.Stage == "" {
			return &ValidationError{Field: "Stages", Reason: "stage name cannot be empty"}
		}
	}
	return nil
}

// ValidationError reports an invalid render record.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
