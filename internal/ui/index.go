// Package ui holds the HTML views served by the web server. Views are
// written as templ components; run `templ generate` after editing a
// .templ file.
package ui

import (
	"fmt"
	"net/url"
	"time"
)

// RenderItem is one gallery entry.
type RenderItem struct {
	ID        string
	Preset    string
	Width     int
	Height    int
	Seed      int64
	Stars     int
	Timestamp time.Time
	HasImage  bool
}

func (r RenderItem) imageURL() string {
	return "/api/v1/renders/" + url.PathEscape(r.ID) + "/sky.png"
}

func (r RenderItem) title() string {
	return fmt.Sprintf("%s %dx%d seed %d, %d stars", r.Preset, r.Width, r.Height, r.Seed, r.Stars)
}

// JobItem is one in-flight or finished job.
type JobItem struct {
	ID     string
	State  string
	Preset string
	Stages int
	Error  string
}

func (j JobItem) label() string {
	return fmt.Sprintf("%s %s (%d stages)", shortID(j.ID), j.State, j.Stages)
}

// IndexData feeds the landing page.
type IndexData struct {
	Presets       []string
	DefaultPreset string
	Jobs          []JobItem
	Renders       []RenderItem
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
