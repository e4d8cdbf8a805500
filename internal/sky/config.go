package sky

import (
	"fmt"
	"sort"

	"github.com/cwbudde/nightsky/internal/surface"
)

// IntRange is a half-open integer range [Min, Max).
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// FloatRange is a half-open range [Min, Max).
type FloatRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Config selects which stages run and the ranges they sample from.
type Config struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Seed    int64  `json:"seed"`
	Preset  string `json:"preset"`
	Backend string `json:"backend,omitempty"`

	// BaseColor fills the surface right after acquisition. Transparent
	// leaves the surface untouched.
	BaseColor surface.Color `json:"baseColor"`

	Background bool `json:"background"`
	Galaxy     bool `json:"galaxy"`
	Clouds     bool `json:"clouds"`

	// FlatStars replaces the glowing recipes with flat dots.
	FlatStars bool `json:"flatStars"`

	// StarDivisor is the pixel area per base star.
	StarDivisor    IntRange `json:"starDivisor"`
	Clusters       IntRange `json:"clusters"`
	ClusterMembers IntRange `json:"clusterMembers"`
	Closest        IntRange `json:"closest"`

	Lens LensEffect `json:"-"`
}

const (
	PresetMinimal = "minimal"
	PresetClassic = "classic"
	PresetGalaxy  = "galaxy"
)

var presets = map[string]func() Config{
	// Flat dots on an opaque base color, no background synthesis.
	PresetMinimal: func() Config {
		return Config{
			Width:          800,
			Height:         600,
			Preset:         PresetMinimal,
			BaseColor:      surface.RGB(0, 0, 0),
			FlatStars:      true,
			StarDivisor:    IntRange{300, 900},
			Clusters:       IntRange{15, 40},
			ClusterMembers: IntRange{10, 50},
			Closest:        IntRange{10, 40},
			Lens:           NoLens{},
		}
	},
	PresetClassic: func() Config {
		return Config{
			Width:          1920,
			Height:         1080,
			Preset:         PresetClassic,
			Background:     true,
			StarDivisor:    IntRange{300, 900},
			Clusters:       IntRange{15, 40},
			ClusterMembers: IntRange{10, 50},
			Closest:        IntRange{10, 40},
			Lens:           NoLens{},
		}
	},
	PresetGalaxy: func() Config {
		return Config{
			Width:          1920,
			Height:         1080,
			Preset:         PresetGalaxy,
			Background:     true,
			Galaxy:         true,
			Clouds:         true,
			StarDivisor:    IntRange{500, 1500},
			Clusters:       IntRange{6, 20},
			ClusterMembers: IntRange{10, 50},
			Closest:        IntRange{8, 20},
			Lens:           Branch{N: 4},
		}
	},
}

// DefaultPreset is the most complete pipeline: galaxy band, clouds and
// lens flares.
const DefaultPreset = PresetGalaxy

// Presets lists the known preset names.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the configuration for a named preset. An empty name
// selects DefaultPreset.
func Preset(name string) (Config, error) {
	if name == "" {
		name = DefaultPreset
	}
	build, ok := presets[name]
	if !ok {
		return Config{}, &ConfigError{Field: "Preset", Reason: fmt.Sprintf("unknown preset %q", name)}
	}
	return build(), nil
}

// Resolve loads a preset and applies the request overrides. A width or
// height of zero keeps the preset size.
func Resolve(preset string, width, height int, seed int64, backend string) (Config, error) {
	cfg, err := Preset(preset)
	if err != nil {
		return Config{}, err
	}
	if width != 0 {
		cfg.Width = width
	}
	if height != 0 {
		cfg.Height = height
	}
	cfg.Seed = seed
	cfg.Backend = backend
	return cfg, cfg.Validate()
}

// Validate checks the sampling ranges. Zero dimensions are allowed and
// produce a blank surface.
func (c Config) Validate() error {
	if c.Width < 0 {
		return &ConfigError{Field: "Width", Reason: "cannot be negative"}
	}
	if c.Height < 0 {
		return &ConfigError{Field: "Height", Reason: "cannot be negative"}
	}
	ranges := []struct {
		field string
		r     IntRange
		min   int
	}{
		{"StarDivisor", c.StarDivisor, 1},
		{"Clusters", c.Clusters, 0},
		{"ClusterMembers", c.ClusterMembers, 0},
		{"Closest", c.Closest, 0},
	}
	for _, rr := range ranges {
		if rr.r.Min < rr.min {
			return &ConfigError{Field: rr.field, Reason: fmt.Sprintf("min must be at least %d", rr.min)}
		}
		if rr.r.Max <= rr.r.Min {
			return &ConfigError{Field: rr.field, Reason: "max must exceed min"}
		}
	}
	if b, ok := c.Lens.(Branch); ok && b.N < 2 {
		return &ConfigError{Field: "Lens", Reason: "branch count must be at least 2"}
	}
	return nil
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid sky config: " + e.Field + " " + e.Reason
}
