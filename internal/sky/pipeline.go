package sky

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cwbudde/nightsky/internal/surface"
)

// Stage names one step of the render pipeline.
type Stage string

const (
	StageBaseColor  Stage = "base-color"
	StageBackground Stage = "background"
	StageGalaxy     Stage = "galaxy"
	StageBaseStars  Stage = "base-stars"
	StageClusters   Stage = "clusters"
	StageClosest    Stage = "closest"
	StageClouds     Stage = "clouds"
)

// StageReport describes one finished stage. Elements counts what the stage
// produced: haze passes, stars or clouds.
type StageReport struct {
	Stage    Stage         `json:"stage"`
	Elements int           `json:"elements"`
	Duration time.Duration `json:"duration"`
}

// Report summarizes a render.
type Report struct {
	Preset   string        `json:"preset"`
	Seed     int64         `json:"seed"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Stages   []StageReport `json:"stages"`
	Duration time.Duration `json:"duration"`
}

// Stars returns the total number of stars drawn.
func (r *Report) Stars() int {
	n := 0
	for _, s := range r.Stages {
		switch s.Stage {
		case StageGalaxy, StageBaseStars, StageClusters, StageClosest:
			n += s.Elements
		}
	}
	return n
}

// StageError wraps the first drawing failure together with the stage it
// happened in. Later stages do not run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type step struct {
	stage Stage
	run   func(*Scene) (int, error)
}

func steps(cfg Config) []step {
	var out []step
	if cfg.BaseColor.A > 0 {
		out = append(out, step{StageBaseColor, func(sc *Scene) (int, error) {
			w, h := float64(sc.width()), float64(sc.height())
			return 1, sc.Surface.FillRect(0, 0, w, h, surface.Solid{Color: cfg.BaseColor})
		}})
	}
	if cfg.Background {
		out = append(out, step{StageBackground, synthesizeBackground})
	}
	if cfg.Galaxy {
		out = append(out, step{StageGalaxy, drawGalaxy})
	}
	out = append(out,
		step{StageBaseStars, func(sc *Scene) (int, error) { return drawBaseStars(sc, cfg.StarDivisor) }},
		step{StageClusters, func(sc *Scene) (int, error) { return drawClusters(sc, cfg.Clusters, cfg.ClusterMembers) }},
		step{StageClosest, func(sc *Scene) (int, error) { return drawClosest(sc, cfg.Closest) }},
	)
	if cfg.Clouds {
		out = append(out, step{StageClouds, drawClouds})
	}
	return out
}

// Generate runs the enabled stages in order on s, drawing randomness from
// rng only. observe, if not nil, is called after every finished stage.
// A surface with a zero dimension is left untouched.
func Generate(ctx context.Context, s surface.Surface, cfg Config, rng *rand.Rand, observe func(StageReport)) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		Preset: cfg.Preset,
		Width:  s.Width(),
		Height: s.Height(),
	}
	if s.Width() == 0 || s.Height() == 0 {
		slog.Warn("Empty surface, nothing to draw", "width", s.Width(), "height", s.Height())
		return report, nil
	}

	lens := cfg.Lens
	if lens == nil {
		lens = NoLens{}
	}
	sc := &Scene{Surface: s, Rand: rng, Lens: lens, Flat: cfg.FlatStars}

	start := time.Now()
	for _, st := range steps(cfg) {
		if err := ctx.Err(); err != nil {
			return report, &StageError{Stage: st.stage, Err: err}
		}

		t0 := time.Now()
		n, err := st.run(sc)
		if err != nil {
			slog.Error("Stage failed", "stage", st.stage, "elements", n, "error", err)
			return report, &StageError{Stage: st.stage, Err: err}
		}

		sr := StageReport{Stage: st.stage, Elements: n, Duration: time.Since(t0)}
		report.Stages = append(report.Stages, sr)
		slog.Debug("Stage complete", "stage", st.stage, "elements", n, "duration", sr.Duration)
		if observe != nil {
			observe(sr)
		}
	}
	report.Duration = time.Since(start)

	slog.Info("Sky generated",
		"preset", cfg.Preset,
		"width", report.Width,
		"height", report.Height,
		"stars", report.Stars(),
		"duration", report.Duration)
	return report, nil
}

// Render acquires a surface of the configured size and backend, seeds the
// random source from cfg.Seed and generates the sky. The returned report
// carries the seed that was actually used.
func Render(ctx context.Context, cfg Config, observe func(StageReport)) (surface.Surface, *Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	s, err := surface.New(cfg.Backend, cfg.Width, cfg.Height)
	if err != nil {
		return nil, nil, fmt.Errorf("acquire surface: %w", err)
	}

	rng, seed := NewRand(cfg.Seed)
	slog.Debug("Rendering sky", "preset", cfg.Preset, "seed", seed, "backend", surface.NormalizeBackend(cfg.Backend))

	report, err := Generate(ctx, s, cfg, rng, observe)
	if report != nil {
		report.Seed = seed
	}
	return s, report, err
}
