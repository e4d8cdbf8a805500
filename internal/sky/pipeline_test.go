package sky

import (
	"bytes"
	"context"
	"errors"
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/nightsky/internal/surface"
)

func galaxyConfig(t *testing.T, w, h int) Config {
	t.Helper()
	cfg, err := Preset(PresetGalaxy)
	require.NoError(t, err)
	cfg.Width, cfg.Height = w, h
	return cfg
}

func TestGenerateEndToEnd(t *testing.T) {
	rec := surface.NewRecorder(800, 600)
	cfg := galaxyConfig(t, 800, 600)

	var observed []Stage
	report, err := Generate(context.Background(), rec, cfg, rand.New(rand.NewSource(2024)), func(sr StageReport) {
		observed = append(observed, sr.Stage)
	})
	require.NoError(t, err)

	want := []Stage{StageBackground, StageGalaxy, StageBaseStars, StageClusters, StageClosest, StageClouds}
	assert.Equal(t, want, observed)
	require.Len(t, report.Stages, len(want))

	// Haze only composites through DrawSelf, so the recorded buffer still
	// holds the synthesized background.
	img := rec.Image().(*image.NRGBA)
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != backgroundAlpha {
			t.Fatalf("pixel %d alpha = %d, want %d", i/4, img.Pix[i], backgroundAlpha)
		}
	}

	small, big := 0, 0
	for _, op := range rec.Ops {
		if op.Kind != surface.OpFillRect {
			continue
		}
		if op.GlowBlur == 1 {
			small++
		}
		if _, ok := op.Paint.(*surface.RadialGradient); ok {
			big++
		}
	}
	assert.GreaterOrEqual(t, small, 1)
	assert.GreaterOrEqual(t, big, 1)
	assert.Equal(t, report.Stages[4].Elements, big)

	_, blur := rec.Glow()
	assert.Zero(t, blur)
	assert.Greater(t, report.Stars(), 0)
}

func TestGenerateStageOrderMinimal(t *testing.T) {
	cfg, err := Preset(PresetMinimal)
	require.NoError(t, err)
	rec := surface.NewRecorder(cfg.Width, cfg.Height)

	report, err := Generate(context.Background(), rec, cfg, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)

	var stages []Stage
	for _, s := range report.Stages {
		stages = append(stages, s.Stage)
	}
	assert.Equal(t, []Stage{StageBaseColor, StageBaseStars, StageClusters, StageClosest}, stages)

	first := rec.Ops[0]
	assert.Equal(t, surface.Rect{W: 800, H: 600}, first.Rect)
	for _, op := range rec.Ops {
		assert.Zero(t, op.GlowBlur, "minimal preset draws flat dots only")
	}
}

func TestGenerateStopsOnFirstFailure(t *testing.T) {
	rec := surface.NewRecorder(320, 240)
	rec.FailOn = surface.OpStrokeLine

	report, err := Generate(context.Background(), rec, galaxyConfig(t, 320, 240), rand.New(rand.NewSource(3)), nil)
	require.Error(t, err)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageGalaxy, se.Stage)
	assert.Contains(t, err.Error(), "injected failure")

	assert.Equal(t, 1, rec.Count(surface.OpStrokeLine))
	assert.Zero(t, rec.Count(surface.OpFillRect), "no star is drawn after the failure")
	require.Len(t, report.Stages, 1)
	assert.Equal(t, StageBackground, report.Stages[0].Stage)
}

func TestGenerateEmptySurface(t *testing.T) {
	for _, dims := range [][2]int{{0, 600}, {800, 0}} {
		rec := surface.NewRecorder(dims[0], dims[1])
		report, err := Generate(context.Background(), rec, galaxyConfig(t, dims[0], dims[1]), rand.New(rand.NewSource(1)), nil)
		require.NoError(t, err)
		assert.Empty(t, report.Stages)
		assert.Empty(t, rec.Ops)
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := surface.NewRecorder(64, 64)
	_, err := Generate(ctx, rec, galaxyConfig(t, 64, 64), rand.New(rand.NewSource(1)), nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Ops)
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	cfg := galaxyConfig(t, 10, 10)
	cfg.StarDivisor = IntRange{Min: 0, Max: 10}

	_, err := Generate(context.Background(), surface.NewRecorder(10, 10), cfg, rand.New(rand.NewSource(1)), nil)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "StarDivisor", ce.Field)
}

func TestRenderReproducibleWithSeed(t *testing.T) {
	cfg, err := Preset(PresetMinimal)
	require.NoError(t, err)
	cfg.Width, cfg.Height = 96, 64
	cfg.Seed = 42

	s1, r1, err := Render(context.Background(), cfg, nil)
	require.NoError(t, err)
	s2, r2, err := Render(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(42), r1.Seed)
	assert.Equal(t, r1.Stars(), r2.Stars())

	p1, _ := s1.ReadPixels()
	p2, _ := s2.ReadPixels()
	assert.True(t, bytes.Equal(p1, p2), "same seed must produce identical pixels")
}

func TestRenderClockSeed(t *testing.T) {
	cfg, err := Preset(PresetMinimal)
	require.NoError(t, err)
	cfg.Width, cfg.Height = 16, 16

	_, report, err := Render(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.NotZero(t, report.Seed)
}

func TestRenderUnknownBackend(t *testing.T) {
	cfg := galaxyConfig(t, 16, 16)
	cfg.Backend = "vulkan"

	_, _, err := Render(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, surface.ErrUnknownBackend)
}

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{PresetClassic, PresetGalaxy, PresetMinimal}, Presets())

	for _, name := range Presets() {
		cfg, err := Preset(name)
		require.NoError(t, err)
		assert.NoError(t, cfg.Validate(), name)
		assert.Equal(t, name, cfg.Preset)
	}

	def, err := Preset("")
	require.NoError(t, err)
	assert.Equal(t, PresetGalaxy, def.Preset)
	assert.Equal(t, Branch{N: 4}, def.Lens)

	_, err = Preset("aurora")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	base := galaxyConfig(t, 10, 10)

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative width", func(c *Config) { c.Width = -1 }, "Width"},
		{"negative height", func(c *Config) { c.Height = -5 }, "Height"},
		{"empty clusters", func(c *Config) { c.Clusters = IntRange{Min: 5, Max: 5} }, "Clusters"},
		{"single branch", func(c *Config) { c.Lens = Branch{N: 1} }, "Lens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			var ce *ConfigError
			require.ErrorAs(t, cfg.Validate(), &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}
