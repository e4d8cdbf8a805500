package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cwbudde/nightsky/internal/config"
	"github.com/cwbudde/nightsky/internal/preview"
	"github.com/cwbudde/nightsky/internal/sky"
	"github.com/cwbudde/nightsky/internal/store"
	"github.com/cwbudde/nightsky/internal/surface"
)

var (
	saveRender  bool
	showPreview bool
	columns     int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one sky to an image file",
	Long: `Renders a single sky and writes it to --output. The format follows the
file extension (png, jpg, gif, tif, bmp). With --save the render is also
added to the gallery under --data-dir.`,
	RunE: runRender,
}

func init() {
	addSkyFlags(renderCmd)
	renderCmd.Flags().StringP(config.KeyOutput, "o", "sky.png", "Output image path")
	renderCmd.Flags().BoolVar(&saveRender, "save", false, "Also store the render in the gallery")
	renderCmd.Flags().BoolVar(&showPreview, "preview", false, "Print a terminal preview after rendering")
	renderCmd.Flags().IntVar(&columns, "columns", preview.DefaultColumns, "Preview width in terminal cells")
	rootCmd.AddCommand(renderCmd)
}

// addSkyFlags registers the flags every rendering command shares.
func addSkyFlags(cmd *cobra.Command) {
	cmd.Flags().Int(config.KeyWidth, 0, "Width in pixels (0 = preset default)")
	cmd.Flags().Int(config.KeyHeight, 0, "Height in pixels (0 = preset default)")
	cmd.Flags().String(config.KeyPreset, sky.DefaultPreset, "Preset: "+strings.Join(sky.Presets(), ", "))
	cmd.Flags().Int64(config.KeySeed, 0, "Random seed (0 = seed from clock)")
	cmd.Flags().String(config.KeyBackend, string(surface.BackendGoGPU), "Drawing backend (gogpu, fogleman)")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	img, report, err := renderSky(ctx, settings)
	if err != nil {
		return err
	}

	if err := imaging.Save(img, settings.Output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s (%s, %dx%d, seed %d, %d stars, %s)\n",
		settings.Output, report.Preset, report.Width, report.Height, report.Seed, report.Stars(), report.Duration.Round(time.Millisecond))

	if saveRender {
		id, err := saveToGallery(settings, img, report)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved to gallery as %s\n", id)
	}

	if showPreview {
		printPreview(out, img, columns)
	}
	return nil
}

// renderSky resolves the settings and renders one sky in memory.
func renderSky(ctx context.Context, s config.Settings) (image.Image, *sky.Report, error) {
	cfg, err := s.Sky()
	if err != nil {
		return nil, nil, err
	}

	surf, report, err := sky.Render(ctx, cfg, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("render failed: %w", err)
	}
	return surf.Image(), report, nil
}

// saveToGallery stores the image and its record under a fresh id.
func saveToGallery(s config.Settings, img image.Image, report *sky.Report) (string, error) {
	st, err := store.NewFSStore(s.DataDir)
	if err != nil {
		return "", fmt.Errorf("failed to create render store: %w", err)
	}

	id := uuid.New().String()
	if _, err := st.SaveImage(id, img); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	stages := make([]store.StageSummary, len(report.Stages))
	for i, sr := range report.Stages {
		stages[i] = store.StageSummary{
			Stage:      string(sr.Stage),
			Elements:   sr.Elements,
			DurationMs: float64(sr.Duration) / float64(time.Millisecond),
		}
	}
	cfg := store.RenderConfig{
		Preset:  report.Preset,
		Width:   report.Width,
		Height:  report.Height,
		Seed:    s.Seed,
		Backend: string(surface.NormalizeBackend(s.Backend)),
	}
	rec := store.NewRender(id, cfg, report.Seed, report.Stars(), stages, report.Duration)
	if err := st.SaveRender(id, rec); err != nil {
		return "", fmt.Errorf("failed to save render: %w", err)
	}

	slog.Info("Saved render", "render_id", id, "seed", report.Seed)
	return id, nil
}

func printPreview(w io.Writer, img image.Image, cols int) {
	if art := preview.Render(img, cols); art != "" {
		fmt.Fprintln(w, art)
	}
}
