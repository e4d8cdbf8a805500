package main

import (
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/cwbudde/nightsky/internal/preview"
	"github.com/cwbudde/nightsky/internal/store"
)

var previewCmd = &cobra.Command{
	Use:   "preview [image-file|render-id]",
	Short: "Show a sky in the terminal",
	Long: `Prints a true-color half-block preview. Without an argument a fresh sky is
rendered from the sky flags; otherwise the argument names an image file or
a render stored in the gallery.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	addSkyFlags(previewCmd)
	previewCmd.Flags().IntVar(&columns, "columns", preview.DefaultColumns, "Preview width in terminal cells")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		img, err := loadPreviewImage(settings.DataDir, args[0])
		if err != nil {
			return err
		}
		printPreview(cmd.OutOrStdout(), img, columns)
		return nil
	}

	img, report, err := renderSky(cmd.Context(), settings)
	if err != nil {
		return err
	}
	slog.Debug("Rendered preview", "seed", report.Seed, "stars", report.Stars())
	printPreview(cmd.OutOrStdout(), img, columns)
	return nil
}

// loadPreviewImage opens ref as a file path, falling back to a gallery id.
func loadPreviewImage(dataDir, ref string) (image.Image, error) {
	if _, err := os.Stat(ref); err == nil {
		img, err := imaging.Open(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		return img, nil
	}

	renderStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create render store: %w", err)
	}
	path, err := renderStore.ImagePath(ref)
	if err != nil {
		return nil, fmt.Errorf("no image file or stored render named %q: %w", ref, err)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open render image: %w", err)
	}
	return img, nil
}
