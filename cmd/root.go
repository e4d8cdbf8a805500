package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/nightsky/internal/config"
)

var (
	cfgFile  string
	settings config.Settings
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nightsky",
	Short: "Procedural night sky generator",
	Long: `nightsky paints random night skies: a hazy background, a galaxy band,
thousands of stars, a few bright ones with glow or lens flare, and faint
clouds. Renders go to PNG files, the terminal or an HTTP gallery.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := config.New()
		if err := config.BindFlags(v, cmd.Flags()); err != nil {
			return fmt.Errorf("bind flags: %w", err)
		}
		s, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		settings = s

		// Setup logger
		level, _ := config.ParseLevel(settings.LogLevel)
		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stderr, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./nightsky.yaml or ~/.config/nightsky/nightsky.yaml)")
	rootCmd.PersistentFlags().String(config.KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String(config.KeyDataDir, "./data", "Base directory for the render gallery")
}
