package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/nightsky/internal/config"
	"github.com/cwbudde/nightsky/internal/server"
	"github.com/cwbudde/nightsky/internal/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves a page that shows a fresh sky sized to the browser window on every
load, plus a JSON API for asynchronous renders kept in the gallery.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String(config.KeyAddr, ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	renderStore, err := store.NewFSStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("failed to create render store: %w", err)
	}

	srv := server.NewServer(settings.Addr, renderStore)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
