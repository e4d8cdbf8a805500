package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/nightsky/internal/store"
)

var (
	keepLast      int
	olderThanDays int
	forceClean    bool
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Manage stored renders",
	Long: `Manage the render gallery under --data-dir: list stored skies or clean
old ones. Renders are added by "render --save" and by the HTTP server.`,
}

var listGalleryCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored renders",
	Long:  `Display all stored renders with id, timestamp, preset, size, seed, star count and disk usage.`,
	RunE:  runListGallery,
}

var cleanGalleryCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old renders",
	Long: `Delete stored renders based on a retention policy: keep only the newest N
renders, delete renders older than N days, or both.`,
	RunE: runCleanGallery,
}

func init() {
	rootCmd.AddCommand(galleryCmd)
	galleryCmd.AddCommand(listGalleryCmd)
	galleryCmd.AddCommand(cleanGalleryCmd)

	cleanGalleryCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N renders (0 = keep all)")
	cleanGalleryCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete renders older than N days (0 = no age limit)")
	cleanGalleryCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runListGallery(cmd *cobra.Command, args []string) error {
	return listGallery(os.Stdout, settings.DataDir)
}

func listGallery(out io.Writer, dataDir string) error {
	renderStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create render store: %w", err)
	}

	infos, err := renderStore.ListRenders()
	if err != nil {
		return fmt.Errorf("failed to list renders: %w", err)
	}

	if len(infos) == 0 {
		fmt.Fprintln(out, "No renders found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIMESTAMP\tPRESET\tSIZE\tSEED\tSTARS\tDISK")
	fmt.Fprintln(w, "--\t---------\t------\t----\t----\t-----\t----")

	for _, info := range infos {
		size, err := getDirSize(renderStore.RenderDir(info.ID))
		sizeStr := "unknown"
		if err == nil {
			sizeStr = formatBytes(size)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%d\t%s\n",
			displayID(info.ID),
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Preset,
			info.Width, info.Height,
			info.Seed,
			info.Stars,
			sizeStr,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal renders: %d\n", len(infos))
	return nil
}

func runCleanGallery(cmd *cobra.Command, args []string) error {
	return cleanGallery(os.Stdin, os.Stdout, settings.DataDir, keepLast, olderThanDays, forceClean)
}

func cleanGallery(in io.Reader, out io.Writer, dataDir string, keep, olderThan int, force bool) error {
	if keep == 0 && olderThan == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	renderStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create render store: %w", err)
	}

	infos, err := renderStore.ListRenders()
	if err != nil {
		return fmt.Errorf("failed to list renders: %w", err)
	}

	if len(infos) == 0 {
		fmt.Fprintln(out, "No renders to clean.")
		return nil
	}

	toDelete := selectRendersForDeletion(infos, keep, olderThan, time.Now())
	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No renders match deletion criteria.")
		return nil
	}

	fmt.Fprintf(out, "Found %d render(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Fprintf(out, "  - %s (%s, seed %d, %s)\n",
			displayID(info.ID),
			info.Preset,
			info.Seed,
			info.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	if !force {
		fmt.Fprint(out, "\nProceed with deletion? [y/N]: ")
		response, _ := bufio.NewReader(in).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := renderStore.DeleteRender(info.ID); err != nil {
			slog.Error("Failed to delete render", "render_id", info.ID, "error", err)
			failed++
		} else {
			slog.Info("Deleted render", "render_id", info.ID)
			deleted++
		}
	}

	fmt.Fprintf(out, "\nDeleted %d render(s), %d failed.\n", deleted, failed)
	return nil
}

// selectRendersForDeletion applies the retention policy. A render is
// selected when it is older than olderThanDays or falls outside the newest
// keepLast renders; each render is selected at most once.
func selectRendersForDeletion(infos []store.RenderInfo, keepLast, olderThanDays int, now time.Time) []store.RenderInfo {
	var toDelete []store.RenderInfo
	selected := make(map[string]bool)

	if olderThanDays > 0 {
		cutoff := now.AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.Timestamp.Before(cutoff) {
				toDelete = append(toDelete, info)
				selected[info.ID] = true
			}
		}
	}

	if keepLast > 0 && len(infos) > keepLast {
		sorted := make([]store.RenderInfo, len(infos))
		copy(sorted, infos)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.After(sorted[j].Timestamp)
		})

		for _, info := range sorted[keepLast:] {
			if !selected[info.ID] {
				toDelete = append(toDelete, info)
				selected[info.ID] = true
			}
		}
	}

	return toDelete
}

func displayID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
