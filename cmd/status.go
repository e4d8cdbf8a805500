package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/nightsky/internal/store"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [render-id]",
	Short: "Query server status or a specific render",
	Long: `Queries the server for render jobs.
If no render-id is provided, lists all jobs of the running server.
If render-id is provided, shows detailed status for that render.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

// renderStatus mirrors the server's status response.
type renderStatus struct {
	ID      string               `json:"id"`
	State   string               `json:"state"`
	Config  store.RenderConfig   `json:"config"`
	Seed    int64                `json:"seed"`
	Stars   int                  `json:"stars"`
	Stages  []store.StageSummary `json:"stages"`
	Elapsed float64              `json:"elapsed"`
	Error   string               `json:"error"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	base := strings.TrimSuffix(serverURL, "/")
	if len(args) == 0 {
		return listJobs(cmd.OutOrStdout(), base+"/api/v1/renders")
	}
	return getRenderStatus(cmd.OutOrStdout(), base+"/api/v1/renders/"+args[0]+"/status", args[0])
}

func listJobs(out io.Writer, url string) error {
	var jobs []renderStatus
	if err := getJSON(url, &jobs); err != nil {
		return err
	}

	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs found")
		return nil
	}

	fmt.Fprintf(out, "Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Fprintf(out, "Job ID: %s\n", job.ID)
		fmt.Fprintf(out, "  State: %s\n", job.State)
		fmt.Fprintf(out, "  Preset: %s\n", presetName(job.Config.Preset))
		if job.Stars > 0 {
			fmt.Fprintf(out, "  Stars: %d (seed %d)\n", job.Stars, job.Seed)
		}
		if job.Error != "" {
			fmt.Fprintf(out, "  Error: %s\n", job.Error)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func getRenderStatus(out io.Writer, url, id string) error {
	var status renderStatus
	if err := getJSON(url, &status); err != nil {
		if errors.Is(err, errNotFound) {
			return fmt.Errorf("render not found: %s", id)
		}
		return err
	}

	fmt.Fprintf(out, "Render: %s\n", status.ID)
	fmt.Fprintf(out, "State: %s\n", status.State)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "  Preset: %s\n", presetName(status.Config.Preset))
	fmt.Fprintf(out, "  Size: %dx%d\n", status.Config.Width, status.Config.Height)
	fmt.Fprintf(out, "  Seed: %d\n", status.Seed)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Stages:")
	for _, s := range status.Stages {
		fmt.Fprintf(out, "  %-10s %6d  %.1fms\n", s.Stage, s.Elements, s.DurationMs)
	}
	fmt.Fprintf(out, "  Stars: %d\n", status.Stars)
	elapsed := time.Duration(status.Elapsed * float64(time.Second))
	fmt.Fprintf(out, "  Elapsed: %s\n", elapsed.Round(time.Millisecond))

	if status.Error != "" {
		fmt.Fprintf(out, "\nError: %s\n", status.Error)
	}
	return nil
}

var errNotFound = errors.New("not found")

func getJSON(url string, v interface{}) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func presetName(p string) string {
	if p == "" {
		return "(default)"
	}
	return p
}
