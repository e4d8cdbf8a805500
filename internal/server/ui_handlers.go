package server

import (
	"bytes"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cwbudde/nightsky/internal/sky"
	"github.com/cwbudde/nightsky/internal/ui"
)

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := ui.IndexData{
		Presets:       sky.Presets(),
		DefaultPreset: sky.DefaultPreset,
	}
	for _, job := range s.jobManager.ListJobs() {
		data.Jobs = append(data.Jobs, ui.JobItem{
			ID:     job.ID,
			State:  string(job.State),
			Preset: job.Config.Preset,
			Stages: len(job.Stages),
			Error:  job.Error,
		})
	}
	if s.store != nil {
		infos, err := s.store.ListRenders()
		if err != nil {
			slog.Warn("Failed to list renders for index", "error", err)
		}
		for _, info := range infos {
			data.Renders = append(data.Renders, ui.RenderItem{
				ID:        info.ID,
				Preset:    info.Preset,
				Width:     info.Width,
				Height:    info.Height,
				Seed:      info.Seed,
				Stars:     info.Stars,
				Timestamp: info.Timestamp,
				HasImage:  info.HasImage,
			})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ui.Index(data).Render(r.Context(), w); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// handleSkyImage handles GET /sky.png: a fresh sky rendered synchronously
// at the requested size. The seed used is returned in X-Sky-Seed.
func (s *Server) handleSkyImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := parseSkyQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg, err := resolveRequest(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	surf, report, err := sky.Render(r.Context(), cfg, nil)
	if err != nil {
		slog.Error("Sky render failed", "error", err)
		http.Error(w, "Render failed", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, surf.Image()); err != nil {
		slog.Error("Failed to encode PNG", "error", err)
		http.Error(w, "Encode failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Sky-Seed", strconv.FormatInt(report.Seed, 10))
	w.Header().Set("X-Sky-Stars", strconv.Itoa(report.Stars()))
	w.Write(buf.Bytes())
}
