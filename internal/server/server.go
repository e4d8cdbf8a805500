package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cwbudde/nightsky/internal/store"
)

// Server represents the HTTP server
type Server struct {
	jobManager *JobManager
	store      store.Store
	addr       string
	server     *http.Server

	// jobs run under ctx so Shutdown can stop them
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new HTTP server. st may be nil, in which case
// finished renders are kept in memory only and the gallery is empty.
func NewServer(addr string, st store.Store) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		jobManager: NewJobManager(),
		store:      st,
		addr:       addr,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/sky.png", s.handleSkyImage)

	mux.HandleFunc("/api/v1/renders", s.handleRenders)
	mux.HandleFunc("/api/v1/renders/", s.handleRendersWithID)
	mux.HandleFunc("/api/v1/gallery", s.handleGallery)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown cancels running jobs and gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server", "running_jobs", len(s.jobManager.GetRunningJobs()))
	s.cancel()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleRenders handles /api/v1/renders
func (s *Server) handleRenders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRender(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleRendersWithID handles /api/v1/renders/:id/*
func (s *Server) handleRendersWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/renders/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Render ID required", http.StatusBadRequest)
		return
	}
	id := parts[0]

	if len(parts) == 1 && r.Method == http.MethodDelete {
		s.handleDeleteRender(w, r, id)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sub := ""
	if len(parts) > 1 {
		sub = parts[1]
	}
	switch sub {
	case "", "status":
		s.handleGetRenderStatus(w, r, id)
	case "sky.png":
		s.handleGetRenderImage(w, r, id)
	case "stream":
		s.handleJobStream(w, r, id)
	case "trace":
		s.handleGetTrace(w, r, id)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateRender handles POST /api/v1/renders
func (s *Server) handleCreateRender(w http.ResponseWriter, r *http.Request) {
	var config JobConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	if _, err := resolveRequest(config); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.jobManager.CreateJob(config)
	go runJob(s.ctx, s.jobManager, s.store, job.ID)

	writeJSON(w, http.StatusCreated, job)
}

// handleListJobs handles GET /api/v1/renders
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobManager.ListJobs())
}

// handleGallery handles GET /api/v1/gallery
func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		writeJSON(w, http.StatusOK, []store.RenderInfo{})
		return
	}
	infos, err := s.store.ListRenders()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list renders: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleGetRenderStatus handles GET /api/v1/renders/:id/status. Renders
// from earlier server runs are answered from the store.
func (s *Server) handleGetRenderStatus(w http.ResponseWriter, r *http.Request, id string) {
	if job, ok := s.jobManager.GetJob(id); ok {
		var elapsed time.Duration
		if job.EndTime != nil {
			elapsed = job.EndTime.Sub(job.StartTime)
		} else {
			elapsed = time.Since(job.StartTime)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":        job.ID,
			"state":     job.State,
			"config":    job.Config,
			"seed":      job.Seed,
			"stars":     job.Stars,
			"stages":    job.Stages,
			"elapsed":   elapsed.Seconds(),
			"startTime": job.StartTime,
			"endTime":   job.EndTime,
			"error":     job.Error,
		})
		return
	}

	if s.store != nil {
		rec, err := s.store.LoadRender(id)
		if err == nil {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"id":        rec.ID,
				"state":     StateCompleted,
				"config":    rec.Config,
				"seed":      rec.Seed,
				"stars":     rec.Stars,
				"stages":    rec.Stages,
				"elapsed":   rec.DurationMs / 1000,
				"startTime": rec.Timestamp,
			})
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			http.Error(w, fmt.Sprintf("Failed to load render: %v", err), http.StatusInternalServerError)
			return
		}
	}
	http.Error(w, "Render not found", http.StatusNotFound)
}

// handleGetRenderImage handles GET /api/v1/renders/:id/sky.png
func (s *Server) handleGetRenderImage(w http.ResponseWriter, r *http.Request, id string) {
	if s.store == nil {
		http.Error(w, "No store configured", http.StatusNotFound)
		return
	}
	path, err := s.store.ImagePath(id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

// handleGetTrace handles GET /api/v1/renders/:id/trace
func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request, id string) {
	based, ok := s.store.(interface{ BaseDir() string })
	if !ok {
		http.Error(w, "Trace not available", http.StatusNotFound)
		return
	}
	entries, err := store.ReadTrace(based.BaseDir(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Trace not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleDeleteRender handles DELETE /api/v1/renders/:id
func (s *Server) handleDeleteRender(w http.ResponseWriter, r *http.Request, id string) {
	if job, ok := s.jobManager.GetJob(id); ok && !job.State.Terminal() {
		http.Error(w, "Render still running", http.StatusConflict)
		return
	}
	if s.store == nil {
		http.Error(w, "Render not found", http.StatusNotFound)
		return
	}
	err := s.store.DeleteRender(id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Render not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.jobManager.broadcaster.CleanupJob(id)
	w.WriteHeader(http.StatusNoContent)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
