package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cwbudde/nightsky/internal/sky"
	"github.com/cwbudde/nightsky/internal/surface"
)

// maxDimension caps requested sizes so a single request cannot allocate
// an arbitrarily large surface.
const maxDimension = 8192

// writeJSON encodes v with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// resolveRequest turns a render request into a sky configuration
func resolveRequest(req JobConfig) (sky.Config, error) {
	if req.Width < 0 || req.Width > maxDimension || req.Height < 0 || req.Height > maxDimension {
		return sky.Config{}, fmt.Errorf("width and height must be between 0 and %d", maxDimension)
	}
	if !supportedBackend(req.Backend) {
		return sky.Config{}, fmt.Errorf("%w: %s", surface.ErrUnknownBackend, req.Backend)
	}
	return sky.Resolve(req.Preset, req.Width, req.Height, req.Seed, req.Backend)
}

func supportedBackend(name string) bool {
	b := surface.NormalizeBackend(name)
	for _, known := range surface.SupportedBackends() {
		if b == known {
			return true
		}
	}
	return false
}

// parseSkyQuery reads width, height, preset, seed and backend from a query
// string. Missing values keep their zero value.
func parseSkyQuery(q url.Values) (JobConfig, error) {
	var req JobConfig
	var err error

	if v := q.Get("width"); v != "" {
		if req.Width, err = strconv.Atoi(v); err != nil {
			return req, fmt.Errorf("invalid width %q", v)
		}
	}
	if v := q.Get("height"); v != "" {
		if req.Height, err = strconv.Atoi(v); err != nil {
			return req, fmt.Errorf("invalid height %q", v)
		}
	}
	if v := q.Get("seed"); v != "" {
		if req.Seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return req, fmt.Errorf("invalid seed %q", v)
		}
	}
	req.Preset = q.Get("preset")
	req.Backend = q.Get("backend")
	return req, nil
}
