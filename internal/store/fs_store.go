package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// FSStore keeps renders on disk under <baseDir>/renders/<id>/.
//
// Writes go to a temp file that is renamed into place, so readers never
// see a partial record or image. No locks are held.
type FSStore struct {
	baseDir string
}

// NewFSStore creates the base directory if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// BaseDir returns the root directory of the store.
func (fs *FSStore) BaseDir() string {
	return fs.baseDir
}

func (fs *FSStore) rendersDir() string {
	return filepath.Join(fs.baseDir, "renders")
}

// RenderDir returns the directory holding all artifacts of a render.
func (fs *FSStore) RenderDir(id string) string {
	return filepath.Join(fs.rendersDir(), id)
}

func (fs *FSStore) recordPath(id string) string {
	return filepath.Join(fs.RenderDir(id), "render.json")
}

func (fs *FSStore) imagePath(id string) string {
	return filepath.Join(fs.RenderDir(id), "sky.png")
}

// writeAtomic writes data next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create render directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func checkID(id string) error {
	if id == "" {
		return fmt.Errorf("render id cannot be empty")
	}
	if id != filepath.Base(id) || id == "." || id == ".." {
		return fmt.Errorf("invalid render id %q", id)
	}
	return nil
}

// SaveRender validates and writes render.json.
func (fs *FSStore) SaveRender(id string, r *Render) error {
	if err := checkID(id); err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("render cannot be nil")
	}
	if err := r.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize render: %w", err)
	}
	if err := writeAtomic(fs.recordPath(id), data); err != nil {
		return err
	}

	slog.Debug("Render saved", "id", id, "path", fs.recordPath(id))
	return nil
}

// SaveImage encodes img as PNG into the render directory.
func (fs *FSStore) SaveImage(id string, img image.Image) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode png: %w", err)
	}
	path := fs.imagePath(id)
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}

	slog.Debug("Render image saved", "id", id, "path", path, "bytes", buf.Len())
	return path, nil
}

// LoadRender reads render.json.
func (fs *FSStore) LoadRender(id string) (*Render, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fs.recordPath(id))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{ID: id}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read render file: %w", err)
	}

	var r Render
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to deserialize render: %w", err)
	}
	return &r, nil
}

// ListRenders scans the renders directory. Directories without a readable
// render.json are skipped.
func (fs *FSStore) ListRenders() ([]RenderInfo, error) {
	entries, err := os.ReadDir(fs.rendersDir())
	if os.IsNotExist(err) {
		return []RenderInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read renders directory: %w", err)
	}

	infos := []RenderInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		r, err := fs.LoadRender(id)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				slog.Warn("Failed to load render for listing", "id", id, "error", err)
			}
			continue
		}
		info := r.ToInfo()
		if _, err := os.Stat(fs.imagePath(id)); err == nil {
			info.HasImage = true
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.After(infos[j].Timestamp)
	})

	slog.Debug("Listed renders", "count", len(infos))
	return infos, nil
}

// DeleteRender removes the render directory.
func (fs *FSStore) DeleteRender(id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	dir := fs.RenderDir(id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{ID: id}
	} else if err != nil {
		return fmt.Errorf("failed to stat render directory: %w", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove render directory: %w", err)
	}

	slog.Debug("Render deleted", "id", id, "path", dir)
	return nil
}

// ImagePath returns the path of sky.png if it exists.
func (fs *FSStore) ImagePath(id string) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	path := fs.imagePath(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", &NotFoundError{ID: id}
	} else if err != nil {
		return "", fmt.Errorf("failed to stat image: %w", err)
	}
	return path, nil
}
