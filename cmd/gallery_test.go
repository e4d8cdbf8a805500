package main

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/nightsky/internal/store"
)

func TestSelectRendersForDeletion_ByAge(t *testing.T) {
	now := time.Now()
	infos := []store.RenderInfo{
		{ID: "sky1", Timestamp: now.AddDate(0, 0, -10)}, // 10 days old
		{ID: "sky2", Timestamp: now.AddDate(0, 0, -5)},  // 5 days old
		{ID: "sky3", Timestamp: now.AddDate(0, 0, -1)},  // 1 day old
		{ID: "sky4", Timestamp: now.AddDate(0, 0, -30)}, // 30 days old
	}

	toDelete := selectRendersForDeletion(infos, 0, 7, now)

	if len(toDelete) != 2 {
		t.Fatalf("Expected 2 renders to delete, got %d", len(toDelete))
	}
	if !containsID(toDelete, "sky1") || !containsID(toDelete, "sky4") {
		t.Error("Expected sky1 and sky4 to be selected for deletion")
	}
}

func TestSelectRendersForDeletion_ByCount(t *testing.T) {
	now := time.Now()
	infos := []store.RenderInfo{
		{ID: "sky1", Timestamp: now.AddDate(0, 0, -10)},
		{ID: "sky2", Timestamp: now.AddDate(0, 0, -5)},
		{ID: "sky3", Timestamp: now.AddDate(0, 0, -1)},
		{ID: "sky4", Timestamp: now.AddDate(0, 0, -30)},
	}

	toDelete := selectRendersForDeletion(infos, 2, 0, now)

	if len(toDelete) != 2 {
		t.Fatalf("Expected 2 renders to delete, got %d", len(toDelete))
	}
	if !containsID(toDelete, "sky4") || !containsID(toDelete, "sky1") {
		t.Error("Expected sky4 and sky1 to be selected for deletion (oldest)")
	}
}

func TestSelectRendersForDeletion_Combined(t *testing.T) {
	now := time.Now()
	infos := []store.RenderInfo{
		{ID: "sky1", Timestamp: now.AddDate(0, 0, -10)},
		{ID: "sky2", Timestamp: now.AddDate(0, 0, -5)},
		{ID: "sky3", Timestamp: now.AddDate(0, 0, -1)},
		{ID: "sky4", Timestamp: now.AddDate(0, 0, -30)},
		{ID: "sky5", Timestamp: now.AddDate(0, 0, -2)},
	}

	// age selects sky1 and sky4, count selects sky2 as well
	toDelete := selectRendersForDeletion(infos, 2, 7, now)

	if len(toDelete) != 3 {
		t.Fatalf("Expected 3 renders to delete, got %d", len(toDelete))
	}
	for _, id := range []string{"sky1", "sky2", "sky4"} {
		if !containsID(toDelete, id) {
			t.Errorf("Expected %s to be selected", id)
		}
	}
}

func TestSelectRendersForDeletion_NothingToDo(t *testing.T) {
	now := time.Now()
	infos := []store.RenderInfo{{ID: "sky1", Timestamp: now}}

	if got := selectRendersForDeletion(infos, 5, 7, now); len(got) != 0 {
		t.Errorf("Expected nothing to delete, got %d", len(got))
	}
}

func TestGetDirSize(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "test.txt")
	content := []byte("Hello, World!")
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	size, err := getDirSize(tmpDir)
	if err != nil {
		t.Fatalf("getDirSize failed: %v", err)
	}

	if size < int64(len(content)) {
		t.Errorf("Expected size >= %d, got %d", len(content), size)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		result := formatBytes(tt.bytes)
		if result != tt.expected {
			t.Errorf("formatBytes(%d) = %s, expected %s", tt.bytes, result, tt.expected)
		}
	}
}

func TestDisplayID(t *testing.T) {
	if got := displayID("short"); got != "short" {
		t.Errorf("displayID(short) = %s", got)
	}
	if got := displayID("0123456789abcdef"); got != "0123456789ab..." {
		t.Errorf("displayID(long) = %s", got)
	}
}

func TestGalleryList_Empty(t *testing.T) {
	var out bytes.Buffer
	if err := listGallery(&out, t.TempDir()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out.String(), "No renders found.") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestGalleryList_WithRenders(t *testing.T) {
	tmpDir := t.TempDir()
	saveTestRender(t, tmpDir, "render-one", time.Now())

	var out bytes.Buffer
	if err := listGallery(&out, tmpDir); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, want := range []string{"render-one", "classic", "32x16", "Total renders: 1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestGalleryClean_NoFlags(t *testing.T) {
	var out bytes.Buffer
	if err := cleanGallery(strings.NewReader(""), &out, t.TempDir(), 0, 0, false); err == nil {
		t.Error("Expected error when no flags specified")
	}
}

func TestGalleryClean_WithForce(t *testing.T) {
	tmpDir := t.TempDir()
	st := saveTestRender(t, tmpDir, "old-render", time.Now().AddDate(0, 0, -30))
	saveTestRender(t, tmpDir, "new-render", time.Now())

	var out bytes.Buffer
	if err := cleanGallery(strings.NewReader(""), &out, tmpDir, 0, 7, true); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := st.LoadRender("old-render"); err == nil {
		t.Error("Expected old render to be deleted")
	}
	if _, err := st.LoadRender("new-render"); err != nil {
		t.Errorf("New render should survive: %v", err)
	}
}

func TestGalleryClean_Aborted(t *testing.T) {
	tmpDir := t.TempDir()
	st := saveTestRender(t, tmpDir, "old-render", time.Now().AddDate(0, 0, -30))

	var out bytes.Buffer
	if err := cleanGallery(strings.NewReader("n\n"), &out, tmpDir, 0, 7, false); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out.String(), "Aborted.") {
		t.Errorf("expected abort message, got %q", out.String())
	}
	if _, err := st.LoadRender("old-render"); err != nil {
		t.Errorf("Render should not be deleted: %v", err)
	}
}

func saveTestRender(t *testing.T, dir, id string, ts time.Time) *store.FSStore {
	t.Helper()

	st, err := store.NewFSStore(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	cfg := store.RenderConfig{Preset: "classic", Width: 32, Height: 16, Seed: 9}
	rec := store.NewRender(id, cfg, 9, 120, nil, time.Millisecond)
	rec.Timestamp = ts
	if err := st.SaveRender(id, rec); err != nil {
		t.Fatalf("Failed to save render: %v", err)
	}
	if _, err := st.SaveImage(id, image.NewNRGBA(image.Rect(0, 0, 32, 16))); err != nil {
		t.Fatalf("Failed to save image: %v", err)
	}
	return st
}

func containsID(infos []store.RenderInfo, id string) bool {
	for _, info := range infos {
		if info.ID == id {
			return true
		}
	}
	return false
}
