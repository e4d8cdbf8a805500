package preview

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRenderShape(t *testing.T) {
	tests := []struct {
		name       string
		w, h, cols int
	}{
		{"downsampled", 160, 90, 40},
		{"odd rows", 10, 5, 10},
		{"wider than image", 12, 8, 80},
		{"default columns", 400, 200, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Render(solid(tt.w, tt.h, color.White), tt.cols)
			lines := strings.Split(out, "\n")

			want := Lines(tt.w, tt.h, tt.cols)
			if len(lines) != want {
				t.Fatalf("got %d lines, want %d", len(lines), want)
			}

			cols := tt.cols
			if cols <= 0 {
				cols = DefaultColumns
			}
			if cols > tt.w {
				cols = tt.w
			}
			for i, line := range lines {
				if n := strings.Count(line, halfBlock); n != cols {
					t.Errorf("line %d has %d cells, want %d", i, n, cols)
				}
			}
		})
	}
}

func TestRenderEmpty(t *testing.T) {
	if out := Render(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 10); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
	if n := Lines(0, 10, 10); n != 0 {
		t.Errorf("Lines = %d, want 0", n)
	}
}

func TestHex(t *testing.T) {
	if got := hex(color.NRGBA{R: 255, G: 128, B: 0, A: 255}); got != "#ff8000" {
		t.Errorf("hex = %s", got)
	}
	if got := hex(color.NRGBA{}); got != "#000000" {
		t.Errorf("transparent hex = %s", got)
	}
}
