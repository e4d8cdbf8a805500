// Package preview renders generated skies as true-color terminal art using
// upper half-block cells: each cell shows two vertically stacked pixels.
package preview

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

const halfBlock = "▀"

// DefaultColumns is used when the terminal width is unknown.
const DefaultColumns = 80

// Render downsamples img to cols cells per line and returns the terminal
// rendering. The aspect ratio is kept; every line covers two pixel rows.
func Render(img image.Image, cols int) string {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}
	if cols <= 0 {
		cols = DefaultColumns
	}
	if cols > b.Dx() {
		cols = b.Dx()
	}

	small := imaging.Resize(img, cols, 0, imaging.Box)
	w, h := small.Bounds().Dx(), small.Bounds().Dy()

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			top := hex(small.At(x, y))
			bottom := "#000000"
			if y+1 < h {
				bottom = hex(small.At(x, y+1))
			}
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom))
			sb.WriteString(style.Render(halfBlock))
		}
		if y+2 < h {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Lines returns the number of terminal lines Render produces for an image
// of the given size.
func Lines(width, height, cols int) int {
	if width == 0 || height == 0 {
		return 0
	}
	if cols <= 0 {
		cols = DefaultColumns
	}
	if cols > width {
		cols = width
	}
	rows := int(float64(height)*float64(cols)/float64(width) + 0.5)
	if rows < 1 {
		rows = 1
	}
	return (rows + 1) / 2
}

func hex(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "#000000"
	}
	return cf.Hex()
}
