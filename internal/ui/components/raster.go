package components

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderImage rasterizes img to a block of cols x rows terminal cells using
// upper-half-block characters: each cell carries two vertically stacked
// samples (foreground = top pixel, background = bottom pixel), doubling the
// effective vertical resolution. Sampling is nearest-neighbor: the reader
// trades raster fidelity for speed, and makes no pixel-perfect guarantee.
func RenderImage(img image.Image, cols, rows int) string {
	if img == nil || cols < 1 || rows < 1 {
		return ""
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	var out strings.Builder
	out.Grow(cols * rows * 24)

	sampleRows := rows * 2
	for row := 0; row < rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		for col := 0; col < cols; col++ {
			top := sampleAt(img, b, col, row*2, cols, sampleRows)
			bottom := sampleAt(img, b, col, row*2+1, cols, sampleRows)
			cell := lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀")
			out.WriteString(cell)
		}
	}
	return out.String()
}

// sampleAt returns the hex colour of the source pixel nearest to the given
// sample-grid coordinate.
func sampleAt(img image.Image, b image.Rectangle, x, y, gridW, gridH int) string {
	sx := b.Min.X + x*b.Dx()/gridW
	sy := b.Min.Y + y*b.Dy()/gridH
	if sx >= b.Max.X {
		sx = b.Max.X - 1
	}
	if sy >= b.Max.Y {
		sy = b.Max.Y - 1
	}
	r, g, bl, _ := img.At(sx, sy).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(bl>>8))
}
