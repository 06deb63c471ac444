package artwork

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"
)

// RenderHalfBlock draws img into width x height terminal cells. Each cell
// shows two image rows: the upper half as foreground of "▀", the lower half
// as background.
func RenderHalfBlock(img image.Image, width int, height int) []string {
	if img == nil || width < 2 || height < 1 {
		return nil
	}

	resized := resize.Resize(uint(width), uint(height*2), img, resize.Lanczos3)
	b := resized.Bounds()

	lines := make([]string, height)
	for row := 0; row < height; row++ {
		var line strings.Builder
		top := b.Min.Y + row*2
		bottom := top + 1
		if bottom >= b.Max.Y {
			bottom = top
		}

		for x := b.Min.X; x < b.Max.X; x++ {
			upper, ua := cellColor(resized, x, top)
			lower, la := cellColor(resized, x, bottom)
			if ua < 128 && la < 128 {
				line.WriteString(" ")
				continue
			}

			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(upper)).
				Background(lipgloss.Color(lower))
			line.WriteString(style.Render("▀"))
		}
		lines[row] = line.String()
	}

	return lines
}

func cellColor(img image.Image, x, y int) (string, uint32) {
	r, g, b, a := img.At(x, y).RGBA()
	return fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8), a >> 8
}
