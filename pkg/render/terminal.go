package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw blits the color buffer onto a terminal screen using half blocks.
// Rasterized frames are y-up (row 0 is the bottom), so the top terminal row
// shows the last two framebuffer rows.
// The framebuffer height should be 2x the terminal height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// We use ▀ (upper half block) with fg=top color and bg=bottom color
	for row := area.Min.Y; row < area.Max.Y; row++ {
		local := row - area.Min.Y
		topY := fb.Height - 1 - local*2
		botY := topY - 1
		if topY < 0 {
			break
		}

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.At(x, topY)),
					Bg: rgbaToColor(fb.At(x, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}
