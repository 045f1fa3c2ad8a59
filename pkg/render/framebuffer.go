// Package render provides the depth-buffered software rasterizer for zraster.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
)

// ErrOutOfBounds is returned when a pixel coordinate falls outside the
// framebuffer.
var ErrOutOfBounds = errors.New("out of image boundaries")

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{A: 255}
	ColorWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// RGBA creates a color from RGBA values.
func RGBA(r, g, b, a uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: a}
}

// Fragment is one shaded, depth-tagged pixel waiting to be written.
type Fragment struct {
	X, Y  int
	Depth float64
	Color Color
}

// Framebuffer is a color buffer plus a depth buffer of the same shape.
// Depth starts at -Inf, so any finite depth wins the first write; larger
// depth is closer to the viewer.
//
// Writes are serialised by a mutex. SetPixels takes it once per batch, which
// is what concurrent rasterizer workers use.
type Framebuffer struct {
	Width  int
	Height int
	Color  []Color   // Row-major, index y*Width+x
	Depth  []float64 // Row-major, parallel to Color

	mu sync.Mutex
}

// NewFramebuffer creates a framebuffer cleared to bg.
func NewFramebuffer(width, height int, bg Color) *Framebuffer {
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Color:  make([]Color, width*height),
		Depth:  make([]float64, width*height),
	}
	fb.Clear(bg)
	return fb
}

// Clear fills the color buffer with bg and resets every depth to -Inf.
func (fb *Framebuffer) Clear(bg Color) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	n := len(fb.Color)
	if n == 0 {
		return
	}
	// Copy-doubling fill.
	fb.Color[0] = bg
	fb.Depth[0] = math.Inf(-1)
	for i := 1; i < n; i *= 2 {
		copy(fb.Color[i:], fb.Color[:i])
		copy(fb.Depth[i:], fb.Depth[:i])
	}
}

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

// SetPixel writes c at (x, y) if depth is strictly greater than the stored
// depth. Equal depths keep the first writer. It reports whether the write was
// accepted and returns ErrOutOfBounds for coordinates outside the buffer.
func (fb *Framebuffer) SetPixel(x, y int, depth float64, c Color) (bool, error) {
	if !fb.inBounds(x, y) {
		return false, fmt.Errorf("set pixel (%d, %d) in %dx%d: %w", x, y, fb.Width, fb.Height, ErrOutOfBounds)
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.setUnlocked(x, y, depth, c), nil
}

// SetPixels applies the depth test to every fragment in the batch while
// holding the lock once. Out-of-bounds fragments are skipped. It returns the
// number of accepted writes.
func (fb *Framebuffer) SetPixels(batch []Fragment) int {
	if len(batch) == 0 {
		return 0
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()

	written := 0
	for _, f := range batch {
		if !fb.inBounds(f.X, f.Y) {
			continue
		}
		if fb.setUnlocked(f.X, f.Y, f.Depth, f.Color) {
			written++
		}
	}
	return written
}

func (fb *Framebuffer) setUnlocked(x, y int, depth float64, c Color) bool {
	i := y*fb.Width + x
	if !(depth > fb.Depth[i]) {
		return false
	}
	fb.Color[i] = c
	fb.Depth[i] = depth
	return true
}

// At returns the color at (x, y), or transparent black if out of bounds.
func (fb *Framebuffer) At(x, y int) Color {
	if !fb.inBounds(x, y) {
		return Color{}
	}
	return fb.Color[y*fb.Width+x]
}

// DepthAt returns the stored depth at (x, y), or -Inf if out of bounds.
func (fb *Framebuffer) DepthAt(x, y int) float64 {
	if !fb.inBounds(x, y) {
		return math.Inf(-1)
	}
	return fb.Depth[y*fb.Width+x]
}

// FlipVertically swaps row y with row Height-1-y in the color buffer.
// The depth buffer is left alone.
func (fb *Framebuffer) FlipVertically() {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	w := fb.Width
	tmp := make([]Color, w)
	for top, bot := 0, fb.Height-1; top < bot; top, bot = top+1, bot-1 {
		a := fb.Color[top*w : (top+1)*w]
		b := fb.Color[bot*w : (bot+1)*w]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// ToImage converts the color buffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Color[y*fb.Width+x])
		}
	}
	return img
}
