package render

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestNewFramebuffer(t *testing.T) {
	fb := NewFramebuffer(4, 3, ColorWhite)
	if len(fb.Color) != 12 || len(fb.Depth) != 12 {
		t.Fatalf("buffer lengths = %d/%d, want 12", len(fb.Color), len(fb.Depth))
	}
	for i := range fb.Color {
		if fb.Color[i] != ColorWhite {
			t.Errorf("color[%d] = %v, want background", i, fb.Color[i])
		}
		if !math.IsInf(fb.Depth[i], -1) {
			t.Errorf("depth[%d] = %v, want -Inf", i, fb.Depth[i])
		}
	}
}

func TestSetPixelDepthTest(t *testing.T) {
	red, blue := RGB(255, 0, 0), RGB(0, 0, 255)
	tests := []struct {
		name      string
		first     float64
		second    float64
		wantColor Color
		wantDepth float64
	}{
		{"nearer wins", 1, 2, blue, 2},
		{"farther loses", 2, 1, red, 2},
		{"tie keeps first", 1.5, 1.5, red, 1.5},
		{"negative depth", -10, -20, red, -10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := NewFramebuffer(2, 2, ColorWhite)
			if ok, err := fb.SetPixel(1, 1, tt.first, red); err != nil || !ok {
				t.Fatalf("first write = %v, %v", ok, err)
			}
			if _, err := fb.SetPixel(1, 1, tt.second, blue); err != nil {
				t.Fatalf("second write: %v", err)
			}
			if got := fb.At(1, 1); got != tt.wantColor {
				t.Errorf("color = %v, want %v", got, tt.wantColor)
			}
			if got := fb.DepthAt(1, 1); got != tt.wantDepth {
				t.Errorf("depth = %v, want %v", got, tt.wantDepth)
			}
		})
	}
}

func TestSetPixelNaNDepth(t *testing.T) {
	fb := NewFramebuffer(1, 1, ColorWhite)
	if ok, _ := fb.SetPixel(0, 0, math.NaN(), ColorBlack); ok {
		t.Error("NaN depth was accepted")
	}
}

func TestSetPixelOutOfBounds(t *testing.T) {
	fb := NewFramebuffer(4, 4, ColorWhite)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}, {100, 100}} {
		ok, err := fb.SetPixel(p[0], p[1], 1, ColorBlack)
		if ok {
			t.Errorf("SetPixel(%v) reported a write", p)
		}
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("SetPixel(%v) error = %v, want ErrOutOfBounds", p, err)
		}
	}
}

func TestSetPixelsBatch(t *testing.T) {
	fb := NewFramebuffer(3, 3, ColorWhite)
	batch := []Fragment{
		{X: 0, Y: 0, Depth: 1, Color: ColorBlack},
		{X: 0, Y: 0, Depth: 0.5, Color: RGB(1, 2, 3)}, // behind the first
		{X: 1, Y: 1, Depth: 1, Color: ColorBlack},
		{X: 5, Y: 1, Depth: 9, Color: ColorBlack}, // out of bounds
		{X: 1, Y: 1, Depth: 3, Color: RGB(9, 9, 9)},
	}
	if n := fb.SetPixels(batch); n != 3 {
		t.Errorf("SetPixels accepted %d, want 3", n)
	}
	if got := fb.At(1, 1); got != RGB(9, 9, 9) {
		t.Errorf("(1,1) = %v, want last nearer write", got)
	}
	if got := fb.At(0, 0); got != ColorBlack {
		t.Errorf("(0,0) = %v, want first write", got)
	}
}

// Many goroutines offer random depths to the same pixels; the final depth
// must be the maximum offered regardless of interleaving.
func TestSetPixelsConcurrentMax(t *testing.T) {
	const (
		w, h    = 16, 16
		workers = 8
		batches = 50
	)
	fb := NewFramebuffer(w, h, ColorWhite)
	maxes := make([][]float64, workers)

	var g errgroup.Group
	for worker := range workers {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(uint64(worker), 7))
			local := make([]float64, w*h)
			for i := range local {
				local[i] = math.Inf(-1)
			}
			for range batches {
				batch := make([]Fragment, 0, 64)
				for range 64 {
					x, y := rng.IntN(w), rng.IntN(h)
					d := rng.Float64()*200 - 100
					batch = append(batch, Fragment{X: x, Y: y, Depth: d, Color: RGB(uint8(worker), 0, 0)})
					local[y*w+x] = math.Max(local[y*w+x], d)
				}
				fb.SetPixels(batch)
			}
			maxes[worker] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	for i := range fb.Depth {
		want := math.Inf(-1)
		for _, local := range maxes {
			want = math.Max(want, local[i])
		}
		if fb.Depth[i] != want {
			t.Errorf("depth[%d] = %v, want max offered %v", i, fb.Depth[i], want)
		}
	}
}

func TestFlipVertically(t *testing.T) {
	for _, h := range []int{1, 2, 5, 6} {
		fb := NewFramebuffer(3, h, ColorWhite)
		for y := range h {
			for x := range 3 {
				fb.SetPixel(x, y, float64(y), RGB(uint8(x), uint8(y), 0))
			}
		}
		origColor := append([]Color(nil), fb.Color...)
		origDepth := append([]float64(nil), fb.Depth...)

		fb.FlipVertically()
		for y := range h {
			if got := fb.At(0, y); got.G != uint8(h-1-y) {
				t.Errorf("h=%d: row %d holds row %d after flip", h, y, got.G)
			}
		}
		for i := range origDepth {
			if fb.Depth[i] != origDepth[i] {
				t.Fatalf("h=%d: flip touched depth[%d]", h, i)
			}
		}

		fb.FlipVertically()
		for i := range origColor {
			if fb.Color[i] != origColor[i] {
				t.Fatalf("h=%d: double flip changed color[%d]", h, i)
			}
		}
	}
}

func TestClearResetsDepth(t *testing.T) {
	fb := NewFramebuffer(5, 5, ColorWhite)
	fb.SetPixel(2, 2, 4, ColorBlack)
	fb.Clear(RGB(1, 2, 3))
	if got := fb.At(2, 2); got != RGB(1, 2, 3) {
		t.Errorf("color after clear = %v", got)
	}
	if d := fb.DepthAt(2, 2); !math.IsInf(d, -1) {
		t.Errorf("depth after clear = %v, want -Inf", d)
	}
}

func TestToImage(t *testing.T) {
	fb := NewFramebuffer(4, 2, ColorWhite)
	fb.SetPixel(3, 1, 1, ColorBlack)
	img := fb.ToImage()
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := img.RGBAAt(3, 1); got != ColorBlack {
		t.Errorf("image pixel = %v, want black", got)
	}
}
