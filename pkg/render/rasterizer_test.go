package render

import (
	"math"
	"testing"

	"github.com/taigrr/zraster/pkg/math3d"
)

var (
	testRed  = RGB(200, 10, 10)
	testBlue = RGB(10, 10, 200)
)

// solidShader shades every pixel with c at full intensity: a 1x1 diffuse map
// and a light pointing at the viewer.
func solidShader(c Color) *Shader {
	return NewShader(Maps{Diffuse: NewSolidTexture(1, 1, c)}, math3d.V3(0, 0, 1))
}

func tri(a, b, c math3d.Vec3) [3]Vertex {
	return [3]Vertex{{Pos: a}, {Pos: b}, {Pos: c}}
}

func countWritten(fb *Framebuffer) int {
	n := 0
	for _, d := range fb.Depth {
		if !math.IsInf(d, -1) {
			n++
		}
	}
	return n
}

func TestFillTriangleFlatY(t *testing.T) {
	fb := NewFramebuffer(20, 20, ColorWhite)
	tests := []struct {
		name string
		v    [3]Vertex
	}{
		{"horizontal line", tri(math3d.V3(0, 5, 1), math3d.V3(10, 5, 1), math3d.V3(19, 5, 1))},
		{"single point", tri(math3d.V3(3, 3, 1), math3d.V3(3, 3, 1), math3d.V3(3, 3, 1))},
		{"fractional row", tri(math3d.V3(0, 4.5, 1), math3d.V3(7, 4.5, 1), math3d.V3(2, 4.5, 1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if n := fb.FillTriangle(tt.v, solidShader(testRed)); n != 0 {
				t.Errorf("FillTriangle wrote %d pixels, want 0", n)
			}
		})
	}
	if n := countWritten(fb); n != 0 {
		t.Errorf("depth buffer has %d written pixels, want 0", n)
	}
}

func TestFillTriangleScenario(t *testing.T) {
	fb := NewFramebuffer(20, 20, ColorWhite)
	n := fb.FillTriangle(
		tri(math3d.V3(0, 0, 1), math3d.V3(10, 0, 1), math3d.V3(5, 10, 1)),
		solidShader(testRed),
	)

	// Row y spans [y/2, 10-y/2) for y in [0, 10).
	covered := func(x, y int) bool {
		fx, fy := float64(x), float64(y)
		return y < 10 && fx >= fy/2 && fx < 10-fy/2
	}

	want := 0
	for y := range 20 {
		for x := range 20 {
			got := fb.At(x, y)
			if covered(x, y) {
				want++
				if got != testRed {
					t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, testRed)
				}
				continue
			}
			if got != ColorWhite {
				t.Errorf("pixel (%d,%d) = %v, want background", x, y, got)
			}
		}
	}
	if n != want {
		t.Errorf("FillTriangle returned %d, want %d", n, want)
	}
}

func TestFillTriangleVertexOrder(t *testing.T) {
	a, b, c := math3d.V3(2, 1, 1), math3d.V3(17, 6, 1), math3d.V3(8, 15, 1)
	orders := [][3]math3d.Vec3{{a, b, c}, {b, c, a}, {c, a, b}, {a, c, b}, {c, b, a}, {b, a, c}}

	ref := NewFramebuffer(20, 20, ColorWhite)
	ref.FillTriangle(tri(a, b, c), solidShader(testRed))

	for i, o := range orders {
		fb := NewFramebuffer(20, 20, ColorWhite)
		fb.FillTriangle(tri(o[0], o[1], o[2]), solidShader(testRed))
		// Winding flips the shading, so compare coverage only.
		for p := range fb.Depth {
			if math.IsInf(fb.Depth[p], -1) != math.IsInf(ref.Depth[p], -1) {
				t.Errorf("order %d: coverage of pixel %d differs", i, p)
				break
			}
		}
	}
}

func TestFillTriangleSharedEdge(t *testing.T) {
	tests := []struct {
		name   string
		first  [3]math3d.Vec3
		second [3]math3d.Vec3
		area   int
	}{
		{
			name:   "diagonal",
			first:  [3]math3d.Vec3{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}},
			second: [3]math3d.Vec3{{X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
			area:   100,
		},
		{
			name:   "vertical split",
			first:  [3]math3d.Vec3{{X: 2, Y: 1}, {X: 9, Y: 4}, {X: 9, Y: 17}},
			second: [3]math3d.Vec3{{X: 9, Y: 4}, {X: 16, Y: 9}, {X: 9, Y: 17}},
			area:   -1,
		},
		{
			name:   "fractional",
			first:  [3]math3d.Vec3{{X: 0.3, Y: 0.7}, {X: 12.6, Y: 3.1}, {X: 4.2, Y: 18.9}},
			second: [3]math3d.Vec3{{X: 12.6, Y: 3.1}, {X: 18.4, Y: 15.5}, {X: 4.2, Y: 18.9}},
			area:   -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := NewFramebuffer(20, 20, ColorWhite)
			first, second := tt.first, tt.second
			for i := range 3 {
				first[i].Z = 1
				second[i].Z = 2
			}
			n1 := fb.FillTriangle(tri(first[0], first[1], first[2]), solidShader(testRed))
			// Higher depth: any pixel claimed by both would be written twice.
			n2 := fb.FillTriangle(tri(second[0], second[1], second[2]), solidShader(ColorBlack))

			written := countWritten(fb)
			if n1+n2 != written {
				t.Errorf("writes %d+%d != distinct pixels %d: shared edge written twice", n1, n2, written)
			}
			if tt.area >= 0 && written != tt.area {
				t.Errorf("union covers %d pixels, want %d", written, tt.area)
			}
		})
	}
}

func TestFillTriangleSharedEdgeNoGap(t *testing.T) {
	// A 10x10 square split along both diagonals into four triangles.
	c := math3d.V3(5, 5, 1)
	corners := []math3d.Vec3{{X: 0, Y: 0, Z: 1}, {X: 10, Y: 0, Z: 1}, {X: 10, Y: 10, Z: 1}, {X: 0, Y: 10, Z: 1}}

	fb := NewFramebuffer(12, 12, ColorWhite)
	total := 0
	for i := range corners {
		total += fb.FillTriangle(tri(corners[i], corners[(i+1)%4], c), solidShader(testRed))
	}
	if total != 100 {
		t.Errorf("four triangles wrote %d pixels, want 100", total)
	}
	for y := range 10 {
		for x := range 10 {
			if fb.At(x, y) != testRed {
				t.Errorf("gap at (%d,%d)", x, y)
			}
		}
	}
}

func TestFillTriangleOffscreen(t *testing.T) {
	tests := []struct {
		name string
		v    [3]Vertex
	}{
		{"left", tri(math3d.V3(-30, 0, 1), math3d.V3(-20, 0, 1), math3d.V3(-25, 10, 1))},
		{"right", tri(math3d.V3(30, 0, 1), math3d.V3(40, 0, 1), math3d.V3(35, 10, 1))},
		{"above", tri(math3d.V3(0, 25, 1), math3d.V3(10, 25, 1), math3d.V3(5, 35, 1))},
		{"below", tri(math3d.V3(0, -15, 1), math3d.V3(10, -15, 1), math3d.V3(5, -5, 1))},
		{"huge negative", tri(math3d.V3(-1e9, -1e9, 1), math3d.V3(-1e9+10, -1e9, 1), math3d.V3(-1e9, -1e9+10, 1))},
		{"nan", tri(math3d.V3(math.NaN(), 0, 1), math3d.V3(10, 0, 1), math3d.V3(5, 10, 1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := NewFramebuffer(20, 20, ColorWhite)
			if n := fb.FillTriangle(tt.v, solidShader(testRed)); n != 0 {
				t.Errorf("wrote %d pixels, want 0", n)
			}
			if n := countWritten(fb); n != 0 {
				t.Errorf("depth buffer has %d written pixels", n)
			}
		})
	}
}

func TestFillTriangleClipsPartial(t *testing.T) {
	fb := NewFramebuffer(10, 10, ColorWhite)
	n := fb.FillTriangle(
		tri(math3d.V3(-10, -10, 1), math3d.V3(30, -10, 1), math3d.V3(-10, 30, 1)),
		solidShader(testRed),
	)
	// Every pixel of the buffer lies inside x+y < 20.
	if n != 100 {
		t.Errorf("clipped triangle wrote %d pixels, want 100", n)
	}
}

func TestFillTriangleDepthInterpolation(t *testing.T) {
	fb := NewFramebuffer(20, 20, ColorWhite)
	fb.FillTriangle(
		tri(math3d.V3(0, 0, 0), math3d.V3(16, 0, 16), math3d.V3(0, 16, 0)),
		solidShader(testRed),
	)
	// Depth equals x on every row.
	for _, p := range [][2]int{{0, 0}, {4, 2}, {8, 3}, {10, 5}} {
		if got := fb.DepthAt(p[0], p[1]); math.Abs(got-float64(p[0])) > 1e-9 {
			t.Errorf("depth at %v = %v, want %v", p, got, p[0])
		}
	}
}

func TestFillTriangleDepthTest(t *testing.T) {
	fb := NewFramebuffer(20, 20, ColorWhite)
	near := tri(math3d.V3(0, 0, 5), math3d.V3(20, 0, 5), math3d.V3(0, 20, 5))
	far := tri(math3d.V3(0, 0, 1), math3d.V3(20, 0, 1), math3d.V3(0, 20, 1))

	fb.FillTriangle(near, solidShader(testRed))
	if n := fb.FillTriangle(far, solidShader(ColorBlack)); n != 0 {
		t.Errorf("far triangle overwrote %d pixels", n)
	}
	if got := fb.At(2, 2); got != testRed {
		t.Errorf("pixel = %v, want near color", got)
	}
}

func TestFillTriangleUVInterpolation(t *testing.T) {
	// 2x1 texture: left texel red, right texel blue. UVs in texel units.
	tex := NewTexture(2, 1, FormatRGBA)
	tex.SetPixel(0, 0, testRed)
	tex.SetPixel(1, 0, testBlue)
	sh := NewShader(Maps{Diffuse: tex}, math3d.V3(0, 0, 1))

	v := [3]Vertex{
		{Pos: math3d.V3(0, 0, 1), UV: math3d.V2(0, 0)},
		{Pos: math3d.V3(10, 0, 1), UV: math3d.V2(2, 0)},
		{Pos: math3d.V3(0, 10, 1), UV: math3d.V2(0, 0)},
	}
	fb := NewFramebuffer(10, 10, ColorWhite)
	fb.FillTriangle(v, sh)

	if got := fb.At(1, 0); got != testRed {
		t.Errorf("left pixel = %v, want red", got)
	}
	if got := fb.At(8, 0); got != testBlue {
		t.Errorf("right pixel = %v, want blue", got)
	}
}

func TestFaceNormal(t *testing.T) {
	ccw := FaceNormal(math3d.V3(0, 0, 1), math3d.V3(10, 0, 1), math3d.V3(5, 10, 1))
	if ccw != math3d.V3(0, 0, 1) {
		t.Errorf("ccw normal = %v, want +z", ccw)
	}
	cw := FaceNormal(math3d.V3(0, 0, 1), math3d.V3(5, 10, 1), math3d.V3(10, 0, 1))
	if cw != math3d.V3(0, 0, -1) {
		t.Errorf("cw normal = %v, want -z", cw)
	}
	if d := FaceNormal(math3d.V3(1, 1, 1), math3d.V3(1, 1, 1), math3d.V3(2, 2, 2)); d != (math3d.Vec3{}) {
		t.Errorf("degenerate normal = %v, want zero", d)
	}
}

func BenchmarkFillTriangle(b *testing.B) {
	fb := NewFramebuffer(256, 256, ColorWhite)
	r := NewRasterizer(fb)
	sh := solidShader(testRed)
	v := tri(math3d.V3(10, 10, 1), math3d.V3(240, 30, 1), math3d.V3(120, 245, 1))

	for b.Loop() {
		fb.Clear(ColorWhite)
		r.FillTriangle(v, sh)
	}
}
