package render

import (
	"math"

	"github.com/taigrr/zraster/pkg/math3d"
)

// Vertex is a screen-space vertex. Pos.X and Pos.Y are pixel coordinates,
// Pos.Z is the depth compared in the depth buffer (larger is nearer). UV and
// NormUV are already in texel units of the diffuse and normal maps.
type Vertex struct {
	Pos    math3d.Vec3
	UV     math3d.Vec2
	NormUV math3d.Vec2
}

// Rasterizer fills triangles into a framebuffer. It keeps a scratch fragment
// buffer, so one Rasterizer must not be shared between goroutines; give each
// worker its own over the same Framebuffer.
type Rasterizer struct {
	fb    *Framebuffer
	frags []Fragment
}

// NewRasterizer creates a rasterizer writing into fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	return &Rasterizer{fb: fb}
}

// FillTriangle rasterizes one triangle with a throwaway Rasterizer.
func (fb *Framebuffer) FillTriangle(v [3]Vertex, sh *Shader) int {
	return NewRasterizer(fb).FillTriangle(v, sh)
}

// FaceNormal returns norm((a-b) × (a-c)). In a y-up screen space a
// counter-clockwise triangle has a normal pointing toward +z.
func FaceNormal(a, b, c math3d.Vec3) math3d.Vec3 {
	return a.Sub(b).Cross(a.Sub(c)).Normalize()
}

// edge walks one triangle side a row at a time, carrying x, depth and both
// UV sets. Values advance by a constant per-row delta.
type edge struct {
	x, z    float64
	uv, nuv math3d.Vec2

	dx, dz    float64
	duv, dnuv math3d.Vec2
}

// newEdge starts an edge at a and pre-steps it to row y. A side with no
// height gets zero deltas.
func newEdge(a, b Vertex, y float64) edge {
	e := edge{x: a.Pos.X, z: a.Pos.Z, uv: a.UV, nuv: a.NormUV}
	if dy := b.Pos.Y - a.Pos.Y; dy > 0 {
		inv := 1 / dy
		e.dx = (b.Pos.X - a.Pos.X) * inv
		e.dz = (b.Pos.Z - a.Pos.Z) * inv
		e.duv = b.UV.Sub(a.UV).Scale(inv)
		e.dnuv = b.NormUV.Sub(a.NormUV).Scale(inv)
	}
	e.advance(y - a.Pos.Y)
	return e
}

func (e *edge) advance(rows float64) {
	e.x += e.dx * rows
	e.z += e.dz * rows
	e.uv = e.uv.Add(e.duv.Scale(rows))
	e.nuv = e.nuv.Add(e.dnuv.Scale(rows))
}

func (e *edge) step() {
	e.x += e.dx
	e.z += e.dz
	e.uv = e.uv.Add(e.duv)
	e.nuv = e.nuv.Add(e.dnuv)
}

// FillTriangle scanline-fills a screen-space triangle, shading every covered
// pixel with sh and submitting the result to the framebuffer as one
// depth-tested batch. It returns the number of pixels that passed the depth
// test.
//
// Coverage is half-open in both directions: a pixel (x, y) is covered when
// top <= y < bottom and left <= x < right on its row, so triangles sharing an
// edge never both claim a pixel on it. Rows and spans are clipped to the
// framebuffer.
func (r *Rasterizer) FillTriangle(v [3]Vertex, sh *Shader) int {
	if v[0].Pos.Y == v[1].Pos.Y && v[1].Pos.Y == v[2].Pos.Y {
		return 0
	}
	for i := range v {
		if !v[i].Pos.IsFinite() {
			return 0
		}
	}
	if sh == nil {
		sh = &Shader{}
	}
	face := FaceNormal(v[0].Pos, v[1].Pos, v[2].Pos)

	top, mid, bot := sortByY(v)

	height := float64(r.fb.Height)
	yStart := math.Max(math.Ceil(top.Pos.Y), 0)
	yMid := math.Min(math.Ceil(mid.Pos.Y), height)
	yEnd := math.Min(math.Ceil(bot.Pos.Y), height)
	if yStart >= yEnd {
		return 0
	}

	r.frags = r.frags[:0]
	long := newEdge(top, bot, yStart)

	y := yStart
	if y < yMid {
		short := newEdge(top, mid, y)
		for ; y < yMid; y++ {
			r.span(int(y), &short, &long, sh, face)
			short.step()
			long.step()
		}
	}
	if y < yEnd {
		short := newEdge(mid, bot, y)
		for ; y < yEnd; y++ {
			r.span(int(y), &short, &long, sh, face)
			short.step()
			long.step()
		}
	}

	return r.fb.SetPixels(r.frags)
}

// span shades the pixels of row y between two edges.
func (r *Rasterizer) span(y int, a, b *edge, sh *Shader, face math3d.Vec3) {
	left, right := a, b
	if left.x > right.x {
		left, right = right, left
	}
	xStart := math.Max(math.Ceil(left.x), 0)
	xEnd := math.Min(math.Ceil(right.x), float64(r.fb.Width))
	width := right.x - left.x

	for x := xStart; x < xEnd; x++ {
		phi := clamp01((x - left.x) / width)
		depth := left.z + (right.z-left.z)*phi
		uv := left.uv.Lerp(right.uv, phi)
		nuv := left.nuv.Lerp(right.nuv, phi)

		r.frags = append(r.frags, Fragment{
			X:     int(x),
			Y:     y,
			Depth: depth,
			Color: sh.Shade(uv, nuv, face),
		})
	}
}

func sortByY(v [3]Vertex) (top, mid, bot Vertex) {
	top, mid, bot = v[0], v[1], v[2]
	if mid.Pos.Y < top.Pos.Y {
		top, mid = mid, top
	}
	if bot.Pos.Y < mid.Pos.Y {
		mid, bot = bot, mid
	}
	if mid.Pos.Y < top.Pos.Y {
		top, mid = mid, top
	}
	return top, mid, bot
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
