// Package scene places textured objects in front of a camera and renders
// them into a depth-tested framebuffer with a pool of goroutines.
package scene

import (
	"context"
	"errors"
	"time"

	"github.com/taigrr/zraster/pkg/math3d"
	"github.com/taigrr/zraster/pkg/render"
	"go.uber.org/zap"
)

// Scheduler defaults.
const (
	DefaultWorkers  = 4
	DefaultMinChunk = 200
)

// ErrWorkerPanic wraps a panic recovered from a rasterizer goroutine.
var ErrWorkerPanic = errors.New("render worker panicked")

// Scene owns the objects and camera of a render, and draws them into a new
// framebuffer on every Draw.
type Scene struct {
	Width  int
	Height int
	Camera Camera

	// Workers caps the number of jobs a frame is split into (roughly).
	Workers int
	// MinChunk is the smallest job, in triangles.
	MinChunk       int
	Background     render.Color
	SpecularWeight float64

	objects []*Object
	total   int
	log     *zap.Logger
	stats   Stats
}

// Option configures a Scene.
type Option func(*Scene)

// WithWorkers sets the thread count used to size jobs.
func WithWorkers(n int) Option {
	return func(s *Scene) { s.Workers = n }
}

// WithMinChunk sets the minimum job size.
func WithMinChunk(n int) Option {
	return func(s *Scene) { s.MinChunk = n }
}

// WithBackground sets the color the framebuffer is cleared to.
func WithBackground(c render.Color) Option {
	return func(s *Scene) { s.Background = c }
}

// WithEye moves the camera eye.
func WithEye(eye math3d.Vec3) Option {
	return func(s *Scene) { s.Camera.SetEye(eye) }
}

// WithUp sets the camera up vector.
func WithUp(up math3d.Vec3) Option {
	return func(s *Scene) { s.Camera.Up = up }
}

// WithSpecularWeight scales specular map contributions.
func WithSpecularWeight(w float64) Option {
	return func(s *Scene) { s.SpecularWeight = w }
}

// WithLogger sets the logger used for frame timing.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates an empty scene rendering height x width pixels lit from the
// light direction.
func New(height, width int, light math3d.Vec3, opts ...Option) *Scene {
	s := &Scene{
		Width:          width,
		Height:         height,
		Camera:         NewCamera(width, height, light),
		Workers:        DefaultWorkers,
		MinChunk:       DefaultMinChunk,
		Background:     render.ColorWhite,
		SpecularWeight: render.DefaultSpecularWeight,
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resize changes the framebuffer size of later frames and refits the
// viewport to it.
func (s *Scene) Resize(width, height int) {
	s.Width, s.Height = width, height
	s.Camera.Viewport = math3d.Viewport(0, 0, float64(width), float64(height))
}

// AddObject adds obj to the scene.
func (s *Scene) AddObject(obj *Object) {
	s.objects = append(s.objects, obj)
	s.total += len(obj.Triangles)
}

// Objects returns the scene's objects in insertion order.
func (s *Scene) Objects() []*Object {
	return s.objects
}

// TriangleCount returns the number of triangles across all objects.
func (s *Scene) TriangleCount() int {
	return s.total
}

// Stats returns the statistics of the last completed Draw.
func (s *Scene) Stats() Stats {
	return s.stats
}

// Draw renders the scene into a fresh framebuffer.
func (s *Scene) Draw() (*render.Framebuffer, error) {
	return s.DrawContext(context.Background())
}

// DrawContext renders the scene into a fresh framebuffer, waiting for every
// worker before it returns. A canceled context stops workers between
// triangles and returns the context error. A panicking worker is reported as
// an error wrapping ErrWorkerPanic; either way no framebuffer is returned.
func (s *Scene) DrawContext(ctx context.Context) (*render.Framebuffer, error) {
	start := time.Now()
	fb := render.NewFramebuffer(s.Width, s.Height, s.Background)

	batches := s.prepare(fb)
	stats, err := s.dispatch(ctx, fb, batches)
	stats.Duration = time.Since(start)
	if err != nil {
		return nil, err
	}

	s.stats = stats
	s.log.Debug("frame drawn",
		zap.Int("jobs", stats.Jobs),
		zap.Int("objects_rejected", stats.Rejected),
		zap.Int64("culled", stats.Culled),
		zap.Int64("drawn", stats.Drawn),
		zap.Int64("fragments", stats.Fragments),
		zap.Duration("duration", stats.Duration),
	)
	return fb, nil
}

// batch is one object after its vertices have been moved to screen space.
type batch struct {
	shader *render.Shader
	tris   [][3]render.Vertex
}

// prepare transforms every object to screen space once per frame and drops
// objects whose screen bounds miss the framebuffer.
func (s *Scene) prepare(fb *render.Framebuffer) []batch {
	batches := make([]batch, 0, len(s.objects))
	for _, obj := range s.objects {
		if len(obj.Triangles) == 0 {
			continue
		}
		mvp := s.Camera.MVP(obj.Position, obj.Rotation)
		tris := make([][3]render.Vertex, len(obj.Triangles))
		bounds := render.EmptyAABB()
		for i, t := range obj.Triangles {
			for j := range 3 {
				p := mvp.Project(t.Pos[j])
				tris[i][j] = render.Vertex{Pos: p, UV: t.UV[j], NormUV: t.NormUV[j]}
				bounds = bounds.Extend(p)
			}
		}
		if !fb.Overlaps(bounds) {
			s.log.Debug("object off screen", zap.String("object", obj.Name))
			continue
		}

		sh := render.NewShader(obj.Maps, s.Camera.Light)
		sh.SpecularWeight = s.SpecularWeight
		batches = append(batches, batch{shader: sh, tris: tris})
	}
	return batches
}
