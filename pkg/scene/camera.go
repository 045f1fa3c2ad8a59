package scene

import (
	"github.com/taigrr/zraster/pkg/math3d"
)

// Default camera placement.
var (
	DefaultEye  = math3d.V3(-1, -1, 3)
	DefaultUp   = math3d.V3(0, 1, 0)
	DefaultView = math3d.V3(0, 0, 1)
)

// Camera is the per-frame camera state. Workers only read it.
type Camera struct {
	Eye   math3d.Vec3
	Up    math3d.Vec3
	Light math3d.Vec3 // Unit direction toward the light
	View  math3d.Vec3 // Screen-space direction toward the viewer, used for culling

	Projection math3d.Mat4
	Viewport   math3d.Mat4
}

// NewCamera creates a camera at the default eye whose viewport covers a
// width x height framebuffer.
func NewCamera(width, height int, light math3d.Vec3) Camera {
	c := Camera{
		Up:       DefaultUp,
		Light:    light.Normalize(),
		View:     DefaultView,
		Viewport: math3d.Viewport(0, 0, float64(width), float64(height)),
	}
	c.SetEye(DefaultEye)
	return c
}

// SetEye moves the eye and rebuilds the projection, whose perspective
// strength follows the eye's distance along z.
func (c *Camera) SetEye(eye math3d.Vec3) {
	c.Eye = eye
	c.Projection = math3d.Projection(eye.Z)
}

// MVP returns viewport · projection · lookAt(eye, position, up) · rotation.
// A nil rotation is the identity.
func (c *Camera) MVP(position math3d.Vec3, rotation *math3d.Mat4) math3d.Mat4 {
	m := c.Viewport.Mul(c.Projection).Mul(math3d.LookAt(c.Eye, position, c.Up))
	if rotation != nil {
		m = m.Mul(*rotation)
	}
	return m
}
