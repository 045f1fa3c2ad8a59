package render

import (
	"math"

	"github.com/taigrr/zraster/pkg/math3d"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// EmptyAABB returns an inverted box that any Extend call replaces.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: math3d.V3(inf, inf, inf),
		Max: math3d.V3(-inf, -inf, -inf),
	}
}

// IsEmpty reports whether the box holds no point.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend grows the box to include p.
func (b AABB) Extend(p math3d.Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Overlaps reports whether a screen-space box can cover any pixel of fb.
// Only X and Y are considered.
func (fb *Framebuffer) Overlaps(box AABB) bool {
	if box.IsEmpty() {
		return false
	}
	return box.Max.X >= 0 && box.Min.X < float64(fb.Width) &&
		box.Max.Y >= 0 && box.Min.Y < float64(fb.Height)
}
