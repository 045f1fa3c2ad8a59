package render

import (
	"math"

	"github.com/taigrr/zraster/pkg/math3d"
)

// DefaultSpecularWeight scales the specular map sample added to intensity.
const DefaultSpecularWeight = 0.6

// Maps holds the optional texture maps of an object. A nil map is absent.
type Maps struct {
	Diffuse  *Texture
	Normal   *Texture
	Specular *Texture
}

// Shader turns interpolated attributes into a final pixel color.
// It is read-only while a frame is in flight.
type Shader struct {
	Maps
	Light          math3d.Vec3 // Unit direction toward the light
	SpecularWeight float64
}

// NewShader creates a shader with the default specular weight.
func NewShader(maps Maps, light math3d.Vec3) *Shader {
	return &Shader{
		Maps:           maps,
		Light:          light.Normalize(),
		SpecularWeight: DefaultSpecularWeight,
	}
}

// Shade computes the color at texture coordinate uv and normal-map coordinate
// nuv. face is the triangle's geometric normal, used when there is no normal
// map.
func (s *Shader) Shade(uv, nuv math3d.Vec2, face math3d.Vec3) Color {
	base := ColorBlack
	if s.Diffuse != nil {
		base = s.Diffuse.Pixel(int(uv.X), int(uv.Y))
	}

	n := face
	if s.Normal != nil {
		n = DecodeNormal(s.Normal.Pixel(int(nuv.X), int(nuv.Y)))
	}
	intensity := n.Normalize().Dot(s.Light)

	if s.Specular != nil {
		intensity += s.Specular.Grey(int(nuv.X), int(nuv.Y)) * s.SpecularWeight
	}
	return AddIntensity(base, intensity)
}

// DecodeNormal maps a normal-map texel to a tangent-space vector.
// Red and green use c/127.5-1; blue is decoded as -(b-128)/127.
func DecodeNormal(c Color) math3d.Vec3 {
	return math3d.V3(
		float64(c.R)/127.5-1,
		float64(c.G)/127.5-1,
		(float64(c.B)-128)/127*-1,
	)
}

// AddIntensity scales R, G and B by intensity. A negative (or NaN) intensity
// gives black. Scaled channels are truncated toward zero and saturate at
// 255. Alpha is kept.
func AddIntensity(c Color, intensity float64) Color {
	if !(intensity >= 0) {
		return Color{A: c.A}
	}
	return Color{
		R: scaleChannel(c.R, intensity),
		G: scaleChannel(c.G, intensity),
		B: scaleChannel(c.B, intensity),
		A: c.A,
	}
}

func scaleChannel(v uint8, intensity float64) uint8 {
	f := math.Trunc(float64(v) * intensity)
	if f >= 255 {
		return 255
	}
	return uint8(f)
}
