package render

import (
	"math"
	"testing"

	"github.com/taigrr/zraster/pkg/math3d"
)

func TestAddIntensity(t *testing.T) {
	base := RGBA(200, 100, 50, 77)
	tests := []struct {
		name      string
		intensity float64
		want      Color
	}{
		{"full", 1, RGBA(200, 100, 50, 77)},
		{"half truncates", 0.5, RGBA(100, 50, 25, 77)},
		{"third truncates", 1.0 / 3, RGBA(66, 33, 16, 77)},
		{"zero", 0, RGBA(0, 0, 0, 77)},
		{"negative is black", -0.2, RGBA(0, 0, 0, 77)},
		{"overflow saturates", 2, RGBA(255, 200, 100, 77)},
		{"nan is black", math.NaN(), RGBA(0, 0, 0, 77)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddIntensity(base, tt.intensity); got != tt.want {
				t.Errorf("AddIntensity(%v) = %v, want %v", tt.intensity, got, tt.want)
			}
		})
	}
}

func TestDecodeNormal(t *testing.T) {
	tests := []struct {
		name string
		in   Color
		want math3d.Vec3
	}{
		{"flat blue", RGB(128, 128, 255), math3d.V3(128/127.5-1, 128/127.5-1, -1)},
		{"zero", RGB(0, 0, 0), math3d.V3(-1, -1, 128.0/127)},
		{"max", RGB(255, 255, 128), math3d.V3(1, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeNormal(tt.in)
			if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 || math.Abs(got.Z-tt.want.Z) > 1e-12 {
				t.Errorf("DecodeNormal(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestShadeNoDiffuseIsBlack(t *testing.T) {
	sh := NewShader(Maps{}, math3d.V3(0, 0, 1))
	if got := sh.Shade(math3d.V2(3, 3), math3d.V2(3, 3), math3d.V3(0, 0, 1)); got != ColorBlack {
		t.Errorf("Shade without diffuse = %v, want black", got)
	}
}

func TestShadeFaceNormalFallback(t *testing.T) {
	sh := NewShader(Maps{Diffuse: NewSolidTexture(1, 1, RGB(100, 100, 100))}, math3d.V3(0, 0, 1))
	tests := []struct {
		name string
		face math3d.Vec3
		want Color
	}{
		{"facing light", math3d.V3(0, 0, 1), RGB(100, 100, 100)},
		{"oblique", math3d.V3(0, 1, 1), RGB(70, 70, 70)},
		{"away", math3d.V3(0, 0, -1), RGB(0, 0, 0)},
		{"degenerate", math3d.Vec3{}, RGB(0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sh.Shade(math3d.V2(0, 0), math3d.V2(0, 0), tt.face); got != tt.want {
				t.Errorf("Shade = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShadeNormalMap(t *testing.T) {
	// Normal map texel (128,128,0) decodes to roughly (0, 0, 1).
	normal := NewSolidTexture(1, 1, RGB(128, 128, 0))
	diffuse := NewSolidTexture(1, 1, RGB(200, 200, 200))
	sh := NewShader(Maps{Diffuse: diffuse, Normal: normal}, math3d.V3(0, 0, 1))

	// The face normal points away, but the map wins.
	got := sh.Shade(math3d.V2(0, 0), math3d.V2(0, 0), math3d.V3(0, 0, -1))
	if got.R < 199 {
		t.Errorf("normal-mapped shade = %v, want near full intensity", got)
	}
}

func TestShadeSpecular(t *testing.T) {
	diffuse := NewSolidTexture(1, 1, RGB(100, 100, 100))
	spec := NewTexture(1, 1, FormatGrey)
	spec.SetPixel(0, 0, RGB(255, 255, 255))

	sh := NewShader(Maps{Diffuse: diffuse, Specular: spec}, math3d.V3(0, 0, 1))
	sh.SpecularWeight = 0.5

	// intensity = 1 + 1*0.5
	got := sh.Shade(math3d.V2(0, 0), math3d.V2(0, 0), math3d.V3(0, 0, 1))
	if got != RGB(150, 150, 150) {
		t.Errorf("specular shade = %v, want (150,150,150)", got)
	}
}
