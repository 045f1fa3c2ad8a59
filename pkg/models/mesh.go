// Package models loads triangle meshes for zraster.
package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taigrr/zraster/pkg/math3d"
)

// ErrMalformed is returned when a model file cannot be interpreted.
var ErrMalformed = errors.New("malformed model")

// Triangle is one face: three object-space positions plus texture and
// normal-map coordinates per corner. Coordinates come out of the loaders in
// the 0..1 range with v growing upward.
type Triangle struct {
	Pos    [3]math3d.Vec3
	UV     [3]math3d.Vec2
	NormUV [3]math3d.Vec2
}

// Mesh is a flat arena of triangles.
type Mesh struct {
	Name      string
	Triangles []Triangle

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// Load reads a mesh, choosing the loader from the file extension:
// .obj, .gltf or .glb.
func Load(path string) (*Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	}
	return nil, fmt.Errorf("load %s: unknown model extension: %w", path, ErrMalformed)
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Triangles) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Vec3{}, math3d.Vec3{}
		return
	}

	m.BoundsMin = m.Triangles[0].Pos[0]
	m.BoundsMax = m.Triangles[0].Pos[0]

	for _, t := range m.Triangles {
		for _, p := range t.Pos {
			m.BoundsMin = m.BoundsMin.Min(p)
			m.BoundsMax = m.BoundsMax.Max(p)
		}
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// Transform applies a transformation matrix to every position.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Triangles {
		for j := range 3 {
			m.Triangles[i].Pos[j] = mat.Project(m.Triangles[i].Pos[j])
		}
	}
	m.CalculateBounds()
}

// FitUnit centers the mesh on the origin and scales it so its largest
// dimension spans [-0.5, 0.5]. Meshes with no extent are only centered.
func (m *Mesh) FitUnit() {
	m.CalculateBounds()
	size := m.Size()
	extent := max(size.X, size.Y, size.Z)

	fit := math3d.Translate(m.Center().Negate())
	if extent > 0 {
		fit = math3d.Scale(math3d.V3(1/extent, 1/extent, 1/extent)).Mul(fit)
	}
	m.Transform(fit)
}
