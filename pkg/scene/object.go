package scene

import (
	"github.com/taigrr/zraster/pkg/math3d"
	"github.com/taigrr/zraster/pkg/models"
	"github.com/taigrr/zraster/pkg/render"
)

// Object is a mesh placed in a scene with its own texture maps.
//
// Rotation accumulates RotateX/Y/Z calls; nil means no rotation. Objects
// must only be rotated between frames.
type Object struct {
	Name      string
	Triangles []models.Triangle
	Position  math3d.Vec3
	Rotation  *math3d.Mat4
	Maps      render.Maps
}

// NewObject copies the mesh triangles into a new object and rescales their
// coordinates to texel units. Texture UVs are scaled by the diffuse map
// size; normal-map UVs by the normal map size, or by the specular map size
// when there is no normal map. Absent maps leave coordinates as they are.
func NewObject(mesh *models.Mesh, position math3d.Vec3, maps render.Maps) *Object {
	obj := &Object{
		Name:      mesh.Name,
		Triangles: make([]models.Triangle, len(mesh.Triangles)),
		Position:  position,
		Maps:      maps,
	}
	copy(obj.Triangles, mesh.Triangles)

	uvScale, uvOK := texelScale(maps.Diffuse)
	nuvScale, nuvOK := texelScale(maps.Normal)
	if !nuvOK {
		nuvScale, nuvOK = texelScale(maps.Specular)
	}

	for i := range obj.Triangles {
		t := &obj.Triangles[i]
		for j := range 3 {
			if uvOK {
				t.UV[j] = t.UV[j].Mul(uvScale)
			}
			if nuvOK {
				t.NormUV[j] = t.NormUV[j].Mul(nuvScale)
			}
		}
	}
	return obj
}

func texelScale(t *render.Texture) (math3d.Vec2, bool) {
	if t == nil {
		return math3d.Vec2{}, false
	}
	return math3d.V2(float64(t.Width), float64(t.Height)), true
}

// RotateX composes a rotation of degrees around the x axis onto the
// object's rotation.
func (o *Object) RotateX(degrees float64) *Object {
	return o.rotate(math3d.RotateX(math3d.CosSin(degrees)))
}

// RotateY composes a rotation around the y axis.
func (o *Object) RotateY(degrees float64) *Object {
	return o.rotate(math3d.RotateY(math3d.CosSin(degrees)))
}

// RotateZ composes a rotation around the z axis.
func (o *Object) RotateZ(degrees float64) *Object {
	return o.rotate(math3d.RotateZ(math3d.CosSin(degrees)))
}

func (o *Object) rotate(r math3d.Mat4) *Object {
	if o.Rotation == nil {
		o.Rotation = &r
		return o
	}
	m := o.Rotation.Mul(r)
	o.Rotation = &m
	return o
}

// ResetRotation drops any accumulated rotation.
func (o *Object) ResetRotation() {
	o.Rotation = nil
}
