package math3d

import "math"

// Mat4 is a 4x4 homogeneous matrix in row-major order:
// element (row, col) lives at m[row*4+col]. Vectors are columns, so
// a.Mul(b) applied to v is a(b(v)).
type Mat4 [16]float64

// singularEps is the pivot magnitude below which a matrix is treated as
// singular during inversion.
const singularEps = 1e-12

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, v.X,
		0, 1, 0, v.Y,
		0, 0, 1, v.Z,
		0, 0, 0, 1,
	}
}

// Scale returns a non-uniform scale matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateX returns a rotation about the X axis from a cosine/sine pair.
func RotateX(cos, sin float64) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, cos, -sin, 0,
		0, sin, cos, 0,
		0, 0, 0, 1,
	}
}

// RotateY returns a rotation about the Y axis from a cosine/sine pair.
func RotateY(cos, sin float64) Mat4 {
	return Mat4{
		cos, 0, sin, 0,
		0, 1, 0, 0,
		-sin, 0, cos, 0,
		0, 0, 0, 1,
	}
}

// RotateZ returns a rotation about the Z axis from a cosine/sine pair.
func RotateZ(cos, sin float64) Mat4 {
	return Mat4{
		cos, -sin, 0, 0,
		sin, cos, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// CosSin returns the cosine and sine of an angle given in degrees.
func CosSin(degrees float64) (cos, sin float64) {
	rad := degrees * math.Pi / 180
	return math.Cos(rad), math.Sin(rad)
}

// Viewport maps the [-1, 1] box onto the pixel rectangle starting at (x, y)
// with size w*h. Depth passes through unscaled.
func Viewport(x, y, w, h float64) Mat4 {
	m := Identity()
	m.Set(0, 0, w/2)
	m.Set(1, 1, h/2)
	m.Set(2, 2, 1)
	m.Set(0, 3, x+w/2)
	m.Set(1, 3, y+h/2)
	return m
}

// Projection returns the identity with a single perspective term
// [3][2] = -1/eyeZ. An eye on the z=0 plane yields the identity.
func Projection(eyeZ float64) Mat4 {
	m := Identity()
	if eyeZ != 0 {
		m.Set(3, 2, -1/eyeZ)
	}
	return m
}

// LookAt builds the view matrix for a camera at eye looking at center.
// The basis is z = norm(eye-center), x = norm(up×z), y = norm(z×x), followed
// by a translation of -center.
//
// If up is parallel to eye-center the x axis collapses to the zero vector;
// the caller must pick a different up.
func LookAt(eye, center, up Vec3) Mat4 {
	z := eye.Sub(center).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x).Normalize()

	basis := Identity()
	for i := range 3 {
		basis.Set(0, i, x.At(i))
		basis.Set(1, i, y.At(i))
		basis.Set(2, i, z.At(i))
	}
	return basis.Mul(Translate(center.Negate()))
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for row := range 4 {
		for col := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row*4+k] * b[k*4+col]
			}
			m[row*4+col] = sum
		}
	}
	return m
}

// MulVec4 multiplies the matrix by a column vector.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3]*v.W,
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7]*v.W,
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11]*v.W,
		m[12]*v.X + m[13]*v.Y + m[14]*v.Z + m[15]*v.W,
	}
}

// Project transforms a point and divides x, y and z by the resulting w.
func (m Mat4) Project(v Vec3) Vec3 {
	return m.MulVec4(Point(v)).PerspectiveDivide()
}

// Transpose returns the transpose.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for row := range 4 {
		for col := range 4 {
			t[col*4+row] = m[row*4+col]
		}
	}
	return t
}

// Inverse returns the inverse, or the identity if m is singular.
func (m Mat4) Inverse() Mat4 {
	inv, ok := m.InverseOK()
	if !ok {
		return Identity()
	}
	return inv
}

// InverseOK inverts m by Gauss-Jordan elimination on the augmented matrix
// [m | I] with partial pivoting. ok is false when a pivot vanishes, in which
// case the identity is returned.
func (m Mat4) InverseOK() (inv Mat4, ok bool) {
	var aug [4][8]float64
	for row := range 4 {
		for col := range 4 {
			aug[row][col] = m[row*4+col]
		}
		aug[row][4+row] = 1
	}

	for col := range 4 {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(aug[row][col]) > math.Abs(aug[pivot][col]) {
				pivot = row
			}
		}
		p := aug[pivot][col]
		if math.Abs(p) < singularEps || !isFinite(p) {
			return Identity(), false
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		for k := range 8 {
			aug[col][k] /= p
		}
		for row := range 4 {
			if row == col {
				continue
			}
			f := aug[row][col]
			if f == 0 {
				continue
			}
			for k := range 8 {
				aug[row][k] -= f * aug[col][k]
			}
		}
	}

	for row := range 4 {
		for col := range 4 {
			inv[row*4+col] = aug[row][4+col]
		}
	}
	return inv, true
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row*4+col]
}

// Set sets the element at (row, col).
func (m *Mat4) Set(row, col int, val float64) {
	m[row*4+col] = val
}

// ApproxEqual reports whether every element of a and b differs by at most eps.
func (m Mat4) ApproxEqual(b Mat4, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
