package math

import (
	"github.com/chewxy/math32"
)

func NewVec2Create(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func NewVec3Create(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func NewVec4Create(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

func (v Vec3) LengthSquared() float32 {
	return v.Dot(v)
}

func (v Vec3) Length() float32 {
	return math32.Sqrt(v.LengthSquared())
}

// Normalized returns the unit vector, or the zero vector when the length is zero.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1.0 / l)
}

// NewMat4Identity creates and returns an identity matrix.
func NewMat4Identity() Mat4 {
	m := Mat4{}
	m.Data[0] = 1.0
	m.Data[5] = 1.0
	m.Data[10] = 1.0
	m.Data[15] = 1.0
	return m
}

// Mul returns m * other (column-major, column vectors).
func (m Mat4) Mul(other Mat4) Mat4 {
	out := Mat4{}
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m.Data[k*4+row] * other.Data[col*4+k]
			}
			out.Data[col*4+row] = sum
		}
	}
	return out
}

// TransformPoint applies the matrix to a point (w = 1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		X: m.Data[0]*p.X + m.Data[4]*p.Y + m.Data[8]*p.Z + m.Data[12],
		Y: m.Data[1]*p.X + m.Data[5]*p.Y + m.Data[9]*p.Z + m.Data[13],
		Z: m.Data[2]*p.X + m.Data[6]*p.Y + m.Data[10]*p.Z + m.Data[14],
	}
}

// TransformVector applies the matrix to a direction (w = 0).
func (m Mat4) TransformVector(v Vec3) Vec3 {
	return Vec3{
		X: m.Data[0]*v.X + m.Data[4]*v.Y + m.Data[8]*v.Z,
		Y: m.Data[1]*v.X + m.Data[5]*v.Y + m.Data[9]*v.Z,
		Z: m.Data[2]*v.X + m.Data[6]*v.Y + m.Data[10]*v.Z,
	}
}

// Translation returns the matrix translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{X: m.Data[12], Y: m.Data[13], Z: m.Data[14]}
}

// NewMat4LookToLH builds a left-handed view matrix from an eye position and a
// view direction.
func NewMat4LookToLH(eye, dir, up Vec3) Mat4 {
	f := dir.Normalized()
	s := up.Cross(f).Normalized()
	u := f.Cross(s)

	m := NewMat4Identity()
	m.Data[0] = s.X
	m.Data[4] = s.Y
	m.Data[8] = s.Z
	m.Data[1] = u.X
	m.Data[5] = u.Y
	m.Data[9] = u.Z
	m.Data[2] = f.X
	m.Data[6] = f.Y
	m.Data[10] = f.Z
	m.Data[12] = -s.Dot(eye)
	m.Data[13] = -u.Dot(eye)
	m.Data[14] = -f.Dot(eye)
	return m
}

// NewMat4OrthographicLH builds a left-handed orthographic projection. Near and
// far may be reversed for a reversed-depth buffer.
func NewMat4OrthographicLH(left, right, bottom, top, near, far float32) Mat4 {
	m := NewMat4Identity()
	m.Data[0] = 2.0 / (right - left)
	m.Data[5] = 2.0 / (top - bottom)
	m.Data[10] = 1.0 / (far - near)
	m.Data[12] = -(right + left) / (right - left)
	m.Data[13] = -(top + bottom) / (top - bottom)
	m.Data[14] = -near / (far - near)
	return m
}

// NewMat4Reflection builds the matrix mirroring space across the plane through
// point p0 with the given normal.
func NewMat4Reflection(p0, normal Vec3) Mat4 {
	n := normal.Normalized()
	d := -n.Dot(p0)

	m := NewMat4Identity()
	m.Data[0] = 1.0 - 2.0*n.X*n.X
	m.Data[1] = -2.0 * n.X * n.Y
	m.Data[2] = -2.0 * n.X * n.Z
	m.Data[4] = -2.0 * n.Y * n.X
	m.Data[5] = 1.0 - 2.0*n.Y*n.Y
	m.Data[6] = -2.0 * n.Y * n.Z
	m.Data[8] = -2.0 * n.Z * n.X
	m.Data[9] = -2.0 * n.Z * n.Y
	m.Data[10] = 1.0 - 2.0*n.Z*n.Z
	m.Data[12] = -2.0 * d * n.X
	m.Data[13] = -2.0 * d * n.Y
	m.Data[14] = -2.0 * d * n.Z
	return m
}

func DegToRad(degrees float32) float32 {
	return degrees * (math32.Pi / 180.0)
}
