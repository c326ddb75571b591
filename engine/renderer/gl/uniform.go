package gl

import (
	stdmath "math"

	"github.com/spaghettifunk/mirage/engine/math"
)

// UniformValue is a value uploadable to a program uniform. Raw appends the
// bit-exact encoding of the value for redundant-upload suppression; it returns
// false when the value is not diffable (arrays), in which case the caller
// always uploads.
type UniformValue interface {
	Upload(device Device, location UniformLocation)
	Raw(dst []uint32) ([]uint32, bool)
}

type Bool bool

func (v Bool) Upload(device Device, location UniformLocation) {
	i := int32(0)
	if v {
		i = 1
	}
	device.UniformInt(location, i)
}

func (v Bool) Raw(dst []uint32) ([]uint32, bool) {
	i := uint32(0)
	if v {
		i = 1
	}
	return append(dst, i), true
}

type Int int32

func (v Int) Upload(device Device, location UniformLocation) {
	device.UniformInt(location, int32(v))
}

func (v Int) Raw(dst []uint32) ([]uint32, bool) {
	return append(dst, uint32(v)), true
}

type Float float32

func (v Float) Upload(device Device, location UniformLocation) {
	device.UniformFloats(location, 1, []float32{float32(v)})
}

func (v Float) Raw(dst []uint32) ([]uint32, bool) {
	return append(dst, stdmath.Float32bits(float32(v))), true
}

type Vec2 math.Vec2

func (v Vec2) Upload(device Device, location UniformLocation) {
	device.UniformFloats(location, 2, []float32{v.X, v.Y})
}

func (v Vec2) Raw(dst []uint32) ([]uint32, bool) {
	return append(dst, stdmath.Float32bits(v.X), stdmath.Float32bits(v.Y)), true
}

type Vec3 math.Vec3

func (v Vec3) Upload(device Device, location UniformLocation) {
	device.UniformFloats(location, 3, []float32{v.X, v.Y, v.Z})
}

func (v Vec3) Raw(dst []uint32) ([]uint32, bool) {
	return append(dst,
		stdmath.Float32bits(v.X), stdmath.Float32bits(v.Y), stdmath.Float32bits(v.Z)), true
}

type Vec4 math.Vec4

func (v Vec4) Upload(device Device, location UniformLocation) {
	device.UniformFloats(location, 4, []float32{v.X, v.Y, v.Z, v.W})
}

func (v Vec4) Raw(dst []uint32) ([]uint32, bool) {
	return append(dst,
		stdmath.Float32bits(v.X), stdmath.Float32bits(v.Y),
		stdmath.Float32bits(v.Z), stdmath.Float32bits(v.W)), true
}

type Mat4 math.Mat4

func (v Mat4) Upload(device Device, location UniformLocation) {
	device.UniformMatrices(location, v.Data[:])
}

func (v Mat4) Raw(dst []uint32) ([]uint32, bool) {
	// 16 words exceed the diff buffer budget for nothing; matrices change
	// nearly every draw, so always upload.
	return dst, false
}

// FloatSlice uploads a float array uniform. Never diffed.
type FloatSlice []float32

func (v FloatSlice) Upload(device Device, location UniformLocation) {
	device.UniformFloats(location, 1, v)
}

func (v FloatSlice) Raw(dst []uint32) ([]uint32, bool) {
	return dst, false
}

// Vec4Slice uploads a vec4 array uniform. Never diffed.
type Vec4Slice []math.Vec4

func (v Vec4Slice) Upload(device Device, location UniformLocation) {
	data := make([]float32, 0, len(v)*4)
	for _, e := range v {
		data = append(data, e.X, e.Y, e.Z, e.W)
	}
	device.UniformFloats(location, 4, data)
}

func (v Vec4Slice) Raw(dst []uint32) ([]uint32, bool) {
	return dst, false
}

// Mat4Slice uploads a mat4 array uniform (skinning palettes). Never diffed.
type Mat4Slice []math.Mat4

func (v Mat4Slice) Upload(device Device, location UniformLocation) {
	data := make([]float32, 0, len(v)*16)
	for _, m := range v {
		data = append(data, m.Data[:]...)
	}
	device.UniformMatrices(location, data)
}

func (v Mat4Slice) Raw(dst []uint32) ([]uint32, bool) {
	return dst, false
}
