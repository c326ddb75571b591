package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-5

func assertVec3Near(t *testing.T, expected, actual Vec3) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, epsilon)
	assert.InDelta(t, expected.Y, actual.Y, epsilon)
	assert.InDelta(t, expected.Z, actual.Z, epsilon)
}

func TestVec3Basics(t *testing.T) {
	v := NewVec3Create(3, 4, 0)
	assert.InDelta(t, 5.0, v.Length(), epsilon)
	assertVec3Near(t, NewVec3Create(0.6, 0.8, 0), v.Normalized())
	assert.Equal(t, Vec3{}, Vec3{}.Normalized())

	a := NewVec3Create(1, 0, 0)
	b := NewVec3Create(0, 1, 0)
	assertVec3Near(t, NewVec3Create(0, 0, 1), a.Cross(b))
	assert.InDelta(t, 0.0, a.Dot(b), epsilon)
}

func TestMat4IdentityAndMul(t *testing.T) {
	id := NewMat4Identity()
	p := NewVec3Create(1, 2, 3)
	assertVec3Near(t, p, id.TransformPoint(p))
	assertVec3Near(t, p, id.Mul(id).TransformPoint(p))
}

func TestMat4TransformVectorIgnoresTranslation(t *testing.T) {
	m := NewMat4Identity()
	m.Data[12] = 10
	m.Data[13] = 20
	m.Data[14] = 30

	assertVec3Near(t, NewVec3Create(11, 22, 33), m.TransformPoint(NewVec3Create(1, 2, 3)))
	assertVec3Near(t, NewVec3Create(1, 2, 3), m.TransformVector(NewVec3Create(1, 2, 3)))
	assertVec3Near(t, NewVec3Create(10, 20, 30), m.Translation())
}

func TestReflectionMatrixMirrorsAcrossPlane(t *testing.T) {
	// Ground plane through the origin.
	m := NewMat4Reflection(NewVec3Create(0, 0, 0), NewVec3Create(0, 1, 0))
	assertVec3Near(t, NewVec3Create(1, -2, 3), m.TransformPoint(NewVec3Create(1, 2, 3)))

	// Point on the plane stays fixed.
	assertVec3Near(t, NewVec3Create(4, 0, -7), m.TransformPoint(NewVec3Create(4, 0, -7)))
}

func TestReflectionMatrixOffsetPlane(t *testing.T) {
	// Plane y = 2.
	m := NewMat4Reflection(NewVec3Create(0, 2, 0), NewVec3Create(0, 1, 0))
	assertVec3Near(t, NewVec3Create(0, 3, 0), m.TransformPoint(NewVec3Create(0, 1, 0)))
	assertVec3Near(t, NewVec3Create(5, 2, 5), m.TransformPoint(NewVec3Create(5, 2, 5)))
}

func TestReflectionMatrixIsInvolution(t *testing.T) {
	m := NewMat4Reflection(NewVec3Create(1, 2, 3), NewVec3Create(0.3, 0.9, -0.1))
	p := NewVec3Create(-4, 7, 2)
	assertVec3Near(t, p, m.Mul(m).TransformPoint(p))
}

func TestOrthographicMapsVolumeToClipSpace(t *testing.T) {
	m := NewMat4OrthographicLH(-10, 10, -5, 5, 0, 100)
	// Near-plane center maps to depth 0, far-plane center to depth 1.
	assertVec3Near(t, NewVec3Create(0, 0, 0), m.TransformPoint(NewVec3Create(0, 0, 0)))
	assertVec3Near(t, NewVec3Create(0, 0, 1), m.TransformPoint(NewVec3Create(0, 0, 100)))
	assertVec3Near(t, NewVec3Create(1, 1, 0), m.TransformPoint(NewVec3Create(10, 5, 0)))
}

func TestLookToViewTransformsEyeToOrigin(t *testing.T) {
	eye := NewVec3Create(0, 0, -5)
	view := NewMat4LookToLH(eye, NewVec3Create(0, 0, 1), NewVec3Create(0, 1, 0))
	assertVec3Near(t, NewVec3Create(0, 0, 0), view.TransformPoint(eye))
	// A point ahead of the eye lands on the positive view z axis.
	assertVec3Near(t, NewVec3Create(0, 0, 5), view.TransformPoint(NewVec3Create(0, 0, 0)))
}

func TestDegToRad(t *testing.T) {
	assert.InDelta(t, 3.14159265, DegToRad(180), 1e-4)
}
