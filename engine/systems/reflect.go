package systems

import (
	"github.com/spaghettifunk/mirage/engine/core"
	"github.com/spaghettifunk/mirage/engine/math"
	"github.com/spaghettifunk/mirage/engine/renderer/gl"
)

// ReflectionPlane is the mirror surface the host passes into a frame. At most
// one plane is supported; presence gates the mirrored phases.
type ReflectionPlane struct {
	Point  math.Vec3
	Normal math.Vec3
}

// Matrix returns the transform mirroring world space across the plane.
func (p ReflectionPlane) Matrix() math.Mat4 {
	return math.NewMat4Reflection(p.Point, p.Normal)
}

// reflectionResources back the mirrored phases: a viewport-sized writable
// texture the framebuffer is copied into after the reflected passes, plus the
// mirror matrix for the frame.
type reflectionResources struct {
	texture *WritableTexture
	matrix  math.Mat4
}

func newReflectionResources(ctx *gl.Context, textures *TextureSystem, width, height int) *reflectionResources {
	core.LogDebug("creating %dx%d reflection texture", width, height)
	return &reflectionResources{
		texture: textures.AcquireWritable(ctx, width, height),
	}
}

// resize recreates the texture when the viewport changed.
func (r *reflectionResources) resize(ctx *gl.Context, textures *TextureSystem, width, height int) {
	if r.texture.Width == width && r.texture.Height == height {
		return
	}
	textures.ReleaseWritable(ctx, r.texture)
	r.texture = textures.AcquireWritable(ctx, width, height)
}

func (r *reflectionResources) teardown(ctx *gl.Context, textures *TextureSystem) {
	core.LogDebug("releasing reflection texture '%s'", r.texture.Name)
	textures.ReleaseWritable(ctx, r.texture)
	r.texture = nil
}
