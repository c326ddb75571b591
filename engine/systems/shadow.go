package systems

import (
	"github.com/spaghettifunk/mirage/engine/core"
	"github.com/spaghettifunk/mirage/engine/math"
	"github.com/spaghettifunk/mirage/engine/renderer/gl"
)

// DirectionalLight is the shadow-casting light the host passes into a frame.
// Only pass it when its shadow data is valid; the renderer treats presence as
// the precondition for the shadow phase.
type DirectionalLight struct {
	// Transform orients the light; forward is the +Z basis column, position is
	// the translation column.
	Transform math.Mat4
}

// DefaultShadowBounds is the extent of the shadow camera volume when the host
// does not configure one.
var DefaultShadowBounds = math.NewVec3Create(50, 50, 50)

// ShadowViewProjection builds the orthographic light camera over a volume of
// the given extents, centered on the light. Reversed depth: near maps to 1.
func ShadowViewProjection(lightTransform math.Mat4, bounds math.Vec3) math.Mat4 {
	if bounds.X <= 0 || bounds.Y <= 0 || bounds.Z <= 0 {
		bounds = DefaultShadowBounds
	}
	position := lightTransform.Translation()
	forward := lightTransform.TransformVector(math.NewVec3Create(0, 0, 1))
	up := lightTransform.TransformVector(math.NewVec3Create(0, 1, 0))

	view := math.NewMat4LookToLH(position, forward, up)
	projection := math.NewMat4OrthographicLH(
		-bounds.X/2, bounds.X/2,
		-bounds.Y/2, bounds.Y/2,
		bounds.Z, 0)
	return projection.Mul(view)
}

// shadowResources back the shadow phase: a writable texture the framebuffer is
// copied into after the depth-as-color pass (depth-readable textures do not
// exist on this hardware class) plus the light camera matrix.
type shadowResources struct {
	texture        *WritableTexture
	viewProjection math.Mat4
}

func newShadowResources(ctx *gl.Context, textures *TextureSystem, size int) *shadowResources {
	core.LogDebug("creating %dx%d shadow map texture", size, size)
	return &shadowResources{
		texture: textures.AcquireWritable(ctx, size, size),
	}
}

func (r *shadowResources) teardown(ctx *gl.Context, textures *TextureSystem) {
	core.LogDebug("releasing shadow map texture '%s'", r.texture.Name)
	textures.ReleaseWritable(ctx, r.texture)
	r.texture = nil
}
