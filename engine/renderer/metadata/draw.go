package metadata

import "github.com/spaghettifunk/mirage/engine/math"

// MaterialType tags a drawable with the render callback responsible for it.
// Registered once at plugin-registration time; selected per batch, not per draw.
type MaterialType string

// DrawID identifies a drawable within the host scene for one frame. The host
// owns the meaning (entity id or index); the renderer only round-trips it.
type DrawID uint64

// Drawable is the record the host scene system exposes for every candidate
// draw. The renderer never mutates it and never keeps it past the frame.
type Drawable struct {
	ID             DrawID
	WorldTransform math.Mat4
	Bounds         math.BoundingVolume
	Visible        bool
	MeshName       string
	MaterialType   MaterialType
	// Optional skinning palette. Uploaded as a mat4 array uniform when present.
	JointMatrices []math.Mat4
	// ReflectionRead marks materials that sample the reflection texture.
	ReflectionRead bool
	// SkipReflection excludes the drawable from mirrored phases (the
	// reflecting surface itself, typically).
	SkipReflection bool
	// BlendAlpha marks materials using an alpha blending mode. Such draws are
	// captured into the deferred queue during opaque-class phases.
	BlendAlpha bool
}

// Draw is the ephemeral per-frame record extracted from the scene once per
// phase and consumed immediately. ViewDepth is the view-space distance of the
// bounding volume center, used as the deferred sort key.
type Draw struct {
	Drawable
	ViewDepth float32
}

// DeferredDraw is a draw whose execution waits for a transparent-class phase.
type DeferredDraw struct {
	Distance float32
	ID       DrawID
	Type     MaterialType
}
