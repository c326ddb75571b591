package metadata

// RenderPhase identifies the current pass of the per-frame render sequence.
// It is reset at the start of every frame and mutated exactly once per phase
// transition, always on the execution context.
type RenderPhase int

const (
	RenderPhaseNone RenderPhase = iota
	RenderPhaseShadow
	RenderPhaseReflectDepthPrepass
	RenderPhaseReflectOpaque
	RenderPhaseReflectTransparent
	RenderPhaseDepthPrepass
	RenderPhaseOpaque
	RenderPhaseTransparent
)

func (p RenderPhase) String() string {
	switch p {
	case RenderPhaseShadow:
		return "shadow"
	case RenderPhaseReflectDepthPrepass:
		return "reflect_depth_prepass"
	case RenderPhaseReflectOpaque:
		return "reflect_opaque"
	case RenderPhaseReflectTransparent:
		return "reflect_transparent"
	case RenderPhaseDepthPrepass:
		return "depth_prepass"
	case RenderPhaseOpaque:
		return "opaque"
	case RenderPhaseTransparent:
		return "transparent"
	}
	return "none"
}

// IsReflected reports whether the phase renders the mirrored view. Mirrored
// phases flip the cull mode and use the reflection view matrix.
func (p RenderPhase) IsReflected() bool {
	switch p {
	case RenderPhaseReflectDepthPrepass, RenderPhaseReflectOpaque, RenderPhaseReflectTransparent:
		return true
	}
	return false
}

// IsOpaqueClass reports whether draws with blending materials must be deferred
// during this phase instead of drawn immediately.
func (p RenderPhase) IsOpaqueClass() bool {
	switch p {
	case RenderPhaseShadow, RenderPhaseDepthPrepass, RenderPhaseReflectDepthPrepass,
		RenderPhaseOpaque, RenderPhaseReflectOpaque:
		return true
	}
	return false
}

// IsTransparentClass reports whether the deferred queue is resolved and drawn
// during this phase.
func (p RenderPhase) IsTransparentClass() bool {
	return p == RenderPhaseTransparent || p == RenderPhaseReflectTransparent
}
