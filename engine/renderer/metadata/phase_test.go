package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseClassification(t *testing.T) {
	opaqueClass := []RenderPhase{
		RenderPhaseShadow,
		RenderPhaseDepthPrepass,
		RenderPhaseReflectDepthPrepass,
		RenderPhaseOpaque,
		RenderPhaseReflectOpaque,
	}
	for _, p := range opaqueClass {
		assert.Truef(t, p.IsOpaqueClass(), "%s", p)
		assert.Falsef(t, p.IsTransparentClass(), "%s", p)
	}

	transparentClass := []RenderPhase{RenderPhaseTransparent, RenderPhaseReflectTransparent}
	for _, p := range transparentClass {
		assert.Truef(t, p.IsTransparentClass(), "%s", p)
		assert.Falsef(t, p.IsOpaqueClass(), "%s", p)
	}

	assert.False(t, RenderPhaseNone.IsOpaqueClass())
	assert.False(t, RenderPhaseNone.IsTransparentClass())
}

func TestPhaseMirroredViews(t *testing.T) {
	mirrored := []RenderPhase{
		RenderPhaseReflectDepthPrepass,
		RenderPhaseReflectOpaque,
		RenderPhaseReflectTransparent,
	}
	for _, p := range mirrored {
		assert.Truef(t, p.IsReflected(), "%s", p)
	}
	for _, p := range []RenderPhase{RenderPhaseShadow, RenderPhaseDepthPrepass, RenderPhaseOpaque, RenderPhaseTransparent} {
		assert.Falsef(t, p.IsReflected(), "%s", p)
	}
}
