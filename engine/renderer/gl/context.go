package gl

import (
	"github.com/spaghettifunk/mirage/engine/math"
)

// Context wraps a Device with the state memoization the renderer relies on:
// the last-set cull mode and the currently bound program. It must only be
// touched from the single execution context.
type Context struct {
	Device Device

	currentProgram ProgramHandle
	hasProgram     bool
	lastCullMode   CullMode
	hasCullMode    bool
	cullFlip       bool
}

func NewContext(device Device) *Context {
	return &Context{
		Device: device,
	}
}

func (c *Context) Caps() Capabilities {
	return c.Device.Caps()
}

// UseProgram binds the program. Always rebinds: the phase runner calls this at
// batch granularity, and per-program uniform state depends on the bind.
func (c *Context) UseProgram(program ProgramHandle) {
	c.currentProgram = program
	c.hasProgram = true
	c.Device.UseProgram(program)
	// Cull backfaces by default at every program switch.
	c.SetCullMode(CullBack)
}

// CurrentProgram returns the bound program, if any.
func (c *Context) CurrentProgram() (ProgramHandle, bool) {
	return c.currentProgram, c.hasProgram
}

// SetCullFlip toggles front/back inversion for mirrored phases, where the
// reflection matrix flips triangle winding. Applies to every later SetCullMode
// until toggled back.
func (c *Context) SetCullFlip(flip bool) {
	c.cullFlip = flip
}

// SetCullMode applies the cull mode, flipped when a mirrored phase is active,
// only when it differs from the last set.
func (c *Context) SetCullMode(mode CullMode) {
	mode = FlipCullMode(mode, c.cullFlip)
	if c.hasCullMode && c.lastCullMode == mode {
		return
	}
	c.lastCullMode = mode
	c.hasCullMode = true
	c.Device.SetCullMode(mode)
}

// ResetStateCache forgets memoized state. Call at frame start; the context
// does not know what state an embedding host left behind.
func (c *Context) ResetStateCache() {
	c.hasCullMode = false
	c.hasProgram = false
}

// ClearColorAndDepth clears both buffers, enabling depth writes first so the
// depth clear is not masked out.
func (c *Context) ClearColorAndDepth(color math.Vec4) {
	c.Device.SetDepthWrite(true)
	c.Device.SetClearColor(color.X, color.Y, color.Z, color.W)
	c.Device.Clear(true, true)
}

func (c *Context) ClearDepthOnly() {
	c.Device.SetDepthWrite(true)
	c.Device.Clear(false, true)
}

// StartOpaque configures state for opaque-class phases. Depth writing is
// optional: after a depth prepass that already covered everything, the opaque
// pass does not need to write depth again.
func (c *Context) StartOpaque(writeDepth bool) {
	c.Device.SetDepthTest(true)
	c.Device.SetBlend(false)
	c.Device.SetDepthWrite(writeDepth)
	c.Device.SetColorWrite(true)
}

// StartAlphaBlend configures state for transparent-class phases: blending on,
// depth tested but not written.
func (c *Context) StartAlphaBlend() {
	c.Device.SetDepthTest(true)
	c.Device.SetBlend(true)
	c.Device.SetDepthWrite(false)
	c.Device.SetColorWrite(true)
}

// StartDepthOnly configures state for depth prepasses: no color writes.
func (c *Context) StartDepthOnly() {
	c.Device.SetDepthTest(true)
	c.Device.SetBlend(false)
	c.Device.SetDepthWrite(true)
	c.Device.SetColorWrite(false)
}

// Present flushes queued GL work. Swap itself belongs to the host surface.
func (c *Context) Present() {
	c.Device.Flush()
}
