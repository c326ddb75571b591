// Package gltest provides a recording Device for renderer tests. It allocates
// fake handles and counts calls; no GL context is involved.
package gltest

import (
	"fmt"

	"github.com/spaghettifunk/mirage/engine/renderer/gl"
	"github.com/spaghettifunk/mirage/engine/renderer/metadata"
)

// Device records every call made against it. The zero value is not usable;
// create one with NewDevice.
type Device struct {
	Capabilities gl.Capabilities

	nextHandle uint32

	// Program bookkeeping.
	CompileCalls    int
	CompileErr      error
	LivePrograms    map[gl.ProgramHandle]bool
	DeletedPrograms []gl.ProgramHandle
	BoundProgram    gl.ProgramHandle
	// UniformNames maps program -> uniform names that resolve. Empty map entry
	// (or missing program) means every name resolves.
	UniformNames map[gl.ProgramHandle]map[string]bool
	// AttribNames behaves like UniformNames for attribute lookups.
	AttribNames map[gl.ProgramHandle]map[string]bool

	// Uniform traffic.
	UniformIntCalls    int
	UniformFloatCalls  int
	UniformMatrixCalls int

	// Buffer bookkeeping.
	LiveBuffers    map[gl.BufferHandle]bool
	DeletedBuffers []gl.BufferHandle
	BufferSizes    map[gl.BufferHandle]int

	// Texture bookkeeping.
	LiveTextures    map[gl.TextureHandle]bool
	DeletedTextures []gl.TextureHandle
	BoundTexture    gl.TextureHandle
	ActiveUnit      int
	TexUploads      int
	TexCopies       int
	BindCalls       int

	// Draw and state traffic.
	DrawCalls  int
	StateCalls []string
	Flushes    int
}

func NewDevice() *Device {
	return &Device{
		Capabilities: gl.Capabilities{
			Uint32Indices:   true,
			ManualMips:      true,
			SeamlessCubeMap: true,
			CubeLod:         true,
			MaxTextureUnits: 16,
		},
		LivePrograms: map[gl.ProgramHandle]bool{},
		UniformNames: map[gl.ProgramHandle]map[string]bool{},
		AttribNames:  map[gl.ProgramHandle]map[string]bool{},
		LiveBuffers:  map[gl.BufferHandle]bool{},
		BufferSizes:  map[gl.BufferHandle]int{},
		LiveTextures: map[gl.TextureHandle]bool{},
	}
}

func (d *Device) handle() uint32 {
	d.nextHandle++
	return d.nextHandle
}

func (d *Device) Caps() gl.Capabilities {
	return d.Capabilities
}

func (d *Device) CompileProgram(vertexSrc, fragmentSrc string) (gl.ProgramHandle, error) {
	d.CompileCalls++
	if d.CompileErr != nil {
		return 0, d.CompileErr
	}
	p := gl.ProgramHandle(d.handle())
	d.LivePrograms[p] = true
	return p, nil
}

func (d *Device) DeleteProgram(program gl.ProgramHandle) {
	delete(d.LivePrograms, program)
	d.DeletedPrograms = append(d.DeletedPrograms, program)
}

func (d *Device) UseProgram(program gl.ProgramHandle) {
	d.BoundProgram = program
}

func (d *Device) UniformLocation(program gl.ProgramHandle, name string) (gl.UniformLocation, bool) {
	if names, ok := d.UniformNames[program]; ok && len(names) > 0 && !names[name] {
		return -1, false
	}
	// Deterministic fake location from the name length; tests only care about
	// presence and call counts.
	return gl.UniformLocation(len(name)), true
}

func (d *Device) AttribLocation(program gl.ProgramHandle, name string) (uint32, bool) {
	if names, ok := d.AttribNames[program]; ok && len(names) > 0 && !names[name] {
		return 0, false
	}
	return uint32(len(name) % 8), true
}

func (d *Device) UniformInt(location gl.UniformLocation, value int32) {
	d.UniformIntCalls++
}

func (d *Device) UniformFloats(location gl.UniformLocation, components int, data []float32) {
	d.UniformFloatCalls++
}

func (d *Device) UniformMatrices(location gl.UniformLocation, data []float32) {
	d.UniformMatrixCalls++
}

func (d *Device) CreateVertexBuffer(data []byte) gl.BufferHandle {
	b := gl.BufferHandle(d.handle())
	d.LiveBuffers[b] = true
	d.BufferSizes[b] = len(data)
	return b
}

func (d *Device) CreateIndexBuffer(data []byte) gl.BufferHandle {
	b := gl.BufferHandle(d.handle())
	d.LiveBuffers[b] = true
	d.BufferSizes[b] = len(data)
	return b
}

func (d *Device) DeleteBuffer(buffer gl.BufferHandle) {
	delete(d.LiveBuffers, buffer)
	d.DeletedBuffers = append(d.DeletedBuffers, buffer)
}

func (d *Device) BindIndexBuffer(buffer gl.BufferHandle) {}

func (d *Device) BindVertexAttrib(location uint32, componentCount int, attribType gl.AttribType, buffer gl.BufferHandle) {
}

func (d *Device) DrawIndexed(count int, indexType gl.IndexType, byteOffset int) {
	d.DrawCalls++
}

func (d *Device) CreateTexture() gl.TextureHandle {
	t := gl.TextureHandle(d.handle())
	d.LiveTextures[t] = true
	return t
}

func (d *Device) DeleteTexture(texture gl.TextureHandle) {
	delete(d.LiveTextures, texture)
	d.DeletedTextures = append(d.DeletedTextures, texture)
}

func (d *Device) ActiveTexture(unit int) {
	d.ActiveUnit = unit
}

func (d *Device) BindTexture(target gl.TextureTarget, texture gl.TextureHandle) {
	d.BoundTexture = texture
	d.BindCalls++
}

func (d *Device) TexImage2D(target gl.TextureTarget, face, level, width, height int, pixels []byte) {
	d.TexUploads++
}

func (d *Device) TexParameters(target gl.TextureTarget, sampler metadata.SamplerDescriptor, mipCount int) {
}

func (d *Device) GenerateMipmaps(target gl.TextureTarget) {}

func (d *Device) CopyTexImage2D(target gl.TextureTarget, width, height int) {
	d.TexCopies++
}

func (d *Device) state(format string, args ...interface{}) {
	d.StateCalls = append(d.StateCalls, fmt.Sprintf(format, args...))
}

func (d *Device) SetBlend(enabled bool)      { d.state("blend=%t", enabled) }
func (d *Device) SetDepthTest(enabled bool)  { d.state("depth_test=%t", enabled) }
func (d *Device) SetDepthWrite(enabled bool) { d.state("depth_write=%t", enabled) }
func (d *Device) SetColorWrite(enabled bool) { d.state("color_write=%t", enabled) }

func (d *Device) SetCullMode(mode gl.CullMode) { d.state("cull=%d", mode) }

func (d *Device) SetClearColor(r, g, b, a float32) {}

func (d *Device) Clear(color, depth bool) { d.state("clear color=%t depth=%t", color, depth) }

func (d *Device) Viewport(width, height int) {}

func (d *Device) Flush() { d.Flushes++ }
