package gl

import (
	"github.com/spaghettifunk/mirage/engine/renderer/metadata"
)

// Handles to driver-owned objects. Zero is never a valid live handle.
type (
	BufferHandle  uint32
	TextureHandle uint32
	ProgramHandle uint32
)

// UniformLocation of a program uniform. Negative means not present (optimized
// out by the compiler); such locations are silently skipped.
type UniformLocation int32

// AttribType is the component type of a vertex attribute stream.
type AttribType int

const (
	AttribFloat AttribType = iota
	AttribUnsignedByte
	AttribUnsignedShort
)

// ByteSize returns the size of one component.
func (t AttribType) ByteSize() int {
	switch t {
	case AttribUnsignedByte:
		return 1
	case AttribUnsignedShort:
		return 2
	}
	return 4
}

// AttribTypeForFormat maps a vertex format to the closest component type the
// target hardware class supports.
func AttribTypeForFormat(format metadata.VertexFormat) AttribType {
	switch format {
	case metadata.VertexFormatUint8x4:
		return AttribUnsignedByte
	case metadata.VertexFormatUint16x4:
		return AttribUnsignedShort
	}
	return AttribFloat
}

// IndexType is the element type of an index buffer.
type IndexType int

const (
	IndexUint16 IndexType = iota
	IndexUint32
)

// ByteSize returns the size of one index.
func (t IndexType) ByteSize() int {
	if t == IndexUint16 {
		return 2
	}
	return 4
}

// TextureTarget is the binding target of a texture object.
type TextureTarget int

const (
	Target2D TextureTarget = iota
	TargetCube
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// FlipCullMode flips front/back culling for mirrored views, where the
// reflection matrix inverts triangle winding.
func FlipCullMode(mode CullMode, flip bool) CullMode {
	if !flip {
		return mode
	}
	switch mode {
	case CullBack:
		return CullFront
	case CullFront:
		return CullBack
	}
	return CullNone
}

// Capabilities of the live driver, probed once at context creation.
type Capabilities struct {
	// Uint32Indices is false on base GLES2/WebGL1 without OES_element_index_uint.
	Uint32Indices bool
	// ManualMips allows specifying each mip level individually. When false,
	// only mip 0 is uploaded and the driver autogenerates the rest.
	ManualMips bool
	// SeamlessCubeMap is GL_ARB_seamless_cube_map.
	SeamlessCubeMap bool
	// CubeLod is textureCubeLod availability in the shading language.
	CubeLod bool
	// MaxTextureUnits bounds texture slot assignment per program.
	MaxTextureUnits int
}

// Device is the thin driver surface the renderer executes against. There is
// exactly one implementation per platform plus a recording fake for tests; all
// calls must come from the single execution context.
type Device interface {
	Caps() Capabilities

	// CompileProgram compiles and links a vertex+fragment pair. The error
	// carries the driver's diagnostic log verbatim.
	CompileProgram(vertexSrc, fragmentSrc string) (ProgramHandle, error)
	DeleteProgram(program ProgramHandle)
	UseProgram(program ProgramHandle)
	UniformLocation(program ProgramHandle, name string) (UniformLocation, bool)
	AttribLocation(program ProgramHandle, name string) (uint32, bool)

	UniformInt(location UniformLocation, value int32)
	// UniformFloats uploads len(data)/components vector values.
	UniformFloats(location UniformLocation, components int, data []float32)
	// UniformMatrices uploads len(data)/16 column-major 4x4 matrices.
	UniformMatrices(location UniformLocation, data []float32)

	CreateVertexBuffer(data []byte) BufferHandle
	CreateIndexBuffer(data []byte) BufferHandle
	DeleteBuffer(buffer BufferHandle)
	BindIndexBuffer(buffer BufferHandle)
	BindVertexAttrib(location uint32, componentCount int, attribType AttribType, buffer BufferHandle)
	DrawIndexed(count int, indexType IndexType, byteOffset int)

	CreateTexture() TextureHandle
	DeleteTexture(texture TextureHandle)
	ActiveTexture(unit int)
	BindTexture(target TextureTarget, texture TextureHandle)
	// TexImage2D uploads one mip of one face. Face is 0 for 2D targets,
	// 0..5 for cube faces. Nil pixels allocate uninitialized storage.
	TexImage2D(target TextureTarget, face, level, width, height int, pixels []byte)
	TexParameters(target TextureTarget, sampler metadata.SamplerDescriptor, mipCount int)
	GenerateMipmaps(target TextureTarget)
	// CopyTexImage2D copies the framebuffer into mip 0 of the bound texture.
	CopyTexImage2D(target TextureTarget, width, height int)

	SetBlend(enabled bool)
	SetDepthTest(enabled bool)
	SetDepthWrite(enabled bool)
	SetColorWrite(enabled bool)
	SetCullMode(mode CullMode)
	SetClearColor(r, g, b, a float32)
	Clear(color, depth bool)
	Viewport(width, height int)
	Flush()
}
