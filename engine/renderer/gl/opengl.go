package gl

import (
	"fmt"
	"strings"
	"unsafe"

	gl21 "github.com/go-gl/gl/v2.1/gl"

	"github.com/spaghettifunk/mirage/engine/core"
	"github.com/spaghettifunk/mirage/engine/renderer/metadata"
)

// OpenGLDevice is the live Device over a current desktop GL 2.1 context. The
// host must have made its context current on the calling goroutine before
// NewOpenGLDevice runs; all later calls must come from that same goroutine.
type OpenGLDevice struct {
	caps Capabilities
}

func NewOpenGLDevice() (*OpenGLDevice, error) {
	if err := gl21.Init(); err != nil {
		return nil, fmt.Errorf("failed to load GL functions: %w", err)
	}

	vendor := gl21.GoStr(gl21.GetString(gl21.VENDOR))
	renderer := gl21.GoStr(gl21.GetString(gl21.RENDERER))
	version := gl21.GoStr(gl21.GetString(gl21.VERSION))
	core.LogInfo("GL_VENDOR   : %s", vendor)
	core.LogInfo("GL_RENDERER : %s", renderer)
	core.LogInfo("GL_VERSION  : %s", version)

	extensions := gl21.GoStr(gl21.GetString(gl21.EXTENSIONS))

	var maxUnits int32
	gl21.GetIntegerv(gl21.MAX_TEXTURE_IMAGE_UNITS, &maxUnits)
	if maxUnits <= 0 {
		maxUnits = 8
	}

	d := &OpenGLDevice{
		caps: Capabilities{
			// Desktop 2.1 always has 32-bit indices and manual mip levels.
			Uint32Indices:   true,
			ManualMips:      true,
			SeamlessCubeMap: strings.Contains(extensions, "GL_ARB_seamless_cube_map"),
			CubeLod:         strings.Contains(extensions, "GL_ARB_shader_texture_lod"),
			MaxTextureUnits: int(maxUnits),
		},
	}

	if d.caps.SeamlessCubeMap {
		gl21.Enable(gl21.TEXTURE_CUBE_MAP_SEAMLESS)
	}

	// Reversed depth: clear to zero, pass greater-or-equal.
	gl21.DepthFunc(gl21.GEQUAL)
	gl21.ClearDepth(0.0)

	return d, nil
}

func (d *OpenGLDevice) Caps() Capabilities {
	return d.caps
}

func compileStage(stageName string, stage uint32, source string) (uint32, error) {
	shader := gl21.CreateShader(stage)
	csources, free := gl21.Strs(source + "\x00")
	gl21.ShaderSource(shader, 1, csources, nil)
	free()
	gl21.CompileShader(shader)

	var status int32
	gl21.GetShaderiv(shader, gl21.COMPILE_STATUS, &status)
	if status == gl21.FALSE {
		var logLength int32
		gl21.GetShaderiv(shader, gl21.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength)+1)
		gl21.GetShaderInfoLog(shader, logLength, nil, gl21.Str(logText))
		gl21.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader compilation error: %s", stageName, strings.TrimRight(logText, "\x00"))
	}
	return shader, nil
}

func (d *OpenGLDevice) CompileProgram(vertexSrc, fragmentSrc string) (ProgramHandle, error) {
	vertex, err := compileStage("vertex", gl21.VERTEX_SHADER, vertexSrc)
	if err != nil {
		return 0, err
	}
	fragment, err := compileStage("fragment", gl21.FRAGMENT_SHADER, fragmentSrc)
	if err != nil {
		gl21.DeleteShader(vertex)
		return 0, err
	}

	program := gl21.CreateProgram()
	gl21.AttachShader(program, vertex)
	gl21.AttachShader(program, fragment)
	gl21.LinkProgram(program)

	gl21.DetachShader(program, vertex)
	gl21.DetachShader(program, fragment)
	gl21.DeleteShader(vertex)
	gl21.DeleteShader(fragment)

	var status int32
	gl21.GetProgramiv(program, gl21.LINK_STATUS, &status)
	if status == gl21.FALSE {
		var logLength int32
		gl21.GetProgramiv(program, gl21.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength)+1)
		gl21.GetProgramInfoLog(program, logLength, nil, gl21.Str(logText))
		gl21.DeleteProgram(program)
		return 0, fmt.Errorf("program link error: %s", strings.TrimRight(logText, "\x00"))
	}

	return ProgramHandle(program), nil
}

func (d *OpenGLDevice) DeleteProgram(program ProgramHandle) {
	gl21.DeleteProgram(uint32(program))
}

func (d *OpenGLDevice) UseProgram(program ProgramHandle) {
	gl21.UseProgram(uint32(program))
}

func (d *OpenGLDevice) UniformLocation(program ProgramHandle, name string) (UniformLocation, bool) {
	loc := gl21.GetUniformLocation(uint32(program), gl21.Str(name+"\x00"))
	return UniformLocation(loc), loc >= 0
}

func (d *OpenGLDevice) AttribLocation(program ProgramHandle, name string) (uint32, bool) {
	loc := gl21.GetAttribLocation(uint32(program), gl21.Str(name+"\x00"))
	if loc < 0 {
		return 0, false
	}
	return uint32(loc), true
}

func (d *OpenGLDevice) UniformInt(location UniformLocation, value int32) {
	gl21.Uniform1i(int32(location), value)
}

func (d *OpenGLDevice) UniformFloats(location UniformLocation, components int, data []float32) {
	if len(data) == 0 {
		return
	}
	count := int32(len(data) / components)
	switch components {
	case 1:
		gl21.Uniform1fv(int32(location), count, &data[0])
	case 2:
		gl21.Uniform2fv(int32(location), count, &data[0])
	case 3:
		gl21.Uniform3fv(int32(location), count, &data[0])
	case 4:
		gl21.Uniform4fv(int32(location), count, &data[0])
	default:
		core.LogError("unsupported uniform component count %d", components)
	}
}

func (d *OpenGLDevice) UniformMatrices(location UniformLocation, data []float32) {
	if len(data) == 0 {
		return
	}
	gl21.UniformMatrix4fv(int32(location), int32(len(data)/16), false, &data[0])
}

func createBuffer(target uint32, data []byte) BufferHandle {
	var buffer uint32
	gl21.GenBuffers(1, &buffer)
	gl21.BindBuffer(target, buffer)
	gl21.BufferData(target, len(data), gl21.Ptr(data), gl21.STATIC_DRAW)
	gl21.BindBuffer(target, 0)
	return BufferHandle(buffer)
}

func (d *OpenGLDevice) CreateVertexBuffer(data []byte) BufferHandle {
	return createBuffer(gl21.ARRAY_BUFFER, data)
}

func (d *OpenGLDevice) CreateIndexBuffer(data []byte) BufferHandle {
	return createBuffer(gl21.ELEMENT_ARRAY_BUFFER, data)
}

func (d *OpenGLDevice) DeleteBuffer(buffer BufferHandle) {
	b := uint32(buffer)
	gl21.DeleteBuffers(1, &b)
}

func (d *OpenGLDevice) BindIndexBuffer(buffer BufferHandle) {
	gl21.BindBuffer(gl21.ELEMENT_ARRAY_BUFFER, uint32(buffer))
}

func glAttribType(attribType AttribType) uint32 {
	switch attribType {
	case AttribUnsignedByte:
		return gl21.UNSIGNED_BYTE
	case AttribUnsignedShort:
		return gl21.UNSIGNED_SHORT
	}
	return gl21.FLOAT
}

func (d *OpenGLDevice) BindVertexAttrib(location uint32, componentCount int, attribType AttribType, buffer BufferHandle) {
	gl21.BindBuffer(gl21.ARRAY_BUFFER, uint32(buffer))
	stride := int32(componentCount * attribType.ByteSize())
	gl21.VertexAttribPointer(location, int32(componentCount), glAttribType(attribType), false, stride, gl21.PtrOffset(0))
	gl21.EnableVertexAttribArray(location)
}

func (d *OpenGLDevice) DrawIndexed(count int, indexType IndexType, byteOffset int) {
	elementType := uint32(gl21.UNSIGNED_INT)
	if indexType == IndexUint16 {
		elementType = gl21.UNSIGNED_SHORT
	}
	gl21.DrawElements(gl21.TRIANGLES, int32(count), elementType, gl21.PtrOffset(byteOffset))
}

func (d *OpenGLDevice) CreateTexture() TextureHandle {
	var texture uint32
	gl21.GenTextures(1, &texture)
	return TextureHandle(texture)
}

func (d *OpenGLDevice) DeleteTexture(texture TextureHandle) {
	t := uint32(texture)
	gl21.DeleteTextures(1, &t)
}

func (d *OpenGLDevice) ActiveTexture(unit int) {
	gl21.ActiveTexture(uint32(gl21.TEXTURE0 + unit))
}

func glTextureTarget(target TextureTarget) uint32 {
	if target == TargetCube {
		return gl21.TEXTURE_CUBE_MAP
	}
	return gl21.TEXTURE_2D
}

func (d *OpenGLDevice) BindTexture(target TextureTarget, texture TextureHandle) {
	gl21.BindTexture(glTextureTarget(target), uint32(texture))
}

func (d *OpenGLDevice) TexImage2D(target TextureTarget, face, level, width, height int, pixels []byte) {
	uploadTarget := uint32(gl21.TEXTURE_2D)
	if target == TargetCube {
		uploadTarget = uint32(gl21.TEXTURE_CUBE_MAP_POSITIVE_X + face)
	}
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl21.Ptr(pixels)
	}
	gl21.TexImage2D(uploadTarget, int32(level), gl21.RGBA, int32(width), int32(height), 0, gl21.RGBA, gl21.UNSIGNED_BYTE, ptr)
}

func (d *OpenGLDevice) TexParameters(target TextureTarget, sampler metadata.SamplerDescriptor, mipCount int) {
	t := glTextureTarget(target)

	magFilter := int32(gl21.NEAREST)
	minFilter := int32(gl21.NEAREST)
	if sampler.FilterLinear {
		magFilter = gl21.LINEAR
		minFilter = gl21.LINEAR
	}
	if sampler.Mipmaps {
		if sampler.FilterLinear {
			minFilter = gl21.LINEAR_MIPMAP_LINEAR
		} else {
			minFilter = gl21.NEAREST_MIPMAP_NEAREST
		}
	}
	gl21.TexParameteri(t, gl21.TEXTURE_MAG_FILTER, magFilter)
	gl21.TexParameteri(t, gl21.TEXTURE_MIN_FILTER, minFilter)

	wrap := int32(gl21.REPEAT)
	if sampler.ClampToEdge || target == TargetCube {
		wrap = gl21.CLAMP_TO_EDGE
	}
	gl21.TexParameteri(t, gl21.TEXTURE_WRAP_S, wrap)
	gl21.TexParameteri(t, gl21.TEXTURE_WRAP_T, wrap)

	// Ask the driver to autogenerate mips when only level 0 will be uploaded.
	// Must be set before the upload on this hardware class.
	if sampler.Mipmaps && mipCount <= 1 {
		gl21.TexParameteri(t, gl21.GENERATE_MIPMAP, gl21.TRUE)
	}
}

func (d *OpenGLDevice) GenerateMipmaps(target TextureTarget) {
	// Mip autogen on 2.1 happens through the GENERATE_MIPMAP texture
	// parameter at upload time; nothing to do here.
}

func (d *OpenGLDevice) CopyTexImage2D(target TextureTarget, width, height int) {
	gl21.CopyTexImage2D(glTextureTarget(target), 0, gl21.RGBA, 0, 0, int32(width), int32(height), 0)
}

func (d *OpenGLDevice) SetBlend(enabled bool) {
	if enabled {
		gl21.Enable(gl21.BLEND)
		gl21.BlendFunc(gl21.SRC_ALPHA, gl21.ONE_MINUS_SRC_ALPHA)
	} else {
		gl21.Disable(gl21.BLEND)
	}
}

func (d *OpenGLDevice) SetDepthTest(enabled bool) {
	if enabled {
		gl21.Enable(gl21.DEPTH_TEST)
	} else {
		gl21.Disable(gl21.DEPTH_TEST)
	}
}

func (d *OpenGLDevice) SetDepthWrite(enabled bool) {
	gl21.DepthMask(enabled)
}

func (d *OpenGLDevice) SetColorWrite(enabled bool) {
	gl21.ColorMask(enabled, enabled, enabled, enabled)
}

func (d *OpenGLDevice) SetCullMode(mode CullMode) {
	switch mode {
	case CullNone:
		gl21.Disable(gl21.CULL_FACE)
	case CullBack:
		gl21.Enable(gl21.CULL_FACE)
		gl21.CullFace(gl21.BACK)
	case CullFront:
		gl21.Enable(gl21.CULL_FACE)
		gl21.CullFace(gl21.FRONT)
	}
}

func (d *OpenGLDevice) SetClearColor(r, g, b, a float32) {
	gl21.ClearColor(r, g, b, a)
}

func (d *OpenGLDevice) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl21.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl21.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl21.Clear(mask)
	}
}

func (d *OpenGLDevice) Viewport(width, height int) {
	gl21.Viewport(0, 0, int32(width), int32(height))
}

func (d *OpenGLDevice) Flush() {
	gl21.Flush()
}
