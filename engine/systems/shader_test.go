package systems

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/mirage/engine/core"
	"github.com/spaghettifunk/mirage/engine/renderer/gl"
	"github.com/spaghettifunk/mirage/engine/renderer/gl/gltest"
)

func shaderFixture(t *testing.T) (*gltest.Device, *gl.Context, *ShaderSystem, string) {
	t.Helper()
	core.ResetMetrics()
	dir := t.TempDir()
	writeShader(t, dir, "basic.vert", "void main() { gl_Position = vec4(0.0); }")
	writeShader(t, dir, "basic.frag", "void main() { gl_FragColor = vec4(1.0); }")

	device := gltest.NewDevice()
	system, err := NewShaderSystem(&ShaderSystemConfig{ShaderDirectory: dir})
	require.NoError(t, err)
	return device, gl.NewContext(device), system, dir
}

func writeShader(t *testing.T, dir, name, source string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(source), 0o644))
}

func TestShaderCacheIdempotence(t *testing.T) {
	device, ctx, s, _ := shaderFixture(t)

	defines := []ShaderDefine{{Name: "MAX_LIGHTS", Value: "4"}}
	first, err := s.GetOrCompile(ctx, "basic.vert", "basic.frag", defines)
	require.NoError(t, err)
	second, err := s.GetOrCompile(ctx, "basic.vert", "basic.frag", defines)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, device.CompileCalls, "seen combinations never recompile")
}

func TestShaderDistinctDefinesDistinctPrograms(t *testing.T) {
	device, ctx, s, _ := shaderFixture(t)

	a, err := s.GetOrCompile(ctx, "basic.vert", "basic.frag", []ShaderDefine{{Name: "SHADOWS", Value: "1"}})
	require.NoError(t, err)
	b, err := s.GetOrCompile(ctx, "basic.vert", "basic.frag", []ShaderDefine{{Name: "SHADOWS", Value: "0"}})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, device.CompileCalls)
}

func TestShaderNoDefinesVersusOneDefine(t *testing.T) {
	_, ctx, s, _ := shaderFixture(t)

	a, err := s.GetOrCompile(ctx, "basic.vert", "basic.frag", nil)
	require.NoError(t, err)
	b, err := s.GetOrCompile(ctx, "basic.vert", "basic.frag", []ShaderDefine{{Name: "SHADOWS", Value: "1"}})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestShaderCompileFailureSurfacesDriverLog(t *testing.T) {
	device, ctx, s, _ := shaderFixture(t)
	device.CompileErr = errors.New("0:12: 'foo' : undeclared identifier")

	_, err := s.GetOrCompile(ctx, "basic.vert", "basic.frag", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared identifier")
}

func TestShaderMissingSourceFileFails(t *testing.T) {
	_, ctx, s, _ := shaderFixture(t)
	_, err := s.GetOrCompile(ctx, "missing.vert", "basic.frag", nil)
	assert.Error(t, err)
}

func TestShaderProgramLookup(t *testing.T) {
	_, ctx, s, _ := shaderFixture(t)
	index, err := s.GetOrCompile(ctx, "basic.vert", "basic.frag", nil)
	require.NoError(t, err)

	_, ok := s.Program(index)
	assert.True(t, ok)
	_, ok = s.Program(index + 1)
	assert.False(t, ok)
}

func TestShaderSplicePreambleAndDefines(t *testing.T) {
	_, _, s, _ := shaderFixture(t)

	out := s.splice("#version 100\nvoid main() {}", []ShaderDefine{{Name: "SHADOWS", Value: "1"}}, false,
		gl.Capabilities{CubeLod: true})
	assert.Contains(t, out, "#version 120\n")
	assert.Contains(t, out, "#define SHADOWS 1\n")
	assert.NotContains(t, out, "#version 100", "body version is replaced by the preamble")
}

func TestShaderCubeLodShimInjectedForFragments(t *testing.T) {
	_, _, s, _ := shaderFixture(t)

	withLod := s.splice("void main() {}", nil, true, gl.Capabilities{CubeLod: true})
	assert.NotContains(t, withLod, "textureCubeLodEXT")

	withoutLod := s.splice("void main() {}", nil, true, gl.Capabilities{CubeLod: false})
	assert.Contains(t, withoutLod, "textureCubeLodEXT")

	vertex := s.splice("void main() {}", nil, false, gl.Capabilities{CubeLod: false})
	assert.NotContains(t, vertex, "textureCubeLodEXT", "shim is fragment-only")
}

func TestShaderIncludeExpansion(t *testing.T) {
	_, _, s, _ := shaderFixture(t)
	s.RegisterSnippet("lighting", "float lambert(vec3 n, vec3 l) { return max(dot(n, l), 0.0); }")

	out := s.splice("#include <lighting>\nvoid main() {}", nil, false, gl.Capabilities{})
	assert.Contains(t, out, "float lambert")
	assert.NotContains(t, out, "#include")
}

func TestShaderIncludeSplicedAtMostOnce(t *testing.T) {
	_, _, s, _ := shaderFixture(t)
	s.RegisterSnippet("common", "const float PI = 3.14159;")

	out := s.splice("#include <common>\n#include <common>\nvoid main() {}", nil, false, gl.Capabilities{})
	assert.Equal(t, 1, countOccurrences(out, "const float PI"))
}

func TestShaderNestedIncludes(t *testing.T) {
	_, _, s, _ := shaderFixture(t)
	s.RegisterSnippet("common", "const float PI = 3.14159;")
	s.RegisterSnippet("lighting", "#include <common>\nfloat lambert() { return PI; }")

	out := s.splice("#include <lighting>\nvoid main() {}", nil, false, gl.Capabilities{})
	assert.Equal(t, 1, countOccurrences(out, "const float PI"))
	assert.Contains(t, out, "float lambert")
}

func TestShaderHotReloadSwapsProgram(t *testing.T) {
	core.ResetMetrics()
	dir := t.TempDir()
	writeShader(t, dir, "basic.vert", "void main() { gl_Position = vec4(0.0); }")
	writeShader(t, dir, "basic.frag", "void main() { gl_FragColor = vec4(1.0); }")

	device := gltest.NewDevice()
	ctx := gl.NewContext(device)
	s, err := NewShaderSystem(&ShaderSystemConfig{ShaderDirectory: dir, HotReload: true})
	require.NoError(t, err)
	defer s.Shutdown(ctx)

	index, err := s.GetOrCompile(ctx, "basic.vert", "basic.frag", nil)
	require.NoError(t, err)
	old, _ := s.Program(index)

	writeShader(t, dir, "basic.frag", "void main() { gl_FragColor = vec4(0.5); }")
	waitForWatcher(s)
	s.MaintainHotReload(ctx)

	current, ok := s.Program(index)
	require.True(t, ok)
	assert.NotEqual(t, old, current)
	assert.Contains(t, device.DeletedPrograms, old)
}

func TestShaderHotReloadKeepsOldProgramOnFailure(t *testing.T) {
	core.ResetMetrics()
	dir := t.TempDir()
	writeShader(t, dir, "basic.vert", "void main() { gl_Position = vec4(0.0); }")
	writeShader(t, dir, "basic.frag", "void main() { gl_FragColor = vec4(1.0); }")

	device := gltest.NewDevice()
	ctx := gl.NewContext(device)
	s, err := NewShaderSystem(&ShaderSystemConfig{ShaderDirectory: dir, HotReload: true})
	require.NoError(t, err)
	defer s.Shutdown(ctx)

	index, err := s.GetOrCompile(ctx, "basic.vert", "basic.frag", nil)
	require.NoError(t, err)
	old, _ := s.Program(index)

	device.CompileErr = errors.New("syntax error")
	writeShader(t, dir, "basic.frag", "broken {")
	waitForWatcher(s)
	s.MaintainHotReload(ctx)

	current, _ := s.Program(index)
	assert.Equal(t, old, current, "failed recompile keeps the last good program")
	assert.NotContains(t, device.DeletedPrograms, old)
}

// waitForWatcher blocks until the filesystem notification lands, bounded so a
// missed event fails the test instead of hanging it.
func waitForWatcher(s *ShaderSystem) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.watcher.Pending() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
