package systems

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/mirage/engine/assets"
	"github.com/spaghettifunk/mirage/engine/core"
	"github.com/spaghettifunk/mirage/engine/renderer/gl"
)

// ShaderDefine is one preprocessor definition spliced into source before
// compilation. Part of the cache key: two requests differing in a single
// define resolve to distinct programs.
type ShaderDefine struct {
	Name  string
	Value string
}

// ProgramIndex is a stable dense index into the shader cache. Valid for the
// process lifetime; entries are never evicted.
type ProgramIndex int

// Fallback for drivers without textureCubeLod in GLSL 120. The lod argument is
// dropped; reflections lose roughness blur but stay correct.
const cubeLodShim = "#define textureCubeLodEXT(s, c, lod) textureCube(s, c)\n"

type shaderEntry struct {
	program      gl.ProgramHandle
	vertexPath   string
	fragmentPath string
	defines      []ShaderDefine
}

type ShaderSystemConfig struct {
	// ShaderDirectory holds the ".vert"/".frag" pairs and snippet files.
	ShaderDirectory string
	// HotReload recompiles cache entries when their source files change.
	HotReload bool
}

// ShaderSystem compiles and caches vertex+fragment programs keyed by a 64-bit
// hash over both source texts plus the full define list. A seen combination is
// never recompiled. Compile or link failure is fatal to the caller: the source
// is static for the process lifetime, so retrying cannot help.
type ShaderSystem struct {
	config *ShaderSystemConfig

	lookup   map[uint64]ProgramIndex
	entries  []*shaderEntry
	snippets map[string]string
	watcher  *assets.Watcher
}

func NewShaderSystem(config *ShaderSystemConfig) (*ShaderSystem, error) {
	if config == nil || config.ShaderDirectory == "" {
		return nil, fmt.Errorf("shader system requires a shader directory")
	}
	s := &ShaderSystem{
		config:   config,
		lookup:   make(map[uint64]ProgramIndex),
		snippets: make(map[string]string),
	}
	if config.HotReload {
		watcher, err := assets.NewWatcher(config.ShaderDirectory)
		if err != nil {
			core.LogWarn("shader hot reload unavailable: %s", err)
		} else {
			s.watcher = watcher
		}
	}
	return s, nil
}

// RegisterSnippet makes a named block of source available to `#include <name>`
// directives. Each snippet is spliced at most once per compiled source.
func (s *ShaderSystem) RegisterSnippet(name, source string) {
	s.snippets[name] = source
}

// GetOrCompile returns the cached program for the source pair and define set,
// compiling on first sight. vertName and fragName are file names relative to
// the shader directory.
func (s *ShaderSystem) GetOrCompile(ctx *gl.Context, vertName, fragName string, defines []ShaderDefine) (ProgramIndex, error) {
	vertexPath := filepath.Join(s.config.ShaderDirectory, vertName)
	fragmentPath := filepath.Join(s.config.ShaderDirectory, fragName)

	vertexSrc, err := os.ReadFile(vertexPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read vertex shader '%s': %w", vertexPath, err)
	}
	fragmentSrc, err := os.ReadFile(fragmentPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read fragment shader '%s': %w", fragmentPath, err)
	}

	key := cacheKey(string(vertexSrc), string(fragmentSrc), defines)
	if index, ok := s.lookup[key]; ok {
		return index, nil
	}

	program, err := s.compile(ctx, string(vertexSrc), string(fragmentSrc), defines)
	if err != nil {
		return 0, fmt.Errorf("shader '%s'+'%s': %w", vertName, fragName, err)
	}

	index := ProgramIndex(len(s.entries))
	s.entries = append(s.entries, &shaderEntry{
		program:      program,
		vertexPath:   vertexPath,
		fragmentPath: fragmentPath,
		defines:      append([]ShaderDefine(nil), defines...),
	})
	s.lookup[key] = index
	core.LogDebug("compiled shader '%s'+'%s' (%d defines) as program index %d",
		vertName, fragName, len(defines), index)
	return index, nil
}

// Program returns the live handle for a cache index. The handle can change
// across frames under hot reload; resolve it each frame, don't store it.
func (s *ShaderSystem) Program(index ProgramIndex) (gl.ProgramHandle, bool) {
	if index < 0 || int(index) >= len(s.entries) {
		return 0, false
	}
	return s.entries[index].program, true
}

func (s *ShaderSystem) compile(ctx *gl.Context, vertexSrc, fragmentSrc string, defines []ShaderDefine) (gl.ProgramHandle, error) {
	caps := ctx.Caps()
	vertex := s.splice(vertexSrc, defines, false, caps)
	fragment := s.splice(fragmentSrc, defines, true, caps)
	program, err := ctx.Device.CompileProgram(vertex, fragment)
	if err != nil {
		return 0, err
	}
	core.Metrics().ProgramsCompiled++
	return program, nil
}

// splice builds the final source: version preamble, defines, capability shims,
// then the body with includes expanded. A leading #version in the body is
// dropped in favor of the preamble.
func (s *ShaderSystem) splice(source string, defines []ShaderDefine, fragment bool, caps gl.Capabilities) string {
	var b strings.Builder
	b.WriteString("#version 120\n")
	for _, d := range defines {
		fmt.Fprintf(&b, "#define %s %s\n", d.Name, d.Value)
	}
	if fragment && !caps.CubeLod {
		b.WriteString(cubeLodShim)
	}
	b.WriteString(s.expandIncludes(stripVersion(source), map[string]bool{}))
	return b.String()
}

// expandIncludes replaces `#include <name>` lines with registered snippet
// bodies, recursively, splicing each snippet at most once.
func (s *ShaderSystem) expandIncludes(source string, seen map[string]bool) string {
	var b strings.Builder
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#include") {
			b.WriteString(line)
			b.WriteString("\n")
			continue
		}
		name := strings.Trim(strings.TrimSpace(strings.TrimPrefix(trimmed, "#include")), "<>\"")
		if seen[name] {
			continue
		}
		seen[name] = true
		snippet, ok := s.snippets[name]
		if !ok {
			core.LogWarn("unknown shader snippet '%s', include dropped", name)
			continue
		}
		expanded := s.expandIncludes(snippet, seen)
		b.WriteString(expanded)
		if !strings.HasSuffix(expanded, "\n") {
			b.WriteString("\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func stripVersion(source string) string {
	trimmed := strings.TrimLeft(source, " \t\r\n")
	if strings.HasPrefix(trimmed, "#version") {
		if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
			return trimmed[i+1:]
		}
		return ""
	}
	return source
}

func cacheKey(vertexSrc, fragmentSrc string, defines []ShaderDefine) uint64 {
	h := fnv.New64a()
	h.Write([]byte(vertexSrc))
	h.Write([]byte{0})
	h.Write([]byte(fragmentSrc))
	for _, d := range defines {
		h.Write([]byte{0})
		h.Write([]byte(d.Name))
		h.Write([]byte{'='})
		h.Write([]byte(d.Value))
	}
	return h.Sum64()
}

// MaintainHotReload recompiles every cache entry whose sources may have
// changed. A failed recompile keeps the previous program so the frame keeps
// rendering with the last good variant. Runs on the execution context.
func (s *ShaderSystem) MaintainHotReload(ctx *gl.Context) {
	if s.watcher == nil || !s.watcher.Check() {
		return
	}
	core.LogInfo("shader sources changed, recompiling %d cached programs", len(s.entries))
	for i, entry := range s.entries {
		vertexSrc, err := os.ReadFile(entry.vertexPath)
		if err != nil {
			core.LogError("hot reload: failed to read '%s': %s", entry.vertexPath, err)
			continue
		}
		fragmentSrc, err := os.ReadFile(entry.fragmentPath)
		if err != nil {
			core.LogError("hot reload: failed to read '%s': %s", entry.fragmentPath, err)
			continue
		}
		program, err := s.compile(ctx, string(vertexSrc), string(fragmentSrc), entry.defines)
		if err != nil {
			core.LogError("hot reload: keeping old program index %d: %s", i, err)
			continue
		}
		ctx.Device.DeleteProgram(entry.program)
		entry.program = program
		core.LogDebug("hot reload: swapped program index %d", i)
	}
}

// Shutdown deletes every compiled program and stops the watcher.
func (s *ShaderSystem) Shutdown(ctx *gl.Context) {
	for _, entry := range s.entries {
		ctx.Device.DeleteProgram(entry.program)
	}
	s.entries = nil
	s.lookup = map[uint64]ProgramIndex{}
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			core.LogWarn("failed to close shader watcher: %s", err)
		}
		s.watcher = nil
	}
}
