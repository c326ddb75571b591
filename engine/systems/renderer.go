package systems

import (
	"fmt"

	"github.com/spaghettifunk/mirage/engine/assets"
	"github.com/spaghettifunk/mirage/engine/core"
	"github.com/spaghettifunk/mirage/engine/math"
	"github.com/spaghettifunk/mirage/engine/renderer"
	"github.com/spaghettifunk/mirage/engine/renderer/gl"
	"github.com/spaghettifunk/mirage/engine/renderer/metadata"
)

// PrepareCallback runs once per frame before any phase, for per-frame material
// setup (uniform staging, shader variant selection).
type PrepareCallback func(state *FrameState)

// RenderCallback draws one run of same-material-type draws under the phase
// carried by the state. Registered once per material type; selected per run,
// never per draw.
type RenderCallback func(state *FrameState, draws []metadata.Draw)

// FrameState is the per-frame context handed to every callback. The phase is
// carried here, by parameter, never through globals: tests can invoke a
// callback with any phase directly.
type FrameState struct {
	Phase   metadata.RenderPhase
	Context *gl.Context

	Meshes   *MeshSystem
	Textures *TextureSystem
	Shaders  *ShaderSystem

	CameraView math.Mat4

	// Shadow availability drives shader define selection in callbacks, never a
	// runtime uniform branch: a different define set is a different program.
	ShadowEnabled        bool
	ShadowViewProjection math.Mat4
	ShadowTexture        gl.TextureHandle

	ReflectionEnabled bool
	ReflectionMatrix  math.Mat4
	ReflectionTexture gl.TextureHandle

	deferred *DeferredDrawSystem
}

// Defer queues a draw for the next transparent-class phase. Callbacks use this
// for order-dependent work the renderer could not classify up front.
func (s *FrameState) Defer(distance float32, id metadata.DrawID, materialType metadata.MaterialType) {
	s.deferred.Defer(distance, id, materialType)
}

// FrameData is everything the host hands over for one frame. The renderer
// reads it during extraction only and never keeps it past DrawFrame.
type FrameData struct {
	Drawables  []metadata.Drawable
	CameraView math.Mat4
	// ReflectionPlane gates the mirrored phases. Nil tears reflection
	// resources down.
	ReflectionPlane *ReflectionPlane
	// ShadowLight gates the shadow phase. Only pass a light whose shadow data
	// is valid; nil tears shadow resources down.
	ShadowLight    *DirectionalLight
	ViewportWidth  int
	ViewportHeight int
}

type RendererSystemConfig struct {
	DepthPrepass  bool
	ClearColor    math.Vec4
	ShadowMapSize int
	ShadowBounds  math.Vec3
}

// RendererSystem sequences the frame through its phases and owns the deferred
// queue plus the shadow and reflection resources. Extraction happens on the
// caller; everything GPU-side is recorded into a command batch and replayed by
// the executor, the sole owner of the GL context.
type RendererSystem struct {
	config *RendererSystemConfig

	shaders  *ShaderSystem
	meshes   *MeshSystem
	textures *TextureSystem
	events   *assets.EventQueue
	executor *renderer.Executor
	deferred *DeferredDrawSystem

	prepares []PrepareCallback
	renders  map[metadata.MaterialType]RenderCallback
	warned   map[metadata.MaterialType]bool

	shadow     *shadowResources
	reflection *reflectionResources

	frameClock *core.Clock
}

func NewRendererSystem(config *RendererSystemConfig, shaders *ShaderSystem, meshes *MeshSystem,
	textures *TextureSystem, events *assets.EventQueue, executor *renderer.Executor) (*RendererSystem, error) {
	if config == nil {
		return nil, fmt.Errorf("renderer system requires a config")
	}
	if shaders == nil || meshes == nil || textures == nil || events == nil || executor == nil {
		return nil, fmt.Errorf("renderer system requires all subsystems")
	}
	if config.ShadowMapSize <= 0 {
		config.ShadowMapSize = 1024
	}
	return &RendererSystem{
		config:     config,
		shaders:    shaders,
		meshes:     meshes,
		textures:   textures,
		events:     events,
		executor:   executor,
		deferred:   NewDeferredDrawSystem(),
		renders:    make(map[metadata.MaterialType]RenderCallback),
		warned:     make(map[metadata.MaterialType]bool),
		frameClock: core.NewClock(),
	}, nil
}

// RegisterPrepare adds a frame-setup callback.
func (s *RendererSystem) RegisterPrepare(cb PrepareCallback) {
	s.prepares = append(s.prepares, cb)
}

// RegisterRender binds a material type to its render callback. One callback
// per type, registered before the first frame.
func (s *RendererSystem) RegisterRender(materialType metadata.MaterialType, cb RenderCallback) error {
	if _, ok := s.renders[materialType]; ok {
		return fmt.Errorf("material type '%s' already registered", materialType)
	}
	s.renders[materialType] = cb
	return nil
}

// DrawFrame extracts the frame, records the full phase sequence as a command
// batch, and submits it. In threaded mode the call blocks while the previous
// frame's batch is still pending.
func (s *RendererSystem) DrawFrame(frame *FrameData) {
	draws, byID := s.extract(frame)
	shadowDraws := filterDraws(draws, func(d metadata.Draw) bool { return !d.BlendAlpha })
	reflectDraws := filterDraws(draws, func(d metadata.Draw) bool { return !d.SkipReflection })

	hasShadow := frame.ShadowLight != nil
	hasReflection := frame.ReflectionPlane != nil
	var lightTransform math.Mat4
	if hasShadow {
		lightTransform = frame.ShadowLight.Transform
	}
	var plane ReflectionPlane
	if hasReflection {
		plane = *frame.ReflectionPlane
	}
	width, height := frame.ViewportWidth, frame.ViewportHeight

	state := &FrameState{
		CameraView: frame.CameraView,
		Meshes:     s.meshes,
		Textures:   s.textures,
		Shaders:    s.shaders,
		deferred:   s.deferred,
	}

	encoder := renderer.NewCommandEncoder()

	encoder.Record(func(ctx *gl.Context) {
		state.Context = ctx
		s.frameClock.Start()
		core.ResetMetrics()
		ctx.ResetStateCache()
		s.meshes.InvalidateBinding()
		ctx.Device.Viewport(width, height)
		s.shaders.MaintainHotReload(ctx)
		s.meshes.ProcessEvents(ctx, s.events.DrainMeshes())
		s.textures.ProcessEvents(ctx, s.events.DrainImages())
	})

	// Shadow runs first so later phases can sample its texture.
	encoder.Record(func(ctx *gl.Context) {
		if !hasShadow {
			if s.shadow != nil {
				s.shadow.teardown(ctx, s.textures)
				s.shadow = nil
			}
			state.ShadowEnabled = false
			state.ShadowTexture = 0
			return
		}
		if s.shadow == nil {
			s.shadow = newShadowResources(ctx, s.textures, s.config.ShadowMapSize)
		}
		s.shadow.viewProjection = ShadowViewProjection(lightTransform, s.config.ShadowBounds)
		state.ShadowEnabled = true
		state.ShadowViewProjection = s.shadow.viewProjection
		state.ShadowTexture = s.shadow.texture.Handle
	})

	encoder.Record(func(ctx *gl.Context) {
		state.Phase = metadata.RenderPhaseNone
		for _, cb := range s.prepares {
			cb(state)
		}
	})

	encoder.Record(func(ctx *gl.Context) {
		if !state.ShadowEnabled {
			return
		}
		size := s.config.ShadowMapSize
		ctx.Device.Viewport(size, size)
		s.BeginPhase(state, metadata.RenderPhaseShadow, true)
		s.RunRegistered(state, shadowDraws)
		s.textures.CopyFromFramebuffer(ctx, s.shadow.texture)
		ctx.Device.Viewport(width, height)
	})

	encoder.Record(func(ctx *gl.Context) {
		if !hasReflection {
			if s.reflection != nil {
				s.reflection.teardown(ctx, s.textures)
				s.reflection = nil
			}
			state.ReflectionEnabled = false
			state.ReflectionTexture = 0
			return
		}
		if s.reflection == nil {
			s.reflection = newReflectionResources(ctx, s.textures, width, height)
		} else {
			s.reflection.resize(ctx, s.textures, width, height)
		}
		s.reflection.matrix = plane.Matrix()
		state.ReflectionEnabled = true
		state.ReflectionMatrix = s.reflection.matrix
		state.ReflectionTexture = s.reflection.texture.Handle

		// Mirrored geometry has inverted winding; flip culling for the whole
		// reflected sequence.
		ctx.SetCullFlip(true)
		if s.config.DepthPrepass {
			s.BeginPhase(state, metadata.RenderPhaseReflectDepthPrepass, true)
			s.RunRegistered(state, reflectDraws)
		}
		s.BeginPhase(state, metadata.RenderPhaseReflectOpaque, !s.config.DepthPrepass)
		s.RunRegistered(state, reflectDraws)
		s.BeginPhase(state, metadata.RenderPhaseReflectTransparent, false)
		s.resolveDeferred(state, byID)
		ctx.SetCullFlip(false)

		s.textures.CopyFromFramebuffer(ctx, s.reflection.texture)
	})

	encoder.Record(func(ctx *gl.Context) {
		if s.config.DepthPrepass {
			s.BeginPhase(state, metadata.RenderPhaseDepthPrepass, true)
			s.RunRegistered(state, draws)
		}
		s.BeginPhase(state, metadata.RenderPhaseOpaque, !s.config.DepthPrepass)
		s.RunRegistered(state, draws)
		s.BeginPhase(state, metadata.RenderPhaseTransparent, false)
		s.resolveDeferred(state, byID)

		ctx.Present()
		state.Phase = metadata.RenderPhaseNone
		s.frameClock.Update()
	})

	s.executor.Submit(encoder.Finish())
}

// FrameSeconds returns the GPU-side duration of the last executed frame.
func (s *RendererSystem) FrameSeconds() float64 {
	return s.frameClock.Elapsed
}

// extract builds the per-frame draw list: visible drawables with their
// view-space depth, used later as the deferred sort key.
func (s *RendererSystem) extract(frame *FrameData) ([]metadata.Draw, map[metadata.DrawID]metadata.Draw) {
	draws := make([]metadata.Draw, 0, len(frame.Drawables))
	byID := make(map[metadata.DrawID]metadata.Draw, len(frame.Drawables))
	for _, d := range frame.Drawables {
		if !d.Visible {
			continue
		}
		center := frame.CameraView.TransformPoint(d.Bounds.Center)
		draw := metadata.Draw{Drawable: d, ViewDepth: center.Length()}
		draws = append(draws, draw)
		byID[d.ID] = draw
	}
	return draws, byID
}

func filterDraws(draws []metadata.Draw, keep func(metadata.Draw) bool) []metadata.Draw {
	out := make([]metadata.Draw, 0, len(draws))
	for _, d := range draws {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// BeginPhase transitions the frame into a phase and configures GPU state for
// it. clear wipes color and depth; it is true only for the first phase
// rendered into each target.
func (s *RendererSystem) BeginPhase(state *FrameState, phase metadata.RenderPhase, clear bool) {
	ctx := state.Context
	state.Phase = phase

	if clear {
		ctx.Device.SetColorWrite(true)
		color := s.config.ClearColor
		if phase == metadata.RenderPhaseShadow {
			// Depth-as-color shadow map: the background must read as maximum
			// distance.
			color = math.NewVec4Create(1, 1, 1, 1)
		}
		ctx.ClearColorAndDepth(color)
	}

	switch {
	case phase.IsTransparentClass():
		ctx.StartAlphaBlend()
	case phase == metadata.RenderPhaseDepthPrepass || phase == metadata.RenderPhaseReflectDepthPrepass:
		ctx.StartDepthOnly()
	case phase == metadata.RenderPhaseShadow:
		ctx.StartOpaque(true)
	default:
		// Opaque after a depth prepass keeps the prepass depth.
		ctx.StartOpaque(!s.config.DepthPrepass)
	}
	ctx.SetCullMode(gl.CullBack)
}

// RunRegistered dispatches the phase's draws to their material-type callbacks,
// one invocation per type group. Order-dependent draws (alpha blended, or
// sampling the reflection texture) are captured into the deferred queue during
// the opaque phases and skipped in prepass and shadow phases.
func (s *RendererSystem) RunRegistered(state *FrameState, draws []metadata.Draw) {
	phase := state.Phase

	var typeOrder []metadata.MaterialType
	groups := make(map[metadata.MaterialType][]metadata.Draw)
	for _, d := range draws {
		if d.ReflectionRead && phase.IsReflected() {
			// Cannot sample the reflection texture while it is being rendered.
			continue
		}
		if d.BlendAlpha || (d.ReflectionRead && !phase.IsReflected()) {
			if phase == metadata.RenderPhaseOpaque || phase == metadata.RenderPhaseReflectOpaque {
				s.deferred.Defer(d.ViewDepth, d.ID, d.MaterialType)
			}
			continue
		}
		if _, ok := groups[d.MaterialType]; !ok {
			typeOrder = append(typeOrder, d.MaterialType)
		}
		groups[d.MaterialType] = append(groups[d.MaterialType], d)
	}

	for _, t := range typeOrder {
		cb, ok := s.renders[t]
		if !ok {
			s.warnUnregistered(t)
			continue
		}
		cb(state, groups[t])
	}
}

// resolveDeferred drains the deferred queue back-to-front, one callback
// invocation per contiguous same-type run.
func (s *RendererSystem) resolveDeferred(state *FrameState, byID map[metadata.DrawID]metadata.Draw) {
	s.deferred.Resolve(func(t metadata.MaterialType, run []metadata.DeferredDraw) {
		cb, ok := s.renders[t]
		if !ok {
			s.warnUnregistered(t)
			return
		}
		draws := make([]metadata.Draw, 0, len(run))
		for _, dd := range run {
			if d, ok := byID[dd.ID]; ok {
				draws = append(draws, d)
			}
		}
		cb(state, draws)
	})
}

func (s *RendererSystem) warnUnregistered(t metadata.MaterialType) {
	if s.warned[t] {
		return
	}
	s.warned[t] = true
	core.LogWarn("no render callback registered for material type '%s', draws skipped", t)
}

// Shutdown releases shadow/reflection resources and every cache on the
// execution context, then stops nothing else: the executor belongs to the host.
func (s *RendererSystem) Shutdown() {
	encoder := renderer.NewCommandEncoder()
	encoder.Record(func(ctx *gl.Context) {
		if s.shadow != nil {
			s.shadow.teardown(ctx, s.textures)
			s.shadow = nil
		}
		if s.reflection != nil {
			s.reflection.teardown(ctx, s.textures)
			s.reflection = nil
		}
		s.shaders.Shutdown(ctx)
		s.meshes.Shutdown(ctx)
		s.textures.Shutdown(ctx)
	})
	s.executor.Submit(encoder.Finish())
}
