package systems

import (
	"github.com/spaghettifunk/mirage/engine/core"
	"github.com/spaghettifunk/mirage/engine/renderer/gl"
)

// ValueAccessor computes the uniform value to upload for a material.
type ValueAccessor[T any] func(material T) gl.UniformValue

// TextureAccessor resolves the texture a material samples. Returning false
// skips the slot for this application (resource not ready yet).
type TextureAccessor[T any] func(material T) (gl.TextureHandle, gl.TextureTarget, bool)

type valueSlot[T any] struct {
	name     string
	accessor ValueAccessor[T]
	location gl.UniformLocation
	present  bool
	last     []uint32
	hasLast  bool
}

type textureSlot[T any] struct {
	name      string
	accessor  TextureAccessor[T]
	location  gl.UniformLocation
	present   bool
	unit      int
	lastBound gl.TextureHandle
	hasBound  bool
}

// UniformSlotSet binds named uniforms of one compiled program to accessor
// functions over a material type. Locations resolve once, on first Apply.
// Value slots keep the last-uploaded raw encoding and skip bit-identical
// re-uploads; texture slots keep the last-bound handle per unit. Texture units
// are assigned in registration order and stay fixed for the program's lifetime.
type UniformSlotSet[T any] struct {
	program  gl.ProgramHandle
	resolved bool
	values   []*valueSlot[T]
	textures []*textureSlot[T]
	scratch  []uint32
}

func NewUniformSlotSet[T any](program gl.ProgramHandle) *UniformSlotSet[T] {
	return &UniformSlotSet[T]{
		program: program,
		scratch: make([]uint32, 0, 16),
	}
}

// AddValue registers a value slot. Call before the first Apply.
func (s *UniformSlotSet[T]) AddValue(name string, accessor ValueAccessor[T]) *UniformSlotSet[T] {
	s.values = append(s.values, &valueSlot[T]{name: name, accessor: accessor})
	return s
}

// AddTexture registers a texture slot. The slot's unit is its registration
// index among texture slots.
func (s *UniformSlotSet[T]) AddTexture(name string, accessor TextureAccessor[T]) *UniformSlotSet[T] {
	s.textures = append(s.textures, &textureSlot[T]{
		name:     name,
		accessor: accessor,
		unit:     len(s.textures),
	})
	return s
}

// resolve looks up every slot's location once. Missing locations (optimized
// out by the compiler) mark the slot absent; absent slots are skipped forever.
// Sampler uniforms are pointed at their unit here, which never changes.
func (s *UniformSlotSet[T]) resolve(ctx *gl.Context) {
	device := ctx.Device
	for _, slot := range s.values {
		slot.location, slot.present = device.UniformLocation(s.program, slot.name)
	}
	for _, slot := range s.textures {
		slot.location, slot.present = device.UniformLocation(s.program, slot.name)
		if slot.present {
			device.UniformInt(slot.location, int32(slot.unit))
		}
	}
	s.resolved = true
}

// Apply uploads every changed value and binds every changed texture for the
// material. The set's program must be the currently bound program.
func (s *UniformSlotSet[T]) Apply(ctx *gl.Context, material T) {
	if !s.resolved {
		s.resolve(ctx)
	}
	device := ctx.Device
	metrics := core.Metrics()

	for _, slot := range s.values {
		if !slot.present {
			continue
		}
		value := slot.accessor(material)
		raw, diffable := value.Raw(s.scratch[:0])
		if diffable && slot.hasLast && rawEqual(slot.last, raw) {
			metrics.UniformSkips++
			continue
		}
		value.Upload(device, slot.location)
		metrics.UniformUploads++
		if diffable {
			slot.last = append(slot.last[:0], raw...)
			slot.hasLast = true
		} else {
			slot.hasLast = false
		}
	}

	for _, slot := range s.textures {
		if !slot.present {
			continue
		}
		handle, target, ok := slot.accessor(material)
		if !ok {
			continue
		}
		if slot.hasBound && slot.lastBound == handle {
			metrics.TextureBindSkips++
			continue
		}
		device.ActiveTexture(slot.unit)
		device.BindTexture(target, handle)
		slot.lastBound = handle
		slot.hasBound = true
		metrics.TextureBinds++
	}
}

func rawEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
