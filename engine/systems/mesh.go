package systems

import (
	"encoding/binary"

	"github.com/spaghettifunk/mirage/engine/assets"
	"github.com/spaghettifunk/mirage/engine/core"
	"github.com/spaghettifunk/mirage/engine/renderer/gl"
	"github.com/spaghettifunk/mirage/engine/renderer/metadata"
)

// Vertex counts up to this fit 16-bit indices (0..65535).
const maxUint16Vertices = 1 << 16

type meshRange struct {
	firstIndex int
	indexCount int
}

// bufferSet owns one index buffer plus one buffer per named vertex attribute,
// shared by every mesh asset with the identical attribute layout. The meshes
// map is the live-reference set: the GPU buffers are deleted exactly when it
// empties.
type bufferSet struct {
	layoutHash uint64
	attributes []metadata.VertexAttribute

	meshes map[string]*metadata.MeshData
	order  []string
	ranges map[string]meshRange

	vertexCount      int
	indexType        gl.IndexType
	indexBuffer      gl.BufferHandle
	attributeBuffers []gl.BufferHandle
	uploaded         bool
}

// MeshSystem is the GPU mesh cache: an arena of buffer sets plus an asset-name
// to arena-slot map. Mutated only on the execution context; reference counts
// never race because there is only one mutator.
type MeshSystem struct {
	sets     []*bufferSet
	byName   map[string]int
	byLayout map[uint64]int

	// Bind memoization. Rebinding attributes costs several GL calls per draw;
	// consecutive draws from the same set under the same program skip it.
	lastProgram gl.ProgramHandle
	lastSlot    int
	hasBound    bool
}

func NewMeshSystem() *MeshSystem {
	return &MeshSystem{
		byName:   make(map[string]int),
		byLayout: make(map[uint64]int),
	}
}

// ProcessEvents applies one frame's worth of mesh asset changes. A mesh
// modified and removed in the same frame frees its buffers exactly once.
func (s *MeshSystem) ProcessEvents(ctx *gl.Context, events []assets.MeshEvent) {
	for _, event := range events {
		switch event.Type {
		case assets.EventAdded, assets.EventModified:
			s.AddMesh(ctx, event.Name, event.Data)
		case assets.EventRemoved:
			s.RemoveMesh(ctx, event.Name)
		}
	}
}

// AddMesh uploads a mesh, merging it into an existing buffer set with the same
// attribute layout when index capacity allows. Meshes too large for the
// context's index support are rejected with a warning and no GPU state change.
func (s *MeshSystem) AddMesh(ctx *gl.Context, name string, data *metadata.MeshData) {
	if data == nil || data.VertexCount == 0 || len(data.Attributes) == 0 {
		core.LogWarn("mesh '%s' has no geometry, skipping upload", name)
		return
	}
	caps := ctx.Caps()
	if data.VertexCount > maxUint16Vertices && !caps.Uint32Indices {
		core.LogWarn("mesh '%s' has %d vertices but the context lacks 32-bit index support, skipping upload",
			name, data.VertexCount)
		return
	}

	// Replacement: drop the old registration first so the rebuild below sees
	// only the new data.
	if _, ok := s.byName[name]; ok {
		s.RemoveMesh(ctx, name)
	}

	hash := data.LayoutHash()
	slot, merge := s.byLayout[hash]
	if merge {
		set := s.sets[slot]
		if set.vertexCount+data.VertexCount > maxUint16Vertices && !caps.Uint32Indices {
			// The merged set would outgrow 16-bit indices. Start a fresh set
			// and point future same-layout meshes at it.
			merge = false
		}
	}
	if !merge {
		slot = s.allocSlot(&bufferSet{
			layoutHash: hash,
			attributes: append([]metadata.VertexAttribute(nil), data.Attributes...),
			meshes:     make(map[string]*metadata.MeshData),
			ranges:     make(map[string]meshRange),
		})
		s.byLayout[hash] = slot
	}

	set := s.sets[slot]
	set.meshes[name] = data
	set.order = append(set.order, name)
	s.byName[name] = slot
	s.rebuild(ctx, set)
}

// RemoveMesh drops a mesh's registration. The backing buffer set is freed
// immediately when its reference set empties; otherwise it is rebuilt without
// the removed geometry.
func (s *MeshSystem) RemoveMesh(ctx *gl.Context, name string) {
	slot, ok := s.byName[name]
	if !ok {
		return
	}
	set := s.sets[slot]
	delete(set.meshes, name)
	delete(set.ranges, name)
	delete(s.byName, name)
	for i, n := range set.order {
		if n == name {
			set.order = append(set.order[:i], set.order[i+1:]...)
			break
		}
	}

	if len(set.meshes) == 0 {
		s.releaseBuffers(ctx, set)
		s.sets[slot] = nil
		if s.byLayout[set.layoutHash] == slot {
			delete(s.byLayout, set.layoutHash)
		}
		s.hasBound = false
		return
	}
	s.rebuild(ctx, set)
}

func (s *MeshSystem) allocSlot(set *bufferSet) int {
	for i, existing := range s.sets {
		if existing == nil {
			s.sets[i] = set
			return i
		}
	}
	s.sets = append(s.sets, set)
	return len(s.sets) - 1
}

// rebuild concatenates the set's meshes into fresh GPU buffers, then deletes
// the previous generation. Draw ranges and the index type are recomputed from
// the merged totals.
func (s *MeshSystem) rebuild(ctx *gl.Context, set *bufferSet) {
	device := ctx.Device
	metrics := core.Metrics()

	total := 0
	for _, name := range set.order {
		total += set.meshes[name].VertexCount
	}
	set.vertexCount = total
	set.indexType = gl.IndexUint32
	if total <= maxUint16Vertices {
		set.indexType = gl.IndexUint16
	}

	// Attribute streams, one merged buffer per attribute.
	newAttribBuffers := make([]gl.BufferHandle, len(set.attributes))
	for ai := range set.attributes {
		var merged []byte
		for _, name := range set.order {
			merged = append(merged, set.meshes[name].AttributeData[ai]...)
		}
		newAttribBuffers[ai] = device.CreateVertexBuffer(merged)
		metrics.BuffersCreated++
	}

	// Index stream, vertex offsets baked in per mesh.
	var indexBytes []byte
	vertexOffset := 0
	firstIndex := 0
	if set.indexType == gl.IndexUint16 {
		var indices []uint16
		for _, name := range set.order {
			mesh := set.meshes[name]
			indices = mesh.AppendIndicesU16(indices, uint16(vertexOffset))
			set.ranges[name] = meshRange{firstIndex: firstIndex, indexCount: mesh.IndexCount()}
			firstIndex += mesh.IndexCount()
			vertexOffset += mesh.VertexCount
		}
		indexBytes = u16Bytes(indices)
	} else {
		var indices []uint32
		for _, name := range set.order {
			mesh := set.meshes[name]
			indices = mesh.AppendIndicesU32(indices, uint32(vertexOffset))
			set.ranges[name] = meshRange{firstIndex: firstIndex, indexCount: mesh.IndexCount()}
			firstIndex += mesh.IndexCount()
			vertexOffset += mesh.VertexCount
		}
		indexBytes = u32Bytes(indices)
	}
	newIndexBuffer := device.CreateIndexBuffer(indexBytes)
	metrics.BuffersCreated++

	s.releaseBuffers(ctx, set)
	set.attributeBuffers = newAttribBuffers
	set.indexBuffer = newIndexBuffer
	set.uploaded = true
	s.hasBound = false
}

func (s *MeshSystem) releaseBuffers(ctx *gl.Context, set *bufferSet) {
	if !set.uploaded {
		return
	}
	metrics := core.Metrics()
	for _, b := range set.attributeBuffers {
		ctx.Device.DeleteBuffer(b)
		metrics.BuffersDeleted++
	}
	ctx.Device.DeleteBuffer(set.indexBuffer)
	metrics.BuffersDeleted++
	set.attributeBuffers = nil
	set.indexBuffer = 0
	set.uploaded = false
}

// Has reports whether a mesh is resident on the GPU.
func (s *MeshSystem) Has(name string) bool {
	slot, ok := s.byName[name]
	if !ok {
		return false
	}
	return s.sets[slot].uploaded
}

// Draw binds the mesh's buffer set under the program and issues the indexed
// draw. Returns false when the mesh is not resident; callers skip the draw for
// this frame, the asset system will deliver it eventually.
func (s *MeshSystem) Draw(ctx *gl.Context, program gl.ProgramHandle, name string) bool {
	slot, ok := s.byName[name]
	if !ok {
		return false
	}
	set := s.sets[slot]
	if !set.uploaded {
		return false
	}
	r := set.ranges[name]

	if !s.hasBound || s.lastProgram != program || s.lastSlot != slot {
		s.bindSet(ctx, program, set)
		s.lastProgram = program
		s.lastSlot = slot
		s.hasBound = true
	}

	ctx.Device.DrawIndexed(r.indexCount, set.indexType, r.firstIndex*set.indexType.ByteSize())
	core.Metrics().DrawCalls++
	return true
}

func (s *MeshSystem) bindSet(ctx *gl.Context, program gl.ProgramHandle, set *bufferSet) {
	device := ctx.Device
	device.BindIndexBuffer(set.indexBuffer)
	for i, attr := range set.attributes {
		location, ok := device.AttribLocation(program, attr.Name)
		if !ok {
			// The program does not consume this stream. Not an error.
			continue
		}
		device.BindVertexAttrib(location, attr.Format.ComponentCount(),
			gl.AttribTypeForFormat(attr.Format), set.attributeBuffers[i])
	}
}

// InvalidateBinding forgets the bind memoization. Call after any out-of-band
// buffer or program binding.
func (s *MeshSystem) InvalidateBinding() {
	s.hasBound = false
}

// LiveBufferSets returns the number of allocated buffer sets.
func (s *MeshSystem) LiveBufferSets() int {
	n := 0
	for _, set := range s.sets {
		if set != nil {
			n++
		}
	}
	return n
}

// Shutdown frees every buffer set.
func (s *MeshSystem) Shutdown(ctx *gl.Context) {
	for i, set := range s.sets {
		if set == nil {
			continue
		}
		s.releaseBuffers(ctx, set)
		s.sets[i] = nil
	}
	s.byName = map[string]int{}
	s.byLayout = map[uint64]int{}
	s.hasBound = false
}

func u16Bytes(values []uint16) []byte {
	out := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

func u32Bytes(values []uint32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}
