package metadata

import (
	"hash/fnv"
)

// VertexFormat describes the component layout of one vertex attribute.
// Unsupported source formats must be converted by the asset layer before the
// data reaches the renderer.
type VertexFormat int

const (
	VertexFormatFloat32 VertexFormat = iota
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatUint8x4
	VertexFormatUint16x4
)

// ComponentCount returns the number of components per vertex.
func (f VertexFormat) ComponentCount() int {
	switch f {
	case VertexFormatFloat32:
		return 1
	case VertexFormatFloat32x2:
		return 2
	case VertexFormatFloat32x3:
		return 3
	case VertexFormatFloat32x4, VertexFormatUint8x4, VertexFormatUint16x4:
		return 4
	}
	return 0
}

// ByteSize returns the byte size of one vertex in this format.
func (f VertexFormat) ByteSize() int {
	switch f {
	case VertexFormatFloat32:
		return 4
	case VertexFormatFloat32x2:
		return 8
	case VertexFormatFloat32x3:
		return 12
	case VertexFormatFloat32x4:
		return 16
	case VertexFormatUint8x4:
		return 4
	case VertexFormatUint16x4:
		return 8
	}
	return 0
}

// VertexAttribute names one attribute stream of a mesh ("position", "normal",
// "uv_0", "joint_indices", ...). Names must match the shader attribute names.
type VertexAttribute struct {
	Name   string
	Format VertexFormat
}

// MeshData is decoded mesh geometry as delivered by the asset system: one raw
// byte stream per attribute plus an optional index list. Indices are always
// 32-bit on the wire; the mesh system narrows them when they fit in 16 bits.
type MeshData struct {
	Attributes    []VertexAttribute
	AttributeData [][]byte
	Indices       []uint32
	VertexCount   int
}

// IndexCount returns the number of indices drawn for this mesh. Meshes without
// an index list are drawn with generated sequential indices.
func (m *MeshData) IndexCount() int {
	if len(m.Indices) > 0 {
		return len(m.Indices)
	}
	return m.VertexCount
}

// LayoutHash returns a hash of the attribute names and formats. Meshes with
// identical layout hashes can share one buffer set.
func (m *MeshData) LayoutHash() uint64 {
	h := fnv.New64a()
	for _, a := range m.Attributes {
		h.Write([]byte(a.Name))
		h.Write([]byte{byte(a.Format)})
	}
	return h.Sum64()
}

// AppendIndicesU16 appends the mesh indices, offset by the base vertex, as
// 16-bit values. Missing index lists expand to sequential indices.
func (m *MeshData) AppendIndicesU16(dst []uint16, offset uint16) []uint16 {
	if len(m.Indices) > 0 {
		for _, i := range m.Indices {
			dst = append(dst, uint16(i)+offset)
		}
		return dst
	}
	for i := 0; i < m.VertexCount; i++ {
		dst = append(dst, uint16(i)+offset)
	}
	return dst
}

// AppendIndicesU32 appends the mesh indices, offset by the base vertex, as
// 32-bit values. Missing index lists expand to sequential indices.
func (m *MeshData) AppendIndicesU32(dst []uint32, offset uint32) []uint32 {
	if len(m.Indices) > 0 {
		for _, i := range m.Indices {
			dst = append(dst, i+offset)
		}
		return dst
	}
	for i := 0; i < m.VertexCount; i++ {
		dst = append(dst, uint32(i)+offset)
	}
	return dst
}
