package metadata

// TextureType is the dimensionality target of a texture.
type TextureType int

const (
	TextureType2D TextureType = iota
	TextureTypeCube
	// TextureType3D and array textures exist in host asset systems but are
	// not representable on the target hardware class. Uploads are rejected
	// and draws fall back to the placeholder texture.
	TextureType3D
	TextureTypeArray
)

// MipLevel is one decoded mip image. Pixels are tightly packed RGBA8.
type MipLevel struct {
	Width  int
	Height int
	Pixels []byte
}

// ImageData is decoded texture content as delivered by the asset system.
// Faces holds one mip chain per face: length 1 for 2D textures, 6 for cube
// maps in +X,-X,+Y,-Y,+Z,-Z order.
type ImageData struct {
	TextureType TextureType
	Width       int
	Height      int
	Faces       [][]MipLevel
}

// SamplerDescriptor selects filtering and addressing for a texture.
type SamplerDescriptor struct {
	FilterLinear bool
	ClampToEdge  bool
	Mipmaps      bool
}

// DefaultSampler is linear filtering with repeat addressing and mipmaps.
func DefaultSampler() SamplerDescriptor {
	return SamplerDescriptor{FilterLinear: true, Mipmaps: true}
}
