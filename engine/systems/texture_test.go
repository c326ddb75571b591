package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/mirage/engine/assets"
	"github.com/spaghettifunk/mirage/engine/core"
	"github.com/spaghettifunk/mirage/engine/renderer/gl"
	"github.com/spaghettifunk/mirage/engine/renderer/gl/gltest"
	"github.com/spaghettifunk/mirage/engine/renderer/metadata"
)

func textureFixture(t *testing.T) (*gltest.Device, *gl.Context, *TextureSystem) {
	t.Helper()
	core.ResetMetrics()
	device := gltest.NewDevice()
	return device, gl.NewContext(device), NewTextureSystem()
}

func image2D(width, height, mips int) *metadata.ImageData {
	chain := make([]metadata.MipLevel, mips)
	w, h := width, height
	for i := range chain {
		chain[i] = metadata.MipLevel{Width: w, Height: h, Pixels: make([]byte, w*h*4)}
		if w > 1 {
			w /= 2
		}
		if h > 1 {
			h /= 2
		}
	}
	return &metadata.ImageData{
		TextureType: metadata.TextureType2D,
		Width:       width,
		Height:      height,
		Faces:       [][]metadata.MipLevel{chain},
	}
}

func imageCube(size int) *metadata.ImageData {
	faces := make([][]metadata.MipLevel, 6)
	for i := range faces {
		faces[i] = []metadata.MipLevel{{Width: size, Height: size, Pixels: make([]byte, size*size*4)}}
	}
	return &metadata.ImageData{
		TextureType: metadata.TextureTypeCube,
		Width:       size,
		Height:      size,
		Faces:       faces,
	}
}

func TestTextureUploadAndGet(t *testing.T) {
	device, ctx, s := textureFixture(t)
	s.Upload(ctx, "albedo", image2D(4, 4, 1), metadata.DefaultSampler())

	handle, target, ok := s.Get(ctx, "albedo")
	require.True(t, ok)
	assert.Equal(t, gl.Target2D, target)
	assert.True(t, device.LiveTextures[handle])
}

func TestTextureCubeUploadsSixFaces(t *testing.T) {
	device, ctx, s := textureFixture(t)
	s.Upload(ctx, "sky", imageCube(8), metadata.DefaultSampler())

	_, target, ok := s.Get(ctx, "sky")
	require.True(t, ok)
	assert.Equal(t, gl.TargetCube, target)
	assert.Equal(t, 6, device.TexUploads)
}

func TestTextureReplacementInstallsNewBeforeDeletingOld(t *testing.T) {
	device, ctx, s := textureFixture(t)
	s.Upload(ctx, "albedo", image2D(4, 4, 1), metadata.DefaultSampler())
	old, _, _ := s.Get(ctx, "albedo")

	s.Upload(ctx, "albedo", image2D(8, 8, 1), metadata.DefaultSampler())
	current, _, ok := s.Get(ctx, "albedo")

	require.True(t, ok)
	assert.NotEqual(t, old, current)
	assert.True(t, device.LiveTextures[current], "asset must never map to a deleted handle")
	assert.Contains(t, device.DeletedTextures, old)
}

func TestTextureUnsupportedDimensionalityFallsBackToPlaceholder(t *testing.T) {
	device, ctx, s := textureFixture(t)
	s.Upload(ctx, "volume", &metadata.ImageData{
		TextureType: metadata.TextureType3D,
		Faces:       [][]metadata.MipLevel{{{Width: 1, Height: 1, Pixels: []byte{0, 0, 0, 0}}}},
	}, metadata.DefaultSampler())

	handle, target, ok := s.Get(ctx, "volume")
	require.True(t, ok)
	assert.Equal(t, gl.Target2D, target)
	assert.Equal(t, s.Placeholder(ctx), handle)
	assert.True(t, device.LiveTextures[handle])
}

func TestTextureNotUploadedIsNotReady(t *testing.T) {
	_, ctx, s := textureFixture(t)
	_, _, ok := s.Get(ctx, "pending")
	assert.False(t, ok)
}

func TestTextureRemoveDeletesHandle(t *testing.T) {
	device, ctx, s := textureFixture(t)
	s.Upload(ctx, "albedo", image2D(4, 4, 1), metadata.DefaultSampler())
	handle, _, _ := s.Get(ctx, "albedo")

	s.Remove(ctx, "albedo")
	_, _, ok := s.Get(ctx, "albedo")
	assert.False(t, ok)
	assert.Contains(t, device.DeletedTextures, handle)
}

func TestTextureManualMipUpload(t *testing.T) {
	device, ctx, s := textureFixture(t)
	s.Upload(ctx, "albedo", image2D(8, 8, 4), metadata.DefaultSampler())
	assert.Equal(t, 4, device.TexUploads)
}

func TestTextureAutogenMipsWithoutManualCapability(t *testing.T) {
	device, ctx, s := textureFixture(t)
	device.Capabilities.ManualMips = false

	s.Upload(ctx, "albedo", image2D(8, 8, 4), metadata.DefaultSampler())
	assert.Equal(t, 1, device.TexUploads, "only mip 0 uploads, the driver generates the rest")
}

func TestTextureEventProcessing(t *testing.T) {
	device, ctx, s := textureFixture(t)
	s.ProcessEvents(ctx, []assets.ImageEvent{
		{Type: assets.EventAdded, Name: "a", Data: image2D(4, 4, 1), Sampler: metadata.DefaultSampler()},
		{Type: assets.EventModified, Name: "a", Data: image2D(8, 8, 1), Sampler: metadata.DefaultSampler()},
		{Type: assets.EventRemoved, Name: "a"},
	})

	_, _, ok := s.Get(ctx, "a")
	assert.False(t, ok)
	assert.Empty(t, device.LiveTextures)
}

func TestWritableTextureLifecycle(t *testing.T) {
	device, ctx, s := textureFixture(t)
	wt := s.AcquireWritable(ctx, 256, 256)
	require.NotNil(t, wt)
	assert.True(t, device.LiveTextures[wt.Handle])

	// The writable texture is resolvable by its generated name.
	handle, _, ok := s.Get(ctx, wt.Name)
	require.True(t, ok)
	assert.Equal(t, wt.Handle, handle)

	s.CopyFromFramebuffer(ctx, wt)
	assert.Equal(t, 1, device.TexCopies)

	s.ReleaseWritable(ctx, wt)
	assert.False(t, device.LiveTextures[wt.Handle])
	_, _, ok = s.Get(ctx, wt.Name)
	assert.False(t, ok)
}
