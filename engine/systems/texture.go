package systems

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/mirage/engine/assets"
	"github.com/spaghettifunk/mirage/engine/core"
	"github.com/spaghettifunk/mirage/engine/renderer/gl"
	"github.com/spaghettifunk/mirage/engine/renderer/metadata"
)

type textureEntry struct {
	handle gl.TextureHandle
	target gl.TextureTarget
}

// WritableTexture is an internally owned render-copy target (shadow map,
// reflection texture). Named by uuid so it can never collide with host asset
// names; the id comes from the engine identifier pool.
type WritableTexture struct {
	ID     uint32
	Name   string
	Handle gl.TextureHandle
	Width  int
	Height int
}

// TextureSystem is the GPU texture cache keyed by asset identity. 2D and cube
// targets only; unsupported dimensionality leaves the asset pointing at a
// shared white 1x1 placeholder instead of failing the draw.
type TextureSystem struct {
	entries  map[string]*textureEntry
	rejected map[string]bool

	placeholder    gl.TextureHandle
	hasPlaceholder bool
}

func NewTextureSystem() *TextureSystem {
	return &TextureSystem{
		entries:  make(map[string]*textureEntry),
		rejected: make(map[string]bool),
	}
}

// ProcessEvents applies one frame's worth of image asset changes.
func (s *TextureSystem) ProcessEvents(ctx *gl.Context, events []assets.ImageEvent) {
	for _, event := range events {
		switch event.Type {
		case assets.EventAdded, assets.EventModified:
			s.Upload(ctx, event.Name, event.Data, event.Sampler)
		case assets.EventRemoved:
			s.Remove(ctx, event.Name)
		}
	}
}

// Upload creates the GPU texture for an image asset. On replacement the new
// texture is fully created before the old handle is deleted, so the asset
// never maps to a dead handle.
func (s *TextureSystem) Upload(ctx *gl.Context, name string, data *metadata.ImageData, sampler metadata.SamplerDescriptor) {
	if data == nil {
		return
	}
	target, ok := textureTarget(data)
	if !ok {
		core.LogWarn("image '%s' has unsupported dimensionality, using placeholder", name)
		if old, existed := s.entries[name]; existed {
			ctx.Device.DeleteTexture(old.handle)
			delete(s.entries, name)
		}
		s.rejected[name] = true
		return
	}

	handle := s.createTexture(ctx, target, data, sampler)

	if old, existed := s.entries[name]; existed {
		ctx.Device.DeleteTexture(old.handle)
	}
	s.entries[name] = &textureEntry{handle: handle, target: target}
	delete(s.rejected, name)
}

func textureTarget(data *metadata.ImageData) (gl.TextureTarget, bool) {
	switch data.TextureType {
	case metadata.TextureType2D:
		if len(data.Faces) == 1 {
			return gl.Target2D, true
		}
	case metadata.TextureTypeCube:
		if len(data.Faces) == 6 {
			return gl.TargetCube, true
		}
	}
	return gl.Target2D, false
}

func (s *TextureSystem) createTexture(ctx *gl.Context, target gl.TextureTarget, data *metadata.ImageData, sampler metadata.SamplerDescriptor) gl.TextureHandle {
	device := ctx.Device
	caps := ctx.Caps()

	handle := device.CreateTexture()
	s.bindForUpload(ctx, target, handle)

	mipCount := 0
	if len(data.Faces) > 0 {
		mipCount = len(data.Faces[0])
	}
	manual := caps.ManualMips && mipCount > 1
	if !manual {
		mipCount = 1
	}

	// Parameters first: driver mip autogen must be armed before the upload.
	device.TexParameters(target, sampler, mipCount)

	for face, mips := range data.Faces {
		for level := 0; level < mipCount && level < len(mips); level++ {
			mip := mips[level]
			device.TexImage2D(target, face, level, mip.Width, mip.Height, mip.Pixels)
		}
	}
	if !manual && sampler.Mipmaps {
		device.GenerateMipmaps(target)
	}
	return handle
}

// bindForUpload binds on the last texture unit, which is reserved for
// non-draw work so material slot memoization stays valid.
func (s *TextureSystem) bindForUpload(ctx *gl.Context, target gl.TextureTarget, handle gl.TextureHandle) {
	ctx.Device.ActiveTexture(ctx.Caps().MaxTextureUnits - 1)
	ctx.Device.BindTexture(target, handle)
}

// Remove deletes the asset's texture.
func (s *TextureSystem) Remove(ctx *gl.Context, name string) {
	delete(s.rejected, name)
	entry, ok := s.entries[name]
	if !ok {
		return
	}
	ctx.Device.DeleteTexture(entry.handle)
	delete(s.entries, name)
}

// Get resolves an asset name to its GPU texture. Assets rejected for
// dimensionality resolve to the white placeholder; assets not yet uploaded
// return false and the caller skips the draw for this frame.
func (s *TextureSystem) Get(ctx *gl.Context, name string) (gl.TextureHandle, gl.TextureTarget, bool) {
	if entry, ok := s.entries[name]; ok {
		return entry.handle, entry.target, true
	}
	if s.rejected[name] {
		return s.Placeholder(ctx), gl.Target2D, true
	}
	return 0, gl.Target2D, false
}

// Placeholder returns the shared white 1x1 texture, creating it on first use.
func (s *TextureSystem) Placeholder(ctx *gl.Context) gl.TextureHandle {
	if s.hasPlaceholder {
		return s.placeholder
	}
	device := ctx.Device
	s.placeholder = device.CreateTexture()
	s.bindForUpload(ctx, gl.Target2D, s.placeholder)
	device.TexParameters(gl.Target2D, metadata.SamplerDescriptor{ClampToEdge: true}, 1)
	device.TexImage2D(gl.Target2D, 0, 0, 1, 1, []byte{255, 255, 255, 255})
	s.hasPlaceholder = true
	return s.placeholder
}

// AcquireWritable allocates an uninitialized RGBA texture sized for
// framebuffer copies.
func (s *TextureSystem) AcquireWritable(ctx *gl.Context, width, height int) *WritableTexture {
	device := ctx.Device
	handle := device.CreateTexture()
	s.bindForUpload(ctx, gl.Target2D, handle)
	device.TexParameters(gl.Target2D, metadata.SamplerDescriptor{FilterLinear: true, ClampToEdge: true}, 1)
	device.TexImage2D(gl.Target2D, 0, 0, width, height, nil)

	t := &WritableTexture{
		Name:   uuid.New().String(),
		Handle: handle,
		Width:  width,
		Height: height,
	}
	t.ID = core.IdentifierAquireNewID(t)
	s.entries[t.Name] = &textureEntry{handle: handle, target: gl.Target2D}
	return t
}

// CopyFromFramebuffer copies the current framebuffer into the writable
// texture's mip 0.
func (s *TextureSystem) CopyFromFramebuffer(ctx *gl.Context, t *WritableTexture) {
	s.bindForUpload(ctx, gl.Target2D, t.Handle)
	ctx.Device.CopyTexImage2D(gl.Target2D, t.Width, t.Height)
}

// ReleaseWritable deletes a writable texture and returns its id to the pool.
func (s *TextureSystem) ReleaseWritable(ctx *gl.Context, t *WritableTexture) {
	if t == nil {
		return
	}
	delete(s.entries, t.Name)
	ctx.Device.DeleteTexture(t.Handle)
	if err := core.IdentifierReleaseID(t.ID); err != nil {
		core.LogWarn("failed to release texture id %d: %s", t.ID, err)
	}
}

// Len returns the number of live asset textures.
func (s *TextureSystem) Len() int {
	return len(s.entries)
}

// Shutdown deletes every texture including the placeholder.
func (s *TextureSystem) Shutdown(ctx *gl.Context) {
	for name, entry := range s.entries {
		ctx.Device.DeleteTexture(entry.handle)
		delete(s.entries, name)
	}
	if s.hasPlaceholder {
		ctx.Device.DeleteTexture(s.placeholder)
		s.hasPlaceholder = false
	}
	s.rejected = map[string]bool{}
}
