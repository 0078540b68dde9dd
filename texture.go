package sprite

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"
)

// Texture is a GPU texture ready to be drawn as a sprite. Its key identifies
// the batch every sprite using it lands in, so two Textures with the same
// key must share the same bind group.
type Texture struct {
	key  string
	size Point

	texture   hal.Texture
	view      hal.TextureView
	bindGroup hal.BindGroup
	owned     bool
	destroyed bool
}

// NewTexture uploads img as an RGBA8 texture and binds it with the shared
// sampler. The key is usually the asset path.
func NewTexture(device hal.Device, queue hal.Queue, builtins *Builtins, key string, img image.Image) (*Texture, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if builtins == nil {
		return nil, ErrNilBuiltins
	}
	pixels := toNRGBA(img)
	w, h := pixels.Rect.Dx(), pixels.Rect.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: texture %q is %dx%d", ErrZeroSize, key, w, h)
	}
	width := uint32(w)  //nolint:gosec // G115: image bounds are non-negative
	height := uint32(h) //nolint:gosec // G115: image bounds are non-negative

	t := &Texture{key: key, size: Pt(float64(w), float64(h)), owned: true}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         key,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", key, err)
	}
	t.texture = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         key + " view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.Destroy(device)
		return nil, fmt.Errorf("create texture view %q: %w", key, err)
	}
	t.view = view

	err = queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		pixels.Pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: width * 4, RowsPerImage: height},
		&hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	)
	if err != nil {
		t.Destroy(device)
		return nil, fmt.Errorf("upload texture %q: %w", key, err)
	}

	group, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  key + " bind group",
		Layout: builtins.TextureLayout(),
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: builtins.Sampler().NativeHandle()}},
		},
	})
	if err != nil {
		t.Destroy(device)
		return nil, fmt.Errorf("create texture bind group %q: %w", key, err)
	}
	t.bindGroup = group

	return t, nil
}

// WrapTexture makes a Texture from a bind group owned elsewhere (for example
// a render-to-texture target). Destroy does not release it.
func WrapTexture(key string, size Point, bindGroup hal.BindGroup) *Texture {
	return &Texture{key: key, size: size, bindGroup: bindGroup}
}

// Key returns the batch key.
func (t *Texture) Key() string { return t.key }

// Size returns the texture size in pixels, which is also the sprite's world
// size at scale 1.
func (t *Texture) Size() Point { return t.size }

// Destroyed reports whether Destroy released the texture.
func (t *Texture) Destroyed() bool { return t.destroyed }

// BindGroup returns the texture+sampler bind group.
func (t *Texture) BindGroup() hal.BindGroup { return t.bindGroup }

// Destroy releases GPU objects created by NewTexture. Batches still
// referencing the bind group must be evicted first.
func (t *Texture) Destroy(device hal.Device) {
	if !t.owned {
		return
	}
	t.destroyed = true
	if t.bindGroup != nil {
		device.DestroyBindGroup(t.bindGroup)
		t.bindGroup = nil
	}
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		device.DestroyTexture(t.texture)
		t.texture = nil
	}
}

// toNRGBA returns img as tightly packed, non-premultiplied RGBA with its
// origin at (0, 0), converting only when needed.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == n.Rect.Dx()*4 {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
