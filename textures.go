package sprite

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io/fs"

	"github.com/gogpu/wgpu/hal"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// DefaultTextureCacheSize is the number of textures a TextureCache keeps
// resident.
const DefaultTextureCacheSize = 256

// TextureCache loads textures by key from a file system on first use and
// keeps the most recently used ones resident.
//
// Textures pushed out of the cache are retired, not destroyed: a batch may
// still bind them. Collect destroys retired textures once no batch uses
// their key. Replacing a key with Insert therefore takes effect for drawing
// after the old batch has been evicted.
//
// TextureCache is not safe for concurrent use; it belongs to the render
// loop like Draw.
type TextureCache struct {
	device   hal.Device
	queue    hal.Queue
	builtins *Builtins
	fsys     fs.FS

	lru     *lru.Cache[string, *Texture]
	retired []*Texture
}

// NewTextureCache creates a cache reading from fsys, which may be nil when
// every texture is added with Insert. A capacity <= 0 selects
// DefaultTextureCacheSize.
func NewTextureCache(device hal.Device, queue hal.Queue, builtins *Builtins, fsys fs.FS, capacity int) (*TextureCache, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if capacity <= 0 {
		capacity = DefaultTextureCacheSize
	}
	c := &TextureCache{device: device, queue: queue, builtins: builtins, fsys: fsys}
	cache, err := lru.NewWithEvict[string, *Texture](capacity, c.retire)
	if err != nil {
		return nil, fmt.Errorf("create texture cache: %w", err)
	}
	c.lru = cache
	return c, nil
}

func (c *TextureCache) retire(key string, tex *Texture) {
	Logger().Debug("sprite: texture retired", "key", key)
	c.retired = append(c.retired, tex)
}

// Load returns the texture cached under key, decoding the file named key
// on a miss. PNG, JPEG, BMP and WebP are supported.
func (c *TextureCache) Load(key string) (*Texture, error) {
	if tex, ok := c.lru.Get(key); ok {
		return tex, nil
	}
	if c.fsys == nil {
		return nil, fmt.Errorf("load texture %q: %w", key, fs.ErrNotExist)
	}

	f, err := c.fsys.Open(key)
	if err != nil {
		return nil, fmt.Errorf("load texture: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", key, err)
	}
	Logger().Debug("sprite: texture decoded", "key", key, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return c.Insert(key, img)
}

// Insert uploads img under key. A texture already cached under key is
// retired.
func (c *TextureCache) Insert(key string, img image.Image) (*Texture, error) {
	tex, err := NewTexture(c.device, c.queue, c.builtins, key, img)
	if err != nil {
		return nil, err
	}
	c.lru.Remove(key)
	c.lru.Add(key, tex)
	return tex, nil
}

// Get returns the cached texture for key without loading it.
func (c *TextureCache) Get(key string) (*Texture, bool) {
	return c.lru.Get(key)
}

// Len returns the number of resident textures.
func (c *TextureCache) Len() int { return c.lru.Len() }

// Retired returns the number of textures waiting for Collect.
func (c *TextureCache) Retired() int { return len(c.retired) }

// Collect destroys the retired textures whose key inUse rejects and
// returns how many it destroyed. Pass Draw.Uses after each Submit.
func (c *TextureCache) Collect(inUse func(key string) bool) int {
	kept := c.retired[:0]
	n := 0
	for _, tex := range c.retired {
		if inUse(tex.Key()) {
			kept = append(kept, tex)
			continue
		}
		tex.Destroy(c.device)
		n++
	}
	clear(c.retired[len(kept):])
	c.retired = kept
	return n
}

// Destroy releases every texture, resident or retired. Batches binding
// them must be destroyed first.
func (c *TextureCache) Destroy() {
	c.lru.Purge()
	c.Collect(func(string) bool { return false })
}
