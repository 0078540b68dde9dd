package sprite

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"testing"
	"testing/fstest"
)

func pngFile(t *testing.T, w, h int) *fstest.MapFile {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return &fstest.MapFile{Data: buf.Bytes()}
}

func newTestCache(t *testing.T, fsys fs.FS, capacity int) *TextureCache {
	t.Helper()
	device, queue := newNoopDevice(t)
	builtins, err := NewBuiltins(device, BuiltinsConfig{SampleCount: 1})
	if err != nil {
		t.Fatalf("NewBuiltins: %v", err)
	}
	t.Cleanup(builtins.Destroy)

	c, err := NewTextureCache(device, queue, builtins, fsys, capacity)
	if err != nil {
		t.Fatalf("NewTextureCache: %v", err)
	}
	t.Cleanup(c.Destroy)
	return c
}

func TestTextureCacheLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"hero.png":     pngFile(t, 16, 8),
		"broken.png":   &fstest.MapFile{Data: []byte("not an image")},
		"nested/a.png": pngFile(t, 2, 2),
	}
	c := newTestCache(t, fsys, 0)

	tex, err := c.Load("hero.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tex.Key() != "hero.png" || tex.Size() != Pt(16, 8) {
		t.Errorf("key=%q size=%v", tex.Key(), tex.Size())
	}
	again, err := c.Load("hero.png")
	if err != nil || again != tex {
		t.Errorf("second Load = %p, %v; want cached %p", again, err, tex)
	}
	if _, err := c.Load("nested/a.png"); err != nil {
		t.Errorf("nested Load: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	if _, err := c.Load("missing.png"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing: err = %v, want fs.ErrNotExist", err)
	}
	if _, err := c.Load("broken.png"); err == nil || errors.Is(err, fs.ErrNotExist) {
		t.Errorf("broken: err = %v, want decode error", err)
	}
}

func TestTextureCacheNoFS(t *testing.T) {
	c := newTestCache(t, nil, 4)
	if _, err := c.Load("a.png"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
	if _, err := c.Insert("a.png", image.NewNRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := c.Load("a.png"); err != nil {
		t.Errorf("Load after Insert: %v", err)
	}
}

func TestTextureCacheEvictionWaitsForBatches(t *testing.T) {
	c := newTestCache(t, nil, 2)
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))

	for _, key := range []string{"a", "b", "c"} {
		if _, err := c.Insert(key, img); err != nil {
			t.Fatalf("Insert(%q): %v", key, err)
		}
	}
	if c.Len() != 2 || c.Retired() != 1 {
		t.Fatalf("Len=%d Retired=%d, want 2 and 1", c.Len(), c.Retired())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("least recently used texture still resident")
	}

	live := map[string]bool{"a": true}
	inUse := func(key string) bool { return live[key] }
	if n := c.Collect(inUse); n != 0 || c.Retired() != 1 {
		t.Errorf("Collect with live batch destroyed %d, retired %d", n, c.Retired())
	}
	live["a"] = false
	if n := c.Collect(inUse); n != 1 || c.Retired() != 0 {
		t.Errorf("Collect destroyed %d, retired %d; want 1 and 0", n, c.Retired())
	}
}

func TestTextureCacheInsertReplaces(t *testing.T) {
	c := newTestCache(t, nil, 4)
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))

	old, err := c.Insert("a", img)
	if err != nil {
		t.Fatal(err)
	}
	repl, err := c.Insert("a", image.NewNRGBA(image.Rect(0, 0, 2, 2)))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := c.Get("a"); got != repl || got == old {
		t.Error("Insert did not replace the cached texture")
	}
	if c.Len() != 1 || c.Retired() != 1 {
		t.Errorf("Len=%d Retired=%d, want 1 and 1", c.Len(), c.Retired())
	}
}

func TestTextureCacheWithDraw(t *testing.T) {
	device, queue := newNoopDevice(t)
	d := newTestDraw(t, device, queue, WithLifetime(1))
	c := newTestCache(t, nil, 1)
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))

	a, _ := c.Insert("a", img)
	if err := d.Sprite(a, Pt(0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := d.Submit(&recordingPass{}, Pt(100, 100)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Insert("b", img); err != nil {
		t.Fatal(err)
	}

	if n := c.Collect(d.Uses); n != 0 {
		t.Fatalf("destroyed %d textures while batch a is live", n)
	}
	// One idle frame exhausts lifetime 1 and evicts batch a.
	if err := d.Submit(&recordingPass{}, Pt(100, 100)); err != nil {
		t.Fatal(err)
	}
	if d.Uses("a") {
		t.Fatal("batch a not evicted")
	}
	if n := c.Collect(d.Uses); n != 1 {
		t.Errorf("destroyed %d, want 1", n)
	}

	// The caller still holds a after the cache let it go.
	pass := &recordingPass{}
	if err := d.Sprite(a, Pt(0, 0)); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("Sprite with collected texture: err = %v, want ErrDestroyed", err)
	}
	if err := d.Submit(pass, Pt(100, 100)); err != nil {
		t.Fatal(err)
	}
	if d.Uses("a") || len(pass.draws()) != 0 {
		t.Errorf("collected texture drawn: calls = %v", pass.calls)
	}
	if fresh, err := c.Load("a"); err == nil || fresh == a {
		t.Errorf("Load handed out the collected texture: %p, %v", fresh, err)
	}
}
