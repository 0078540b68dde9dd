package main

import (
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"math"

	"github.com/gogpu/sprite"
)

const textureSize = 32

type scene struct {
	textures []*sprite.Texture
	sprites  int
	frames   int
	camera   sprite.Camera
}

// newScene loads every PNG in assets (if any) and fills up to
// opts.textures with generated discs.
func newScene(textures *sprite.TextureCache, assets fs.FS, opts runOptions) (*scene, error) {
	if opts.textures < 1 {
		opts.textures = 1
	}
	sc := &scene{sprites: opts.sprites, frames: opts.frames, camera: sprite.NewCamera()}

	if assets != nil {
		names, err := fs.Glob(assets, "*.png")
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			tex, err := textures.Load(name)
			if err != nil {
				return nil, err
			}
			sc.textures = append(sc.textures, tex)
		}
	}
	for i := len(sc.textures); i < opts.textures; i++ {
		hue := float32(i) * 360 / float32(opts.textures)
		img := discImage(textureSize, sprite.HSV(hue, 0.7, 1))
		tex, err := textures.Insert(fmt.Sprintf("disc-%d", i), img)
		if err != nil {
			return nil, err
		}
		sc.textures = append(sc.textures, tex)
	}
	return sc, nil
}

// draw queues one frame. After the halfway point only the first half of the
// textures is used.
func (sc *scene) draw(d *sprite.Draw, frame int) error {
	active := len(sc.textures)
	if frame >= sc.frames/2 && active > 1 {
		active /= 2
	}

	t := float64(frame) / 60
	sc.camera.Rotation = 0.1 * math.Sin(t)
	sc.camera.Zoom = 1 + 0.25*math.Sin(t*0.5)
	d.SetCamera(&sc.camera)

	for i := 0; i < sc.sprites; i++ {
		angle := float64(i)*0.37 + t
		radius := 20 + float64(i%97)*2.5
		pos := sprite.Pt(radius*math.Cos(angle), radius*math.Sin(angle))

		tex := sc.textures[i%active]
		tint := sprite.HSVA(float32(i*7), 0.2, 1, 0.9)
		if err := d.Sprite(tex, pos, sprite.WithRotation(angle), sprite.WithTint(tint)); err != nil {
			return err
		}
	}
	return nil
}

// discImage returns a size x size image of an anti-aliased filled circle.
func discImage(size int, c sprite.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-r, float64(y)+0.5-r)
			cov := math.Max(0, math.Min(1, r-d))
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(c.R * 255),
				G: uint8(c.G * 255),
				B: uint8(c.B * 255),
				A: uint8(cov * 255),
			})
		}
	}
	return img
}
