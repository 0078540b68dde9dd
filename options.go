package sprite

// DrawOption configures a Draw during creation.
//
// Example:
//
//	d, err := sprite.NewDraw(device, queue, builtins,
//		sprite.WithLifetime(30),
//		sprite.WithDefaultCamera(cam))
type DrawOption func(*drawOptions)

type drawOptions struct {
	lifetime int
	camera   Camera
}

func defaultDrawOptions() drawOptions {
	return drawOptions{
		lifetime: DefaultBatchLifetime,
		camera:   NewCamera(),
	}
}

// WithLifetime sets how many consecutive idle frames a batch survives.
// Values <= 0 are ignored.
func WithLifetime(frames int) DrawOption {
	return func(o *drawOptions) {
		if frames > 0 {
			o.lifetime = frames
		}
	}
}

// WithDefaultCamera sets the camera used when no camera is set for the
// frame.
func WithDefaultCamera(c Camera) DrawOption {
	return func(o *drawOptions) {
		o.camera = c.clone()
	}
}

// SpriteOption adjusts a single sprite draw.
type SpriteOption func(*spriteParams)

type spriteParams struct {
	rotation float64
	scale    Point
	tint     Color
}

func defaultSpriteParams() spriteParams {
	return spriteParams{scale: Pt(1, 1), tint: White}
}

// WithRotation rotates the sprite around its center (radians).
func WithRotation(angle float64) SpriteOption {
	return func(p *spriteParams) { p.rotation = angle }
}

// WithScale scales the texture size per axis.
func WithScale(x, y float64) SpriteOption {
	return func(p *spriteParams) { p.scale = Pt(x, y) }
}

// WithTint multiplies the texture color.
func WithTint(c Color) SpriteOption {
	return func(p *spriteParams) { p.tint = c }
}
