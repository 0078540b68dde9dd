package sprite

import (
	"fmt"
	"image/color"
	"math"
)

// Color is a linear RGBA tint. Components are nominally in [0, 1] and are
// passed to the shader unchanged, so values above 1 brighten the texture.
type Color struct {
	R, G, B, A float32
}

// Common colors.
var (
	White       = Color{R: 1, G: 1, B: 1, A: 1}
	Black       = Color{A: 1}
	Transparent = Color{}
)

// RGB creates an opaque color.
func RGB(r, g, b float32) Color {
	return RGBA(r, g, b, 1)
}

// RGBA creates a color from all four components.
func RGBA(r, g, b, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// HSV creates an opaque color from hue (degrees), saturation and value.
func HSV(h, s, v float32) Color {
	return HSVA(h, s, v, 1)
}

// HSVA creates a color from hue (degrees, any range), saturation, value and
// alpha. The hue wraps modulo 360.
func HSVA(h, s, v, a float32) Color {
	h = float32(math.Mod(float64(h), 360))
	if h < 0 {
		h += 360
	}

	c := v * s
	sector := math.Mod(float64(h)/60, 2)
	x := c * float32(1-math.Abs(sector-1))
	m := v - c

	var r, g, b float32
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return Color{R: r + m, G: g + m, B: b + m, A: a}
}

// Hex parses "RGB", "RGBA", "RRGGBB" or "RRGGBBAA" with an optional '#'.
// Malformed input yields opaque black.
func Hex(hex string) Color {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b uint32
	a := uint32(255)
	ok := true

	switch len(hex) {
	case 3, 4:
		r, ok = hexDigits(hex[0:1], ok)
		g, ok = hexDigits(hex[1:2], ok)
		b, ok = hexDigits(hex[2:3], ok)
		r, g, b = r*17, g*17, b*17
		if len(hex) == 4 {
			a, ok = hexDigits(hex[3:4], ok)
			a *= 17
		}
	case 6, 8:
		r, ok = hexDigits(hex[0:2], ok)
		g, ok = hexDigits(hex[2:4], ok)
		b, ok = hexDigits(hex[4:6], ok)
		if len(hex) == 8 {
			a, ok = hexDigits(hex[6:8], ok)
		}
	default:
		ok = false
	}

	if !ok {
		return Black
	}
	return Color{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}
}

func hexDigits(s string, ok bool) (uint32, bool) {
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		v *= 16
		switch {
		case '0' <= c && c <= '9':
			v += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			v += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			v += uint32(c - 'A' + 10)
		default:
			return 0, false
		}
	}
	return v, ok
}

// FromColor converts a standard library color.
func FromColor(c color.Color) Color {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Transparent
	}
	// color.Color is premultiplied; undo it so the tint stays straight alpha.
	return Color{
		R: float32(r) / float32(a),
		G: float32(g) / float32(a),
		B: float32(b) / float32(a),
		A: float32(a) / 0xffff,
	}
}

// Array returns the components in shader order.
func (c Color) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return fmt.Sprintf("Color(%.2f, %.2f, %.2f, %.2f)", c.R, c.G, c.B, c.A)
}

// MarshalText encodes the color as "#RRGGBBAA" so it round-trips through
// TOML config files.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("#%02x%02x%02x%02x",
		to8(c.R), to8(c.G), to8(c.B), to8(c.A))), nil
}

// UnmarshalText accepts any format understood by Hex.
func (c *Color) UnmarshalText(text []byte) error {
	*c = Hex(string(text))
	return nil
}

func to8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
