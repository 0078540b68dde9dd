package sprite

import (
	"image/color"
	"math"
	"testing"
)

func closeColor(a, b Color, eps float32) bool {
	d := func(x, y float32) bool { return math.Abs(float64(x-y)) <= float64(eps) }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestHSVA(t *testing.T) {
	tests := []struct {
		name    string
		h, s, v float32
		want    Color
	}{
		{"red", 0, 1, 1, RGB(1, 0, 0)},
		{"yellow", 60, 1, 1, RGB(1, 1, 0)},
		{"green", 120, 1, 1, RGB(0, 1, 0)},
		{"cyan", 180, 1, 1, RGB(0, 1, 1)},
		{"blue", 240, 1, 1, RGB(0, 0, 1)},
		{"magenta", 300, 1, 1, RGB(1, 0, 1)},
		{"wraps past 360", 480, 1, 1, RGB(0, 1, 0)},
		{"negative hue", -120, 1, 1, RGB(0, 0, 1)},
		{"grey", 200, 0, 0.5, RGB(0.5, 0.5, 0.5)},
		{"half value orange", 30, 1, 0.5, RGB(0.5, 0.25, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HSV(tt.h, tt.s, tt.v)
			if !closeColor(got, tt.want, 1e-5) {
				t.Errorf("HSV(%v, %v, %v) = %v, want %v", tt.h, tt.s, tt.v, got, tt.want)
			}
		})
	}

	if got := HSVA(0, 1, 1, 0.25); got.A != 0.25 {
		t.Errorf("HSVA alpha = %v, want 0.25", got.A)
	}
}

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#fff", White},
		{"f00", RGB(1, 0, 0)},
		{"#00ff0080", RGBA(0, 1, 0, 128.0/255)},
		{"0000ff", RGB(0, 0, 1)},
		{"#1234", RGBA(0x11/255.0, 0x22/255.0, 0x33/255.0, 0x44/255.0)},
		{"nope", Black},
		{"#zzzzzz", Black},
		{"", Black},
	}
	for _, tt := range tests {
		if got := Hex(tt.in); !closeColor(got, tt.want, 1e-6) {
			t.Errorf("Hex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColorText(t *testing.T) {
	c := RGBA(1, 0.5, 0, 0.25)
	text, err := c.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "#ff800040" {
		t.Errorf("MarshalText = %s, want #ff800040", text)
	}
	var back Color
	if err := back.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if !closeColor(back, c, 1.0/255) {
		t.Errorf("UnmarshalText = %v, want %v", back, c)
	}
}

func TestFromColor(t *testing.T) {
	got := FromColor(color.NRGBA{R: 255, G: 0, B: 0, A: 128})
	if !closeColor(got, RGBA(1, 0, 0, 128.0/255), 1e-3) {
		t.Errorf("FromColor = %v", got)
	}
	if FromColor(color.Transparent) != Transparent {
		t.Error("transparent did not map to Transparent")
	}
}

func TestColorArrayAndString(t *testing.T) {
	c := RGBA(0.1, 0.2, 0.3, 0.4)
	if c.Array() != [4]float32{0.1, 0.2, 0.3, 0.4} {
		t.Errorf("Array = %v", c.Array())
	}
	if got := c.String(); got != "Color(0.10, 0.20, 0.30, 0.40)" {
		t.Errorf("String = %q", got)
	}
}
