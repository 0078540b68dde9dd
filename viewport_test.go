package sprite

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestViewportMatrix(t *testing.T) {
	v := NewViewport(800, 600)

	tests := []struct {
		in   mgl32.Vec4
		want mgl32.Vec2
	}{
		{mgl32.Vec4{0, 0, 0, 1}, mgl32.Vec2{-1, 1}},
		{mgl32.Vec4{800, 600, 0, 1}, mgl32.Vec2{1, -1}},
		{mgl32.Vec4{400, 300, 0, 1}, mgl32.Vec2{0, 0}},
	}
	for _, tt := range tests {
		got := v.Matrix().Mul4x1(tt.in)
		if !mgl32.FloatEqualThreshold(got.X(), tt.want.X(), 1e-5) || !mgl32.FloatEqualThreshold(got.Y(), tt.want.Y(), 1e-5) {
			t.Errorf("Matrix * %v = %v, want %v", tt.in, got, tt.want)
		}
		if z := got.Z(); z < 0 || z > 1 {
			t.Errorf("depth %v outside [0, 1]", z)
		}
	}

	v.Position = Pt(100, 50)
	if got := v.Matrix().Mul4x1(mgl32.Vec4{100, 50, 0, 1}); !mgl32.FloatEqualThreshold(got.X(), -1, 1e-5) || !mgl32.FloatEqualThreshold(got.Y(), 1, 1e-5) {
		t.Errorf("offset origin = %v, want (-1, 1)", got)
	}
}

func TestViewportResize(t *testing.T) {
	v := NewViewport(10, 20)
	v.Resize(0, 5)
	v.Resize(5, 0)
	if v.Size() != Pt(10, 20) {
		t.Errorf("zero resize changed size to %v", v.Size())
	}
	v.Resize(30, 40)
	if v.Size() != Pt(30, 40) {
		t.Errorf("size = %v", v.Size())
	}
}

func TestViewportUpload(t *testing.T) {
	device, queue := newNoopDevice(t)
	builtins, err := NewBuiltins(device, BuiltinsConfig{SampleCount: 1})
	if err != nil {
		t.Fatalf("NewBuiltins: %v", err)
	}
	defer builtins.Destroy()

	v := NewViewport(200, 100)
	defer v.Destroy(device)
	if v.BindGroup() != nil {
		t.Fatal("bind group before Upload")
	}
	if err := v.Upload(device, queue, builtins); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if v.BindGroup() == nil {
		t.Fatal("no bind group after Upload")
	}

	data := readBuffer(t, device, v.buffer, viewportUniformSize)
	m := v.Matrix()
	for i := range m {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])); got != m[i] {
			t.Errorf("element %d = %v, want %v", i, got, m[i])
		}
	}

	buf := v.buffer
	v.Resize(400, 100)
	if err := v.Upload(device, queue, builtins); err != nil {
		t.Fatalf("second Upload: %v", err)
	}
	if v.buffer != buf {
		t.Error("Upload reallocated the uniform buffer")
	}
}
