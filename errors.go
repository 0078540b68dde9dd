package sprite

import (
	"errors"

	"github.com/gogpu/wgpu/hal"
)

// Errors returned by the sprite package.
var (
	// ErrBufferAllocation is returned when a GPU buffer cannot be created.
	// The frame cannot be drawn and the caller should stop.
	ErrBufferAllocation = errors.New("sprite: buffer allocation failed")

	// ErrBufferUpload is returned when writing instance or mesh data fails.
	ErrBufferUpload = errors.New("sprite: buffer upload failed")

	// ErrNilDevice is returned when a constructor receives a nil device or queue.
	ErrNilDevice = errors.New("sprite: nil device or queue")

	// ErrNilBuiltins is returned when a constructor receives nil Builtins.
	ErrNilBuiltins = errors.New("sprite: nil builtins")

	// ErrNilProvider is returned by NewStackFromProvider for a nil provider
	// or one that does not expose HAL types.
	ErrNilProvider = errors.New("sprite: provider does not expose HAL device")

	// ErrNilTexture is returned by Draw.Sprite for a nil texture.
	ErrNilTexture = errors.New("sprite: nil texture")

	// ErrZeroSize is returned for images or surfaces with a zero dimension.
	ErrZeroSize = errors.New("sprite: zero size")

	// ErrDestroyed is returned when using a Draw, Stack or Texture after
	// Destroy.
	ErrDestroyed = errors.New("sprite: use after destroy")
)

// IsFatal reports whether err means rendering cannot continue: the device is
// gone or out of memory, or a buffer could not be allocated.
func IsFatal(err error) bool {
	return errors.Is(err, hal.ErrDeviceOutOfMemory) ||
		errors.Is(err, hal.ErrDeviceLost) ||
		errors.Is(err, ErrBufferAllocation)
}

// IsSkippable reports whether err only invalidates the current frame because
// the surface must be reconfigured.
func IsSkippable(err error) bool {
	return errors.Is(err, hal.ErrSurfaceLost) ||
		errors.Is(err, hal.ErrSurfaceOutdated)
}

// IsTransient reports whether err is a timeout worth retrying next frame.
func IsTransient(err error) bool {
	return errors.Is(err, hal.ErrTimeout) || errors.Is(err, hal.ErrNotReady)
}
