// Package sprite draws textured quads in large instanced batches on top of
// the gogpu/wgpu HAL.
//
// # Overview
//
// Every frame the caller queues sprites on a [Draw]. Sprites sharing a
// texture land in the same [DrawBatch]; each batch owns one GPU instance
// buffer and is drawn with a single indexed, instanced draw call over a
// shared unit [Quad]. Batches that stay empty for a number of frames are
// evicted together with their buffers.
//
// # Quick Start
//
//	stack, _ := sprite.NewStack(device, queue, surface, sprite.DefaultConfig())
//	builtins, _ := sprite.NewBuiltins(device, stack.BuiltinsConfig())
//	d, _ := sprite.NewDraw(device, queue, builtins)
//	tex, _ := sprite.NewTexture(device, queue, builtins, "hero.png", img)
//
//	for running {
//		d.BeginFrame()
//		d.Sprite(tex, sprite.Pt(0, 0), sprite.WithRotation(angle))
//		if err := stack.Frame(d); sprite.IsFatal(err) {
//			break
//		}
//	}
//
// # Coordinate System
//
// Sprites are positioned in world units with +Y up. A [Camera] maps the
// world to clip space: its Position is the center of the view, Zoom scales
// and Rotation turns the view around the center. Without an explicit Size
// the camera shows one world unit per pixel of the [Viewport].
//
// # Errors
//
// GPU failures are classified with [IsFatal], [IsSkippable] and
// [IsTransient]. [Stack.Frame] applies that policy itself and only returns
// errors the caller has to act on.
//
// # Logging
//
// The package is silent by default. Use [SetLogger] to route its messages
// to any [log/slog] handler.
package sprite

// Version is the current version of the library.
const Version = "0.1.0"
