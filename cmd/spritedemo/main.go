// Command spritedemo renders a field of rotating sprites through the sprite
// batcher on a headless device and logs per-frame batch statistics.
//
// Half of the textures stop being drawn halfway through the run, so the log
// shows their batches idling and then being evicted.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/noop"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		assetDir   = flag.String("assets", "", "directory of PNG textures to draw")
		frames     = flag.Int("frames", 60, "number of frames to render")
		sprites    = flag.Int("sprites", 500, "sprites per frame")
		textures   = flag.Int("textures", 4, "number of distinct textures")
		logLevel   = flag.String("log-level", "info", "debug, info, warn or error")
		logFile    = flag.String("log-file", "", "also write logs to this rotating file")
	)
	flag.Parse()

	logger, closeLog, err := newLogger(*logLevel, *logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer closeLog() //nolint:errcheck // best effort on exit

	sprite.SetLogger(logger)

	opts := runOptions{frames: *frames, sprites: *sprites, textures: *textures, assets: *assetDir}
	if err := run(*configPath, opts, logger); err != nil {
		logger.Error("spritedemo failed", "err", err, "fatal", sprite.IsFatal(err))
		closeLog() //nolint:errcheck,gosec // exiting
		os.Exit(1)
	}
}

type runOptions struct {
	frames   int
	sprites  int
	textures int
	assets   string
}

func run(configPath string, opts runOptions, logger *slog.Logger) error {
	cfg := sprite.DefaultConfig()
	if configPath != "" {
		c, err := sprite.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = c
	}

	device, queue, cleanup, err := openDevice(logger)
	if err != nil {
		return err
	}
	defer cleanup()

	stack, err := sprite.NewStack(device, queue, nil, cfg)
	if err != nil {
		return fmt.Errorf("create stack: %w", err)
	}
	defer stack.Destroy()

	builtins, err := sprite.NewBuiltins(device, stack.BuiltinsConfig())
	if err != nil {
		return fmt.Errorf("create builtins: %w", err)
	}
	defer builtins.Destroy()

	var assets fs.FS
	if opts.assets != "" {
		assets = os.DirFS(opts.assets)
	}
	textures, err := sprite.NewTextureCache(device, queue, builtins, assets, cfg.TextureCacheSize)
	if err != nil {
		return err
	}
	defer textures.Destroy()

	draw, err := sprite.NewDraw(device, queue, builtins, sprite.WithLifetime(cfg.BatchLifetime))
	if err != nil {
		return fmt.Errorf("create draw: %w", err)
	}
	defer draw.Destroy()

	sc, err := newScene(textures, assets, opts)
	if err != nil {
		return err
	}

	for frame := 0; frame < opts.frames; frame++ {
		draw.BeginFrame()
		if err := sc.draw(draw, frame); err != nil {
			return err
		}
		if err := stack.Frame(draw); err != nil {
			return err
		}
		st := draw.Stats()
		logger.Debug("frame",
			"n", frame,
			"batches", st.Batches,
			"draws", st.DrawCalls,
			"instances", st.Instances,
			"evicted", st.Evicted,
			"buffer_bytes", st.BufferBytes)
		if st.Evicted > 0 {
			logger.Info("batches evicted", "frame", frame, "count", st.Evicted, "live", st.Batches)
		}
		if n := textures.Collect(draw.Uses); n > 0 {
			logger.Info("textures released", "frame", frame, "count", n)
		}
	}

	logger.Info("done",
		"frames", stack.Frames(),
		"skipped", stack.Skipped(),
		"live_batches", draw.Batcher().Len())
	return nil
}

// openDevice opens the first adapter of the noop backend.
func openDevice(logger *slog.Logger) (hal.Device, hal.Queue, func(), error) {
	backend, ok := hal.GetBackend(gputypes.BackendEmpty)
	if !ok {
		return nil, nil, nil, hal.ErrBackendNotFound
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("no %s adapters", backend.Variant())
	}
	opened, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("open adapter: %w", err)
	}
	logger.Info("adapter", "name", adapters[0].Info.Name, "backend", backend.Variant())

	cleanup := func() {
		opened.Device.Destroy()
		instance.Destroy()
	}
	return opened.Device, opened.Queue, cleanup, nil
}
