package sprite

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/pelletier/go-toml/v2"
)

// DefaultSampleCount is the MSAA sample count of the render target.
const DefaultSampleCount = 4

// Config holds the video stack settings. Zero fields take their defaults,
// so a partially filled TOML file is valid.
//
//	width = 1280
//	height = 720
//	format = "bgra8unorm"
//	present_mode = "fifo"
//	sample_count = 4
//	batch_lifetime = 10
//	texture_cache_size = 256
//	clear_color = "#1a1a1aff"
type Config struct {
	Width            uint32 `toml:"width"`
	Height           uint32 `toml:"height"`
	Format           string `toml:"format"`
	PresentMode      string `toml:"present_mode"`
	SampleCount      uint32 `toml:"sample_count"`
	BatchLifetime    int    `toml:"batch_lifetime"`
	TextureCacheSize int    `toml:"texture_cache_size"`
	ClearColor       *Color `toml:"clear_color"`
}

var defaultClearColor = RGB(0.1, 0.1, 0.1)

// DefaultConfig returns the configuration used for zero fields.
func DefaultConfig() Config {
	clear := defaultClearColor
	return Config{
		Width:            800,
		Height:           600,
		Format:           "bgra8unorm",
		PresentMode:      "fifo",
		SampleCount:      DefaultSampleCount,
		BatchLifetime:    DefaultBatchLifetime,
		TextureCacheSize: DefaultTextureCacheSize,
		ClearColor:       &clear,
	}
}

// WithDefaults returns c with every zero field replaced by its default.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.PresentMode == "" {
		c.PresentMode = d.PresentMode
	}
	if c.SampleCount == 0 {
		c.SampleCount = d.SampleCount
	}
	if c.BatchLifetime <= 0 {
		c.BatchLifetime = d.BatchLifetime
	}
	if c.TextureCacheSize <= 0 {
		c.TextureCacheSize = d.TextureCacheSize
	}
	if c.ClearColor == nil {
		c.ClearColor = d.ClearColor
	}
	return c
}

// Validate checks the symbolic fields.
func (c Config) Validate() error {
	if _, err := c.TextureFormat(); err != nil {
		return err
	}
	if _, err := c.SurfacePresentMode(); err != nil {
		return err
	}
	switch c.SampleCount {
	case 0, 1, 4:
	default:
		return fmt.Errorf("sprite: unsupported sample count %d (want 1 or 4)", c.SampleCount)
	}
	return nil
}

// TextureFormat maps Format to a surface texture format.
func (c Config) TextureFormat() (gputypes.TextureFormat, error) {
	switch strings.ToLower(c.Format) {
	case "", "bgra8unorm":
		return gputypes.TextureFormatBGRA8Unorm, nil
	case "bgra8unorm-srgb":
		return gputypes.TextureFormatBGRA8UnormSrgb, nil
	case "rgba8unorm":
		return gputypes.TextureFormatRGBA8Unorm, nil
	case "rgba8unorm-srgb":
		return gputypes.TextureFormatRGBA8UnormSrgb, nil
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("sprite: unknown texture format %q", c.Format)
}

// SurfacePresentMode maps PresentMode to a gputypes present mode.
func (c Config) SurfacePresentMode() (gputypes.PresentMode, error) {
	switch strings.ToLower(c.PresentMode) {
	case "", "fifo":
		return gputypes.PresentModeFifo, nil
	case "fifo-relaxed":
		return gputypes.PresentModeFifoRelaxed, nil
	case "immediate":
		return gputypes.PresentModeImmediate, nil
	case "mailbox":
		return gputypes.PresentModeMailbox, nil
	}
	return gputypes.PresentModeUndefined, fmt.Errorf("sprite: unknown present mode %q", c.PresentMode)
}

// ParseConfig decodes TOML, fills defaults and validates the result.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("parse sprite config: %w", err)
	}
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads and parses a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read sprite config: %w", err)
	}
	return ParseConfig(data)
}

// Marshal encodes c as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
