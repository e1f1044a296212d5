// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deedles.dev/dwr"
	"deedles.dev/dwr/gpu"
	"deedles.dev/dwr/layershell"
	"github.com/gogpu/gg"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultLayer          = "top"
	DefaultKeyboard       = "none"
	DefaultContexts       = "shared"
	DefaultBuffers        = 2
	DefaultConnectTimeout = "5s"
	DefaultFrameInterval  = "16ms"
	DefaultWidth          = 200
	DefaultHeight         = 100
)

// Config represents the dwr configuration.
type Config struct {
	Namespace             string        `toml:"namespace" yaml:"namespace"`
	Layer                 string        `toml:"layer" yaml:"layer"`                                   // background, bottom, top, overlay
	KeyboardInteractivity string        `toml:"keyboard_interactivity" yaml:"keyboard_interactivity"` // none, exclusive, on_demand
	ExclusiveZone         int32         `toml:"exclusive_zone" yaml:"exclusive_zone"`
	Contexts              string        `toml:"contexts" yaml:"contexts"` // shared, per_surface
	Buffers               int           `toml:"buffers" yaml:"buffers"`
	ConnectTimeout        string        `toml:"connect_timeout" yaml:"connect_timeout"`
	FrameInterval         string        `toml:"frame_interval" yaml:"frame_interval"`
	ClearColor            [4]float64    `toml:"clear_color" yaml:"clear_color"` // RGBA, 0 to 1
	Surface               SurfaceConfig `toml:"surface" yaml:"surface"`
}

// SurfaceConfig holds the geometry of the surfaces created by the
// CLI.
type SurfaceConfig struct {
	Width  uint32       `toml:"width" yaml:"width"`   // 0 = stretch between anchors
	Height uint32       `toml:"height" yaml:"height"` // 0 = stretch between anchors
	Anchor []string     `toml:"anchor" yaml:"anchor"` // top, bottom, left, right
	Margin MarginConfig `toml:"margin" yaml:"margin"`
	Output string       `toml:"output" yaml:"output"` // Compositor's choice if empty
}

// MarginConfig holds the distance of a surface from the edges that it
// is anchored to.
type MarginConfig struct {
	Top    int32 `toml:"top" yaml:"top"`
	Right  int32 `toml:"right" yaml:"right"`
	Bottom int32 `toml:"bottom" yaml:"bottom"`
	Left   int32 `toml:"left" yaml:"left"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	bg := gpu.DefaultClearColor
	return &Config{
		Namespace:             dwr.DefaultNamespace,
		Layer:                 DefaultLayer,
		KeyboardInteractivity: DefaultKeyboard,
		ExclusiveZone:         0,
		Contexts:              DefaultContexts,
		Buffers:               DefaultBuffers,
		ConnectTimeout:        DefaultConnectTimeout,
		FrameInterval:         DefaultFrameInterval,
		ClearColor:            [4]float64{bg.R, bg.G, bg.B, bg.A},
		Surface: SurfaceConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "dwr", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
// Files ending in .yaml or .yml are parsed as YAML, everything else as
// TOML.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %v: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path as TOML.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that every value can be used. It reports every
// problem that it finds.
func (c *Config) Validate() error {
	var errs []error

	if _, err := layershell.ParseLayer(c.Layer); err != nil {
		errs = append(errs, err)
	}
	if _, err := layershell.ParseKeyboardInteractivity(c.KeyboardInteractivity); err != nil {
		errs = append(errs, err)
	}
	if _, err := gpu.ParseContextMode(c.Contexts); err != nil {
		errs = append(errs, err)
	}
	if c.Buffers < 1 {
		errs = append(errs, fmt.Errorf("buffers must be at least 1, not %v", c.Buffers))
	}
	if _, err := c.ConnectTimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.FrameIntervalDuration(); err != nil {
		errs = append(errs, err)
	}
	for i, v := range c.ClearColor {
		if (v < 0) || (v > 1) {
			errs = append(errs, fmt.Errorf("clear_color[%v] is outside of [0, 1]: %v", i, v))
		}
	}

	anchor, err := c.Surface.ParseAnchor()
	if err != nil {
		errs = append(errs, err)
	} else if p := c.Surface.Placement(anchor); !p.Valid() {
		errs = append(errs, fmt.Errorf("surface: a zero width or height needs both edges of that axis anchored, have %v", anchor))
	}

	return errors.Join(errs...)
}

func parseDuration(name, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%v must be positive, not %v", name, v)
	}
	return d, nil
}

func (c *Config) ConnectTimeoutDuration() (time.Duration, error) {
	return parseDuration("connect_timeout", c.ConnectTimeout)
}

func (c *Config) FrameIntervalDuration() (time.Duration, error) {
	return parseDuration("frame_interval", c.FrameInterval)
}

// Clear returns the clear color.
func (c *Config) Clear() gg.RGBA {
	return gg.RGBA2(c.ClearColor[0], c.ClearColor[1], c.ClearColor[2], c.ClearColor[3])
}

// ClientOptions converts the configuration into options for
// dwr.NewClient. The configuration must be valid.
func (c *Config) ClientOptions() ([]dwr.Option, error) {
	layer, err := layershell.ParseLayer(c.Layer)
	if err != nil {
		return nil, err
	}
	keyboard, err := layershell.ParseKeyboardInteractivity(c.KeyboardInteractivity)
	if err != nil {
		return nil, err
	}
	contexts, err := gpu.ParseContextMode(c.Contexts)
	if err != nil {
		return nil, err
	}
	timeout, err := c.ConnectTimeoutDuration()
	if err != nil {
		return nil, err
	}

	return []dwr.Option{
		dwr.WithNamespace(c.Namespace),
		dwr.WithLayer(layer),
		dwr.WithKeyboardInteractivity(keyboard),
		dwr.WithExclusiveZone(c.ExclusiveZone),
		dwr.WithContextMode(contexts),
		dwr.WithBufferCount(c.Buffers),
		dwr.WithConnectTimeout(timeout),
		dwr.WithPainter(gpu.DefaultPainter(c.Clear())),
	}, nil
}

// ParseAnchor combines the anchor edges.
func (s SurfaceConfig) ParseAnchor() (layershell.Anchor, error) {
	return layershell.ParseAnchor(strings.Join(s.Anchor, "|"))
}

func (s SurfaceConfig) Margins() dwr.Margins {
	return dwr.Margins{
		Top:    s.Margin.Top,
		Right:  s.Margin.Right,
		Bottom: s.Margin.Bottom,
		Left:   s.Margin.Left,
	}
}

// Placement resolves the surface's geometry against anchor.
func (s SurfaceConfig) Placement(anchor layershell.Anchor) dwr.Placement {
	return dwr.Resolve(s.Width, s.Height, anchor, s.Margins())
}

// SurfaceConfig converts the surface section into the configuration
// of a new surface.
func (c *Config) SurfaceConfig() (dwr.SurfaceConfig, error) {
	anchor, err := c.Surface.ParseAnchor()
	if err != nil {
		return dwr.SurfaceConfig{}, err
	}

	return dwr.SurfaceConfig{
		Width:   c.Surface.Width,
		Height:  c.Surface.Height,
		Anchor:  anchor,
		Margins: c.Surface.Margins(),
		Output:  c.Surface.Output,
	}, nil
}
