package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"deedles.dev/dwr"
	"deedles.dev/dwr/layershell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, dwr.DefaultNamespace, cfg.Namespace)
	assert.Equal(t, "top", cfg.Layer)
	assert.Equal(t, "none", cfg.KeyboardInteractivity)
	assert.Equal(t, "shared", cfg.Contexts)
	assert.Equal(t, 2, cfg.Buffers)
	assert.Equal(t, [4]float64{0.2, 0.1, 0, 1}, cfg.ClearColor)
	assert.EqualValues(t, 200, cfg.Surface.Width)
	assert.EqualValues(t, 100, cfg.Surface.Height)
	assert.NoError(t, cfg.Validate())

	timeout, err := cfg.ConnectTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
	interval, err := cfg.FrameIntervalDuration()
	require.NoError(t, err)
	assert.Equal(t, 16*time.Millisecond, interval)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/dwr/config.toml", ConfigPath())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
namespace = "panel"
layer = "overlay"
keyboard_interactivity = "on_demand"
exclusive_zone = 30
contexts = "per_surface"
buffers = 3
connect_timeout = "1s"
frame_interval = "8ms"
clear_color = [0.0, 0.5, 1.0, 1.0]

[surface]
width = 0
height = 30
anchor = ["top", "left", "right"]
output = "DP-1"

[surface.margin]
top = 4
left = 8
`
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "panel", cfg.Namespace)
	assert.Equal(t, "overlay", cfg.Layer)
	assert.Equal(t, "on_demand", cfg.KeyboardInteractivity)
	assert.EqualValues(t, 30, cfg.ExclusiveZone)
	assert.Equal(t, "per_surface", cfg.Contexts)
	assert.Equal(t, 3, cfg.Buffers)
	assert.Equal(t, "1s", cfg.ConnectTimeout)
	assert.Equal(t, "8ms", cfg.FrameInterval)
	assert.Equal(t, [4]float64{0, 0.5, 1, 1}, cfg.ClearColor)
	assert.Zero(t, cfg.Surface.Width)
	assert.EqualValues(t, 30, cfg.Surface.Height)
	assert.Equal(t, []string{"top", "left", "right"}, cfg.Surface.Anchor)
	assert.Equal(t, MarginConfig{Top: 4, Left: 8}, cfg.Surface.Margin)

	sc, err := cfg.SurfaceConfig()
	require.NoError(t, err)
	assert.Equal(t, dwr.SurfaceConfig{
		Height:  30,
		Anchor:  layershell.AnchorTop | layershell.AnchorLeft | layershell.AnchorRight,
		Margins: dwr.Margins{Top: 4, Left: 8},
		Output:  "DP-1",
	}, sc)

	opts, err := cfg.ClientOptions()
	require.NoError(t, err)
	assert.NotEmpty(t, opts)
}

func TestLoadConfig_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
layer: bottom
buffers: 1
surface:
  width: 64
  height: 64
  anchor: [bottom, right]
  margin:
    bottom: 10
    right: 10
`
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "bottom", cfg.Layer)
	assert.Equal(t, 1, cfg.Buffers)
	assert.Equal(t, MarginConfig{Bottom: 10, Right: 10}, cfg.Surface.Margin)

	// Unchanged fields should have defaults
	assert.Equal(t, dwr.DefaultNamespace, cfg.Namespace)
	assert.Equal(t, "shared", cfg.Contexts)

	anchor, err := cfg.Surface.ParseAnchor()
	require.NoError(t, err)
	assert.Equal(t, layershell.AnchorBottom|layershell.AnchorRight, anchor)
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	err := os.WriteFile(path, []byte("layer = \"background\"\n"), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "background", cfg.Layer)
	assert.Equal(t, DefaultConfig().Surface, cfg.Surface)
	assert.Equal(t, 2, cfg.Buffers)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	err := os.WriteFile(path, []byte(`this is not valid toml [`), 0644)
	require.NoError(t, err)

	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"BadLayer", func(c *Config) { c.Layer = "middle" }, "unknown layer"},
		{"BadKeyboard", func(c *Config) { c.KeyboardInteractivity = "always" }, "unknown keyboard interactivity"},
		{"BadContexts", func(c *Config) { c.Contexts = "global" }, "unknown context mode"},
		{"NoBuffers", func(c *Config) { c.Buffers = 0 }, "buffers must be at least 1"},
		{"BadTimeout", func(c *Config) { c.ConnectTimeout = "soon" }, "connect_timeout"},
		{"NegativeInterval", func(c *Config) { c.FrameInterval = "-1s" }, "frame_interval must be positive"},
		{"BadColor", func(c *Config) { c.ClearColor[1] = 2 }, "clear_color[1]"},
		{"BadEdge", func(c *Config) { c.Surface.Anchor = []string{"middle"} }, "unknown anchor edge"},
		{"ZeroWidthUnanchored", func(c *Config) { c.Surface.Width = 0 }, "zero width or height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	cfg := DefaultConfig()
	cfg.Surface.Width = 0
	cfg.Surface.Anchor = []string{"left", "right"}
	assert.NoError(t, cfg.Validate())
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Namespace = "saved"
	cfg.Surface.Anchor = []string{"top"}
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
