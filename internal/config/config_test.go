package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investit/dwg2pdf/internal/render"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := load(viper.New(), "", []string{t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Margin:     5,
		Color:      "black",
		Background: "white",
		Page:       "auto",
		Layouts:    "model",
		Timeout:    300 * time.Second,
		LogLevel:   "info",
	}, cfg)
	assert.NoError(t, cfg.Validate())
}

func TestSearchedFile(t *testing.T) {
	empty, dir := t.TempDir(), t.TempDir()
	path := writeConfig(t, dir, "dwg2pdf.yaml", `
margin: 10
color: source
page: A3
stamp: true
timeout: 2m
dwg2dxf: /opt/libredwg/dwg2dxf
`)
	// a binary named like the config must not be picked up
	writeConfig(t, empty, "dwg2pdf", "\x7fELF")

	cfg, err := load(viper.New(), "", []string{empty, dir})
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, 10.0, cfg.Margin)
	assert.Equal(t, "source", cfg.Color)
	assert.Equal(t, "white", cfg.Background)
	assert.True(t, cfg.Stamp)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, "/opt/libredwg/dwg2dxf", cfg.Dwg2dxf)

	opts := cfg.RenderOptions("plan.dwg")
	assert.Equal(t, "a3", opts.Page)
	assert.Equal(t, render.ColorSource, opts.Color)
	assert.Equal(t, "plan.dwg", opts.Source)
	assert.NoError(t, opts.Validate())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "custom.yml", "margin: 10\nlayouts: all\n")
	t.Setenv("DWG2PDF_MARGIN", "12.5")
	t.Setenv("DWG2PDF_BACKGROUND", "none")
	t.Setenv("DWG2PDF_TIMEOUT", "90s")
	t.Setenv("DWG2PDF_DEBUG_EXTENTS", "true")

	cfg, err := load(viper.New(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, 12.5, cfg.Margin)
	assert.Equal(t, "none", cfg.Background)
	assert.Equal(t, "all", cfg.Layouts)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.True(t, cfg.Debug)
}

func TestLoadErrors(t *testing.T) {
	_, err := load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "reading config")

	broken := writeConfig(t, t.TempDir(), "broken.yaml", "margin: [1, 2\n")
	_, err = load(viper.New(), broken, nil)
	assert.ErrorContains(t, err, "reading config")

	wrongType := writeConfig(t, t.TempDir(), "wrong.yaml", "timeout: soon\n")
	_, err = load(viper.New(), wrongType, nil)
	assert.ErrorContains(t, err, "decoding config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		err    string
	}{
		{"color", func(c *Config) { c.Color = "blue" }, `invalid color policy "blue" (expected source or black)`},
		{"upper case color", func(c *Config) { c.Color = "SOURCE" }, ""},
		{"margin", func(c *Config) { c.Margin = -2 }, "margin must be >= 0, got -2"},
		{"timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout must be >= 0, got -1s"},
		{"page", func(c *Config) { c.Page = "b4" }, `invalid page size "b4" (expected auto, a0, a1, a2, a3, a4, legal, letter, tabloid)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := load(viper.New(), "", nil)
			require.NoError(t, err)
			tt.modify(cfg)
			if tt.err == "" {
				assert.NoError(t, cfg.Validate())
				return
			}
			assert.EqualError(t, cfg.Validate(), tt.err)
		})
	}
}
