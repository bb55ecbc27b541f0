// Package config merges defaults, the optional dwg2pdf.yaml file and
// DWG2PDF_* environment variables into the converter settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/investit/dwg2pdf/internal/dwg"
	"github.com/investit/dwg2pdf/internal/render"
)

const (
	FileName  = "dwg2pdf"
	EnvPrefix = "DWG2PDF"
)

// Config keys, also the YAML keys.
const (
	KeyMargin     = "margin"
	KeyColor      = "color"
	KeyBackground = "background"
	KeyPage       = "page"
	KeyLayouts    = "layouts"
	KeyStamp      = "stamp"
	KeyDebug      = "debug_extents"
	KeyDwg2dxf    = "dwg2dxf"
	KeyTimeout    = "timeout"
	KeyLogLevel   = "log_level"
)

type Config struct {
	Margin     float64       `mapstructure:"margin"`
	Color      string        `mapstructure:"color"`
	Background string        `mapstructure:"background"`
	Page       string        `mapstructure:"page"`
	Layouts    string        `mapstructure:"layouts"`
	Stamp      bool          `mapstructure:"stamp"`
	Debug      bool          `mapstructure:"debug_extents"`
	Dwg2dxf    string        `mapstructure:"dwg2dxf"`
	Timeout    time.Duration `mapstructure:"timeout"`
	LogLevel   string        `mapstructure:"log_level"`
	// File is the config file that was read, empty if none.
	File string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	opts := render.DefaultOptions()
	v.SetDefault(KeyMargin, opts.Margin)
	v.SetDefault(KeyColor, string(opts.Color))
	v.SetDefault(KeyBackground, string(opts.Background))
	v.SetDefault(KeyPage, opts.Page)
	v.SetDefault(KeyLayouts, string(opts.Layouts))
	v.SetDefault(KeyStamp, false)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyDwg2dxf, "")
	v.SetDefault(KeyTimeout, dwg.DefaultTimeout)
	v.SetDefault(KeyLogLevel, "info")
}

// SearchPaths returns the directories searched for dwg2pdf.yaml: the working
// directory, the executable's directory and ~/.config/dwg2pdf.
func SearchPaths() []string {
	paths := []string{"."}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Dir(exe))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", FileName))
	}
	return paths
}

// Load reads the configuration. An explicit file must exist; otherwise the
// search paths are tried and a missing file is not an error.
func Load(file string) (*Config, error) {
	return load(viper.New(), file, SearchPaths())
}

func load(v *viper.Viper, file string, paths []string) (*Config, error) {
	setDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		// no SetConfigType: with a type set viper also matches the bare
		// "dwg2pdf" binary next to the config
		v.SetConfigName(FileName)
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	return cfg, nil
}

// RenderOptions converts the settings for the renderer. source names the
// converted file.
func (c *Config) RenderOptions(source string) render.Options {
	return render.Options{
		Margin:     c.Margin,
		Color:      render.ColorPolicy(strings.ToLower(c.Color)),
		Background: render.BackgroundPolicy(strings.ToLower(c.Background)),
		Page:       strings.ToLower(c.Page),
		Layouts:    render.LayoutSelection(strings.ToLower(c.Layouts)),
		Stamp:      c.Stamp,
		Debug:      c.Debug,
		Source:     source,
	}
}

func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}
	return c.RenderOptions("").Validate()
}
