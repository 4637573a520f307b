// Package config loads the range selector host configuration with viper and
// writes the default config file and the selected-range output document.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"github.com/tidwall/gjson"

	"github.com/zjrosen/rangeslider/internal/theme"
)

const (
	// ProjectDir is the project-local config directory.
	ProjectDir = ".rangeslider"
	// FileName is the config file name inside a config directory.
	FileName = "config.yaml"
)

// ErrConfigExists is returned when a default config would overwrite a file.
var ErrConfigExists = errors.New("config file already exists")

// Config is the host configuration. Keys are snake_case in YAML.
type Config struct {
	Min          float64 `mapstructure:"min"`
	Max          float64 `mapstructure:"max"`
	DefaultStart float64 `mapstructure:"default_start"`
	DefaultEnd   float64 `mapstructure:"default_end"`
	Step         float64 `mapstructure:"step"`
	Label        string  `mapstructure:"label"`

	// DistributionData is the raw histogram input in any supported shape.
	DistributionData any `mapstructure:"distribution_data"`
	// DistributionFile points at a JSON document used instead of
	// DistributionData when set. Relative paths resolve against the config.
	DistributionFile string `mapstructure:"distribution_file"`

	Formatter FormatterConfig `mapstructure:"formatter"`
	Theme     ThemeConfig     `mapstructure:"theme"`

	HistogramScale     string `mapstructure:"histogram_scale"`
	ShowNegativeValues bool   `mapstructure:"show_negative_values"`

	// Output overrides the selected-range document path.
	Output   string `mapstructure:"output"`
	LogFile  string `mapstructure:"log_file"`
	LogLevel string `mapstructure:"log_level"`
}

// FormatterConfig holds the user formatting expression.
type FormatterConfig struct {
	Function string `mapstructure:"function"`
	// DateTime exposes the datetime table to the expression.
	DateTime bool `mapstructure:"datetime"`
}

// ThemeConfig selects a preset and overrides individual color slots.
type ThemeConfig struct {
	Preset string            `mapstructure:"preset"`
	Colors theme.ColorConfig `mapstructure:"colors"`
}

// Defaults returns the configuration used when no file sets a value.
func Defaults() Config {
	return Config{
		Min:            0,
		Max:            100,
		DefaultStart:   25,
		DefaultEnd:     75,
		Step:           1,
		Label:          "Label",
		HistogramScale: "linear",
		LogLevel:       "info",
	}
}

// SetDefaults registers Defaults on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("min", d.Min)
	v.SetDefault("max", d.Max)
	v.SetDefault("default_start", d.DefaultStart)
	v.SetDefault("default_end", d.DefaultEnd)
	v.SetDefault("step", d.Step)
	v.SetDefault("label", d.Label)
	v.SetDefault("histogram_scale", d.HistogramScale)
	v.SetDefault("show_negative_values", d.ShowNegativeValues)
	v.SetDefault("log_level", d.LogLevel)
}

// SearchPaths returns the config files tried when no explicit path is given,
// in order: the project-local file, then the user config directory.
func SearchPaths() []string {
	paths := []string{filepath.Join(ProjectDir, FileName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "rangeslider", FileName))
	}
	return paths
}

// Locate returns the config file to use. An explicit path is returned as is.
// Otherwise the first existing search path wins, or "" when none exists.
func Locate(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load reads path into v and unmarshals the result. An empty path loads the
// defaults only.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// DistributionPath resolves DistributionFile against the config location.
func (c Config) DistributionPath(configPath string) string {
	if c.DistributionFile == "" || filepath.IsAbs(c.DistributionFile) || configPath == "" {
		return c.DistributionFile
	}
	return filepath.Join(filepath.Dir(configPath), c.DistributionFile)
}

// Distribution returns the raw histogram input. When a distribution file is
// configured its JSON content is decoded with gjson; a missing or invalid
// file is reported and yields no data.
func (c Config) Distribution(configPath string) (any, error) {
	path := c.DistributionPath(configPath)
	if path == "" {
		return c.DistributionData, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading distribution file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("distribution file %s: invalid JSON", path)
	}
	return gjson.ParseBytes(data).Value(), nil
}
