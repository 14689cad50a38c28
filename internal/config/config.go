// Package config loads flavorwheel settings from a YAML file with
// FLAVORWHEEL_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ha1tch/flavor-wheel/pkg/datasets"
	"github.com/ha1tch/flavor-wheel/pkg/loader"
	"github.com/ha1tch/flavor-wheel/pkg/notebook"
	"github.com/ha1tch/flavor-wheel/pkg/wheel"
)

// EnvPrefix starts every environment override. A double underscore
// descends into a section: FLAVORWHEEL_DATASETS__TEA=./tea.yaml.
const EnvPrefix = "FLAVORWHEEL_"

// Config holds the settings shared by the flavorwheel commands.
type Config struct {
	Width          float64           `yaml:"width" koanf:"width"`
	CenterRadius   float64           `yaml:"center_radius" koanf:"center_radius"`
	Lang           string            `yaml:"lang" koanf:"lang"`
	Theme          string            `yaml:"theme" koanf:"theme"`
	Drink          string            `yaml:"drink" koanf:"drink"`
	OutputMode     string            `yaml:"output_mode" koanf:"output_mode"`
	DarkMode       bool              `yaml:"dark_mode" koanf:"dark_mode"`
	Datasets       map[string]string `yaml:"datasets" koanf:"datasets"`
	ThemeFiles     []string          `yaml:"theme_files,omitempty" koanf:"theme_files"`
	TransitionMS   int               `yaml:"transition_ms" koanf:"transition_ms"`
	Ordering       string            `yaml:"ordering" koanf:"ordering"`
	KeepOrderUnder []string          `yaml:"keep_order_under,omitempty" koanf:"keep_order_under"`
	Watch          bool              `yaml:"watch" koanf:"watch"`
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() *Config {
	return &Config{
		Width:      wheel.DefaultWidth,
		Lang:       wheel.DefaultLang,
		Theme:      wheel.DefaultTheme,
		Drink:      datasets.Coffee,
		OutputMode: string(notebook.ModeList),
		Datasets: map[string]string{
			datasets.Coffee: loader.BuiltinPrefix + datasets.Coffee,
			datasets.Tea:    loader.BuiltinPrefix + datasets.Tea,
			datasets.Luxury: loader.BuiltinPrefix + datasets.Luxury,
		},
		TransitionMS: int(wheel.DefaultDuration / time.Millisecond),
		Ordering:     wheel.OrderWeight.String(),
	}
}

// DefaultPath returns ~/.flavorwheel, or .flavorwheel when there is no home
// directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flavorwheel"
	}
	return filepath.Join(home, ".flavorwheel")
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// envKey maps FLAVORWHEEL_DATASETS__TEA to datasets.tea.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Width < 0 {
		return fmt.Errorf("width must be non-negative")
	}
	if c.TransitionMS < 0 {
		return fmt.Errorf("transition_ms must be non-negative")
	}
	if _, ok := c.Datasets[c.Drink]; !ok {
		return fmt.Errorf("drink %q has no dataset", c.Drink)
	}
	for name, src := range c.Datasets {
		if loader.Source(src).Kind() == "" {
			return fmt.Errorf("dataset %s: unrecognised source %q", name, src)
		}
	}
	switch notebook.Mode(c.OutputMode) {
	case notebook.ModeList, notebook.ModeNote:
	default:
		return fmt.Errorf("invalid output_mode %q: must be list or note", c.OutputMode)
	}
	if _, err := wheel.ParseOrderMode(c.Ordering); err != nil {
		return err
	}
	return nil
}

// Sources returns the dataset table as loader sources.
func (c *Config) Sources() map[string]loader.Source {
	out := make(map[string]loader.Source, len(c.Datasets))
	for name, src := range c.Datasets {
		out[name] = loader.Source(src)
	}
	return out
}

// Transition returns the chart transition length. Zero disables animation.
func (c *Config) Transition() time.Duration {
	if c.TransitionMS == 0 {
		return -1
	}
	return time.Duration(c.TransitionMS) * time.Millisecond
}

// WheelOrdering returns the sibling ordering for the chart.
func (c *Config) WheelOrdering() wheel.Ordering {
	mode, err := wheel.ParseOrderMode(c.Ordering)
	if err != nil {
		mode = wheel.OrderWeight
	}
	return wheel.Ordering{Mode: mode, KeepOrderUnder: c.KeepOrderUnder}
}
