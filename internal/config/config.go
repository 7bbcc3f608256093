// Package config loads project settings from structmerge.yml or
// structmerge.toml.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/stats"
)

// ErrInvalidLikelihood is returned when the likelihood is outside [0,1].
var ErrInvalidLikelihood = errors.New("likelihood must be within [0,1]")

// FileNames are the config files Load looks for, in order.
var FileNames = []string{"structmerge.yml", "structmerge.yaml", "structmerge.toml"}

// Config holds project-level merge settings.
type Config struct {
	Likelihood     float64  `yaml:"likelihood" toml:"likelihood"`
	DiffOnly       bool     `yaml:"diffOnly,omitempty" toml:"diffOnly"`
	SemiStructured bool     `yaml:"semiStructured,omitempty" toml:"semiStructured"`
	Languages      []string `yaml:"languages,omitempty" toml:"languages"`
	Exclude        []string `yaml:"exclude,omitempty" toml:"exclude"`
	DumpFormat     string   `yaml:"dumpFormat,omitempty" toml:"dumpFormat"`
	Parallelism    int      `yaml:"parallelism,omitempty" toml:"parallelism"`
	Color          string   `yaml:"color,omitempty" toml:"color"`
	LogLevel       string   `yaml:"logLevel,omitempty" toml:"logLevel"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-" toml:"-"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Likelihood:  merge.DefaultLikelihood,
		DumpFormat:  "plaintext",
		Parallelism: 4,
		Color:       "auto",
		LogLevel:    "warn",
	}
}

// Load attempts to read one of FileNames from dir. Returns the defaults (not
// an error) if no config file exists.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}
	return Default(), nil
}

// LoadFile reads a YAML or TOML config file, chosen by extension. Keys
// missing from the file keep their default value.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	cfg.Path = path

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Likelihood < 0 || c.Likelihood > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidLikelihood, c.Likelihood)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative: got %d", c.Parallelism)
	}
	switch c.Color {
	case "", "auto", "on", "off":
	default:
		return fmt.Errorf("color must be auto, on or off: got %q", c.Color)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel. The empty level is warn.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return l, nil
}

// ColorEnabled resolves Color against whether the output is a terminal.
func (c *Config) ColorEnabled(terminal bool) bool {
	switch c.Color {
	case "on":
		return true
	case "off":
		return false
	default:
		return terminal
	}
}

// Workers returns the parallelism to use, at least one.
func (c *Config) Workers() int {
	return max(c.Parallelism, 1)
}

// MergeOptions builds the options of a merge session.
func (c *Config) MergeOptions(log *slog.Logger, sink stats.Sink) merge.Options {
	return merge.Options{
		Likelihood: c.Likelihood,
		DiffOnly:   c.DiffOnly,
		Logger:     log,
		Sink:       sink,
	}
}
