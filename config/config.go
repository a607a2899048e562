// Package config reads the user configuration of the drumkit tools.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed default.yml
var defaultYAML []byte

type Config struct {
	KitDirs    []string `yaml:"kitdirs"`
	Schema     string   `yaml:"schema,omitempty"`
	LogLevel   string   `yaml:"loglevel,omitempty"`
	SampleRate int      `yaml:"samplerate,omitempty"`
	BufferSize int      `yaml:"buffersize,omitempty"` // in frames
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	if err := yaml.UnmarshalStrict(defaultYAML, &c); err != nil {
		panic(fmt.Errorf("default config is broken: %w", err))
	}
	c.expand()
	return c
}

// UserPath returns the path of the user configuration file.
func UserPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not find user config dir: %w", err)
	}
	return filepath.Join(dir, "drumkit", "config.yml"), nil
}

// Load returns the default configuration overridden by the file at path. An
// empty path means the user configuration file, which may be missing.
func Load(path string) (Config, error) {
	c := Default()
	mustExist := path != ""
	if path == "" {
		p, err := UserPath()
		if err != nil {
			return c, nil
		}
		path = p
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if !mustExist && os.IsNotExist(err) {
			return c, nil
		}
		return c, fmt.Errorf("could not read config: %w", err)
	}
	if err := c.Parse(b); err != nil {
		return c, fmt.Errorf("%v: %w", path, err)
	}
	return c, nil
}

// Parse overrides c with the keys present in b. Unknown keys are errors.
func (c *Config) Parse(b []byte) error {
	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.SampleRate <= 0 || c.BufferSize <= 0 {
		return fmt.Errorf("invalid config: samplerate and buffersize should be positive")
	}
	c.expand()
	return nil
}

func (c *Config) expand() {
	for i, d := range c.KitDirs {
		c.KitDirs[i] = os.ExpandEnv(d)
	}
	c.Schema = os.ExpandEnv(c.Schema)
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// Save writes the configuration to path, creating its directory.
func (c Config) Save(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("could not marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create config dir: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}
	return nil
}
