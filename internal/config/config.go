// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads the application settings of the strepitus CLI.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvAlwaysRegenerate forces a regenerate on every frame when set to a
// true value.
const EnvAlwaysRegenerate = "STREPITUS_ALWAYS_REGEN"

type Config struct {
	Backend          string       `yaml:"backend"`
	Workers          int          `yaml:"workers"`
	ShaderDir        string       `yaml:"shader_dir"`
	PollInterval     string       `yaml:"poll_interval"`
	Debounce         string       `yaml:"debounce"`
	AlwaysRegenerate bool         `yaml:"always_regenerate"`
	ExportWorkers    int          `yaml:"export_workers"`
	MetricsAddr      string       `yaml:"metrics_addr"`
	LogLevel         string       `yaml:"log_level"`
	Window           WindowConfig `yaml:"window"`
}

type WindowConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	PanelWidth int `yaml:"panel_width"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Backend:       "auto",
		PollInterval:  "500ms",
		Debounce:      "50ms",
		ExportWorkers: 2,
		LogLevel:      "info",
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			PanelWidth: 360,
		},
	}
}

// Load reads path on top of the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	cfg := Default()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // config is not secret
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// Validate fills empty fields with defaults and rejects invalid values.
func (c *Config) Validate() error {
	def := Default()
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case "":
		c.Backend = def.Backend
	case "auto", "cpu", "wgpu":
	default:
		return fmt.Errorf("backend must be one of auto, cpu, wgpu; got %q", c.Backend)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}
	if c.ExportWorkers <= 0 {
		c.ExportWorkers = def.ExportWorkers
	}
	if c.PollInterval == "" {
		c.PollInterval = def.PollInterval
	}
	if d, err := time.ParseDuration(c.PollInterval); err != nil {
		return fmt.Errorf("poll_interval invalid: %w", err)
	} else if d < 0 {
		return fmt.Errorf("poll_interval cannot be negative")
	}
	if c.Debounce == "" {
		c.Debounce = def.Debounce
	}
	if d, err := time.ParseDuration(c.Debounce); err != nil {
		return fmt.Errorf("debounce invalid: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("debounce must be positive")
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window dimensions must be positive")
	}
	if c.Window.PanelWidth < 0 || c.Window.PanelWidth >= c.Window.Width {
		return fmt.Errorf("window.panel_width must be in [0, window.width)")
	}
	return nil
}

// PollDuration returns the parsed poll interval.
func (c *Config) PollDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// DebounceDuration returns the parsed debounce delay.
func (c *Config) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(c.Debounce)
	return d
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level invalid: %w", err)
	}
	return l, nil
}

// ApplyEnv applies environment overrides. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAlwaysRegenerate); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			c.AlwaysRegenerate = true
		case "0", "false", "no", "off":
			c.AlwaysRegenerate = false
		}
	}
}

// Override applies key=value assignments such as "window.width=800" or
// "always_regenerate=true". Keys are the YAML names; values are converted
// to the field type. The result is validated.
func (c *Config) Override(assignments []string) error {
	if len(assignments) == 0 {
		return nil
	}
	tree := make(map[string]any)
	for _, a := range assignments {
		key, value, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("override %q: want key=value", a)
		}
		parts := strings.Split(key, ".")
		node := tree
		for _, p := range parts[:len(parts)-1] {
			next, ok := node[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				node[p] = next
			}
			node = next
		}
		node[parts[len(parts)-1]] = strings.TrimSpace(value)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           c,
	})
	if err != nil {
		return fmt.Errorf("override: %w", err)
	}
	if err := dec.Decode(tree); err != nil {
		return fmt.Errorf("override: %w", err)
	}
	return c.Validate()
}
