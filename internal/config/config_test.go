// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strepitus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 500*time.Millisecond, cfg.PollDuration())
	assert.Equal(t, 50*time.Millisecond, cfg.DebounceDuration())
	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, `
backend: CPU
workers: 3
window:
  width: 800
unknown_key: ignored
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cpu", cfg.Backend)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "500ms", cfg.PollInterval)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "backend: [oops"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad backend", func(c *Config) { c.Backend = "metal" }, "backend"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"bad poll", func(c *Config) { c.PollInterval = "soon" }, "poll_interval"},
		{"zero debounce", func(c *Config) { c.Debounce = "0s" }, "debounce"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"panel too wide", func(c *Config) { c.Window.PanelWidth = c.Window.Width }, "panel_width"},
		{"zero window", func(c *Config) { c.Window.Height = 0 }, "window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateFillsEmpty(t *testing.T) {
	cfg := Default()
	cfg.Backend, cfg.PollInterval, cfg.LogLevel, cfg.ExportWorkers = "", "", "", 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Default(), cfg)
}

func TestOverride(t *testing.T) {
	cfg := Default()
	err := cfg.Override([]string{
		"window.width=800",
		"window.panel_width = 200",
		"always_regenerate=true",
		"log_level=debug",
	})
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 200, cfg.Window.PanelWidth)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.True(t, cfg.AlwaysRegenerate)
	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestOverrideErrors(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Override([]string{"no_equals"}))
	assert.Error(t, cfg.Override([]string{"no_such_key=1"}))
	assert.Error(t, cfg.Override([]string{"workers=many"}))
	assert.Error(t, cfg.Override([]string{"backend=vulkan"}))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{EnvAlwaysRegenerate: "1"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := Default()
	cfg.ApplyEnv(lookup)
	assert.True(t, cfg.AlwaysRegenerate)

	env[EnvAlwaysRegenerate] = "off"
	cfg.ApplyEnv(lookup)
	assert.False(t, cfg.AlwaysRegenerate)

	delete(env, EnvAlwaysRegenerate)
	cfg.AlwaysRegenerate = true
	cfg.ApplyEnv(lookup)
	assert.True(t, cfg.AlwaysRegenerate)
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "strepitus.yaml")
	require.NoError(t, WriteDefault(path))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}
