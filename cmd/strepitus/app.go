// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gogpu/strepitus"
	"github.com/gogpu/strepitus/backend"
	_ "github.com/gogpu/strepitus/backend/cpu"
	_ "github.com/gogpu/strepitus/backend/native"
	"github.com/gogpu/strepitus/gpucore"
	"github.com/gogpu/strepitus/internal/config"
	"github.com/gogpu/strepitus/params"
	"github.com/gogpu/strepitus/pipeline"
	"github.com/gogpu/strepitus/shaders"
	"github.com/gogpu/strepitus/tracking"
)

// setFlags collects repeated -set key=value flags.
type setFlags []string

func (s *setFlags) String() string { return strings.Join(*s, ",") }

func (s *setFlags) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// common holds the flags shared by every rendering command.
type common struct {
	configPath  string
	projectPath string
	sets        setFlags
	verbose     bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML config file")
	fs.StringVar(&c.projectPath, "project", "", "project file (default: built-in project)")
	fs.Var(&c.sets, "set", "config override key=value (repeatable)")
	fs.BoolVar(&c.verbose, "v", false, "debug logging")
}

// loadConfig reads the config file, then applies the environment and -set
// overrides in that order.
func (c *common) loadConfig(e *env) (*config.Config, error) {
	cfg := config.Default()
	if c.configPath != "" {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	cfg.ApplyEnv(e.lookup)
	if err := cfg.Override(c.sets); err != nil {
		return nil, err
	}
	if c.verbose {
		cfg.LogLevel = "debug"
	}
	return &cfg, nil
}

func (c *common) loadProject() (params.Project, error) {
	if c.projectPath == "" {
		return params.DefaultProject(), nil
	}
	return params.LoadProject(c.projectPath)
}

func installLogger(e *env, cfg *config.Config) error {
	lvl, err := cfg.Level()
	if err != nil {
		return err
	}
	strepitus.SetLogger(slog.New(slog.NewTextHandler(e.stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// session is an open device with a compiled pipeline.
type session struct {
	cfg  *config.Config
	lib  *shaders.Library
	dev  gpucore.Device
	pipe *pipeline.Pipeline
}

func openSession(e *env, cfg *config.Config) (*session, error) {
	if err := installLogger(e, cfg); err != nil {
		return nil, err
	}
	lib := shaders.Default()
	if cfg.ShaderDir != "" {
		lib = shaders.NewLibrary(cfg.ShaderDir)
	}
	dev, err := backend.Open(cfg.Backend, backend.Options{Workers: cfg.Workers})
	if err != nil {
		return nil, err
	}
	pipe, err := pipeline.New(dev, pipeline.WithLibrary(lib))
	if err != nil {
		dev.Destroy()
		return nil, err
	}
	return &session{cfg: cfg, lib: lib, dev: dev, pipe: pipe}, nil
}

func (s *session) Close() error {
	err := s.pipe.Close()
	s.dev.Destroy()
	return err
}

// render runs one full frame for p: generate followed by process.
func (s *session) render(ctx context.Context, p params.Project) (time.Duration, error) {
	store := tracking.NewStore(p.Clamp())
	sched := tracking.NewScheduler(store, s.pipe)
	defer sched.Close()

	start := time.Now()
	res, err := sched.Frame(ctx)
	if err != nil {
		return 0, err
	}
	if !res.Regenerated || !res.Reprocessed {
		return 0, errors.New("first frame did not run both passes")
	}
	return time.Since(start), nil
}

func withSession(ctx context.Context, e *env, c *common, fn func(s *session, p params.Project) error) error {
	cfg, err := c.loadConfig(e)
	if err != nil {
		return err
	}
	p, err := c.loadProject()
	if err != nil {
		return err
	}
	s, err := openSession(e, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			strepitus.Logger().Warn("close session", "err", cerr)
		}
	}()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fn(s, p.Clamp())
}

func parseFlags(fs *flag.FlagSet, e *env, args []string) error {
	fs.SetOutput(e.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return nil
}

func fileFormatFor(path, explicit string) (params.FileFormat, error) {
	if explicit != "" {
		return params.ParseFileFormat(explicit)
	}
	ff, err := params.FileFormatFromPath(path)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return ff, nil
}
