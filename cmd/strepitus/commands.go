// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/strepitus/export"
	"github.com/gogpu/strepitus/internal/config"
	"github.com/gogpu/strepitus/params"
	"github.com/gogpu/strepitus/seed"
	"github.com/gogpu/strepitus/shaders"
	"github.com/gogpu/strepitus/viewer"
)

func runInit(_ context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	var (
		configPath  = fs.String("config", "strepitus.yaml", "config file to write")
		projectPath = fs.String("project", "project.json", "project file to write")
		shaderDir   = fs.String("shaders", "", "also extract the built-in shader fragments into this directory")
		force       = fs.Bool("force", false, "overwrite existing files")
	)
	if err := parseFlags(fs, e, args); err != nil {
		return err
	}

	for _, path := range []string{*configPath, *projectPath} {
		if _, err := os.Stat(path); err == nil && !*force {
			return fmt.Errorf("%s already exists (use -force to overwrite)", path)
		}
	}
	if err := config.WriteDefault(*configPath); err != nil {
		return err
	}
	status(e, "wrote", *configPath)
	if err := params.SaveProject(*projectPath, params.DefaultProject()); err != nil {
		return err
	}
	status(e, "wrote", *projectPath)
	if *shaderDir != "" {
		if err := shaders.Extract(*shaderDir); err != nil {
			return err
		}
		status(e, "extracted", *shaderDir)
	}
	return nil
}

func runGenerate(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	var c common
	c.register(fs)
	if err := parseFlags(fs, e, args); err != nil {
		return err
	}

	return withSession(ctx, e, &c, func(s *session, p params.Project) error {
		elapsed, err := s.render(ctx, p)
		if err != nil {
			return err
		}
		var rng *rangeSummary
		if p.Output.Normalize {
			r, err := s.pipe.Range(ctx)
			if err != nil {
				return err
			}
			rng = &rangeSummary{min: r.Min, max: r.Max, texels: r.Texels, degenerate: r.Degenerate()}
		}
		printLayers(e.stdout, p.Layers)
		printSummary(e.stdout, s.dev.Name(), p, rng, elapsed)
		return nil
	})
}

func runExport(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var c common
	c.register(fs)
	fileFormat := fs.String("as", "", "container for every output: png or binary (default: by extension)")
	if err := parseFlags(fs, e, args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		return errors.New("export: no output files")
	}

	return withSession(ctx, e, &c, func(s *session, p params.Project) error {
		// Reject every invalid target before rendering anything.
		formats := make([]params.FileFormat, len(paths))
		for i, path := range paths {
			ff, err := fileFormatFor(path, *fileFormat)
			if err != nil {
				return err
			}
			if err := export.Check(p.Output.Format, p.Main, ff); err != nil {
				return err
			}
			formats[i] = ff
		}

		if _, err := s.render(ctx, p); err != nil {
			return err
		}
		img, err := s.pipe.Readback(ctx)
		if err != nil {
			return err
		}

		runner := export.NewRunner(s.cfg.ExportWorkers)
		for i, path := range paths {
			if _, err := runner.Submit(img, path, formats[i]); err != nil {
				runner.Close()
				return err
			}
		}
		go runner.Close()

		var errs []error
		for res := range runner.Results() {
			if res.Err != nil {
				failure(e, res.Path, res.Err)
				errs = append(errs, res.Err)
				continue
			}
			status(e, "exported", fmt.Sprintf("%s (%s)", res.Path, res.Duration.Round(time.Millisecond)))
		}
		return errors.Join(errs...)
	})
}

func runPreview(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	var c common
	c.register(fs)
	var (
		out   = fs.String("o", "preview.png", "output PNG")
		thumb = fs.Int("thumb", 0, "scale the window down so its longer edge is at most this many pixels")
	)
	if err := parseFlags(fs, e, args); err != nil {
		return err
	}

	return withSession(ctx, e, &c, func(s *session, p params.Project) error {
		if _, err := s.render(ctx, p); err != nil {
			return err
		}
		img, err := s.pipe.Readback(ctx)
		if err != nil {
			return err
		}
		win := viewer.Window{
			Width:      s.cfg.Window.Width,
			Height:     s.cfg.Window.Height,
			PanelWidth: s.cfg.Window.PanelWidth,
		}
		u := viewer.Uniforms(p.Viewer, win, viewer.ExtentOf(img.Main()))
		canvas := viewer.Thumbnail(viewer.Compose(win, viewer.Preview(img, u), u), *thumb)

		if dir := filepath.Dir(*out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		if err := png.Encode(f, canvas); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		status(e, "preview", fmt.Sprintf("%s (viewport %s)", *out, u.Viewport))
		return nil
	})
}

func runFormats(_ context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("formats", flag.ContinueOnError)
	slices := fs.Int("slices", 1, "slice count to check the containers against")
	if err := parseFlags(fs, e, args); err != nil {
		return err
	}
	if *slices < 1 {
		return fmt.Errorf("formats: slices must be positive")
	}
	return printFormats(e.stdout, *slices)
}

func runSeed(_ context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	var (
		count = fs.Int("layers", 4, "number of default layer seeds to list")
		words = fs.Int("words", 8, "number of derived seed words to print per seed")
	)
	if err := parseFlags(fs, e, args); err != nil {
		return err
	}
	if *count < 0 || *words < 0 {
		return fmt.Errorf("seed: counts cannot be negative")
	}

	seeds := fs.Args()
	if len(seeds) == 0 {
		for i := range *count {
			seeds = append(seeds, seed.DefaultBaseSeed(i))
		}
	}
	printSeeds(e.stdout, seeds, *words)
	return nil
}
