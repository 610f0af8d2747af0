// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/strepitus"
	"github.com/gogpu/strepitus/export"
	"github.com/gogpu/strepitus/gpucore"
	"github.com/gogpu/strepitus/internal/metrics"
	"github.com/gogpu/strepitus/params"
	"github.com/gogpu/strepitus/reload"
	"github.com/gogpu/strepitus/tracking"
)

// Keys read from stdin by watch, one per line.
const (
	keyReload     = "r"
	keyRegenerate = "g"
	keyQuit       = "q"
)

type watchFlags struct {
	common
	out      string
	as       string
	interval time.Duration
	frames   int
}

func runWatch(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	var wf watchFlags
	wf.register(fs)
	fs.StringVar(&wf.out, "o", "", "export to this file after every frame that ran")
	fs.StringVar(&wf.as, "as", "", "container for -o: png or binary (default: by extension)")
	fs.DurationVar(&wf.interval, "frame", 16*time.Millisecond, "frame interval")
	fs.IntVar(&wf.frames, "frames", 0, "stop after this many frames that ran (0 runs until interrupted)")
	if err := parseFlags(fs, e, args); err != nil {
		return err
	}
	if wf.interval <= 0 {
		return errors.New("watch: -frame must be positive")
	}

	cfg, err := wf.loadConfig(e)
	if err != nil {
		return err
	}
	p, err := wf.loadProject()
	if err != nil {
		return err
	}
	var ff params.FileFormat
	if wf.out != "" {
		if ff, err = fileFormatFor(wf.out, wf.as); err != nil {
			return err
		}
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

	var opts []reload.Option
	opts = append(opts, reload.WithPollInterval(cfg.PollDuration()), reload.WithDebounce(cfg.DebounceDuration()))
	if v, ok := s.dev.(gpucore.SourceValidator); ok {
		opts = append(opts, reload.WithValidator(v))
	}
	w, err := reload.New(s.lib, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := make(chan string, 4)
	go readKeys(ctx, e.stdin, keys)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(gctx) })
	if cfg.MetricsAddr != "" {
		serveMetrics(gctx, g, e, cfg.MetricsAddr)
	}
	g.Go(func() error {
		defer cancel()
		l := &loop{
			e:       e,
			s:       s,
			w:       w,
			flags:   &wf,
			ff:      ff,
			project: p,
		}
		return l.run(gctx, keys)
	})
	return g.Wait()
}

// loop owns the device: every pass, reload and readback runs on its
// goroutine.
type loop struct {
	e       *env
	s       *session
	w       *reload.Watcher
	flags   *watchFlags
	ff      params.FileFormat
	project params.Project

	store   *tracking.Store
	sched   *tracking.Scheduler
	modTime time.Time
}

func (l *loop) run(ctx context.Context, keys <-chan string) error {
	l.store = tracking.NewStore(l.project)
	l.sched = tracking.NewScheduler(l.store, l.s.pipe,
		tracking.WithAlwaysRegenerate(l.s.cfg.AlwaysRegenerate))
	defer l.sched.Close()
	l.modTime = l.projectModTime()

	runner := export.NewRunner(l.s.cfg.ExportWorkers)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for res := range runner.Results() {
			if res.Err != nil {
				failure(l.e, res.Path, res.Err)
			}
		}
	}()
	defer func() {
		runner.Close()
		<-drained
	}()

	ticker := time.NewTicker(l.flags.interval)
	defer ticker.Stop()

	ran := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case k := <-keys:
			if quit := l.key(k); quit {
				return nil
			}
		case <-ticker.C:
		}

		l.reloadProject()
		if _, err := l.w.Apply(l.s.pipe, l.sched); err != nil {
			failure(l.e, "shader reload", err)
		}
		res, err := l.sched.Frame(ctx)
		if err != nil {
			return err
		}
		if !res.Ran() {
			continue
		}
		ran++
		strepitus.Logger().Debug("watch: frame", "regenerated", res.Regenerated, "reprocessed", res.Reprocessed)
		if l.flags.out != "" {
			if _, err := runner.Enqueue(ctx, l.s.pipe, l.flags.out, l.ff); err != nil {
				failure(l.e, l.flags.out, err)
			}
		}
		if l.flags.frames > 0 && ran >= l.flags.frames {
			return nil
		}
	}
}

// key handles one stdin command and reports whether to quit.
func (l *loop) key(k string) bool {
	switch k {
	case keyReload:
		if err := l.s.pipe.ReloadShaders(l.s.lib); err != nil {
			failure(l.e, "shader reload", err)
			return false
		}
		l.sched.RequestRegenerate()
		status(l.e, "reloaded", "shaders")
	case keyRegenerate:
		l.sched.RequestRegenerate()
	case keyQuit:
		return true
	}
	return false
}

func (l *loop) projectModTime() time.Time {
	if l.flags.projectPath == "" {
		return time.Time{}
	}
	fi, err := os.Stat(l.flags.projectPath)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}

// reloadProject merges the project file into the store when it changed on
// disk. Only the cells that differ are written, so an edit to the viewer
// settings does not trigger a recompute.
func (l *loop) reloadProject() {
	mt := l.projectModTime()
	if mt.IsZero() || mt.Equal(l.modTime) {
		return
	}
	l.modTime = mt
	p, err := params.LoadProject(l.flags.projectPath)
	if err != nil {
		failure(l.e, l.flags.projectPath, err)
		return
	}
	if changed := l.store.Merge(p.Clamp()); len(changed) > 0 {
		strepitus.Logger().Info("watch: project changed", "keys", changed)
	}
}

// readKeys forwards stdin lines to keys until quit, EOF or ctx is done.
func readKeys(ctx context.Context, r io.Reader, keys chan<- string) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		k := strings.ToLower(strings.TrimSpace(sc.Text()))
		if k == "" {
			continue
		}
		select {
		case keys <- k:
		case <-ctx.Done():
			return
		}
		if k == keyQuit {
			return
		}
	}
}

func serveMetrics(ctx context.Context, g *errgroup.Group, e *env, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		status(e, "metrics", fmt.Sprintf("http://%s/metrics", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
