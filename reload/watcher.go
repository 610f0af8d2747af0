// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package reload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/strepitus"
	"github.com/gogpu/strepitus/gpucore"
	"github.com/gogpu/strepitus/internal/metrics"
	"github.com/gogpu/strepitus/shaders"
)

// Default timings.
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultDebounce     = 50 * time.Millisecond
)

// Applier swaps programs in. pipeline.Pipeline implements it.
type Applier interface {
	ApplyShaderUpdates(srcs []gpucore.ProgramSource) error
}

// Requester is notified after a batch has been applied.
// tracking.Scheduler implements it.
type Requester interface {
	RequestRegenerate()
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithPollInterval sets how often sources are compared. Zero disables the
// poll ticker, leaving only directory events.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.interval = d }
}

// WithDebounce sets how long directory events are coalesced.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithValidator checks changed sources before they are handed off.
// A source that fails validation is logged and dropped.
func WithValidator(v gpucore.SourceValidator) Option {
	return func(w *Watcher) { w.validator = v }
}

// Watcher detects edits to a shader library's override directory.
//
// Run polls the assembled program sources and also listens for directory
// events. Changed programs are validated off the submission thread and
// delivered as batches on Updates; the watcher never touches device
// objects. The submission goroutine calls Apply between frames.
type Watcher struct {
	lib       *shaders.Library
	validator gpucore.SourceValidator
	interval  time.Duration
	debounce  time.Duration

	updates chan []gpucore.ProgramSource

	mu   sync.Mutex
	last map[string]string // program name -> last seen source
}

// New returns a watcher over lib and records the current sources as the
// baseline.
func New(lib *shaders.Library, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		lib:      lib,
		interval: DefaultPollInterval,
		debounce: DefaultDebounce,
		updates:  make(chan []gpucore.ProgramSource, 8),
		last:     make(map[string]string),
	}
	for _, o := range opts {
		o(w)
	}
	srcs, err := lib.Sources()
	if err != nil {
		return nil, fmt.Errorf("reload: %w", err)
	}
	for _, s := range srcs {
		w.last[s.Name] = s.Source
	}
	return w, nil
}

// Updates returns the channel batches of changed programs arrive on.
func (w *Watcher) Updates() <-chan []gpucore.ProgramSource { return w.updates }

// Check compares every program source against the last one seen and
// returns the changed programs that pass validation. Programs whose
// fragments cannot be read are skipped and reported in the error.
func (w *Watcher) Check() ([]gpucore.ProgramSource, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var (
		changed []gpucore.ProgramSource
		errs    []error
	)
	for _, name := range w.lib.Names() {
		src, err := w.lib.Source(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if w.last[name] == src.Source {
			continue
		}
		w.last[name] = src.Source
		if w.validator != nil {
			if err := w.validator.ValidateSource(src); err != nil {
				strepitus.Logger().Warn("reload: shader rejected", "program", name, "err", err)
				metrics.ShaderReloads.WithLabelValues("invalid").Inc()
				errs = append(errs, fmt.Errorf("reload: %s: %w", name, err))
				continue
			}
		}
		changed = append(changed, src)
	}
	return changed, errors.Join(errs...)
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	var events <-chan fsnotify.Event
	var fsErrs <-chan error
	if dir := w.lib.Dir(); dir != "" {
		fw, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("reload: %w", err)
		}
		defer fw.Close()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("reload: %w", err)
		}
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("reload: watch %s: %w", dir, err)
		}
		events, fsErrs = fw.Events, fw.Errors
		strepitus.Logger().Info("reload: watching", "dir", dir, "poll", w.interval)
	}

	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	debounce := time.NewTimer(w.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if relevant(ev) {
				debounce.Reset(w.debounce)
			}
		case err, ok := <-fsErrs:
			if !ok {
				fsErrs = nil
				continue
			}
			strepitus.Logger().Warn("reload: watcher error", "err", err)
		case <-debounce.C:
			w.poll(ctx)
		case <-tick:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	changed, err := w.Check()
	if err != nil {
		strepitus.Logger().Debug("reload: check", "err", err)
	}
	if len(changed) == 0 {
		return
	}
	select {
	case w.updates <- changed:
		strepitus.Logger().Debug("reload: programs changed", "count", len(changed))
	case <-ctx.Done():
	}
}

// relevant reports whether ev can change a shader fragment.
func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return strings.EqualFold(filepath.Ext(ev.Name), ".wgsl")
}

// Apply hands every pending batch to dst and, if any was pending,
// requests a regenerate from req. It never blocks. Call it from the
// goroutine that owns the device, between frames. Compile failures keep
// the previous programs and are returned joined.
func (w *Watcher) Apply(dst Applier, req Requester) (applied bool, err error) {
	var errs []error
	for {
		select {
		case batch := <-w.updates:
			applied = true
			if err := dst.ApplyShaderUpdates(batch); err != nil {
				errs = append(errs, err)
			}
		default:
			if applied && req != nil {
				req.RequestRegenerate()
			}
			return applied, errors.Join(errs...)
		}
	}
}
