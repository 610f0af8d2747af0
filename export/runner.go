// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package export

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/strepitus"
	"github.com/gogpu/strepitus/params"
)

// Result reports one finished export.
type Result struct {
	ID       uuid.UUID
	Path     string
	Err      error
	Duration time.Duration
}

// Runner writes exports on background goroutines. At most limit encoders
// run at once; Submit blocks while all of them are busy.
//
// Results must be drained, or encoders block once the result buffer fills.
type Runner struct {
	g       errgroup.Group
	results chan Result

	mu     sync.Mutex
	closed bool
}

// NewRunner returns a runner with the given encoder limit; limit <= 0
// means GOMAXPROCS.
func NewRunner(limit int) *Runner {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	r := &Runner{results: make(chan Result, 64)}
	r.g.SetLimit(limit)
	return r
}

// Results returns the channel finished exports are reported on. It is
// closed by Close.
func (r *Runner) Results() <-chan Result { return r.results }

// Submit validates the target and schedules img to be written to path.
// The returned ID identifies the job in Results.
func (r *Runner) Submit(img *Image, path string, ff params.FileFormat) (uuid.UUID, error) {
	if err := Check(img.Format, img.Main(), ff); err != nil {
		return uuid.Nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return uuid.Nil, ErrRunnerClosed
	}

	id := uuid.New()
	r.g.Go(func() error {
		start := time.Now()
		err := Write(img, path, ff)
		if err != nil {
			strepitus.Logger().Warn("export: failed", "id", id, "path", path, "err", err)
		}
		r.results <- Result{ID: id, Path: path, Err: err, Duration: time.Since(start)}
		return nil
	})
	return id, nil
}

// Enqueue validates the target, takes the readback from src on the
// calling goroutine and schedules the write.
func (r *Runner) Enqueue(ctx context.Context, src Source, path string, ff params.FileFormat) (uuid.UUID, error) {
	f, m, err := src.Target()
	if err != nil {
		return uuid.Nil, fmt.Errorf("export: %w", err)
	}
	if err := Check(f, m, ff); err != nil {
		return uuid.Nil, err
	}
	img, err := src.Readback(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("export: readback: %w", err)
	}
	return r.Submit(img, path, ff)
}

// Close waits for scheduled exports and closes Results.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	_ = r.g.Wait()
	close(r.results)
}
