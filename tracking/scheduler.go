// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tracking

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gogpu/strepitus"
	"github.com/gogpu/strepitus/params"
)

// Renderer runs the two tracked passes. pipeline.Pipeline implements it.
type Renderer interface {
	Generate(ctx context.Context, m params.Main, layers []params.Layer) error
	Process(ctx context.Context, out params.Output) error
}

// FrameResult reports which passes a Frame ran.
type FrameResult struct {
	Regenerated bool
	Reprocessed bool
}

// Ran reports whether any pass ran.
func (r FrameResult) Ran() bool { return r.Regenerated || r.Reprocessed }

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithAlwaysRegenerate makes every Frame regenerate, whatever was edited.
func WithAlwaysRegenerate(on bool) SchedulerOption {
	return func(s *Scheduler) { s.always.Store(on) }
}

// Scheduler keeps the regenerate and reprocess flags of one Renderer.
//
// Both flags start set, so the first Frame runs both passes. Writes to the
// store are matched against the read sets of the generate and process
// scopes; a write to a key neither scope read leaves both flags alone.
//
// Frame must be called from the goroutine that owns the Renderer. The
// other methods are safe for concurrent use.
type Scheduler struct {
	store *Store
	r     Renderer

	needRegenerate atomic.Bool
	needReprocess  atomic.Bool
	always         atomic.Bool

	unsubscribe func()
}

// NewScheduler returns a scheduler driving r from store.
func NewScheduler(store *Store, r Renderer, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{store: store, r: r}
	s.needRegenerate.Store(true)
	s.needReprocess.Store(true)
	for _, o := range opts {
		o(s)
	}
	s.unsubscribe = store.Subscribe(s.invalidate)
	return s
}

// Close stops observing the store.
func (s *Scheduler) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Scheduler) invalidate(k Key) {
	switch {
	case s.store.ReadSet(ScopeGenerate).Has(k):
		s.needRegenerate.Store(true)
		strepitus.Logger().Debug("tracking: regenerate requested", "key", k)
	case s.store.ReadSet(ScopeProcess).Has(k):
		s.needReprocess.Store(true)
		strepitus.Logger().Debug("tracking: reprocess requested", "key", k)
	}
}

// RequestRegenerate forces the next Frame to regenerate.
func (s *Scheduler) RequestRegenerate() { s.needRegenerate.Store(true) }

// RequestReprocess forces the next Frame to reprocess.
func (s *Scheduler) RequestReprocess() { s.needReprocess.Store(true) }

// SetAlwaysRegenerate toggles regenerating on every Frame.
func (s *Scheduler) SetAlwaysRegenerate(on bool) { s.always.Store(on) }

// Pending reports the current flags.
func (s *Scheduler) Pending() (regenerate, reprocess bool) {
	return s.needRegenerate.Load(), s.needReprocess.Load()
}

// Frame runs the passes whose flags are set. Each flag is cleared before
// its pass starts, so an edit made while the pass runs sets it again and
// is picked up by the next Frame. A failed pass sets its flag again and
// its error is returned.
func (s *Scheduler) Frame(ctx context.Context) (FrameResult, error) {
	var res FrameResult

	regen := s.needRegenerate.Swap(false)
	if s.always.Load() || regen {
		start := time.Now()
		_, _, err := WithReadTracking(s.store, ScopeGenerate, func(tx *Tx) (struct{}, error) {
			return struct{}{}, s.r.Generate(ctx, tx.Main(), tx.Layers())
		})
		if err != nil {
			s.needRegenerate.Store(true)
			return res, fmt.Errorf("tracking: generate: %w", err)
		}
		res.Regenerated = true
		s.needReprocess.Store(true)
		strepitus.Logger().Debug("tracking: generate done", "elapsed", time.Since(start))
	}

	if s.needReprocess.Swap(false) {
		start := time.Now()
		_, _, err := WithReadTracking(s.store, ScopeProcess, func(tx *Tx) (struct{}, error) {
			return struct{}{}, s.r.Process(ctx, tx.Output())
		})
		if err != nil {
			s.needReprocess.Store(true)
			return res, fmt.Errorf("tracking: process: %w", err)
		}
		res.Reprocessed = true
		strepitus.Logger().Debug("tracking: process done", "elapsed", time.Since(start))
	}
	return res, nil
}
