// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tracking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/strepitus/params"
)

// fakeRenderer counts passes and optionally runs a hook inside them.
type fakeRenderer struct {
	generates, processes int
	lastMain             params.Main
	lastLayers           []params.Layer
	lastOutput           params.Output

	onGenerate func()
	genErr     error
	procErr    error
}

func (f *fakeRenderer) Generate(_ context.Context, m params.Main, layers []params.Layer) error {
	f.generates++
	f.lastMain, f.lastLayers = m, layers
	if f.onGenerate != nil {
		f.onGenerate()
	}
	return f.genErr
}

func (f *fakeRenderer) Process(_ context.Context, out params.Output) error {
	f.processes++
	f.lastOutput = out
	return f.procErr
}

func newScheduler(t *testing.T, opts ...SchedulerOption) (*Store, *fakeRenderer, *Scheduler) {
	t.Helper()
	store := NewStore(params.DefaultProject())
	r := &fakeRenderer{}
	s := NewScheduler(store, r, opts...)
	t.Cleanup(s.Close)
	return store, r, s
}

// settle runs the initial frame so both read sets are recorded.
func settle(t *testing.T, s *Scheduler) {
	t.Helper()
	res, err := s.Frame(context.Background())
	require.NoError(t, err)
	require.True(t, res.Regenerated)
	require.True(t, res.Reprocessed)
}

// =============================================================================
// Read tracking
// =============================================================================

func TestWithReadTrackingRecordsReads(t *testing.T) {
	store := NewStore(params.DefaultProject())

	got, reads, err := WithReadTracking(store, ScopeGenerate, func(tx *Tx) (int, error) {
		return tx.Main().Width, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 512, got)
	assert.Equal(t, []Key{KeyMain}, reads.Keys())
	assert.Equal(t, []Key{KeyMain}, store.ReadSet(ScopeGenerate).Keys())
	assert.Empty(t, store.ReadSet(ScopeProcess))
}

func TestWithReadTrackingReplacesPreviousSet(t *testing.T) {
	store := NewStore(params.DefaultProject())

	_, _, _ = WithReadTracking(store, ScopeProcess, func(tx *Tx) (struct{}, error) {
		tx.Output()
		tx.Main()
		return struct{}{}, nil
	})
	_, _, _ = WithReadTracking(store, ScopeProcess, func(tx *Tx) (struct{}, error) {
		tx.Output()
		return struct{}{}, nil
	})
	assert.Equal(t, []Key{KeyOutput}, store.ReadSet(ScopeProcess).Keys())
}

func TestWithReadTrackingKeepsSetOnError(t *testing.T) {
	store := NewStore(params.DefaultProject())
	boom := errors.New("boom")

	_, reads, err := WithReadTracking(store, ScopeGenerate, func(tx *Tx) (struct{}, error) {
		tx.Layers()
		return struct{}{}, boom
	})
	require.ErrorIs(t, err, boom)
	assert.True(t, reads.Has(KeyLayers))
	assert.True(t, store.ReadSet(ScopeGenerate).Has(KeyLayers))
}

func TestSnapshotIsUntracked(t *testing.T) {
	store := NewStore(params.DefaultProject())
	_ = store.Snapshot()
	assert.Empty(t, store.ReadSet(ScopeGenerate))
	assert.Empty(t, store.ReadSet(ScopeProcess))
}

func TestInflightReadsAreVisible(t *testing.T) {
	store := NewStore(params.DefaultProject())
	_, _, _ = WithReadTracking(store, ScopeGenerate, func(tx *Tx) (struct{}, error) {
		tx.Main()
		assert.True(t, store.ReadSet(ScopeGenerate).Has(KeyMain))
		return struct{}{}, nil
	})
}

func TestTxLayersIsACopy(t *testing.T) {
	store := NewStore(params.DefaultProject())
	_, _, _ = WithReadTracking(store, ScopeGenerate, func(tx *Tx) (struct{}, error) {
		ls := tx.Layers()
		ls[0].BaseSeed = "mutated"
		return struct{}{}, nil
	})
	assert.NotEqual(t, "mutated", store.Snapshot().Layers[0].BaseSeed)
}

// =============================================================================
// Store
// =============================================================================

func TestStoreSubscribe(t *testing.T) {
	store := NewStore(params.DefaultProject())
	var keys []Key
	unsub := store.Subscribe(func(k Key) { keys = append(keys, k) })

	store.SetViewer(params.Viewer{Zoom: 1})
	store.SetMain(params.Main{Width: 8, Height: 8, Slices: 1})
	unsub()
	store.SetOutput(params.DefaultOutput())

	assert.Equal(t, []Key{KeyViewer, KeyMain}, keys)
	assert.Equal(t, 8, store.Snapshot().Main.Width)
}

func TestStoreMergeNotifiesChangedCells(t *testing.T) {
	p := params.DefaultProject()
	store := NewStore(p)
	var keys []Key
	defer store.Subscribe(func(k Key) { keys = append(keys, k) })()

	assert.Empty(t, store.Merge(p))

	p.Viewer.Zoom = 2
	p.Layers = append(p.Layers, params.DefaultLayer(1))
	changed := store.Merge(p)
	assert.Equal(t, []Key{KeyViewer, KeyLayers}, changed)
	assert.Equal(t, changed, keys)
	assert.Len(t, store.Snapshot().Layers, 2)
}

func TestStoreUpdateLayer(t *testing.T) {
	store := NewStore(params.DefaultProject())
	l := params.DefaultLayer(3)
	assert.True(t, store.UpdateLayer(0, l))
	assert.False(t, store.UpdateLayer(5, l))
	assert.Equal(t, l.BaseSeed, store.Snapshot().Layers[0].BaseSeed)
}

// =============================================================================
// Scheduler
// =============================================================================

func TestSchedulerFirstFrameRunsBoth(t *testing.T) {
	store, r, s := newScheduler(t)
	settle(t, s)

	assert.Equal(t, 1, r.generates)
	assert.Equal(t, 1, r.processes)
	assert.Equal(t, store.Snapshot().Main, r.lastMain)

	res, err := s.Frame(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Ran())
}

func TestSchedulerDirtyMinimality(t *testing.T) {
	tests := []struct {
		name       string
		edit       func(*Store)
		regenerate bool
		reprocess  bool
	}{
		{"viewer zoom", func(s *Store) { s.SetViewer(params.Viewer{Zoom: 2}) }, false, false},
		{"system", func(s *Store) { s.SetSystem(params.System{DarkMode: params.DarkModeDark}) }, false, false},
		{"output normalize", func(s *Store) {
			o := s.Snapshot().Output
			o.Normalize = !o.Normalize
			s.SetOutput(o)
		}, false, true},
		{"output format", func(s *Store) {
			o := s.Snapshot().Output
			o.Format = params.R16Float
			s.SetOutput(o)
		}, false, true},
		{"main dimensions", func(s *Store) { s.SetMain(params.Main{Width: 64, Height: 32, Slices: 2}) }, true, false},
		{"layer seed", func(s *Store) {
			l := s.Snapshot().Layers[0]
			l.BaseSeed = "CAFEBABE"
			s.UpdateLayer(0, l)
		}, true, false},
		{"layer enabled", func(s *Store) {
			l := s.Snapshot().Layers[0]
			l.Enabled = false
			s.UpdateLayer(0, l)
		}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, s := newScheduler(t)
			settle(t, s)

			tt.edit(store)
			regen, reproc := s.Pending()
			assert.Equal(t, tt.regenerate, regen, "needRegenerate")
			assert.Equal(t, tt.reprocess, reproc, "needReprocess")
		})
	}
}

func TestSchedulerRegenerateForcesReprocess(t *testing.T) {
	store, r, s := newScheduler(t)
	settle(t, s)

	store.SetMain(params.Main{Width: 16, Height: 16, Slices: 1})
	res, err := s.Frame(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Regenerated)
	assert.True(t, res.Reprocessed)
	assert.Equal(t, 16, r.lastMain.Width)
	assert.Equal(t, 2, r.processes)
}

func TestSchedulerReprocessOnly(t *testing.T) {
	store, r, s := newScheduler(t)
	settle(t, s)

	o := store.Snapshot().Output
	o.Flip = true
	store.SetOutput(o)

	res, err := s.Frame(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Regenerated)
	assert.True(t, res.Reprocessed)
	assert.True(t, r.lastOutput.Flip)
	assert.Equal(t, 1, r.generates)
}

func TestSchedulerEditDuringGenerateIsNotLost(t *testing.T) {
	store, r, s := newScheduler(t)
	r.onGenerate = func() {
		if r.generates == 1 {
			store.SetMain(params.Main{Width: 2, Height: 2, Slices: 1})
		}
	}

	settle(t, s)
	regen, _ := s.Pending()
	require.True(t, regen, "edit made while generating must request another pass")

	res, err := s.Frame(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Regenerated)
	assert.Equal(t, 2, r.lastMain.Width)
}

func TestSchedulerFailureRestoresFlag(t *testing.T) {
	_, r, s := newScheduler(t)
	boom := errors.New("device lost")
	r.genErr = boom

	res, err := s.Frame(context.Background())
	require.ErrorIs(t, err, boom)
	assert.False(t, res.Ran())
	regen, _ := s.Pending()
	assert.True(t, regen)
	assert.Equal(t, 0, r.processes)

	r.genErr = nil
	r.procErr = boom
	_, err = s.Frame(context.Background())
	require.ErrorIs(t, err, boom)
	regen, reproc := s.Pending()
	assert.False(t, regen)
	assert.True(t, reproc)
}

func TestSchedulerRequestRegenerate(t *testing.T) {
	_, r, s := newScheduler(t)
	settle(t, s)

	s.RequestRegenerate()
	res, err := s.Frame(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Regenerated)
	assert.Equal(t, 2, r.generates)
}

func TestSchedulerAlwaysRegenerate(t *testing.T) {
	_, r, s := newScheduler(t, WithAlwaysRegenerate(true))
	for range 3 {
		_, err := s.Frame(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, r.generates)
	assert.Equal(t, 3, r.processes)

	s.SetAlwaysRegenerate(false)
	res, err := s.Frame(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Ran())
}

func TestSchedulerCloseStopsObserving(t *testing.T) {
	store, _, s := newScheduler(t)
	settle(t, s)
	s.Close()

	store.SetMain(params.Main{Width: 3, Height: 3, Slices: 1})
	regen, reproc := s.Pending()
	assert.False(t, regen)
	assert.False(t, reproc)
}
