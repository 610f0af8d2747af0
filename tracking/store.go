// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tracking

import (
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/gogpu/strepitus/params"
)

// Key names one parameter cell of a Store.
type Key string

// Parameter cells.
const (
	KeyMain   Key = "main"
	KeyOutput Key = "output"
	KeyViewer Key = "viewer"
	KeySystem Key = "system"
	KeyLayers Key = "layers"
)

// Scope names a tracked pass.
type Scope string

// Tracked passes.
const (
	ScopeGenerate Scope = "generate"
	ScopeProcess  Scope = "process"
)

// ReadSet is the set of keys read by a scope.
type ReadSet map[Key]struct{}

// Has reports whether k was read.
func (r ReadSet) Has(k Key) bool {
	_, ok := r[k]
	return ok
}

// Keys returns the keys in sorted order.
func (r ReadSet) Keys() []Key {
	return slices.Sorted(maps.Keys(r))
}

// Store holds the parameter cells. Each cell is replaced wholesale.
// Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	project params.Project

	reads    map[Scope]ReadSet
	inflight map[Scope]ReadSet

	nextSub int
	subs    map[int]func(Key)
}

// NewStore returns a store holding p.
func NewStore(p params.Project) *Store {
	p.Layers = slices.Clone(p.Layers)
	return &Store{
		project:  p,
		reads:    make(map[Scope]ReadSet),
		inflight: make(map[Scope]ReadSet),
		subs:     make(map[int]func(Key)),
	}
}

// Snapshot returns the current parameters without recording any read.
func (s *Store) Snapshot() params.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.project
	p.Layers = slices.Clone(p.Layers)
	return p
}

// Subscribe registers fn to be called after every write, with the key
// written. Callbacks run on the writing goroutine, outside the store lock.
func (s *Store) Subscribe(fn func(Key)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) set(k Key, apply func(p *params.Project)) {
	s.mu.Lock()
	apply(&s.project)
	subs := make([]func(Key), 0, len(s.subs))
	for _, id := range slices.Sorted(maps.Keys(s.subs)) {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(k)
	}
}

// SetMain replaces the dimensions.
func (s *Store) SetMain(m params.Main) {
	s.set(KeyMain, func(p *params.Project) { p.Main = m })
}

// SetOutput replaces the output parameters.
func (s *Store) SetOutput(o params.Output) {
	s.set(KeyOutput, func(p *params.Project) { p.Output = o })
}

// SetViewer replaces the viewer parameters.
func (s *Store) SetViewer(v params.Viewer) {
	s.set(KeyViewer, func(p *params.Project) { p.Viewer = v })
}

// SetSystem replaces the system parameters.
func (s *Store) SetSystem(v params.System) {
	s.set(KeySystem, func(p *params.Project) { p.System = v })
}

// SetLayers replaces the layer list. The slice is copied.
func (s *Store) SetLayers(ls []params.Layer) {
	ls = slices.Clone(ls)
	s.set(KeyLayers, func(p *params.Project) { p.Layers = ls })
}

// UpdateLayer replaces layer i if it exists.
func (s *Store) UpdateLayer(i int, l params.Layer) bool {
	ls := s.Snapshot().Layers
	if i < 0 || i >= len(ls) {
		return false
	}
	ls[i] = l
	s.SetLayers(ls)
	return true
}

// SetProject replaces every cell, notifying once per key.
func (s *Store) SetProject(p params.Project) {
	s.SetMain(p.Main)
	s.SetOutput(p.Output)
	s.SetViewer(p.Viewer)
	s.SetSystem(p.System)
	s.SetLayers(p.Layers)
}

// Merge replaces only the cells of p that differ from the stored ones and
// returns their keys, so unchanged cells do not invalidate any pass.
func (s *Store) Merge(p params.Project) []Key {
	cur := s.Snapshot()
	var changed []Key
	if cur.Main != p.Main {
		s.SetMain(p.Main)
		changed = append(changed, KeyMain)
	}
	if cur.Output != p.Output {
		s.SetOutput(p.Output)
		changed = append(changed, KeyOutput)
	}
	if cur.Viewer != p.Viewer {
		s.SetViewer(p.Viewer)
		changed = append(changed, KeyViewer)
	}
	if cur.System != p.System {
		s.SetSystem(p.System)
		changed = append(changed, KeySystem)
	}
	if !reflect.DeepEqual(cur.Layers, p.Layers) {
		s.SetLayers(p.Layers)
		changed = append(changed, KeyLayers)
	}
	return changed
}

// ReadSet returns the keys read by scope: its last completed read set
// together with the reads of a run still in flight.
func (s *Store) ReadSet(scope Scope) ReadSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(ReadSet, len(s.reads[scope])+len(s.inflight[scope]))
	maps.Copy(out, s.reads[scope])
	maps.Copy(out, s.inflight[scope])
	return out
}

func (s *Store) record(scope Scope, k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs := s.inflight[scope]
	if rs == nil {
		rs = make(ReadSet)
		s.inflight[scope] = rs
	}
	rs[k] = struct{}{}
}

func (s *Store) begin(scope Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight[scope] = make(ReadSet)
}

func (s *Store) complete(scope Scope, rs ReadSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads[scope] = rs
	delete(s.inflight, scope)
}
