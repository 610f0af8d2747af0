// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tracking

import (
	"maps"
	"slices"

	"github.com/gogpu/strepitus/params"
)

// Tx reads parameters on behalf of one scope and records every read.
// A Tx must not be used after its WithReadTracking body returns.
type Tx struct {
	store *Store
	scope Scope
	reads ReadSet
}

func (tx *Tx) read(k Key) params.Project {
	tx.reads[k] = struct{}{}
	tx.store.record(tx.scope, k)
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	return tx.store.project
}

// Main returns the dimensions.
func (tx *Tx) Main() params.Main { return tx.read(KeyMain).Main }

// Output returns the output parameters.
func (tx *Tx) Output() params.Output { return tx.read(KeyOutput).Output }

// Viewer returns the viewer parameters.
func (tx *Tx) Viewer() params.Viewer { return tx.read(KeyViewer).Viewer }

// System returns the system parameters.
func (tx *Tx) System() params.System { return tx.read(KeySystem).System }

// Layers returns a copy of the layer list.
func (tx *Tx) Layers() []params.Layer { return slices.Clone(tx.read(KeyLayers).Layers) }

// Scope returns the scope the reads are recorded for.
func (tx *Tx) Scope() Scope { return tx.scope }

// WithReadTracking runs body with a Tx for scope and returns its result
// together with every key body read. The read set becomes the scope's
// last completed read set even when body fails.
func WithReadTracking[R any](s *Store, scope Scope, body func(*Tx) (R, error)) (R, ReadSet, error) {
	s.begin(scope)
	tx := &Tx{store: s, scope: scope, reads: make(ReadSet)}
	r, err := body(tx)
	s.complete(scope, maps.Clone(tx.reads))
	return r, tx.reads, err
}
