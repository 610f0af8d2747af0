// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package tracking decides which pipeline passes must rerun after an edit.
//
// A Store holds the project parameters as immutable snapshots, one cell per
// Key. Passes read parameters through a Tx obtained from WithReadTracking,
// which records every cell read into the scope's read set. When a cell is
// written, the Scheduler compares the key against the recorded read sets:
// a key read by generate requests a regenerate, a key read only by process
// requests a reprocess, and anything else (the viewer settings, say) does
// nothing.
package tracking
