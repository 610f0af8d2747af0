// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shaders holds the WGSL compute programs of the strepitus pipeline
// and the catalogue that assembles them.
//
// Every program is built by concatenating shared fragments (common helpers,
// the generation or normalize skeleton) with a program-specific fragment
// (the noise kernel or the output store). A [Library] can overlay an
// on-disk directory: a fragment file present there replaces the embedded
// one, which is how shader hot reload picks up edits.
package shaders
