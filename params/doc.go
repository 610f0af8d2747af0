// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package params defines the parameter model of a noise texture project.
//
// Every type here is an immutable value: editing means building a new value
// and replacing the old one wholesale. The pipeline and the dirty-tracking
// store rely on this to observe consistent snapshots.
//
// The model is split into:
//   - [Main]: texture dimensions
//   - [Layer]: one noise contributor ([FBM] stacking, [NoiseSpecific] kernel options)
//   - [Output]: storage format, normalization, flip and dither
//   - [Viewer], [System]: display-only settings
//   - [Project]: the persisted aggregate (see [LoadProject])
package params
