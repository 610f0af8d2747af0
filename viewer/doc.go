// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package viewer parameterizes the preview blit.
//
// The blit is a read-only consumer of the pipeline output: it maps the
// output texture into the part of the window not covered by the side
// panel, with pan, zoom, slice selection, tiling and a channel display
// mode. Uniforms computes its parameter block; Preview renders the same
// mapping on the CPU. Controller turns input events into viewer edits.
package viewer
