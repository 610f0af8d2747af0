// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package strepitus generates layered procedural noise textures on the GPU.
//
// # Overview
//
// A texture is described by a list of noise layers (value, Perlin, Simplex
// or Worley, each stacked as fractal Brownian motion) plus an output format.
// The pipeline turns that description into a normalized, optionally dithered
// 2D or 3D texture through a fixed sequence of compute dispatches:
//
//	reset -> layer 0 -> barrier -> ... -> layer N -> barrier
//	      -> range -> barrier -> normalize -> image barrier
//
// and exports the result as PNG or raw binary.
//
// # Quick Start
//
//	dev, _ := backend.Open("cpu", backend.Options{})
//	p, _ := pipeline.New(dev)
//	defer p.Close()
//
//	store := tracking.NewStore(params.DefaultProject())
//	sched := tracking.NewScheduler(store, p)
//	_, _ = sched.Frame(ctx)
//
//	_ = export.Export(ctx, p, "out/noise.png", params.FilePNG)
//
// # Architecture
//
// The module is organized into:
//   - Data model: params (layers, formats, project files), seed
//   - Devices: gpucore (interfaces), backend/cpu (headless), backend/native (wgpu)
//   - Pipeline: pipeline (resource arena + pass sequencing), tracking (dirty flags)
//   - Consumers: export, viewer, reload
//   - Command: cmd/strepitus (generate, export, preview, watch)
//
// # Logging
//
// Nothing is logged by default. See [SetLogger].
package strepitus

// Version is the current version of the module.
const Version = "0.4.0"
