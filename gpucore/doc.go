// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpucore provides the device abstraction shared by the strepitus
// pipeline and its backends.
//
// The [Device] interface covers exactly what the noise pipeline needs from
// a GPU: storage and uniform buffers, compute programs built from WGSL
// source, and command batches of dispatches, buffer copies and barriers.
// Two implementations exist:
//   - backend/cpu runs every program as a Go kernel over parallel workgroups
//   - backend/native drives gogpu/wgpu HAL with naga-compiled shaders
//
//	               +-----------------+
//	               |    pipeline     |
//	               | (reset/generate |
//	               |  range/process) |
//	               +--------+--------+
//	                        |
//	         +--------------+--------------+
//	         |                             |
//	+--------v--------+          +--------v--------+
//	|   cpu device    |          |  native device  |
//	| (Go kernels)    |          |  (hal.Device)   |
//	+-----------------+          +--------+--------+
//	                                      |
//	                             +--------v--------+
//	                             |   gogpu/wgpu    |
//	                             +-----------------+
//
// # Resource Management
//
// Resources are referenced by opaque IDs ([BufferID], [ProgramID]). Devices
// track the mapping between IDs and backend objects. Destroying an unknown
// or already destroyed ID is a no-op; using one returns [ErrInvalidID].
//
// # Ordering
//
// Commands recorded on a [CommandEncoder] execute in recording order when
// [CommandEncoder.Finish] is called. Barriers make the writes of earlier
// dispatches visible to later ones. Buffer writes made with
// [Device.WriteBuffer] are visible to the next finished batch.
package gpucore
