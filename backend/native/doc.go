// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package native implements gpucore.Device on top of the Pure Go
// gogpu/wgpu HAL.
//
// Program sources are compiled from WGSL to SPIR-V with gogpu/naga. Each
// program owns a shader module, a bind group layout built from its binding
// list, a pipeline layout and a compute pipeline. Bind groups are created
// per dispatch and released once the batch completes.
//
// The device either opens its own Vulkan adapter (New) or shares the
// device of a host application through a gpucontext.DeviceProvider
// (NewFromProvider). Importing the package registers the "wgpu" backend.
//
// Build with the nogpu tag to leave the backend out.
package native
