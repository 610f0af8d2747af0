// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package kernel holds the host-side twins of the WGSL compute programs:
// the uniform block layouts shared with the shaders and Go kernels that
// execute one workgroup at a time on the CPU device.
package kernel
