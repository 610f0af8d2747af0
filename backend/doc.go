// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package backend provides the registry of compute devices.
//
// Device packages register a factory from an init() function, so importing
// a backend package makes it available:
//
//	import (
//		_ "github.com/gogpu/strepitus/backend/cpu"
//		_ "github.com/gogpu/strepitus/backend/native"
//	)
//
// # Backend Selection
//
// Use OpenDefault to get the best device that opens successfully, or Open
// to request a specific backend by name:
//
//	dev, err := backend.OpenDefault(backend.Options{})
//
//	dev, err := backend.Open("cpu", backend.Options{Workers: 4})
//
// # Available Backends
//
// - "wgpu": gogpu/wgpu HAL with naga-compiled WGSL (build tag !nogpu)
// - "cpu": Go kernels over a worker pool (always available)
package backend
