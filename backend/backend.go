// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"

	"github.com/gogpu/strepitus/gpucore"
)

// Backend name constants.
const (
	// BackendCPU is the name of the headless CPU device.
	BackendCPU = "cpu"
	// BackendWGPU is the name of the Pure Go GPU device (gogpu/wgpu).
	BackendWGPU = "wgpu"
	// BackendAuto selects the best available backend.
	BackendAuto = "auto"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered
	// or no registered backend could be opened.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Options are passed to every factory. Backends ignore fields that do not
// apply to them.
type Options struct {
	// Workers is the CPU worker count, 0 for GOMAXPROCS.
	Workers int
}

// Factory opens a new device.
type Factory func(opts Options) (gpucore.Device, error)
