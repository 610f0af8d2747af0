// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucore

import "errors"

// Device errors.
var (
	// ErrInvalidID is returned when a resource ID is unknown or destroyed.
	ErrInvalidID = errors.New("gpucore: invalid resource id")

	// ErrDeviceLost is returned after the device has been destroyed or lost.
	ErrDeviceLost = errors.New("gpucore: device lost")

	// ErrUnknownProgram is returned when a device has no kernel for a program name.
	ErrUnknownProgram = errors.New("gpucore: unknown program")

	// ErrShaderCompile is returned when a program source fails to compile.
	ErrShaderCompile = errors.New("gpucore: shader compile failed")

	// ErrOutOfMemory is returned when a buffer cannot be allocated.
	ErrOutOfMemory = errors.New("gpucore: out of memory")

	// ErrTimeout is returned when a submission does not complete in time.
	ErrTimeout = errors.New("gpucore: submission timed out")
)
