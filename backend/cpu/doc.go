// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package cpu implements a headless gpucore.Device that runs every compute
// program as a Go kernel.
//
// Programs are matched to kernels by name; the WGSL source is only checked
// for shape (a compute entry point and balanced braces). Each dispatch runs
// its workgroups on a work-stealing pool and returns when all of them have
// finished, so barriers hold by construction. Commands are still recorded
// in an execution log that tests use to check ordering.
//
// Importing the package registers the "cpu" backend.
package cpu
