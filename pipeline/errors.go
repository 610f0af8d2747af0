// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import "errors"

var (
	// ErrClosed is returned by every method after Close.
	ErrClosed = errors.New("pipeline: closed")

	// ErrNotGenerated is returned by Process, Range and Readback before the
	// passes they depend on have run.
	ErrNotGenerated = errors.New("pipeline: nothing generated")
)
