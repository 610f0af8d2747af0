// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package export

import "errors"

var (
	// ErrInvalidTarget is returned when the file format cannot hold the
	// output format or slice count. It wraps the params error with detail.
	ErrInvalidTarget = errors.New("export: invalid target")

	// ErrSizeMismatch is returned when storage words do not match the
	// dimensions and format of a readback.
	ErrSizeMismatch = errors.New("export: storage size mismatch")

	// ErrRunnerClosed is returned by Submit after Close.
	ErrRunnerClosed = errors.New("export: runner closed")
)
