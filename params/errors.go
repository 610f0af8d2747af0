// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package params

import "errors"

var (
	// ErrInvalidDimensions is returned for non-positive width, height or slices.
	ErrInvalidDimensions = errors.New("params: invalid dimensions")

	// ErrUnknownFormat is returned when a format name cannot be parsed.
	ErrUnknownFormat = errors.New("params: unknown format")

	// ErrUnknownEnum is returned when an enum value cannot be parsed.
	ErrUnknownEnum = errors.New("params: unknown enum value")

	// ErrUnsupportedChannels is returned when a file format cannot hold
	// the channel count of an output spec.
	ErrUnsupportedChannels = errors.New("params: unsupported channel count")

	// ErrUnsupportedPixelType is returned when a file format cannot hold
	// the pixel type of an output spec.
	ErrUnsupportedPixelType = errors.New("params: unsupported pixel type")

	// ErrMultiSlicePNG is returned when a PNG export is requested for a
	// texture with more than one slice.
	ErrMultiSlicePNG = errors.New("params: PNG export requires slices == 1")
)
