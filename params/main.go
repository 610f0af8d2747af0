// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package params

import "fmt"

// Dimension limits accepted by Main.Clamp.
const (
	MaxExtent = 8192
	MaxSlices = 2048
)

// Main holds the dimensions of the generated field. Slices == 1 is a 2D texture.
type Main struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Slices int `json:"slices"`
}

// DefaultMain returns a 512x512 single-slice texture.
func DefaultMain() Main {
	return Main{Width: 512, Height: 512, Slices: 1}
}

// Validate reports whether all dimensions are positive.
func (m Main) Validate() error {
	if m.Width <= 0 || m.Height <= 0 || m.Slices <= 0 {
		return fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, m.Width, m.Height, m.Slices)
	}
	return nil
}

// Clamp returns m with every dimension forced into its editable range.
func (m Main) Clamp() Main {
	return Main{
		Width:  clampInt(m.Width, 1, MaxExtent),
		Height: clampInt(m.Height, 1, MaxExtent),
		Slices: clampInt(m.Slices, 1, MaxSlices),
	}
}

// Texels returns width*height*slices.
func (m Main) Texels() int {
	return m.Width * m.Height * m.Slices
}

// Is2D reports whether the field has a single slice.
func (m Main) Is2D() bool { return m.Slices == 1 }

func (m Main) String() string {
	return fmt.Sprintf("%dx%dx%d", m.Width, m.Height, m.Slices)
}
