// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package viewer

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/strepitus/params"
)

// Window is the size of the host window and the width of the side panel
// covering its left edge.
type Window struct {
	Width, Height int
	PanelWidth    int
}

// Frame returns the preview area: the window minus the panel.
func (w Window) Frame() (width, height int) {
	return max(0, w.Width-w.PanelWidth), max(0, w.Height)
}

// Viewport is a rectangle in window pixels, origin bottom-left.
type Viewport struct {
	X, Y, Width, Height int
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", v.Width, v.Height, v.X, v.Y)
}

// Extent is the size of the displayed texture.
type Extent struct {
	Width, Height, Slices int
}

// ExtentOf returns the extent of m.
func ExtentOf(m params.Main) Extent {
	return Extent{Width: m.Width, Height: m.Height, Slices: m.Slices}
}

// BlitUniforms is the parameter block of the full-screen blit.
type BlitUniforms struct {
	TexSize   [3]float32
	Slice     float32
	Zoom      float32 // texels per screen pixel, 2^-zoom
	ColorMode int32
	Tiling    bool
	OffsetX   float32
	OffsetY   float32
	Viewport  Viewport
}

// Uniforms computes the blit parameters for showing a texture of size tex
// in win. At zoom 0 and center (0, 0) the texture is centered in the frame
// at one texel per pixel.
func Uniforms(p params.Viewer, win Window, tex Extent) BlitUniforms {
	fw, fh := win.Frame()
	ox := float64(fw)/2 - float64(tex.Width)/2
	ox += float64(win.Width - fw)
	ox -= p.CenterX
	oy := float64(fh)/2 - float64(tex.Height)/2
	oy += p.CenterY

	return BlitUniforms{
		TexSize:   [3]float32{float32(tex.Width), float32(tex.Height), float32(tex.Slices)},
		Slice:     float32(p.Slice),
		Zoom:      float32(math.Exp2(-p.Zoom)),
		ColorMode: int32(p.ColorMode),
		Tiling:    p.Tiling,
		OffsetX:   float32(ox),
		OffsetY:   float32(oy),
		Viewport:  Viewport{X: win.Width - fw, Y: 0, Width: fw, Height: fh},
	}
}

// TexelAt maps a window pixel center to a texture coordinate in texels.
// Zoom scales about the center of the viewport.
func (u BlitUniforms) TexelAt(px, py float64) (tx, ty float64) {
	cx := float64(u.Viewport.X) + float64(u.Viewport.Width)/2
	cy := float64(u.Viewport.Y) + float64(u.Viewport.Height)/2
	z := float64(u.Zoom)
	tx = (px-cx)*z + cx - float64(u.OffsetX)
	ty = (py-cy)*z + cy - float64(u.OffsetY)
	return tx, ty
}

// Sampler describes how the blit reads the texture.
//
// WebGPU has no clamp-to-border address mode, so Border is applied by the
// blit itself: coordinates outside [0, 1) on u or v read transparent black.
type Sampler struct {
	Label        string
	AddressModeU gputypes.AddressMode
	AddressModeV gputypes.AddressMode
	AddressModeW gputypes.AddressMode
	MagFilter    gputypes.FilterMode
	MinFilter    gputypes.FilterMode
	Border       bool
}

// The two samplers of the blit. The slice axis always clamps and filters
// linearly so fractional slices blend neighbours.
var (
	RepeatSampler = Sampler{
		Label:        "viewer_repeat",
		AddressModeU: gputypes.AddressModeRepeat,
		AddressModeV: gputypes.AddressModeRepeat,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeLinear,
	}
	BorderSampler = Sampler{
		Label:        "viewer_border",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeLinear,
		Border:       true,
	}
)

// Sampler returns the sampler selected by Tiling.
func (u BlitUniforms) Sampler() Sampler {
	if u.Tiling {
		return RepeatSampler
	}
	return BorderSampler
}
