// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package viewer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/gogpu/strepitus/export"
	"github.com/gogpu/strepitus/params"
)

// PanelColor fills the side panel area of composed previews.
var PanelColor = color.RGBA{R: 0x20, G: 0x20, B: 0x24, A: 0xff}

// Preview renders the viewport of u on the CPU. It samples img the way
// the blit does: nearest texel on x and y, a linear blend across the two
// nearest slices, and the sampler selected by u.Tiling. Row 0 of the
// result is the top of the viewport.
func Preview(img *export.Image, u BlitUniforms) *image.RGBA {
	vw, vh := u.Viewport.Width, u.Viewport.Height
	out := image.NewRGBA(image.Rect(0, 0, vw, vh))
	if img == nil || vw == 0 || vh == 0 {
		return out
	}
	border := u.Sampler().Border

	s0, s1, f := sliceBlend(float64(u.Slice), img.Slices)
	for row := 0; row < vh; row++ {
		py := float64(u.Viewport.Y+vh-1-row) + 0.5
		for col := 0; col < vw; col++ {
			px := float64(u.Viewport.X+col) + 0.5
			tx, ty := u.TexelAt(px, py)
			x, y := int(math.Floor(tx)), int(math.Floor(ty))
			if border {
				if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
					continue // transparent black
				}
			} else {
				x, y = wrap(x, img.Width), wrap(y, img.Height)
			}
			out.SetRGBA(col, row, shade(img, x, y, s0, s1, f, params.ColorMode(u.ColorMode)))
		}
	}
	return out
}

// sliceBlend returns the two slices a fractional slice position blends and
// the weight of the second one.
func sliceBlend(slice float64, slices int) (s0, s1 int, f float64) {
	if slices <= 1 || math.IsNaN(slice) {
		return 0, 0, 0
	}
	s := math.Max(0, math.Min(slice, float64(slices-1)))
	s0 = int(s)
	s1 = min(s0+1, slices-1)
	return s0, s1, s - float64(s0)
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func shade(img *export.Image, x, y, s0, s1 int, f float64, mode params.ColorMode) color.RGBA {
	ch := func(c int) float64 {
		a := img.Channel(x, y, s0, c)
		if f == 0 {
			return a
		}
		return a + (img.Channel(x, y, s1, c)-a)*f
	}
	switch mode {
	case params.ColorAlpha:
		g := unit(ch(3))
		return color.RGBA{R: g, G: g, B: g, A: 0xff}
	case params.ColorRGB:
		return color.RGBA{R: unit(ch(0)), G: unit(ch(1)), B: unit(ch(2)), A: 0xff}
	default:
		g := unit(ch(0))
		return color.RGBA{R: g, G: g, B: g, A: 0xff}
	}
}

func unit(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint8(math.Round(v * 255))
}

// Compose places a viewport rendering into a canvas the size of win, with
// the side panel filled by PanelColor.
func Compose(win Window, vp *image.RGBA, u BlitUniforms) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, max(0, win.Width), max(0, win.Height)))
	draw.Draw(canvas, image.Rect(0, 0, u.Viewport.X, win.Height), image.NewUniform(PanelColor), image.Point{}, draw.Src)
	r := image.Rect(u.Viewport.X, win.Height-u.Viewport.Y-u.Viewport.Height, u.Viewport.X+u.Viewport.Width, win.Height-u.Viewport.Y)
	draw.Draw(canvas, r, vp, image.Point{}, draw.Over)
	return canvas
}

// Thumbnail scales src so its longer edge is at most edge pixels. Smaller
// images are returned as is.
func Thumbnail(src image.Image, edge int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if edge <= 0 || (w <= edge && h <= edge) {
		return src
	}
	if w >= h {
		h = max(1, h*edge/w)
		w = edge
	} else {
		w = max(1, w*edge/h)
		h = edge
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
