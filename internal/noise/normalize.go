// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package noise

// NormalizeParams is the uniform block of the normalize programs.
type NormalizeParams struct {
	Width, Height, Slices uint32
	Normalize             uint32
	Flip                  uint32
	Dither                uint32
	MinVal, MaxVal        float32
	Levels                [4]float32
}

// Bounds returns the interval mapped to [0, 1]: the accumulated range when
// normalizing, the fixed bounds otherwise.
func (p *NormalizeParams) Bounds(minKey, maxKey uint32) (lo, hi float32) {
	if p.Normalize != 0 {
		return FromOrderedKey(minKey), FromOrderedKey(maxKey)
	}
	return p.MinVal, p.MaxVal
}

// Texel maps one float texel to quantized levels per channel. Channels
// with Levels == 0 are returned as floats in [0, 1].
func (p *NormalizeParams) Texel(v Vec4, lo, hi float32, x, y uint32) Vec4 {
	d := DitherThreshold(x, y, p.Dither != 0)
	var out Vec4
	for c := range out {
		n := Remap(v[c], lo, hi)
		if p.Flip != 0 {
			n = 1 - n
		}
		out[c] = Quantize(n, p.Levels[c], d)
	}
	return out
}

// Stored returns the value a half-float channel holds for level q:
// q/levels when quantized, q itself otherwise.
func Stored(q, levels float32) float32 {
	if levels <= 0 {
		return q
	}
	return q / levels
}
