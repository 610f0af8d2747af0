// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package noise

import (
	"math"

	"github.com/x448/float16"
)

// bayer8 is the 8x8 ordered-dither index matrix.
var bayer8 = [8][8]float32{
	{0, 32, 8, 40, 2, 34, 10, 42},
	{48, 16, 56, 24, 50, 18, 58, 26},
	{12, 44, 4, 36, 14, 46, 6, 38},
	{60, 28, 52, 20, 62, 30, 54, 22},
	{3, 35, 11, 43, 1, 33, 9, 41},
	{51, 19, 59, 27, 49, 17, 57, 25},
	{15, 47, 7, 39, 13, 45, 5, 37},
	{63, 31, 55, 23, 61, 29, 53, 21},
}

// DitherThreshold returns the rounding offset for texel (x, y), in (0, 1).
// Without dithering the offset is 0.5, which is plain rounding.
func DitherThreshold(x, y uint32, dither bool) float32 {
	if !dither {
		return 0.5
	}
	return (bayer8[y&7][x&7] + 0.5) / 64
}

// Quantize maps x in [0, 1] to an integer level in [0, levels] using the
// rounding offset d. levels <= 0 returns x unchanged.
func Quantize(x, levels, d float32) float32 {
	if levels <= 0 {
		return x
	}
	return clampf(floorf(x*levels+d), 0, levels)
}

// Remap maps v from [lo, hi] to [0, 1] with clamping. A zero-width or
// non-finite interval maps everything to 0.
func Remap(v, lo, hi float32) float32 {
	d := hi - lo
	if d == 0 || !isFinite(d) || !isFinite(v) {
		return 0
	}
	return clampf((v-lo)/d, 0, 1)
}

// OrderedKey maps a float to a uint32 whose unsigned order matches the
// float order, so min/max can be tracked with integer atomics.
func OrderedKey(f float32) uint32 {
	b := math.Float32bits(f)
	if b&0x80000000 != 0 {
		return ^b
	}
	return b | 0x80000000
}

// FromOrderedKey inverts OrderedKey.
func FromOrderedKey(k uint32) float32 {
	if k&0x80000000 != 0 {
		return math.Float32frombits(k &^ 0x80000000)
	}
	return math.Float32frombits(^k)
}

// Initial keys of the range accumulator.
var (
	EmptyMinKey = OrderedKey(float32(math.Inf(1)))
	EmptyMaxKey = OrderedKey(float32(math.Inf(-1)))
)

// PackRGBA8 packs four 8-bit levels, R in the low byte.
func PackRGBA8(q Vec4) uint32 {
	return uint32(q[0]) | uint32(q[1])<<8 | uint32(q[2])<<16 | uint32(q[3])<<24
}

// PackRGB10A2 packs three 10-bit levels and one 2-bit level, R in the low bits.
func PackRGB10A2(q Vec4) uint32 {
	return uint32(q[0]) | uint32(q[1])<<10 | uint32(q[2])<<20 | uint32(q[3])<<30
}

// Pack2x16Float packs two values as IEEE half floats, a in the low half.
func Pack2x16Float(a, b float32) uint32 {
	return uint32(float16.Fromfloat32(a).Bits()) | uint32(float16.Fromfloat32(b).Bits())<<16
}

// Unpack2x16Float inverts Pack2x16Float.
func Unpack2x16Float(w uint32) (a, b float32) {
	return float16.Frombits(uint16(w)).Float32(), float16.Frombits(uint16(w >> 16)).Float32() //nolint:gosec // masked halves
}
