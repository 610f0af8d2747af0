// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package noise

import "math"

// Vec4 is one texel of the float field.
type Vec4 [4]float32

// Add returns v + o.
func (v Vec4) Add(o Vec4) Vec4 {
	return Vec4{v[0] + o[0], v[1] + o[1], v[2] + o[2], v[3] + o[3]}
}

// Scale returns v * s.
func (v Vec4) Scale(s float32) Vec4 {
	return Vec4{v[0] * s, v[1] * s, v[2] * s, v[3] * s}
}

func floorf(x float32) float32 { return float32(math.Floor(float64(x))) }

func sqrtf(x float32) float32 { return float32(math.Sqrt(float64(x))) }

func absf(x float32) float32 { return float32(math.Abs(float64(x))) }

func powf(x, y float32) float32 { return float32(math.Pow(float64(x), float64(y))) }

func roundf(x float32) float32 { return float32(math.RoundToEven(float64(x))) }

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clampf(x, lo, hi float32) float32 {
	return minf(maxf(x, lo), hi)
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// fade is the quintic interpolant 6t^5 - 15t^4 + 10t^3.
func fade(t float32) float32 { return t * t * t * (t*(t*6-15) + 10) }

func isFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}
