// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package noise

// Hash32 mixes a 32-bit input into a well-distributed 32-bit output
// (murmur-style finalizer).
func Hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// Hash3 returns a stable hash of integer lattice coordinates and a seed.
// Each axis is folded in separately so axes stay decorrelated.
func Hash3(seed uint32, x, y, z int32) uint32 {
	h := Hash32(seed ^ uint32(x)*0x9e3779b1) //nolint:gosec // bit pattern
	h = Hash32(h ^ uint32(y)*0x85ebca6b)     //nolint:gosec // bit pattern
	return Hash32(h ^ uint32(z)*0xc2b2ae35)  //nolint:gosec // bit pattern
}

// Unit maps a hash to [0, 1) using its top 24 bits.
func Unit(h uint32) float32 {
	return float32(h>>8) * (1.0 / 16777216.0)
}

// Signed maps a hash to [-1, 1).
func Signed(h uint32) float32 {
	return Unit(h)*2 - 1
}

// Wrap reduces a lattice coordinate modulo period into [0, period).
// A non-positive period disables wrapping.
func Wrap(i, period int32) int32 {
	if period <= 0 {
		return i
	}
	m := i % period
	if m < 0 {
		m += period
	}
	return m
}
