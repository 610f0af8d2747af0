// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package seed

import "math/bits"

// Xoroshiro1024 is the xoroshiro1024++ generator: 1024 bits of state,
// period 2^1024-1. The zero value is not usable; construct with New.
//
// Xoroshiro1024 is not safe for concurrent use.
type Xoroshiro1024 struct {
	s [16]uint64
	p int
}

// New returns a generator with the given state. An all-zero state is
// replaced by a SplitMix64 expansion of zero.
func New(state [16]uint64) *Xoroshiro1024 {
	var zero [16]uint64
	if state == zero {
		state = expand(0)
	}
	return &Xoroshiro1024{s: state}
}

// Next returns the next 64 random bits.
func (x *Xoroshiro1024) Next() uint64 {
	q := x.p
	x.p = (x.p + 1) & 15
	s0 := x.s[x.p]
	s15 := x.s[q]
	result := bits.RotateLeft64(s0+s15, 23) + s15

	s15 ^= s0
	x.s[q] = bits.RotateLeft64(s0, 25) ^ s15 ^ (s15 << 27)
	x.s[x.p] = bits.RotateLeft64(s15, 36)
	return result
}

// Int32 returns the upper 32 bits of Next as a signed integer.
func (x *Xoroshiro1024) Int32() int32 {
	return int32(x.Next() >> 32) //nolint:gosec // intentional reinterpretation
}

// IntN returns a value in [0, n). It panics if n <= 0.
func (x *Xoroshiro1024) IntN(n int) int {
	if n <= 0 {
		panic("seed: IntN argument must be positive")
	}
	hi, _ := bits.Mul64(x.Next(), uint64(n))
	return int(hi) //nolint:gosec // hi < n
}

// jumpPoly is the jump polynomial for 2^512 calls to Next.
var jumpPoly = [16]uint64{
	0x931197d8e3177f17, 0xb59422e0b9138c5f, 0xf06a6afb49d668bb, 0xacb8a6412c8a1401,
	0x12304ec85f0b3468, 0xb7dfe7079209891e, 0x405b7eec77d9eb14, 0x34ead68280c44e4a,
	0xe0e4ba3e0ac9e366, 0x8f46eda8348905b7, 0x328bf4dbad90d6ff, 0xc8fd6fb31c9effc3,
	0xe899d452d4b67652, 0x45f387286ade3205, 0x03864f454a8920bd, 0xa68fa28725b1b384,
}

// Jump advances the generator by 2^512 steps. It can be used to derive
// non-overlapping streams from one seed.
func (x *Xoroshiro1024) Jump() {
	var t [16]uint64
	for _, w := range jumpPoly {
		for b := 0; b < 64; b++ {
			if w&(1<<uint(b)) != 0 {
				for j := range t {
					t[j] ^= x.s[(j+x.p)&15]
				}
			}
			x.Next()
		}
	}
	for j := range t {
		x.s[(j+x.p)&15] = t[j]
	}
}

// splitMix64 is the standard state expander for xoroshiro-family generators.
func splitMix64(state *uint64) uint64 {
	*state += 0x9e3779b97f4a7c15
	z := *state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func expand(v uint64) [16]uint64 {
	var s [16]uint64
	for i := range s {
		s[i] = splitMix64(&v)
	}
	return s
}
