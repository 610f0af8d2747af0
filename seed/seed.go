// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package seed

import (
	"crypto/sha512"
	"encoding/binary"
)

// GridSeedCount is the number of seed words uploaded per layer.
// Octave o of a layer with per-octave seeding uses word (o*8) % GridSeedCount.
const GridSeedCount = 128

// masterSeed is perturbed by layer index to produce default base seeds.
var masterSeed = [16]uint64{
	0x3700813b4bb49dd5, 0xe7bd39c504c441f3, 0x9478595861f60921, 0x31428388a30f0671,
	0x5abc6e020e95e12d, 0x013c9c3b7034bb4e, 0xabf4a08ef7489eb6, 0xcca9d981193c34cd,
	0x5958152467a65e9e, 0xbfa8fdabb2d94392, 0x3579583acf226451, 0x1760f1e5809504c1,
	0xfeb0cfedb4c4ce53, 0x865dd13e044b334f, 0xf2ce6711cca83e98, 0xd91368e8854d93fa,
}

const hexDigits = "0123456789ABCDEF"

// FromString returns a generator seeded from the SHA-512 digest of s.
// The digest fills the first eight state words (little-endian); the rest
// are expanded from their XOR with SplitMix64.
func FromString(s string) *Xoroshiro1024 {
	sum := sha512.Sum512([]byte(s))
	var state [16]uint64
	var mix uint64
	for i := 0; i < 8; i++ {
		state[i] = binary.LittleEndian.Uint64(sum[i*8:])
		mix ^= state[i]
	}
	for i := 8; i < 16; i++ {
		state[i] = splitMix64(&mix)
	}
	return New(state)
}

// DeriveWords returns n signed 32-bit words drawn from the generator
// seeded by baseSeed. Equal inputs always produce equal outputs.
// n <= 0 yields an empty slice.
func DeriveWords(baseSeed string, n int) []int32 {
	if n <= 0 {
		return []int32{}
	}
	rng := FromString(baseSeed)
	words := make([]int32, n)
	for i := range words {
		words[i] = rng.Int32()
	}
	return words
}

// DeriveBytes returns DeriveWords encoded little-endian, ready for upload.
func DeriveBytes(baseSeed string, n int) []byte {
	words := DeriveWords(baseSeed, n)
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(w)) //nolint:gosec // bit pattern
	}
	return out
}

// DefaultBaseSeed returns the 8-digit hex seed given to a new layer at
// position index. The same index always gives the same seed.
//
// Every master word is XORed with a SplitMix64 stream started at
// masterSeed[0]+index, so neighbouring indices land on unrelated states.
func DefaultBaseSeed(index int) string {
	state := masterSeed
	mix := masterSeed[0] + uint64(index) //nolint:gosec // wrap-around is intended
	for i := range state {
		state[i] ^= splitMix64(&mix)
	}
	rng := New(state)
	var b [8]byte
	for i := range b {
		b[i] = hexDigits[rng.IntN(len(hexDigits))]
	}
	return string(b[:])
}
