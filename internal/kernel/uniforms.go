// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/strepitus/internal/noise"
)

// Uniform block sizes in bytes. Both blocks are 12 words.
const (
	LayerUniformSize     = 48
	NormalizeUniformSize = 48
)

// Data buffer layout, in words.
const (
	DataMinKey = iota
	DataMaxKey
	DataCounter
	DataFlags
	DataWords
)

// DataSize is the data buffer size in bytes.
const DataSize = DataWords * 4

// ErrShortUniform is returned when a uniform buffer is smaller than its block.
var ErrShortUniform = errors.New("kernel: uniform buffer too small")

// EncodeLayer serializes the layer uniform block.
func EncodeLayer(p *noise.LayerParams) []byte {
	w := []uint32{
		p.Width, p.Height, p.Slices,
		p.NoiseType, p.SubMode, p.Dimension,
		p.BaseFrequency, p.Octaves,
		math.Float32bits(p.Lacunarity), math.Float32bits(p.Persistence),
		p.PerOctaveSeed, p.Composite,
	}
	return wordsToBytes(w)
}

// DecodeLayer parses the layer uniform block from buffer words.
func DecodeLayer(w []uint32) (noise.LayerParams, error) {
	if len(w) < LayerUniformSize/4 {
		return noise.LayerParams{}, fmt.Errorf("layer uniforms: %w", ErrShortUniform)
	}
	return noise.LayerParams{
		Width: w[0], Height: w[1], Slices: w[2],
		NoiseType: w[3], SubMode: w[4], Dimension: w[5],
		BaseFrequency: w[6], Octaves: w[7],
		Lacunarity:    math.Float32frombits(w[8]),
		Persistence:   math.Float32frombits(w[9]),
		PerOctaveSeed: w[10], Composite: w[11],
	}, nil
}

// EncodeNormalize serializes the normalize uniform block.
func EncodeNormalize(p *noise.NormalizeParams) []byte {
	w := []uint32{
		p.Width, p.Height, p.Slices,
		p.Normalize, p.Flip, p.Dither,
		math.Float32bits(p.MinVal), math.Float32bits(p.MaxVal),
		math.Float32bits(p.Levels[0]), math.Float32bits(p.Levels[1]),
		math.Float32bits(p.Levels[2]), math.Float32bits(p.Levels[3]),
	}
	return wordsToBytes(w)
}

// DecodeNormalize parses the normalize uniform block from buffer words.
func DecodeNormalize(w []uint32) (noise.NormalizeParams, error) {
	if len(w) < NormalizeUniformSize/4 {
		return noise.NormalizeParams{}, fmt.Errorf("normalize uniforms: %w", ErrShortUniform)
	}
	p := noise.NormalizeParams{
		Width: w[0], Height: w[1], Slices: w[2],
		Normalize: w[3], Flip: w[4], Dither: w[5],
		MinVal: math.Float32frombits(w[6]),
		MaxVal: math.Float32frombits(w[7]),
	}
	for i := range p.Levels {
		p.Levels[i] = math.Float32frombits(w[8+i])
	}
	return p, nil
}

// EncodeSeeds serializes seed words for the seeds buffer.
func EncodeSeeds(seeds []int32) []byte {
	b := make([]byte, 4*len(seeds))
	for i, s := range seeds {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(s)) //nolint:gosec // bit pattern
	}
	return b
}

// DecodeRange returns the accumulated minimum and maximum and the number of
// texels that contributed, from the data buffer bytes.
func DecodeRange(b []byte) (lo, hi float32, texels uint32, err error) {
	if len(b) < DataSize {
		return 0, 0, 0, fmt.Errorf("data buffer: %w", ErrShortUniform)
	}
	lo = noise.FromOrderedKey(binary.LittleEndian.Uint32(b[DataMinKey*4:]))
	hi = noise.FromOrderedKey(binary.LittleEndian.Uint32(b[DataMaxKey*4:]))
	return lo, hi, binary.LittleEndian.Uint32(b[DataCounter*4:]), nil
}

func wordsToBytes(w []uint32) []byte {
	b := make([]byte, 4*len(w))
	for i, v := range w {
		binary.LittleEndian.PutUint32(b[4*i:], v)
	}
	return b
}

// BytesToWords reinterprets little-endian bytes as words. A trailing partial
// word is dropped.
func BytesToWords(b []byte) []uint32 {
	w := make([]uint32, len(b)/4)
	for i := range w {
		w[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	return w
}

// WordsToBytes serializes words as little-endian bytes.
func WordsToBytes(w []uint32) []byte { return wordsToBytes(w) }
