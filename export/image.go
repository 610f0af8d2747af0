// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package export

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/x448/float16"

	"github.com/gogpu/strepitus/internal/noise"
	"github.com/gogpu/strepitus/params"
)

// Image is a host copy of the output in its export encoding. Texels are
// stored x-fastest, then y, then slice, PixelSize bytes each, little-endian.
type Image struct {
	Width, Height, Slices int
	Format                params.Format
	Spec                  params.OutputSpec
	Pix                   []byte
}

// Main returns the dimensions of the image.
func (m *Image) Main() params.Main {
	return params.Main{Width: m.Width, Height: m.Height, Slices: m.Slices}
}

// TexelOffset returns the byte offset of texel (x, y, z).
func (m *Image) TexelOffset(x, y, z int) int {
	return ((z*m.Height+y)*m.Width + x) * m.Spec.PixelSize
}

// Texel returns the bytes of texel (x, y, z).
func (m *Image) Texel(x, y, z int) []byte {
	o := m.TexelOffset(x, y, z)
	return m.Pix[o : o+m.Spec.PixelSize]
}

// Channel returns channel c of texel (x, y, z) as a float: unsigned types
// in [0, 1], signed types in [-1, 1], half floats as stored. Channels the
// spec does not carry read as 0, except alpha which reads as 1.
func (m *Image) Channel(x, y, z, c int) float64 {
	if c >= m.Spec.Channels {
		if c == 3 {
			return 1
		}
		return 0
	}
	t := m.Texel(x, y, z)
	switch m.Spec.Type {
	case params.PixelUint8:
		return float64(t[c]) / 255
	case params.PixelInt8:
		return float64(int8(t[c])) / 127
	case params.PixelUint16:
		return float64(binary.LittleEndian.Uint16(t[2*c:])) / 65535
	case params.PixelInt16:
		return float64(int16(binary.LittleEndian.Uint16(t[2*c:]))) / 32767 //nolint:gosec // bit pattern
	case params.PixelHalf:
		return float64(float16.Frombits(binary.LittleEndian.Uint16(t[2*c:])).Float32())
	case params.PixelUint2_10_10_10Rev:
		w := binary.LittleEndian.Uint32(t)
		if c == 3 {
			return float64(w>>30) / 3
		}
		return float64((w>>(10*c))&0x3ff) / 1023
	}
	return 0
}

// FromStorage pixel-packs the device storage words of the output buffer
// into an Image of format f. Rows are converted in parallel.
func FromStorage(f params.Format, m params.Main, words []uint32) (*Image, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	stride := f.GPUFormat().WordsPerTexel()
	if len(words) != m.Texels()*stride {
		return nil, fmt.Errorf("%w: %d words for %s %s", ErrSizeMismatch, len(words), m, f)
	}
	spec := f.Spec()
	img := &Image{
		Width: m.Width, Height: m.Height, Slices: m.Slices,
		Format: f, Spec: spec,
		Pix: make([]byte, m.Texels()*spec.PixelSize),
	}

	pack := packer(f.GPUFormat(), spec)
	parallel.For(m.Height*m.Slices, func(row, _ int) {
		for x := 0; x < m.Width; x++ {
			i := row*m.Width + x
			pack(img.Pix[i*spec.PixelSize:(i+1)*spec.PixelSize], words[i*stride:(i+1)*stride])
		}
	})
	return img, nil
}

type packFunc func(dst []byte, src []uint32)

func packer(gf params.GPUFormat, spec params.OutputSpec) packFunc {
	n := spec.Channels
	switch gf {
	case params.GPUFormatRGB10A2Unorm:
		return func(dst []byte, src []uint32) {
			binary.LittleEndian.PutUint32(dst, src[0])
		}
	case params.GPUFormatRGBA16Float:
		return func(dst []byte, src []uint32) {
			var v [4]float32
			v[0], v[1] = noise.Unpack2x16Float(src[0])
			v[2], v[3] = noise.Unpack2x16Float(src[1])
			halves := [4]uint16{uint16(src[0]), uint16(src[0] >> 16), uint16(src[1]), uint16(src[1] >> 16)} //nolint:gosec // halves
			for c := 0; c < n; c++ {
				var bits uint16
				switch spec.Type {
				case params.PixelUint16:
					bits = uint16(math.Round(clamp(float64(v[c]), 0, 1) * 65535))
				case params.PixelInt16:
					bits = uint16(int16(math.Round(clamp(float64(v[c]), -1, 1) * 32767))) //nolint:gosec // bit pattern
				default:
					bits = halves[c]
				}
				binary.LittleEndian.PutUint16(dst[2*c:], bits)
			}
		}
	default:
		return func(dst []byte, src []uint32) {
			for c := 0; c < n; c++ {
				q := byte(src[0] >> (8 * c))
				if spec.Type == params.PixelInt8 {
					q = byte(int8(math.Round(float64(q) * 127 / 255))) //nolint:gosec // q <= 255 maps into 0..127
				}
				dst[c] = q
			}
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
