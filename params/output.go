// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package params

import (
	"fmt"
	"math"
	"strings"
)

// GPUFormat is the storage encoding of the output image on the device.
type GPUFormat uint8

const (
	GPUFormatRGBA8Unorm GPUFormat = iota
	GPUFormatRGB10A2Unorm
	GPUFormatRGBA16Float
)

var gpuFormatNames = []string{"rgba8", "rgb10_a2", "rgba16f"}

func (f GPUFormat) String() string { return enumName("gpu format", gpuFormatNames, f) }

// WordsPerTexel returns how many 32-bit words one packed texel occupies.
func (f GPUFormat) WordsPerTexel() int {
	if f == GPUFormatRGBA16Float {
		return 2
	}
	return 1
}

// BytesPerTexel returns the packed storage size of one texel.
func (f GPUFormat) BytesPerTexel() int { return 4 * f.WordsPerTexel() }

// PixelType is the host-side numeric type of one exported channel.
type PixelType uint8

const (
	PixelUint8 PixelType = iota
	PixelInt8
	PixelUint16
	PixelInt16
	PixelHalf
	// PixelUint2_10_10_10Rev packs R, G, B in 10 bits each and A in 2 bits,
	// R in the least significant bits.
	PixelUint2_10_10_10Rev
)

var pixelTypeNames = []string{"u8", "s8", "u16", "s16", "f16", "u2_10_10_10_rev"}

func (t PixelType) String() string { return enumName("pixel type", pixelTypeNames, t) }

// Bits returns the per-channel bit depth, or 0 for floating point.
// For the packed 10/10/10/2 type this is the color channel depth.
func (t PixelType) Bits() int {
	switch t {
	case PixelUint8, PixelInt8:
		return 8
	case PixelUint16, PixelInt16:
		return 16
	case PixelUint2_10_10_10Rev:
		return 10
	}
	return 0
}

// OutputSpec is the host-visible encoding used when reading a texture back.
type OutputSpec struct {
	Channels  int
	Type      PixelType
	PixelSize int
}

func (s OutputSpec) String() string {
	return fmt.Sprintf("%dx%s (%dB)", s.Channels, s.Type, s.PixelSize)
}

// Format is one of the sixteen selectable output formats.
type Format uint8

const (
	R8Unorm Format = iota
	R8G8Unorm
	R8G8B8A8Unorm
	R10G10B10A2Unorm
	R8Snorm
	R8G8Snorm
	R8G8B8A8Snorm
	R16Unorm
	R16G16Unorm
	R16G16B16A16Unorm
	R16Snorm
	R16G16Snorm
	R16G16B16A16Snorm
	R16Float
	R16G16Float
	R16G16B16A16Float
)

type formatInfo struct {
	name string
	gpu  GPUFormat
	spec OutputSpec
}

var formatTable = [...]formatInfo{
	R8Unorm:           {"r8_unorm", GPUFormatRGBA8Unorm, OutputSpec{1, PixelUint8, 1}},
	R8G8Unorm:         {"r8g8_unorm", GPUFormatRGBA8Unorm, OutputSpec{2, PixelUint8, 2}},
	R8G8B8A8Unorm:     {"r8g8b8a8_unorm", GPUFormatRGBA8Unorm, OutputSpec{4, PixelUint8, 4}},
	R10G10B10A2Unorm:  {"r10g10b10a2_unorm", GPUFormatRGB10A2Unorm, OutputSpec{4, PixelUint2_10_10_10Rev, 4}},
	R8Snorm:           {"r8_snorm", GPUFormatRGBA8Unorm, OutputSpec{1, PixelInt8, 1}},
	R8G8Snorm:         {"r8g8_snorm", GPUFormatRGBA8Unorm, OutputSpec{2, PixelInt8, 2}},
	R8G8B8A8Snorm:     {"r8g8b8a8_snorm", GPUFormatRGBA8Unorm, OutputSpec{4, PixelInt8, 4}},
	R16Unorm:          {"r16_unorm", GPUFormatRGBA16Float, OutputSpec{1, PixelUint16, 2}},
	R16G16Unorm:       {"r16g16_unorm", GPUFormatRGBA16Float, OutputSpec{2, PixelUint16, 4}},
	R16G16B16A16Unorm: {"r16g16b16a16_unorm", GPUFormatRGBA16Float, OutputSpec{4, PixelUint16, 8}},
	R16Snorm:          {"r16_snorm", GPUFormatRGBA16Float, OutputSpec{1, PixelInt16, 2}},
	R16G16Snorm:       {"r16g16_snorm", GPUFormatRGBA16Float, OutputSpec{2, PixelInt16, 4}},
	R16G16B16A16Snorm: {"r16g16b16a16_snorm", GPUFormatRGBA16Float, OutputSpec{4, PixelInt16, 8}},
	R16Float:          {"r16_f", GPUFormatRGBA16Float, OutputSpec{1, PixelHalf, 2}},
	R16G16Float:       {"r16g16_f", GPUFormatRGBA16Float, OutputSpec{2, PixelHalf, 4}},
	R16G16B16A16Float: {"r16g16b16a16_f", GPUFormatRGBA16Float, OutputSpec{4, PixelHalf, 8}},
}

// Formats returns all output formats in declaration order.
func Formats() []Format {
	out := make([]Format, len(formatTable))
	for i := range formatTable {
		out[i] = Format(i)
	}
	return out
}

func (f Format) valid() bool { return int(f) < len(formatTable) }

func (f Format) String() string {
	if !f.valid() {
		return fmt.Sprintf("format(%d)", f)
	}
	return strings.ToUpper(formatTable[f].name)
}

// GPUFormat returns the device storage format backing f.
func (f Format) GPUFormat() GPUFormat {
	if !f.valid() {
		return GPUFormatRGBA8Unorm
	}
	return formatTable[f].gpu
}

// Spec returns the readback encoding of f.
func (f Format) Spec() OutputSpec {
	if !f.valid() {
		return OutputSpec{}
	}
	return formatTable[f].spec
}

// QuantizationLevels returns the per-channel maximum integer value the
// normalize pass quantizes to, or 0 where values are stored unquantized.
func (f Format) QuantizationLevels() [4]float32 {
	switch f.GPUFormat() {
	case GPUFormatRGBA8Unorm:
		return [4]float32{255, 255, 255, 255}
	case GPUFormatRGB10A2Unorm:
		return [4]float32{1023, 1023, 1023, 3}
	}
	switch f.Spec().Type {
	case PixelUint16:
		return [4]float32{65535, 65535, 65535, 65535}
	case PixelInt16:
		return [4]float32{32767, 32767, 32767, 32767}
	}
	return [4]float32{}
}

func (f Format) MarshalText() ([]byte, error) {
	if !f.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, f)
	}
	return []byte(formatTable[f].name), nil
}

func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ParseFormat parses a format name such as "r16g16b16a16_f" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, info := range formatTable {
		if info.name == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Output controls how the float field is mapped into the output format.
type Output struct {
	Format    Format  `json:"format"`
	Normalize bool    `json:"normalize"`
	MinVal    float64 `json:"min_val"`
	MaxVal    float64 `json:"max_val"`
	Flip      bool    `json:"flip"`
	Dither    bool    `json:"dither"`
}

// DefaultOutput returns normalized, dithered RGBA8 output.
func DefaultOutput() Output {
	return Output{
		Format:    R8G8B8A8Unorm,
		Normalize: true,
		MinVal:    0,
		MaxVal:    1,
		Dither:    true,
	}
}

// Clamp forces fixed bounds into [-1, 1] and an unknown format to the default.
func (o Output) Clamp() Output {
	if !o.Format.valid() {
		o.Format = DefaultOutput().Format
	}
	if math.IsNaN(o.MinVal) {
		o.MinVal = 0
	}
	if math.IsNaN(o.MaxVal) {
		o.MaxVal = 1
	}
	o.MinVal = clampFloat(o.MinVal, -1, 1)
	o.MaxVal = clampFloat(o.MaxVal, -1, 1)
	return o
}
