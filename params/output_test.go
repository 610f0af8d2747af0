// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package params

import (
	"errors"
	"testing"
)

// =============================================================================
// Format table
// =============================================================================

func TestFormatTable(t *testing.T) {
	tests := []struct {
		format Format
		gpu    GPUFormat
		spec   OutputSpec
	}{
		{R8Unorm, GPUFormatRGBA8Unorm, OutputSpec{1, PixelUint8, 1}},
		{R8G8Unorm, GPUFormatRGBA8Unorm, OutputSpec{2, PixelUint8, 2}},
		{R8G8B8A8Unorm, GPUFormatRGBA8Unorm, OutputSpec{4, PixelUint8, 4}},
		{R10G10B10A2Unorm, GPUFormatRGB10A2Unorm, OutputSpec{4, PixelUint2_10_10_10Rev, 4}},
		{R8Snorm, GPUFormatRGBA8Unorm, OutputSpec{1, PixelInt8, 1}},
		{R8G8Snorm, GPUFormatRGBA8Unorm, OutputSpec{2, PixelInt8, 2}},
		{R8G8B8A8Snorm, GPUFormatRGBA8Unorm, OutputSpec{4, PixelInt8, 4}},
		{R16Unorm, GPUFormatRGBA16Float, OutputSpec{1, PixelUint16, 2}},
		{R16G16Unorm, GPUFormatRGBA16Float, OutputSpec{2, PixelUint16, 4}},
		{R16G16B16A16Unorm, GPUFormatRGBA16Float, OutputSpec{4, PixelUint16, 8}},
		{R16Snorm, GPUFormatRGBA16Float, OutputSpec{1, PixelInt16, 2}},
		{R16G16Snorm, GPUFormatRGBA16Float, OutputSpec{2, PixelInt16, 4}},
		{R16G16B16A16Snorm, GPUFormatRGBA16Float, OutputSpec{4, PixelInt16, 8}},
		{R16Float, GPUFormatRGBA16Float, OutputSpec{1, PixelHalf, 2}},
		{R16G16Float, GPUFormatRGBA16Float, OutputSpec{2, PixelHalf, 4}},
		{R16G16B16A16Float, GPUFormatRGBA16Float, OutputSpec{4, PixelHalf, 8}},
	}
	if len(tests) != len(Formats()) {
		t.Fatalf("table covers %d formats, Formats() has %d", len(tests), len(Formats()))
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.GPUFormat(); got != tt.gpu {
				t.Errorf("GPUFormat() = %v, want %v", got, tt.gpu)
			}
			if got := tt.format.Spec(); got != tt.spec {
				t.Errorf("Spec() = %v, want %v", got, tt.spec)
			}
			text, err := tt.format.MarshalText()
			if err != nil {
				t.Fatalf("MarshalText: %v", err)
			}
			var back Format
			if err := back.UnmarshalText(text); err != nil || back != tt.format {
				t.Errorf("UnmarshalText(%s) = %v, %v", text, back, err)
			}
		})
	}
}

func TestParseFormat_Unknown(t *testing.T) {
	if _, err := ParseFormat("r32_f"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(r32_f) error = %v, want ErrUnknownFormat", err)
	}
	if f, err := ParseFormat("R16G16B16A16_F"); err != nil || f != R16G16B16A16Float {
		t.Errorf("ParseFormat is case-insensitive: got %v, %v", f, err)
	}
}

func TestQuantizationLevels(t *testing.T) {
	tests := []struct {
		format Format
		want   [4]float32
	}{
		{R8Unorm, [4]float32{255, 255, 255, 255}},
		{R8G8B8A8Snorm, [4]float32{255, 255, 255, 255}},
		{R10G10B10A2Unorm, [4]float32{1023, 1023, 1023, 3}},
		{R16Unorm, [4]float32{65535, 65535, 65535, 65535}},
		{R16G16Snorm, [4]float32{32767, 32767, 32767, 32767}},
		{R16G16B16A16Float, [4]float32{}},
	}
	for _, tt := range tests {
		if got := tt.format.QuantizationLevels(); got != tt.want {
			t.Errorf("%v.QuantizationLevels() = %v, want %v", tt.format, got, tt.want)
		}
	}
}

func TestGPUFormatStride(t *testing.T) {
	if GPUFormatRGBA8Unorm.BytesPerTexel() != 4 || GPUFormatRGB10A2Unorm.BytesPerTexel() != 4 {
		t.Error("32-bit packed formats should use 4 bytes per texel")
	}
	if GPUFormatRGBA16Float.BytesPerTexel() != 8 {
		t.Error("rgba16f should use 8 bytes per texel")
	}
}

// =============================================================================
// File formats
// =============================================================================

func TestFileFormatCheck(t *testing.T) {
	tests := []struct {
		name    string
		file    FileFormat
		format  Format
		slices  int
		wantErr error
	}{
		{"png rgba8", FilePNG, R8G8B8A8Unorm, 1, nil},
		{"png r16", FilePNG, R16Unorm, 1, nil},
		{"png r16 snorm", FilePNG, R16Snorm, 1, nil},
		{"png two channels", FilePNG, R8G8Unorm, 1, ErrUnsupportedChannels},
		{"png snorm8", FilePNG, R8Snorm, 1, ErrUnsupportedPixelType},
		{"png half", FilePNG, R16Float, 1, ErrUnsupportedPixelType},
		{"png packed", FilePNG, R10G10B10A2Unorm, 1, ErrUnsupportedPixelType},
		{"png multi-slice", FilePNG, R16G16B16A16Float, 2, ErrMultiSlicePNG},
		{"png multi-slice rgba8", FilePNG, R8G8B8A8Unorm, 4, ErrMultiSlicePNG},
		{"binary half multi-slice", FileBinary, R16G16B16A16Float, 2, nil},
		{"binary two channels", FileBinary, R8G8Unorm, 1, nil},
		{"binary packed", FileBinary, R10G10B10A2Unorm, 8, nil},
		{"binary snorm", FileBinary, R8G8B8A8Snorm, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.file.Check(tt.format.Spec(), tt.slices)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Check() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Check() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFileFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want FileFormat
		ok   bool
	}{
		{"out/noise.png", FilePNG, true},
		{"out/NOISE.PNG", FilePNG, true},
		{"volume.bin", FileBinary, true},
		{"volume.raw", 0, false},
		{"noext", 0, false},
	}
	for _, tt := range tests {
		got, err := FileFormatFromPath(tt.path)
		if tt.ok != (err == nil) {
			t.Errorf("FileFormatFromPath(%q) err = %v, want ok=%v", tt.path, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("FileFormatFromPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestOutputClamp(t *testing.T) {
	o := Output{Format: Format(200), MinVal: -3, MaxVal: 7}.Clamp()
	if o.Format != R8G8B8A8Unorm {
		t.Errorf("unknown format should reset to default, got %v", o.Format)
	}
	if o.MinVal != -1 || o.MaxVal != 1 {
		t.Errorf("bounds = [%v, %v], want [-1, 1]", o.MinVal, o.MaxVal)
	}
}
