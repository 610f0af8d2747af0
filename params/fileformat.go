// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package params

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// FileFormat is an export container.
type FileFormat uint8

const (
	FilePNG FileFormat = iota
	FileBinary
)

type fileFormatInfo struct {
	name      string
	extension string
	only2D    bool
	channels  []int
	types     []PixelType
}

var fileFormats = [...]fileFormatInfo{
	FilePNG: {
		name: "png", extension: "png", only2D: true,
		channels: []int{1, 3, 4},
		types:    []PixelType{PixelUint8, PixelUint16, PixelInt16},
	},
	FileBinary: {
		name: "binary", extension: "bin",
		channels: []int{1, 2, 3, 4},
		types: []PixelType{PixelUint8, PixelInt8, PixelUint16, PixelInt16,
			PixelHalf, PixelUint2_10_10_10Rev},
	},
}

func (f FileFormat) info() fileFormatInfo {
	if int(f) < len(fileFormats) {
		return fileFormats[f]
	}
	return fileFormatInfo{name: fmt.Sprintf("file format(%d)", f)}
}

func (f FileFormat) String() string { return f.info().name }

// Extension returns the file extension without the leading dot.
func (f FileFormat) Extension() string { return f.info().extension }

// Only2D reports whether the container holds a single slice only.
func (f FileFormat) Only2D() bool { return f.info().only2D }

// Check reports whether a texture with the given spec and slice count can
// be written in this container.
func (f FileFormat) Check(spec OutputSpec, sliceCount int) error {
	info := f.info()
	if info.only2D && sliceCount > 1 {
		return fmt.Errorf("%w: %s with %d slices", ErrMultiSlicePNG, info.name, sliceCount)
	}
	if !slices.Contains(info.channels, spec.Channels) {
		return fmt.Errorf("%w: %s cannot store %d channels", ErrUnsupportedChannels, info.name, spec.Channels)
	}
	if !slices.Contains(info.types, spec.Type) {
		return fmt.Errorf("%w: %s cannot store %s", ErrUnsupportedPixelType, info.name, spec.Type)
	}
	return nil
}

// Supports is Check without the error detail.
func (f FileFormat) Supports(spec OutputSpec, sliceCount int) bool {
	return f.Check(spec, sliceCount) == nil
}

// FileFormatFromPath picks the container by file extension.
func FileFormatFromPath(path string) (FileFormat, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for i, info := range fileFormats {
		if info.extension == ext {
			return FileFormat(i), nil
		}
	}
	return 0, fmt.Errorf("%w: no file format for extension %q", ErrUnknownFormat, ext)
}

// ParseFileFormat parses "png" or "binary"/"bin".
func ParseFileFormat(s string) (FileFormat, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, info := range fileFormats {
		if name == info.name || name == info.extension {
			return FileFormat(i), nil
		}
	}
	return 0, fmt.Errorf("%w: file format %q", ErrUnknownFormat, s)
}
