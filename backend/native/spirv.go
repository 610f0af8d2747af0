// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/strepitus/gpucore"
)

// compileSPIRV compiles WGSL to SPIR-V words.
func compileSPIRV(src gpucore.ProgramSource) ([]uint32, error) {
	out, err := naga.Compile(src.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", gpucore.ErrShaderCompile, src.Name, err)
	}
	words, err := spirvWords(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", gpucore.ErrShaderCompile, src.Name, err)
	}
	return words, nil
}

// spirvCache memoizes compiles by source text. The reload goroutine
// validates a changed source and the submission goroutine then creates a
// program from the same text; both share one compile. Failed compiles are
// not cached.
type spirvCache struct {
	words    *lru.Cache[string, []uint32]
	inflight singleflight.Group
	compiles atomic.Int64
}

func newSPIRVCache(size int) *spirvCache {
	words, err := lru.New[string, []uint32](size)
	if err != nil {
		panic(fmt.Sprintf("native: compile cache: %v", err))
	}
	return &spirvCache{words: words}
}

func (c *spirvCache) compile(src gpucore.ProgramSource) ([]uint32, error) {
	if words, ok := c.words.Get(src.Source); ok {
		return words, nil
	}
	v, err, _ := c.inflight.Do(src.Source, func() (any, error) {
		c.compiles.Add(1)
		words, err := compileSPIRV(src)
		if err != nil {
			return nil, err
		}
		c.words.Add(src.Source, words)
		return words, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]uint32), nil
}

// spirvWords converts a little-endian SPIR-V blob to words.
func spirvWords(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("spirv: invalid length %d", len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words, nil
}

// ValidateSource compiles src without creating any GPU object.
// It is safe to call from any goroutine.
func (d *Device) ValidateSource(src gpucore.ProgramSource) error {
	if len(src.Layout) == 0 {
		return fmt.Errorf("%w: %s: empty binding layout", gpucore.ErrShaderCompile, src.Name)
	}
	_, err := d.spirv.compile(src)
	return err
}

// layoutEntries maps a binding list to bind group layout entries.
func layoutEntries(layout []gpucore.BindingType) ([]gputypes.BindGroupLayoutEntry, error) {
	entries := make([]gputypes.BindGroupLayoutEntry, len(layout))
	for i, t := range layout {
		var bt gputypes.BufferBindingType
		switch t {
		case gpucore.BindingUniform:
			bt = gputypes.BufferBindingTypeUniform
		case gpucore.BindingReadOnlyStorage:
			bt = gputypes.BufferBindingTypeReadOnlyStorage
		case gpucore.BindingStorage:
			bt = gputypes.BufferBindingTypeStorage
		default:
			return nil, fmt.Errorf("binding %d: unknown type %d", i, t)
		}
		entries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: bt},
		}
	}
	return entries, nil
}
