// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kernel

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/gogpu/strepitus/internal/noise"
)

// Buffers are the buffers bound to a dispatch, indexed by binding slot.
// Storage buffers are shared between concurrently running workgroups;
// kernels write disjoint texels or use atomics.
type Buffers [][]uint32

// Workgroup executes one workgroup at the given group coordinates.
type Workgroup func(gx, gy, gz uint32)

// Kernel is the host implementation of one compute program.
type Kernel struct {
	// Name matches the program name in the shader catalogue.
	Name string

	// Slots is the number of bindings the kernel expects.
	Slots int

	// Prepare decodes the uniform block once per dispatch and returns the
	// per-workgroup function.
	Prepare func(b Buffers) (Workgroup, error)
}

// Workgroup edge lengths.
const (
	TileSize      = 16
	RangeTileSize = 32
)

var registry = map[string]*Kernel{}

func register(k *Kernel) { registry[k.Name] = k }

// Lookup returns the kernel for a program name.
func Lookup(name string) (*Kernel, bool) {
	k, ok := registry[name]
	return k, ok
}

// Names returns the registered program names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}

func init() {
	register(&Kernel{Name: "reset", Slots: 1, Prepare: prepareReset})
	for name, t := range map[string]uint32{
		"noise_value":   noise.TypeValue,
		"noise_perlin":  noise.TypePerlin,
		"noise_simplex": noise.TypeSimplex,
		"noise_worley":  noise.TypeWorley,
	} {
		register(&Kernel{Name: name, Slots: 3, Prepare: prepareNoise(t)})
	}
	register(&Kernel{Name: "range", Slots: 3, Prepare: prepareRange})
	register(&Kernel{Name: "normalize_rgba8", Slots: 4, Prepare: prepareNormalize(storeRGBA8, 1)})
	register(&Kernel{Name: "normalize_rgb10a2", Slots: 4, Prepare: prepareNormalize(storeRGB10A2, 1)})
	register(&Kernel{Name: "normalize_rgba16f", Slots: 4, Prepare: prepareNormalize(storeRGBA16F, 2)})
}

func checkLen(name string, buf []uint32, words uint64) error {
	if uint64(len(buf)) < words {
		return fmt.Errorf("%s: buffer holds %d words, need %d", name, len(buf), words)
	}
	return nil
}

// =============================================================================
// reset
// =============================================================================

// Bindings: 0 data (storage).
func prepareReset(b Buffers) (Workgroup, error) {
	if err := checkLen("reset data", b[0], DataWords); err != nil {
		return nil, err
	}
	data := b[0]
	return func(_, _, _ uint32) {
		atomic.StoreUint32(&data[DataMinKey], noise.EmptyMinKey)
		atomic.StoreUint32(&data[DataMaxKey], noise.EmptyMaxKey)
		atomic.StoreUint32(&data[DataCounter], 0)
		atomic.StoreUint32(&data[DataFlags], 0)
	}, nil
}

// =============================================================================
// noise_*
// =============================================================================

// Bindings: 0 uniforms, 1 seeds (read-only), 2 noise (storage).
func prepareNoise(t uint32) func(b Buffers) (Workgroup, error) {
	return func(b Buffers) (Workgroup, error) {
		p, err := DecodeLayer(b[0])
		if err != nil {
			return nil, err
		}
		p.NoiseType = t
		texels := uint64(p.Width) * uint64(p.Height) * uint64(p.Slices)
		if err := checkLen("noise", b[2], 4*texels); err != nil {
			return nil, err
		}
		seeds := make([]int32, len(b[1]))
		for i, w := range b[1] {
			seeds[i] = int32(w) //nolint:gosec // bit pattern
		}
		field := b[2]
		return func(gx, gy, gz uint32) {
			z := gz
			if z >= p.Slices {
				return
			}
			for ly := uint32(0); ly < TileSize; ly++ {
				y := gy*TileSize + ly
				if y >= p.Height {
					break
				}
				for lx := uint32(0); lx < TileSize; lx++ {
					x := gx*TileSize + lx
					if x >= p.Width {
						break
					}
					r := p.Sample(seeds, x, y, z)
					if p.Composite == noise.CompositeNone {
						continue
					}
					i := 4 * ((uint64(z)*uint64(p.Height)+uint64(y))*uint64(p.Width) + uint64(x))
					acc := loadVec4(field, i)
					storeVec4(field, i, noise.Composite(p.Composite, acc, r))
				}
			}
		}, nil
	}
}

func loadVec4(buf []uint32, i uint64) noise.Vec4 {
	return noise.Vec4{
		math.Float32frombits(buf[i]), math.Float32frombits(buf[i+1]),
		math.Float32frombits(buf[i+2]), math.Float32frombits(buf[i+3]),
	}
}

func storeVec4(buf []uint32, i uint64, v noise.Vec4) {
	for c := range v {
		buf[i+uint64(c)] = math.Float32bits(v[c])
	}
}

// =============================================================================
// range
// =============================================================================

// Bindings: 0 uniforms (normalize block), 1 noise (read-only), 2 data (storage).
// Each invocation of a 16x16 workgroup covers a 2x2 quad.
func prepareRange(b Buffers) (Workgroup, error) {
	p, err := DecodeNormalize(b[0])
	if err != nil {
		return nil, err
	}
	texels := uint64(p.Width) * uint64(p.Height) * uint64(p.Slices)
	if err := checkLen("range noise", b[1], 4*texels); err != nil {
		return nil, err
	}
	if err := checkLen("range data", b[2], DataWords); err != nil {
		return nil, err
	}
	field, data := b[1], b[2]
	return func(gx, gy, gz uint32) {
		if gz >= p.Slices {
			return
		}
		lo, hi := noise.EmptyMinKey, noise.EmptyMaxKey
		var count uint32
		for y := gy * RangeTileSize; y < min((gy+1)*RangeTileSize, p.Height); y++ {
			for x := gx * RangeTileSize; x < min((gx+1)*RangeTileSize, p.Width); x++ {
				i := 4 * ((uint64(gz)*uint64(p.Height)+uint64(y))*uint64(p.Width) + uint64(x))
				for c := uint64(0); c < 4; c++ {
					k := noise.OrderedKey(math.Float32frombits(field[i+c]))
					lo = min(lo, k)
					hi = max(hi, k)
				}
				count++
			}
		}
		if count == 0 {
			return
		}
		AtomicMin(&data[DataMinKey], lo)
		AtomicMax(&data[DataMaxKey], hi)
		atomic.AddUint32(&data[DataCounter], count)
	}, nil
}

// AtomicMin stores min(*addr, v) with a CAS loop.
func AtomicMin(addr *uint32, v uint32) {
	for {
		old := atomic.LoadUint32(addr)
		if v >= old || atomic.CompareAndSwapUint32(addr, old, v) {
			return
		}
	}
}

// AtomicMax stores max(*addr, v) with a CAS loop.
func AtomicMax(addr *uint32, v uint32) {
	for {
		old := atomic.LoadUint32(addr)
		if v <= old || atomic.CompareAndSwapUint32(addr, old, v) {
			return
		}
	}
}

// =============================================================================
// normalize_*
// =============================================================================

// storeFunc writes quantized levels q for texel index i into the output.
type storeFunc func(out []uint32, i uint64, q noise.Vec4, levels [4]float32)

func storeRGBA8(out []uint32, i uint64, q noise.Vec4, _ [4]float32) {
	out[i] = noise.PackRGBA8(q)
}

func storeRGB10A2(out []uint32, i uint64, q noise.Vec4, _ [4]float32) {
	out[i] = noise.PackRGB10A2(q)
}

func storeRGBA16F(out []uint32, i uint64, q noise.Vec4, levels [4]float32) {
	out[2*i] = noise.Pack2x16Float(noise.Stored(q[0], levels[0]), noise.Stored(q[1], levels[1]))
	out[2*i+1] = noise.Pack2x16Float(noise.Stored(q[2], levels[2]), noise.Stored(q[3], levels[3]))
}

// Bindings: 0 uniforms, 1 noise (read-only), 2 data (read-only),
// 3 output (storage).
func prepareNormalize(store storeFunc, stride uint64) func(b Buffers) (Workgroup, error) {
	return func(b Buffers) (Workgroup, error) {
		p, err := DecodeNormalize(b[0])
		if err != nil {
			return nil, err
		}
		texels := uint64(p.Width) * uint64(p.Height) * uint64(p.Slices)
		if err := checkLen("normalize noise", b[1], 4*texels); err != nil {
			return nil, err
		}
		if err := checkLen("normalize data", b[2], DataWords); err != nil {
			return nil, err
		}
		if err := checkLen("normalize output", b[3], stride*texels); err != nil {
			return nil, err
		}
		field, out := b[1], b[3]
		lo, hi := p.Bounds(atomic.LoadUint32(&b[2][DataMinKey]), atomic.LoadUint32(&b[2][DataMaxKey]))
		return func(gx, gy, gz uint32) {
			if gz >= p.Slices {
				return
			}
			for y := gy * TileSize; y < min((gy+1)*TileSize, p.Height); y++ {
				for x := gx * TileSize; x < min((gx+1)*TileSize, p.Width); x++ {
					i := (uint64(gz)*uint64(p.Height)+uint64(y))*uint64(p.Width) + uint64(x)
					q := p.Texel(loadVec4(field, 4*i), lo, hi, x, y)
					store(out, i, q, p.Levels)
				}
			}
		}, nil
	}
}
