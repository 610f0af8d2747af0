// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package noise

import "math"

// Kernel discriminators, matching the params enums.
const (
	TypeValue uint32 = iota
	TypePerlin
	TypeSimplex
	TypeWorley
)

// Gradient modes.
const (
	GradientValue uint32 = iota
	GradientOnly
	GradientBoth
)

// Composite modes.
const (
	CompositeNone uint32 = iota
	CompositeAdd
	CompositeSubtract
	CompositeMultiply
)

// SeedStride is the number of seed words reserved per octave.
const SeedStride = 8

// gradientEpsilon is the central-difference step in normalized texture space.
const gradientEpsilon = 1.0 / 1024.0

// LayerParams is the per-layer uniform block of the generation programs.
type LayerParams struct {
	Width, Height, Slices uint32
	NoiseType             uint32
	SubMode               uint32
	Dimension             uint32 // 0 = 2D, 1 = 3D
	BaseFrequency         uint32
	Octaves               uint32
	Lacunarity            float32
	Persistence           float32
	PerOctaveSeed         uint32
	Composite             uint32
}

// Is3D reports whether the layer samples the slice axis.
func (p *LayerParams) Is3D() bool { return p.Dimension != 0 }

// OctavePeriod returns the lattice period of octave o:
// max(1, round(baseFrequency * lacunarity^o)).
func (p *LayerParams) OctavePeriod(o uint32) int32 {
	f := float32(p.BaseFrequency) * powf(p.Lacunarity, float32(o))
	r := roundf(f)
	if r < 1 {
		return 1
	}
	if r > math.MaxInt32/2 {
		return math.MaxInt32 / 2
	}
	return int32(r)
}

// OctaveSeed returns the seed word used by octave o.
func (p *LayerParams) OctaveSeed(seeds []int32, o uint32) uint32 {
	if len(seeds) == 0 {
		return 0
	}
	idx := 0
	if p.PerOctaveSeed != 0 {
		idx = int(o*SeedStride) % len(seeds)
	}
	return uint32(seeds[idx]) //nolint:gosec // bit pattern
}

// scalar evaluates one octave of a lattice noise at uvw.
func (p *LayerParams) scalar(u, v, w float32, period int32, seed uint32) float32 {
	fp := float32(period)
	x, y, z := u*fp, v*fp, w*fp
	if p.Is3D() {
		switch p.NoiseType {
		case TypeValue:
			return Value3(x, y, z, period, seed)
		case TypePerlin:
			return Perlin3(x, y, z, period, seed)
		default:
			return Simplex3(x, y, z, seed)
		}
	}
	switch p.NoiseType {
	case TypeValue:
		return Value2(x, y, period, seed)
	case TypePerlin:
		return Perlin2(x, y, period, seed)
	default:
		return Simplex2(x, y, seed)
	}
}

// FBM sums the lattice noise over all octaves at normalized position uvw:
// sum_o persistence^o * noise(uvw * period_o, seed_o).
func (p *LayerParams) FBM(seeds []int32, u, v, w float32) float32 {
	var sum float32
	amp := float32(1)
	for o := uint32(0); o < p.Octaves; o++ {
		sum += amp * p.scalar(u, v, w, p.OctavePeriod(o), p.OctaveSeed(seeds, o))
		amp *= p.Persistence
	}
	return sum
}

// WorleyFBM is FBM applied component-wise to Worley output.
func (p *LayerParams) WorleyFBM(seeds []int32, u, v, w float32) Vec4 {
	var sum Vec4
	amp := float32(1)
	for o := uint32(0); o < p.Octaves; o++ {
		period := p.OctavePeriod(o)
		seed := p.OctaveSeed(seeds, o)
		fp := float32(period)
		var r Vec4
		if p.Is3D() {
			r = Worley3(u*fp, v*fp, w*fp, period, seed, p.SubMode)
		} else {
			r = Worley2(u*fp, v*fp, period, seed, p.SubMode)
		}
		sum = sum.Add(r.Scale(amp))
		amp *= p.Persistence
	}
	return sum
}

// TexelCoord returns the normalized sample position of texel (x, y, z).
func (p *LayerParams) TexelCoord(x, y, z uint32) (u, v, w float32) {
	u = (float32(x) + 0.5) / float32(p.Width)
	v = (float32(y) + 0.5) / float32(p.Height)
	w = (float32(z) + 0.5) / float32(max(p.Slices, 1))
	return u, v, w
}

// Sample evaluates the layer at texel (x, y, z) and returns the four
// channels written by the generation program.
func (p *LayerParams) Sample(seeds []int32, x, y, z uint32) Vec4 {
	u, v, w := p.TexelCoord(x, y, z)
	if p.NoiseType == TypeWorley {
		return p.WorleyFBM(seeds, u, v, w)
	}
	value := p.FBM(seeds, u, v, w)
	if p.SubMode == GradientValue {
		return Vec4{value, value, value, value}
	}

	const e = gradientEpsilon
	scale := float32(1) / (float32(max(p.BaseFrequency, 1)) * math.Pi)
	gx := (p.FBM(seeds, u+e, v, w) - p.FBM(seeds, u-e, v, w)) / (2 * e) * scale
	gy := (p.FBM(seeds, u, v+e, w) - p.FBM(seeds, u, v-e, w)) / (2 * e) * scale
	var gz float32
	if p.Is3D() {
		gz = (p.FBM(seeds, u, v, w+e) - p.FBM(seeds, u, v, w-e)) / (2 * e) * scale
	}
	if p.SubMode == GradientOnly {
		return Vec4{gx, gy, gz, 0}
	}
	return Vec4{value, gx, gy, gz}
}

// Composite combines a layer result r into the accumulated texel acc.
func Composite(mode uint32, acc, r Vec4) Vec4 {
	switch mode {
	case CompositeAdd:
		return acc.Add(r)
	case CompositeSubtract:
		return Vec4{acc[0] - r[0], acc[1] - r[1], acc[2] - r[2], acc[3] - r[3]}
	case CompositeMultiply:
		return Vec4{acc[0] * r[0], acc[1] * r[1], acc[2] * r[2], acc[3] * r[3]}
	}
	return acc
}
