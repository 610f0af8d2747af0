// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package params

// NoiseType is the kernel family discriminator.
type NoiseType uint8

const (
	NoiseValue NoiseType = iota
	NoisePerlin
	NoiseSimplex
	NoiseWorley
)

var noiseTypeNames = []string{"value", "perlin", "simplex", "worley"}

// NoiseTypes lists every kernel family in discriminator order.
func NoiseTypes() []NoiseType {
	return []NoiseType{NoiseValue, NoisePerlin, NoiseSimplex, NoiseWorley}
}

func (t NoiseType) String() string { return enumName("noise", noiseTypeNames, t) }

func (t NoiseType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *NoiseType) UnmarshalText(b []byte) error {
	v, err := parseEnum[NoiseType]("noise type", noiseTypeNames, string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// GradientMode selects what a lattice noise writes into the four channels:
// the value, its spatial gradient, or both.
type GradientMode uint8

const (
	GradientValue GradientMode = iota
	GradientOnly
	GradientBoth
)

var gradientModeNames = []string{"value", "gradient", "both"}

func (g GradientMode) String() string { return enumName("gradient", gradientModeNames, g) }

func (g GradientMode) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *GradientMode) UnmarshalText(b []byte) error {
	v, err := parseEnum[GradientMode]("gradient mode", gradientModeNames, string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// DistanceFunction is the metric used by Worley noise.
type DistanceFunction uint8

const (
	DistanceEuclidean DistanceFunction = iota
	DistanceManhattan
	DistanceChebyshev
)

var distanceNames = []string{"euclidean", "manhattan", "chebyshev"}

func (d DistanceFunction) String() string { return enumName("distance", distanceNames, d) }

func (d DistanceFunction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DistanceFunction) UnmarshalText(b []byte) error {
	v, err := parseEnum[DistanceFunction]("distance function", distanceNames, string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// NoiseSpecific holds the options of exactly one kernel family.
// The set of implementations is closed: ValueNoise, PerlinNoise,
// SimplexNoise and WorleyNoise.
type NoiseSpecific interface {
	Type() NoiseType
	// SubMode is the gradient mode or distance function as passed to kernels.
	SubMode() uint32
	isNoiseSpecific()
}

// ValueNoise interpolates hashed lattice values.
type ValueNoise struct {
	GradientMode GradientMode
}

// PerlinNoise interpolates hashed lattice gradients.
type PerlinNoise struct {
	GradientMode GradientMode
}

// SimplexNoise sums gradient contributions over simplex corners.
type SimplexNoise struct {
	GradientMode GradientMode
}

// WorleyNoise measures distances to jittered cell feature points.
type WorleyNoise struct {
	DistanceFunction DistanceFunction
}

func (ValueNoise) Type() NoiseType   { return NoiseValue }
func (PerlinNoise) Type() NoiseType  { return NoisePerlin }
func (SimplexNoise) Type() NoiseType { return NoiseSimplex }
func (WorleyNoise) Type() NoiseType  { return NoiseWorley }

func (v ValueNoise) SubMode() uint32   { return uint32(v.GradientMode) }
func (p PerlinNoise) SubMode() uint32  { return uint32(p.GradientMode) }
func (s SimplexNoise) SubMode() uint32 { return uint32(s.GradientMode) }
func (w WorleyNoise) SubMode() uint32  { return uint32(w.DistanceFunction) }

func (ValueNoise) isNoiseSpecific()   {}
func (PerlinNoise) isNoiseSpecific()  {}
func (SimplexNoise) isNoiseSpecific() {}
func (WorleyNoise) isNoiseSpecific()  {}

// DefaultSpecific returns the default options for a kernel family.
func DefaultSpecific(t NoiseType) NoiseSpecific {
	switch t {
	case NoiseValue:
		return ValueNoise{}
	case NoisePerlin:
		return PerlinNoise{}
	case NoiseWorley:
		return WorleyNoise{}
	default:
		return SimplexNoise{}
	}
}
