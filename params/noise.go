// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package params

import (
	"math"

	"github.com/gogpu/strepitus/seed"
)

// CompositeMode selects how a layer combines with the accumulated field.
type CompositeMode uint8

const (
	// CompositeNone computes the layer but leaves the field untouched.
	CompositeNone CompositeMode = iota
	CompositeAdd
	CompositeSubtract
	CompositeMultiply
)

var compositeNames = []string{"none", "add", "subtract", "multiply"}

func (m CompositeMode) String() string { return enumName("composite", compositeNames, m) }

func (m CompositeMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *CompositeMode) UnmarshalText(b []byte) error {
	v, err := parseEnum[CompositeMode]("composite mode", compositeNames, string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// DimensionType selects 2D (u,v) or 3D (u,v,w) sampling.
type DimensionType uint8

const (
	Dimension2D DimensionType = iota
	Dimension3D
)

var dimensionNames = []string{"2d", "3d"}

func (d DimensionType) String() string { return enumName("dimension", dimensionNames, d) }

func (d DimensionType) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DimensionType) UnmarshalText(b []byte) error {
	v, err := parseEnum[DimensionType]("dimension type", dimensionNames, string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Layer parameter ranges.
const (
	MinBaseFrequency = 1
	MaxBaseFrequency = 32
	MinOctaves       = 1
	MaxOctaves       = 16
	MinPersistence   = -2.0
	MaxPersistence   = 2.0
	PersistenceStep  = 0.03125
	MinLacunarity    = 1.0
	MaxLacunarity    = 4.0
)

// FBM controls fractal summation: amplitude is scaled by Persistence and
// frequency by Lacunarity for each successive octave.
type FBM struct {
	Octaves       int     `json:"octaves"`
	Persistence   float64 `json:"persistence"`
	Lacunarity    float64 `json:"lacunarity"`
	PerOctaveSeed bool    `json:"per_octave_seed"`
}

// DefaultFBM returns 4 octaves, persistence 0.5, lacunarity 2.
func DefaultFBM() FBM {
	return FBM{Octaves: 4, Persistence: 0.5, Lacunarity: 2, PerOctaveSeed: true}
}

// Clamp forces f into the editable ranges. Persistence snaps to PersistenceStep.
func (f FBM) Clamp() FBM {
	d := DefaultFBM()
	if math.IsNaN(f.Persistence) {
		f.Persistence = d.Persistence
	}
	if math.IsNaN(f.Lacunarity) {
		f.Lacunarity = d.Lacunarity
	}
	f.Octaves = clampInt(f.Octaves, MinOctaves, MaxOctaves)
	f.Persistence = math.Round(clampFloat(f.Persistence, MinPersistence, MaxPersistence)/PersistenceStep) * PersistenceStep
	f.Lacunarity = clampFloat(f.Lacunarity, MinLacunarity, MaxLacunarity)
	return f
}

// Layer is one noise contributor. Layers apply in list order and share
// a single accumulator.
type Layer struct {
	Enabled       bool
	CompositeMode CompositeMode
	DimensionType DimensionType
	BaseSeed      string
	BaseFrequency int
	FBM           FBM
	Specific      NoiseSpecific
}

// DefaultLayer returns the layer a user gets when adding layer number index.
func DefaultLayer(index int) Layer {
	return Layer{
		Enabled:       true,
		CompositeMode: CompositeAdd,
		DimensionType: Dimension2D,
		BaseSeed:      seed.DefaultBaseSeed(index),
		BaseFrequency: 4,
		FBM:           DefaultFBM(),
		Specific:      SimplexNoise{},
	}
}

// NoiseType returns the kernel family of the layer.
func (l Layer) NoiseType() NoiseType {
	if l.Specific == nil {
		return NoiseSimplex
	}
	return l.Specific.Type()
}

// WithNoiseType switches the kernel family, carrying over mapped fields.
func (l Layer) WithNoiseType(t NoiseType) Layer {
	l.Specific = Convert(l.Specific, t)
	return l
}

// Clamp forces every numeric field into its editable range.
func (l Layer) Clamp() Layer {
	l.BaseFrequency = clampInt(l.BaseFrequency, MinBaseFrequency, MaxBaseFrequency)
	l.FBM = l.FBM.Clamp()
	if l.Specific == nil {
		l.Specific = DefaultSpecific(NoiseSimplex)
	}
	return l
}
