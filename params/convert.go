// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package params

import (
	"errors"
	"fmt"
)

// Field names a kernel option inside a NoiseSpecific variant.
type Field string

const (
	FieldGradientMode     Field = "gradient_mode"
	FieldDistanceFunction Field = "distance_function"
)

// fieldKind identifies the value domain of a field. Two fields may only be
// mapped onto each other when their kinds match.
type fieldKind uint8

const (
	kindGradientMode fieldKind = iota + 1
	kindDistanceFunction
)

type fieldDef struct {
	name Field
	kind fieldKind
}

// variantFields declares the fields carried by each kernel family.
var variantFields = map[NoiseType][]fieldDef{
	NoiseValue:   {{FieldGradientMode, kindGradientMode}},
	NoisePerlin:  {{FieldGradientMode, kindGradientMode}},
	NoiseSimplex: {{FieldGradientMode, kindGradientMode}},
	NoiseWorley:  {{FieldDistanceFunction, kindDistanceFunction}},
}

// FieldMapping states that From.FromField carries over to To.ToField when
// the noise type of a layer is switched.
type FieldMapping struct {
	From      NoiseType
	FromField Field
	To        NoiseType
	ToField   Field
}

// fieldMappings is the full conversion table. Pairs not listed here fall
// back to the target variant's default.
var fieldMappings = []FieldMapping{
	{NoiseValue, FieldGradientMode, NoisePerlin, FieldGradientMode},
	{NoiseValue, FieldGradientMode, NoiseSimplex, FieldGradientMode},
	{NoisePerlin, FieldGradientMode, NoiseValue, FieldGradientMode},
	{NoisePerlin, FieldGradientMode, NoiseSimplex, FieldGradientMode},
	{NoiseSimplex, FieldGradientMode, NoiseValue, FieldGradientMode},
	{NoiseSimplex, FieldGradientMode, NoisePerlin, FieldGradientMode},
}

// mappingIndex groups fieldMappings by source and target type.
var mappingIndex = buildMappingIndex(fieldMappings)

func init() {
	if err := ValidateFieldMappings(); err != nil {
		panic(err)
	}
}

type variantPair struct{ from, to NoiseType }

func buildMappingIndex(ms []FieldMapping) map[variantPair][]FieldMapping {
	idx := make(map[variantPair][]FieldMapping, len(ms))
	for _, m := range ms {
		k := variantPair{m.From, m.To}
		idx[k] = append(idx[k], m)
	}
	return idx
}

// FieldMappings returns a copy of the conversion table.
func FieldMappings() []FieldMapping {
	out := make([]FieldMapping, len(fieldMappings))
	copy(out, fieldMappings)
	return out
}

// ValidateFieldMappings checks that every mapping names fields that exist
// on both variants with the same value domain, and that no target field
// is written twice by one conversion.
func ValidateFieldMappings() error {
	var errs []error
	seen := make(map[FieldMapping]bool)
	targets := make(map[variantPair]map[Field]bool)
	for _, m := range fieldMappings {
		if seen[m] {
			errs = append(errs, fmt.Errorf("params: duplicate mapping %v", m))
			continue
		}
		seen[m] = true
		src, ok := lookupField(m.From, m.FromField)
		if !ok {
			errs = append(errs, fmt.Errorf("params: %s has no field %s", m.From, m.FromField))
			continue
		}
		dst, ok := lookupField(m.To, m.ToField)
		if !ok {
			errs = append(errs, fmt.Errorf("params: %s has no field %s", m.To, m.ToField))
			continue
		}
		if src.kind != dst.kind {
			errs = append(errs, fmt.Errorf("params: %s.%s and %s.%s have different types",
				m.From, m.FromField, m.To, m.ToField))
		}
		k := variantPair{m.From, m.To}
		if targets[k] == nil {
			targets[k] = make(map[Field]bool)
		}
		if targets[k][m.ToField] {
			errs = append(errs, fmt.Errorf("params: %s.%s written twice from %s", m.To, m.ToField, m.From))
		}
		targets[k][m.ToField] = true
	}
	return errors.Join(errs...)
}

func lookupField(t NoiseType, f Field) (fieldDef, bool) {
	for _, d := range variantFields[t] {
		if d.name == f {
			return d, true
		}
	}
	return fieldDef{}, false
}

// Convert returns the options for kernel family to, starting from its
// defaults and copying every field mapped from src.
func Convert(src NoiseSpecific, to NoiseType) NoiseSpecific {
	if src == nil {
		return DefaultSpecific(to)
	}
	if src.Type() == to {
		return src
	}
	dst := DefaultSpecific(to)
	for _, m := range mappingIndex[variantPair{src.Type(), to}] {
		dst = setField(dst, m.ToField, getField(src, m.FromField))
	}
	return dst
}

func getField(s NoiseSpecific, f Field) uint8 {
	switch v := s.(type) {
	case ValueNoise:
		if f == FieldGradientMode {
			return uint8(v.GradientMode)
		}
	case PerlinNoise:
		if f == FieldGradientMode {
			return uint8(v.GradientMode)
		}
	case SimplexNoise:
		if f == FieldGradientMode {
			return uint8(v.GradientMode)
		}
	case WorleyNoise:
		if f == FieldDistanceFunction {
			return uint8(v.DistanceFunction)
		}
	}
	return 0
}

func setField(s NoiseSpecific, f Field, val uint8) NoiseSpecific {
	switch v := s.(type) {
	case ValueNoise:
		if f == FieldGradientMode {
			v.GradientMode = GradientMode(val)
		}
		return v
	case PerlinNoise:
		if f == FieldGradientMode {
			v.GradientMode = GradientMode(val)
		}
		return v
	case SimplexNoise:
		if f == FieldGradientMode {
			v.GradientMode = GradientMode(val)
		}
		return v
	case WorleyNoise:
		if f == FieldDistanceFunction {
			v.DistanceFunction = DistanceFunction(val)
		}
		return v
	}
	return s
}
