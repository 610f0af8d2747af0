// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package params

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"github.com/gogpu/strepitus/seed"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Project is the persisted aggregate of all parameters.
type Project struct {
	Main   Main    `json:"main"`
	Output Output  `json:"output"`
	Viewer Viewer  `json:"viewer"`
	System System  `json:"system"`
	Layers []Layer `json:"layers"`
}

// DefaultProject returns a project with a single default layer.
func DefaultProject() Project {
	return Project{
		Main:   DefaultMain(),
		Output: DefaultOutput(),
		Viewer: DefaultViewer(),
		Layers: []Layer{DefaultLayer(0)},
	}
}

// Clamp forces every field into its editable range and assigns default
// seeds to layers that have none.
func (p Project) Clamp() Project {
	p.Main = p.Main.Clamp()
	p.Output = p.Output.Clamp()
	layers := make([]Layer, len(p.Layers))
	for i, l := range p.Layers {
		if l.BaseSeed == "" {
			l.BaseSeed = seed.DefaultBaseSeed(i)
		}
		layers[i] = l.Clamp()
	}
	p.Layers = layers
	return p
}

// DecodeProject reads a project document. Missing fields take their
// defaults and unknown fields are ignored.
func DecodeProject(r io.Reader) (Project, error) {
	p := DefaultProject()
	p.Layers = nil
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Project{}, fmt.Errorf("params: decode project: %w", err)
	}
	return p.Clamp(), nil
}

// EncodeProject writes p as indented JSON.
func EncodeProject(w io.Writer, p Project) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("params: encode project: %w", err)
	}
	return nil
}

// LoadProject reads a project file.
func LoadProject(path string) (Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return Project{}, fmt.Errorf("params: load project: %w", err)
	}
	defer f.Close()
	return DecodeProject(f)
}

// SaveProject writes p to path through a temporary file in the same
// directory, so a failed save leaves the previous file intact.
func SaveProject(path string, p Project) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("params: save project: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".project-*.json")
	if err != nil {
		return fmt.Errorf("params: save project: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = EncodeProject(tmp, p); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("params: save project: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("params: save project: %w", err)
	}
	return nil
}

// The UnmarshalJSON methods below start from the type's defaults so that
// missing keys keep them.

func (m *Main) UnmarshalJSON(b []byte) error {
	type plain Main
	v := plain(DefaultMain())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = Main(v)
	return nil
}

func (o *Output) UnmarshalJSON(b []byte) error {
	type plain Output
	v := plain(DefaultOutput())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Output(v)
	return nil
}

func (v *Viewer) UnmarshalJSON(b []byte) error {
	type plain Viewer
	d := plain(DefaultViewer())
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	*v = Viewer(d)
	return nil
}

func (f *FBM) UnmarshalJSON(b []byte) error {
	type plain FBM
	v := plain(DefaultFBM())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FBM(v)
	return nil
}

// specificJSON is the wire form of NoiseSpecific:
// {"type":"simplex","gradient_mode":"both"}.
type specificJSON struct {
	Type             NoiseType         `json:"type"`
	GradientMode     *GradientMode     `json:"gradient_mode,omitempty"`
	DistanceFunction *DistanceFunction `json:"distance_function,omitempty"`
}

type layerJSON struct {
	Enabled       bool          `json:"enabled"`
	CompositeMode CompositeMode `json:"composite_mode"`
	DimensionType DimensionType `json:"dimension_type"`
	BaseSeed      string        `json:"base_seed"`
	BaseFrequency int           `json:"base_frequency"`
	FBM           FBM           `json:"fbm_parameters"`
	Specific      specificJSON  `json:"specific_parameters"`
}

func (l Layer) MarshalJSON() ([]byte, error) {
	spec := l.Specific
	if spec == nil {
		spec = DefaultSpecific(NoiseSimplex)
	}
	sj := specificJSON{Type: spec.Type()}
	switch s := spec.(type) {
	case ValueNoise:
		sj.GradientMode = &s.GradientMode
	case PerlinNoise:
		sj.GradientMode = &s.GradientMode
	case SimplexNoise:
		sj.GradientMode = &s.GradientMode
	case WorleyNoise:
		sj.DistanceFunction = &s.DistanceFunction
	}
	return json.Marshal(layerJSON{
		Enabled:       l.Enabled,
		CompositeMode: l.CompositeMode,
		DimensionType: l.DimensionType,
		BaseSeed:      l.BaseSeed,
		BaseFrequency: l.BaseFrequency,
		FBM:           l.FBM,
		Specific:      sj,
	})
}

// UnmarshalJSON decodes a layer. A missing base_seed is left empty and
// filled per index by Project.Clamp.
func (l *Layer) UnmarshalJSON(b []byte) error {
	d := DefaultLayer(0)
	v := layerJSON{
		Enabled:       d.Enabled,
		CompositeMode: d.CompositeMode,
		DimensionType: d.DimensionType,
		BaseFrequency: d.BaseFrequency,
		FBM:           d.FBM,
		Specific:      specificJSON{Type: d.NoiseType()},
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	spec := DefaultSpecific(v.Specific.Type)
	switch s := spec.(type) {
	case ValueNoise:
		if v.Specific.GradientMode != nil {
			s.GradientMode = *v.Specific.GradientMode
		}
		spec = s
	case PerlinNoise:
		if v.Specific.GradientMode != nil {
			s.GradientMode = *v.Specific.GradientMode
		}
		spec = s
	case SimplexNoise:
		if v.Specific.GradientMode != nil {
			s.GradientMode = *v.Specific.GradientMode
		}
		spec = s
	case WorleyNoise:
		if v.Specific.DistanceFunction != nil {
			s.DistanceFunction = *v.Specific.DistanceFunction
		}
		spec = s
	}
	*l = Layer{
		Enabled:       v.Enabled,
		CompositeMode: v.CompositeMode,
		DimensionType: v.DimensionType,
		BaseSeed:      v.BaseSeed,
		BaseFrequency: v.BaseFrequency,
		FBM:           v.FBM,
		Specific:      spec,
	}
	return nil
}
