// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shaders

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gogpu/strepitus/gpucore"
	"github.com/gogpu/strepitus/params"
)

//go:embed wgsl/*.wgsl
var embedded embed.FS

// ErrUnknownProgram is returned for names missing from the catalogue.
var ErrUnknownProgram = errors.New("shaders: unknown program")

// Program describes one catalogue entry.
type Program struct {
	Name          string
	Fragments     []string
	Layout        []gpucore.BindingType
	WorkgroupSize [3]uint32
}

var (
	uniform  = gpucore.BindingUniform
	readOnly = gpucore.BindingReadOnlyStorage
	storage  = gpucore.BindingStorage

	layerLayout     = []gpucore.BindingType{uniform, readOnly, storage}
	normalizeLayout = []gpucore.BindingType{uniform, readOnly, readOnly, storage}
	tile            = [3]uint32{16, 16, 1}
)

var catalogue = []Program{
	{Name: "reset", Fragments: []string{"common.wgsl", "reset.wgsl"},
		Layout: []gpucore.BindingType{storage}, WorkgroupSize: [3]uint32{1, 1, 1}},
	{Name: "noise_value", Fragments: []string{"common.wgsl", "layer.wgsl", "fbm.wgsl", "value.wgsl"},
		Layout: layerLayout, WorkgroupSize: tile},
	{Name: "noise_perlin", Fragments: []string{"common.wgsl", "layer.wgsl", "fbm.wgsl", "gradients.wgsl", "perlin.wgsl"},
		Layout: layerLayout, WorkgroupSize: tile},
	{Name: "noise_simplex", Fragments: []string{"common.wgsl", "layer.wgsl", "fbm.wgsl", "gradients.wgsl", "simplex.wgsl"},
		Layout: layerLayout, WorkgroupSize: tile},
	{Name: "noise_worley", Fragments: []string{"common.wgsl", "layer.wgsl", "worley.wgsl"},
		Layout: layerLayout, WorkgroupSize: tile},
	{Name: "range", Fragments: []string{"common.wgsl", "range.wgsl"},
		Layout: []gpucore.BindingType{uniform, readOnly, storage}, WorkgroupSize: tile},
	{Name: "normalize_rgba8", Fragments: []string{"common.wgsl", "normalize.wgsl", "store_rgba8.wgsl"},
		Layout: normalizeLayout, WorkgroupSize: tile},
	{Name: "normalize_rgb10a2", Fragments: []string{"common.wgsl", "normalize.wgsl", "store_rgb10a2.wgsl"},
		Layout: normalizeLayout, WorkgroupSize: tile},
	{Name: "normalize_rgba16f", Fragments: []string{"common.wgsl", "normalize.wgsl", "store_rgba16f.wgsl"},
		Layout: normalizeLayout, WorkgroupSize: tile},
}

// Program names.
const (
	Reset = "reset"
	Range = "range"
)

// NoiseProgram returns the generation program for a noise type.
func NoiseProgram(t params.NoiseType) string {
	return "noise_" + t.String()
}

// NormalizeProgram returns the normalize program for a storage format.
func NormalizeProgram(f params.GPUFormat) string {
	switch f {
	case params.GPUFormatRGB10A2Unorm:
		return "normalize_rgb10a2"
	case params.GPUFormatRGBA16Float:
		return "normalize_rgba16f"
	default:
		return "normalize_rgba8"
	}
}

// Library assembles program sources from the embedded fragments, optionally
// overlaid by files in a directory.
type Library struct {
	dir string
}

// Default returns the library of embedded programs.
func Default() *Library { return &Library{} }

// NewLibrary returns a library whose fragments are read from dir when
// present there. An empty dir means embedded only.
func NewLibrary(dir string) *Library { return &Library{dir: dir} }

// Dir returns the override directory, or "".
func (l *Library) Dir() string { return l.dir }

// Names returns the program names in catalogue order.
func (l *Library) Names() []string {
	names := make([]string, len(catalogue))
	for i, p := range catalogue {
		names[i] = p.Name
	}
	return names
}

// Lookup returns the catalogue entry for name.
func (l *Library) Lookup(name string) (Program, bool) {
	for _, p := range catalogue {
		if p.Name == name {
			return p, true
		}
	}
	return Program{}, false
}

// Fragments returns every fragment file name used by the catalogue.
func (l *Library) Fragments() []string {
	var out []string
	for _, p := range catalogue {
		for _, f := range p.Fragments {
			if !slices.Contains(out, f) {
				out = append(out, f)
			}
		}
	}
	return out
}

// Users returns the programs that include fragment.
func (l *Library) Users(fragment string) []string {
	var out []string
	for _, p := range catalogue {
		if slices.Contains(p.Fragments, fragment) {
			out = append(out, p.Name)
		}
	}
	return out
}

// Fragment returns the text of one fragment, preferring the override
// directory.
func (l *Library) Fragment(file string) (string, error) {
	if l.dir != "" {
		b, err := os.ReadFile(filepath.Join(l.dir, file))
		switch {
		case err == nil:
			return string(b), nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("shaders: read %s: %w", file, err)
		}
	}
	b, err := embedded.ReadFile("wgsl/" + file)
	if err != nil {
		return "", fmt.Errorf("shaders: %s: %w", file, err)
	}
	return string(b), nil
}

// Source assembles the program source for name.
func (l *Library) Source(name string) (gpucore.ProgramSource, error) {
	p, ok := l.Lookup(name)
	if !ok {
		return gpucore.ProgramSource{}, fmt.Errorf("%w: %q", ErrUnknownProgram, name)
	}
	var sb strings.Builder
	for _, f := range p.Fragments {
		text, err := l.Fragment(f)
		if err != nil {
			return gpucore.ProgramSource{}, err
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	return gpucore.ProgramSource{
		Name:          p.Name,
		Source:        sb.String(),
		EntryPoint:    "main",
		Layout:        slices.Clone(p.Layout),
		WorkgroupSize: p.WorkgroupSize,
	}, nil
}

// Sources assembles every program.
func (l *Library) Sources() ([]gpucore.ProgramSource, error) {
	out := make([]gpucore.ProgramSource, 0, len(catalogue))
	for _, p := range catalogue {
		src, err := l.Source(p.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

// Extract writes the embedded fragments into dir, skipping files that
// already exist. It seeds an override directory for editing.
func Extract(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("shaders: extract: %w", err)
	}
	return fs.WalkDir(embedded, "wgsl", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		target := filepath.Join(dir, d.Name())
		if _, err := os.Stat(target); err == nil {
			return nil
		}
		b, err := embedded.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, b, 0o644) //nolint:gosec // shader sources are not secret
	})
}
