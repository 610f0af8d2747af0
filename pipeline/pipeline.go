// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/strepitus"
	"github.com/gogpu/strepitus/gpucore"
	"github.com/gogpu/strepitus/internal/kernel"
	"github.com/gogpu/strepitus/internal/metrics"
	"github.com/gogpu/strepitus/internal/noise"
	"github.com/gogpu/strepitus/params"
	"github.com/gogpu/strepitus/seed"
	"github.com/gogpu/strepitus/shaders"
)

// Workgroup tile edges.
const (
	tileSize      = 16
	rangeTileSize = 32
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLibrary sets the shader library programs are compiled from.
// The default is shaders.Default().
func WithLibrary(lib *shaders.Library) Option {
	return func(p *Pipeline) {
		if lib != nil {
			p.lib = lib
		}
	}
}

// Pipeline owns the device resources of the noise passes.
type Pipeline struct {
	mu  sync.Mutex
	dev gpucore.Device
	lib *shaders.Library
	res resources

	programs map[string]gpucore.ProgramID

	// Fixed-size buffers, created by New.
	seeds      gpucore.BufferID
	data       gpucore.BufferID
	layerUnif  gpucore.BufferID
	normalUnif gpucore.BufferID

	// Sized buffers.
	noise  gpucore.BufferID
	output gpucore.BufferID

	main      params.Main      // dimensions of the last generate
	outFormat params.GPUFormat // storage format of output
	processed params.Format    // format of the last process
	generated bool
	ready     bool // output holds a process of the current field
	closed    bool
}

// New compiles every program of the library and allocates the fixed
// buffers. A program that fails to compile is fatal: the error wraps
// gpucore.ErrShaderCompile and nothing is left allocated.
func New(dev gpucore.Device, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		dev:      dev,
		lib:      shaders.Default(),
		res:      resources{dev: dev},
		programs: make(map[string]gpucore.ProgramID),
	}
	for _, o := range opts {
		o(p)
	}

	if err := p.init(); err != nil {
		p.res.releaseAll()
		return nil, err
	}
	strepitus.Logger().Info("pipeline: ready", "device", dev.Name(), "programs", len(p.programs))
	return p, nil
}

func (p *Pipeline) init() error {
	srcs, err := p.lib.Sources()
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	for _, src := range srcs {
		id, err := p.res.program(src)
		if err != nil {
			return fmt.Errorf("pipeline: compile %s: %w", src.Name, err)
		}
		p.programs[src.Name] = id
	}

	fixed := []struct {
		id   *gpucore.BufferID
		desc gpucore.BufferDesc
	}{
		{&p.seeds, gpucore.BufferDesc{Label: "seeds", Size: 4 * seed.GridSeedCount,
			Usage: gpucore.BufferUsageStorage | gpucore.BufferUsageCopyDst}},
		{&p.data, gpucore.BufferDesc{Label: "data", Size: kernel.DataSize,
			Usage: gpucore.BufferUsageStorage | gpucore.BufferUsageCopySrc | gpucore.BufferUsageCopyDst}},
		{&p.layerUnif, gpucore.BufferDesc{Label: "layer_uniforms", Size: kernel.LayerUniformSize,
			Usage: gpucore.BufferUsageUniform | gpucore.BufferUsageCopyDst}},
		{&p.normalUnif, gpucore.BufferDesc{Label: "normalize_uniforms", Size: kernel.NormalizeUniformSize,
			Usage: gpucore.BufferUsageUniform | gpucore.BufferUsageCopyDst}},
	}
	for _, f := range fixed {
		id, err := p.res.buffer(f.desc)
		if err != nil {
			return fmt.Errorf("pipeline: %s: %w", f.desc.Label, err)
		}
		*f.id = id
	}
	return nil
}

// Device returns the device the pipeline runs on.
func (p *Pipeline) Device() gpucore.Device { return p.dev }

// Library returns the shader library in use.
func (p *Pipeline) Library() *shaders.Library {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lib
}

// Main returns the dimensions of the last generate.
func (p *Pipeline) Main() params.Main {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.main
}

// Close destroys every resource in reverse creation order. The device is
// not destroyed. Close is idempotent.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.res.releaseAll()
	p.programs = nil
	return nil
}

func (p *Pipeline) program(name string) (gpucore.ProgramID, error) {
	id, ok := p.programs[name]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("pipeline: %w: %q", gpucore.ErrUnknownProgram, name)
	}
	return id, nil
}

// dispatch records one dispatch and counts it.
func (p *Pipeline) dispatch(enc gpucore.CommandEncoder, name string, groups [3]uint32, bufs ...gpucore.BufferID) error {
	id, err := p.program(name)
	if err != nil {
		return err
	}
	bindings := make([]gpucore.Binding, len(bufs))
	for i, b := range bufs {
		bindings[i] = gpucore.Binding{Slot: uint32(i), Buffer: b} //nolint:gosec // binding count is tiny
	}
	if err := enc.Dispatch(gpucore.DispatchDesc{Label: name, Program: id, Bindings: bindings, Groups: groups}); err != nil {
		return err
	}
	metrics.Dispatches.WithLabelValues(name).Inc()
	return nil
}

// run records a batch with record and submits it. The batch is discarded
// if recording fails.
func (p *Pipeline) run(ctx context.Context, label string, record func(enc gpucore.CommandEncoder) error) error {
	enc, err := p.dev.BeginCommands(label)
	if err != nil {
		return err
	}
	if err := record(enc); err != nil {
		enc.Discard()
		return err
	}
	return enc.Finish(ctx)
}

func (p *Pipeline) groups(size uint32) [3]uint32 {
	return [3]uint32{
		gpucore.WorkgroupCount(uint32(p.main.Width), size),  //nolint:gosec // validated positive
		gpucore.WorkgroupCount(uint32(p.main.Height), size), //nolint:gosec // validated positive
		uint32(p.main.Slices),                               //nolint:gosec // validated positive
	}
}

func (p *Pipeline) reset(enc gpucore.CommandEncoder) error {
	if err := p.dispatch(enc, shaders.Reset, [3]uint32{1, 1, 1}, p.data); err != nil {
		return err
	}
	enc.Barrier(gpucore.BarrierStorage)
	return nil
}

// resize releases the sized buffers when the dimensions change.
func (p *Pipeline) resize(m params.Main) {
	if m == p.main {
		return
	}
	p.res.releaseBuffer(p.output)
	p.output = gpucore.InvalidID
	p.ready = false
	p.main = m
}

// Generate composites layers into a fresh float field of size m.
//
// The accumulator range is reset first. Each enabled layer then gets its
// seed words and uniforms uploaded and runs in its own batch, followed by a
// storage barrier. Disabled layers are skipped without touching the device.
func (p *Pipeline) Generate(ctx context.Context, m params.Main, layers []params.Layer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("pipeline: generate: %w", err)
	}
	start := time.Now()
	defer metrics.ObservePass("generate", start)

	p.resize(m)
	p.generated = false
	p.ready = false
	p.res.releaseBuffer(p.noise)
	p.noise = gpucore.InvalidID
	noiseID, err := p.res.buffer(gpucore.BufferDesc{
		Label: "noise",
		Size:  uint64(m.Texels()) * 16, //nolint:gosec // validated positive
		Usage: gpucore.BufferUsageStorage,
	})
	if err != nil {
		return fmt.Errorf("pipeline: generate: %w", err)
	}
	p.noise = noiseID

	if err := p.run(ctx, "reset", p.reset); err != nil {
		return fmt.Errorf("pipeline: generate: %w", err)
	}

	first := true
	for i, l := range layers {
		if !l.Enabled {
			continue
		}
		if first && l.CompositeMode == params.CompositeMultiply {
			strepitus.Logger().Warn("pipeline: first enabled layer multiplies an empty field", "layer", i)
		}
		first = false
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.layer(ctx, i, l); err != nil {
			return fmt.Errorf("pipeline: generate: layer %d: %w", i, err)
		}
	}
	p.generated = true
	strepitus.Logger().Debug("pipeline: generated", "size", m, "layers", len(layers), "elapsed", time.Since(start))
	return nil
}

// layerParams builds the uniform block of layer l for dimensions m.
func layerParams(m params.Main, l params.Layer) noise.LayerParams {
	l = l.Clamp()
	return noise.LayerParams{
		Width:         uint32(m.Width),  //nolint:gosec // validated positive
		Height:        uint32(m.Height), //nolint:gosec // validated positive
		Slices:        uint32(m.Slices), //nolint:gosec // validated positive
		NoiseType:     uint32(l.NoiseType()),
		SubMode:       l.Specific.SubMode(),
		Dimension:     uint32(l.DimensionType),
		BaseFrequency: uint32(l.BaseFrequency), //nolint:gosec // clamped to [1, 32]
		Octaves:       uint32(l.FBM.Octaves),   //nolint:gosec // clamped to [1, 16]
		Lacunarity:    float32(l.FBM.Lacunarity),
		Persistence:   float32(l.FBM.Persistence),
		PerOctaveSeed: boolWord(l.FBM.PerOctaveSeed),
		Composite:     uint32(l.CompositeMode),
	}
}

func (p *Pipeline) layer(ctx context.Context, index int, l params.Layer) error {
	seeds := seed.DeriveWords(l.BaseSeed, seed.GridSeedCount)
	if err := p.dev.WriteBuffer(p.seeds, 0, kernel.EncodeSeeds(seeds)); err != nil {
		return err
	}
	lp := layerParams(p.main, l)
	if err := p.dev.WriteBuffer(p.layerUnif, 0, kernel.EncodeLayer(&lp)); err != nil {
		return err
	}
	name := shaders.NoiseProgram(l.NoiseType())
	return p.run(ctx, fmt.Sprintf("layer %d", index), func(enc gpucore.CommandEncoder) error {
		if err := p.dispatch(enc, name, p.groups(tileSize), p.layerUnif, p.seeds, p.noise); err != nil {
			return err
		}
		enc.Barrier(gpucore.BarrierStorage)
		return nil
	})
}

// normalizeParams builds the uniform block of the normalize programs.
func normalizeParams(m params.Main, out params.Output) noise.NormalizeParams {
	out = out.Clamp()
	return noise.NormalizeParams{
		Width:     uint32(m.Width),  //nolint:gosec // validated positive
		Height:    uint32(m.Height), //nolint:gosec // validated positive
		Slices:    uint32(m.Slices), //nolint:gosec // validated positive
		Normalize: boolWord(out.Normalize),
		Flip:      boolWord(out.Flip),
		Dither:    boolWord(out.Dither),
		MinVal:    float32(out.MinVal),
		MaxVal:    float32(out.MaxVal),
		Levels:    out.Format.QuantizationLevels(),
	}
}

// Process maps the float field into the packed output of out.Format.
//
// With Normalize set the range accumulator is reset and recomputed first;
// otherwise the range pass is skipped and the fixed bounds are used. The
// output buffer is reallocated when the storage format changes.
func (p *Pipeline) Process(ctx context.Context, out params.Output) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if !p.generated {
		return ErrNotGenerated
	}
	start := time.Now()
	defer metrics.ObservePass("process", start)

	gf := out.Format.GPUFormat()
	if p.output == gpucore.InvalidID || gf != p.outFormat {
		p.res.releaseBuffer(p.output)
		p.output = gpucore.InvalidID
		p.ready = false
		id, err := p.res.buffer(gpucore.BufferDesc{
			Label: "output",
			Size:  uint64(p.main.Texels() * gf.BytesPerTexel()), //nolint:gosec // validated positive
			Usage: gpucore.BufferUsageStorage | gpucore.BufferUsageCopySrc,
		})
		if err != nil {
			return fmt.Errorf("pipeline: process: %w", err)
		}
		p.output = id
		p.outFormat = gf
	}

	np := normalizeParams(p.main, out)
	if err := p.dev.WriteBuffer(p.normalUnif, 0, kernel.EncodeNormalize(&np)); err != nil {
		return fmt.Errorf("pipeline: process: %w", err)
	}

	err := p.run(ctx, "process", func(enc gpucore.CommandEncoder) error {
		if np.Normalize != 0 {
			if err := p.reset(enc); err != nil {
				return err
			}
			if err := p.dispatch(enc, shaders.Range, p.groups(rangeTileSize), p.normalUnif, p.noise, p.data); err != nil {
				return err
			}
			enc.Barrier(gpucore.BarrierStorage)
		}
		if err := p.dispatch(enc, shaders.NormalizeProgram(gf), p.groups(tileSize),
			p.normalUnif, p.noise, p.data, p.output); err != nil {
			return err
		}
		enc.Barrier(gpucore.BarrierImageAccess)
		return nil
	})
	if err != nil {
		return fmt.Errorf("pipeline: process: %w", err)
	}
	p.processed = out.Clamp().Format
	p.ready = true
	strepitus.Logger().Debug("pipeline: processed", "format", p.processed, "normalize", out.Normalize,
		"elapsed", time.Since(start))
	return nil
}

func boolWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
