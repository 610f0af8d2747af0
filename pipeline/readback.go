// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/strepitus"
	"github.com/gogpu/strepitus/export"
	"github.com/gogpu/strepitus/gpucore"
	"github.com/gogpu/strepitus/internal/kernel"
	"github.com/gogpu/strepitus/internal/metrics"
	"github.com/gogpu/strepitus/params"
)

var _ export.Source = (*Pipeline)(nil)

// stage copies size bytes of src into a fresh staging buffer and reads
// them back. The staging buffer is destroyed on every path.
func (p *Pipeline) stage(ctx context.Context, label string, src gpucore.BufferID, size uint64) ([]byte, error) {
	staging, err := p.res.buffer(gpucore.BufferDesc{
		Label: label,
		Size:  size,
		Usage: gpucore.BufferUsageMapRead | gpucore.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	defer p.res.releaseBuffer(staging)

	err = p.run(ctx, label, func(enc gpucore.CommandEncoder) error {
		return enc.CopyBuffer(src, staging, size)
	})
	if err != nil {
		return nil, err
	}
	return p.dev.ReadBuffer(ctx, staging, 0, size)
}

// Target reports the format and dimensions Readback returns.
func (p *Pipeline) Target() (params.Format, params.Main, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, params.Main{}, ErrClosed
	}
	if !p.ready {
		return 0, params.Main{}, ErrNotGenerated
	}
	return p.processed, p.main, nil
}

// Readback copies the processed output to the host and pixel-packs it
// into the export encoding of the processed format.
func (p *Pipeline) Readback(ctx context.Context) (*export.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	if !p.ready {
		return nil, ErrNotGenerated
	}
	start := time.Now()
	defer metrics.ObservePass("readback", start)

	size := uint64(p.main.Texels() * p.outFormat.BytesPerTexel()) //nolint:gosec // validated positive
	b, err := p.stage(ctx, "readback", p.output, size)
	if err != nil {
		return nil, fmt.Errorf("pipeline: readback: %w", err)
	}
	img, err := export.FromStorage(p.processed, p.main, kernel.BytesToWords(b))
	if err != nil {
		return nil, fmt.Errorf("pipeline: readback: %w", err)
	}
	return img, nil
}

// RangeResult is the accumulated range of the last normalizing process.
type RangeResult struct {
	Min, Max float32
	Texels   uint32
}

// Degenerate reports whether the range maps every texel to zero.
func (r RangeResult) Degenerate() bool {
	lo, hi := float64(r.Min), float64(r.Max)
	return math.IsInf(lo, 0) || math.IsInf(hi, 0) || math.IsNaN(lo) || math.IsNaN(hi) || !(hi > lo)
}

// Range reads the accumulator back. After a generate without a normalizing
// process it holds the empty range (+Inf, -Inf).
func (p *Pipeline) Range(ctx context.Context) (RangeResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return RangeResult{}, ErrClosed
	}
	if !p.generated {
		return RangeResult{}, ErrNotGenerated
	}
	b, err := p.stage(ctx, "range_readback", p.data, kernel.DataSize)
	if err != nil {
		return RangeResult{}, fmt.Errorf("pipeline: range: %w", err)
	}
	lo, hi, n, err := kernel.DecodeRange(b)
	if err != nil {
		return RangeResult{}, fmt.Errorf("pipeline: range: %w", err)
	}
	r := RangeResult{Min: lo, Max: hi, Texels: n}
	if r.Degenerate() {
		strepitus.Logger().Debug("pipeline: degenerate range", "min", lo, "max", hi)
	}
	return r, nil
}
