// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"errors"
	"fmt"

	"github.com/gogpu/strepitus"
	"github.com/gogpu/strepitus/gpucore"
	"github.com/gogpu/strepitus/internal/metrics"
	"github.com/gogpu/strepitus/shaders"
)

// ApplyShaderUpdates replaces programs with new sources. Each new program
// is created and swapped in before the old one is destroyed; a program
// that fails to compile keeps the old one active. Failures are logged,
// counted and returned joined.
//
// The caller should regenerate afterwards.
func (p *Pipeline) ApplyShaderUpdates(srcs []gpucore.ProgramSource) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	var errs []error
	for _, src := range srcs {
		if err := p.swap(src); err != nil {
			strepitus.Logger().Warn("pipeline: shader update rejected, keeping previous program",
				"program", src.Name, "err", err)
			errs = append(errs, err)
			metrics.ShaderReloads.WithLabelValues("failed").Inc()
			continue
		}
		metrics.ShaderReloads.WithLabelValues("ok").Inc()
		strepitus.Logger().Debug("pipeline: program replaced", "program", src.Name)
	}
	return errors.Join(errs...)
}

func (p *Pipeline) swap(src gpucore.ProgramSource) error {
	old, ok := p.programs[src.Name]
	if !ok {
		return fmt.Errorf("pipeline: %w: %q", gpucore.ErrUnknownProgram, src.Name)
	}
	id, err := p.res.program(src)
	if err != nil {
		return fmt.Errorf("pipeline: reload %s: %w", src.Name, err)
	}
	p.programs[src.Name] = id
	p.res.releaseProgram(old)
	return nil
}

// ReloadShaders recompiles every program from lib, or from the current
// library when lib is nil. Programs that fail keep their previous version.
func (p *Pipeline) ReloadShaders(lib *shaders.Library) error {
	p.mu.Lock()
	if lib != nil {
		p.lib = lib
	}
	cur := p.lib
	p.mu.Unlock()

	srcs, err := cur.Sources()
	if err != nil {
		return fmt.Errorf("pipeline: reload: %w", err)
	}
	return p.ApplyShaderUpdates(srcs)
}

// Program returns the current ID of a named program.
func (p *Pipeline) Program(name string) (gpucore.ProgramID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.programs[name]
	return id, ok
}
