// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pipeline runs the noise texture passes on a gpucore.Device.
//
// A Pipeline owns every buffer and program it creates. Generate resets the
// range accumulator and composites each enabled layer into the float field,
// one command batch per layer. Process accumulates the global range (when
// normalizing) and writes the packed output. Readback and Range copy results
// to the host through a staging buffer that lives only for the call.
//
// A Pipeline is single-submitter: its methods are serialized by a mutex and
// are meant to be called from one goroutine that owns the device.
//
// Basic usage:
//
//	dev, _ := backend.Open(backend.BackendAuto, backend.Options{})
//	p, err := pipeline.New(dev)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//	if err := p.Generate(ctx, main, layers); err != nil {
//	    return err
//	}
//	if err := p.Process(ctx, output); err != nil {
//	    return err
//	}
//	img, err := p.Readback(ctx)
package pipeline
