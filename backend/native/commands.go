// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/strepitus/gpucore"
)

var errEncoderDone = errors.New("wgpu: command encoder already finished")

// encoder records into one HAL command encoder. Consecutive dispatches
// share a compute pass; a barrier or copy closes it.
type encoder struct {
	dev   *Device
	label string
	enc   hal.CommandEncoder
	pass  hal.ComputePassEncoder

	groups  []hal.BindGroup
	written []hal.Buffer
	done    bool
}

func (e *encoder) endPass() {
	if e.pass != nil {
		e.pass.End()
		e.pass = nil
	}
}

func (e *encoder) Dispatch(desc gpucore.DispatchDesc) error {
	if e.done {
		return errEncoderDone
	}
	d := e.dev
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.programs[desc.Program]
	if !ok {
		return fmt.Errorf("%w: program %d", gpucore.ErrInvalidID, desc.Program)
	}
	if len(desc.Bindings) != len(p.src.Layout) {
		return fmt.Errorf("wgpu: %s: %d bindings for %d slots", p.src.Name, len(desc.Bindings), len(p.src.Layout))
	}
	entries := make([]gputypes.BindGroupEntry, len(desc.Bindings))
	for i, b := range desc.Bindings {
		buf, err := d.bufferLocked(b.Buffer)
		if err != nil {
			return err
		}
		if int(b.Slot) >= len(p.src.Layout) {
			return fmt.Errorf("wgpu: %s: binding slot %d out of range", p.src.Name, b.Slot)
		}
		entries[i] = gputypes.BindGroupEntry{
			Binding:  b.Slot,
			Resource: gputypes.BufferBinding{Buffer: buf.buf.NativeHandle(), Size: buf.desc.Size},
		}
		if p.src.Layout[b.Slot] == gpucore.BindingStorage {
			e.written = append(e.written, buf.buf)
		}
	}
	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  p.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("wgpu: %s: bind group: %w", p.src.Name, err)
	}
	e.groups = append(e.groups, group)

	if e.pass == nil {
		e.pass = e.enc.BeginComputePass(&hal.ComputePassDescriptor{Label: e.label})
	}
	e.pass.SetPipeline(p.pipeline)
	e.pass.SetBindGroup(0, group, nil)
	e.pass.Dispatch(desc.Groups[0], desc.Groups[1], desc.Groups[2])
	return nil
}

func (e *encoder) CopyBuffer(src, dst gpucore.BufferID, size uint64) error {
	if e.done {
		return errEncoderDone
	}
	d := e.dev
	d.mu.Lock()
	s, err := d.bufferLocked(src)
	if err == nil {
		var t *buffer
		if t, err = d.bufferLocked(dst); err == nil {
			if err = checkRange(s, 0, size); err == nil {
				err = checkRange(t, 0, size)
			}
			if err == nil {
				e.endPass()
				e.enc.TransitionBuffers([]hal.BufferBarrier{
					{Buffer: s.buf, Usage: hal.BufferUsageTransition{OldUsage: gputypes.BufferUsageStorage, NewUsage: gputypes.BufferUsageCopySrc}},
					{Buffer: t.buf, Usage: hal.BufferUsageTransition{OldUsage: gputypes.BufferUsageMapRead, NewUsage: gputypes.BufferUsageCopyDst}},
				})
				e.enc.CopyBufferToBuffer(s.buf, t.buf, []hal.BufferCopy{{Size: size}})
				e.enc.TransitionBuffers([]hal.BufferBarrier{
					{Buffer: t.buf, Usage: hal.BufferUsageTransition{OldUsage: gputypes.BufferUsageCopyDst, NewUsage: gputypes.BufferUsageMapRead}},
				})
			}
		}
	}
	d.mu.Unlock()
	return err
}

// Barrier closes the compute pass and makes storage writes so far visible
// to later dispatches (or to copies, for BarrierImageAccess).
func (e *encoder) Barrier(kind gpucore.BarrierKind) {
	if e.done {
		return
	}
	e.endPass()
	next := gputypes.BufferUsageStorage
	if kind == gpucore.BarrierImageAccess {
		next |= gputypes.BufferUsageCopySrc
	}
	barriers := make([]hal.BufferBarrier, len(e.written))
	for i, b := range e.written {
		barriers[i] = hal.BufferBarrier{Buffer: b, Usage: hal.BufferUsageTransition{OldUsage: gputypes.BufferUsageStorage, NewUsage: next}}
	}
	if len(barriers) > 0 {
		e.enc.TransitionBuffers(barriers)
	}
	e.written = e.written[:0]
}

func (e *encoder) release() {
	d := e.dev
	d.mu.Lock()
	for _, g := range e.groups {
		d.device.DestroyBindGroup(g)
	}
	d.mu.Unlock()
	e.groups = nil
	e.enc.Destroy()
}

func (e *encoder) Discard() {
	if e.done {
		return
	}
	e.done = true
	e.endPass()
	e.enc.DiscardEncoding()
	e.release()
}

// Finish ends encoding, submits the batch and waits for it.
func (e *encoder) Finish(ctx context.Context) error {
	if e.done {
		return errEncoderDone
	}
	e.done = true
	defer e.release()

	e.endPass()
	cmd, err := e.enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: %s: %w", e.label, err)
	}
	d := e.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.device.FreeCommandBuffer(cmd)
	if err := d.checkLocked(); err != nil {
		return err
	}
	if err := d.submitLocked(ctx, cmd); err != nil {
		return fmt.Errorf("wgpu: %s: %w", e.label, err)
	}
	return nil
}
