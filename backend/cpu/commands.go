// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cpu

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/strepitus"
	"github.com/gogpu/strepitus/gpucore"
	"github.com/gogpu/strepitus/internal/kernel"
)

// CommandKind identifies an executed command.
type CommandKind uint8

const (
	CommandDispatch CommandKind = iota + 1
	CommandCopy
	CommandBarrier
)

func (k CommandKind) String() string {
	switch k {
	case CommandDispatch:
		return "dispatch"
	case CommandCopy:
		return "copy"
	case CommandBarrier:
		return "barrier"
	}
	return "unknown"
}

// Command is one entry of the execution log.
type Command struct {
	Batch   string
	Kind    CommandKind
	Label   string
	Program string
	Groups  [3]uint32
	Barrier gpucore.BarrierKind
}

func (c Command) String() string {
	switch c.Kind {
	case CommandDispatch:
		return fmt.Sprintf("dispatch %s %v", c.Program, c.Groups)
	case CommandBarrier:
		return "barrier " + c.Barrier.String()
	}
	return c.Kind.String() + " " + c.Label
}

// Log returns a copy of the execution log.
func (d *Device) Log() []Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Command(nil), d.log...)
}

// ResetLog clears the execution log.
func (d *Device) ResetLog() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log = nil
}

var errEncoderDone = errors.New("cpu: command encoder already finished")

type op struct {
	cmd      Command
	dispatch gpucore.DispatchDesc
	src, dst gpucore.BufferID
	size     uint64
}

type encoder struct {
	dev   *Device
	label string
	ops   []op
	done  bool
}

func (e *encoder) Dispatch(desc gpucore.DispatchDesc) error {
	if e.done {
		return errEncoderDone
	}
	e.dev.mu.Lock()
	p, ok := e.dev.programs[desc.Program]
	e.dev.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: program %d", gpucore.ErrInvalidID, desc.Program)
	}
	e.ops = append(e.ops, op{
		cmd:      Command{Batch: e.label, Kind: CommandDispatch, Label: desc.Label, Program: p.src.Name, Groups: desc.Groups},
		dispatch: desc,
	})
	return nil
}

func (e *encoder) CopyBuffer(src, dst gpucore.BufferID, size uint64) error {
	if e.done {
		return errEncoderDone
	}
	e.ops = append(e.ops, op{cmd: Command{Batch: e.label, Kind: CommandCopy, Label: "copy"}, src: src, dst: dst, size: size})
	return nil
}

func (e *encoder) Barrier(kind gpucore.BarrierKind) {
	if e.done {
		return
	}
	e.ops = append(e.ops, op{cmd: Command{Batch: e.label, Kind: CommandBarrier, Barrier: kind}})
}

func (e *encoder) Discard() {
	e.done = true
	e.ops = nil
}

// Finish executes the recorded commands in order. The context is checked
// between commands.
func (e *encoder) Finish(ctx context.Context) error {
	if e.done {
		return errEncoderDone
	}
	e.done = true
	d := e.dev

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, o := range e.ops {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.lost {
			return gpucore.ErrDeviceLost
		}
		var err error
		switch o.cmd.Kind {
		case CommandDispatch:
			err = d.runLocked(o.dispatch)
		case CommandCopy:
			err = d.copyLocked(o.src, o.dst, o.size)
		}
		if err != nil {
			return fmt.Errorf("cpu: %s: %s: %w", e.label, o.cmd, err)
		}
		d.log = append(d.log, o.cmd)
	}
	return nil
}

func (d *Device) runLocked(desc gpucore.DispatchDesc) error {
	p, ok := d.programs[desc.Program]
	if !ok {
		return fmt.Errorf("%w: program %d", gpucore.ErrInvalidID, desc.Program)
	}
	bufs := make(kernel.Buffers, p.kernel.Slots)
	for _, b := range desc.Bindings {
		if int(b.Slot) >= len(bufs) {
			return fmt.Errorf("binding slot %d out of range", b.Slot)
		}
		buf, err := d.bufferLocked(b.Buffer)
		if err != nil {
			return err
		}
		bufs[b.Slot] = buf.words
	}
	for slot, b := range bufs {
		if b == nil {
			return fmt.Errorf("binding slot %d not bound", slot)
		}
	}

	wg, err := p.kernel.Prepare(bufs)
	if err != nil {
		return err
	}
	d.pool.Dispatch(desc.Groups, wg)
	strepitus.Logger().Debug("cpu: dispatch", "program", p.src.Name, "groups", desc.Groups)
	return nil
}

func (d *Device) copyLocked(src, dst gpucore.BufferID, size uint64) error {
	s, err := d.bufferLocked(src)
	if err != nil {
		return err
	}
	t, err := d.bufferLocked(dst)
	if err != nil {
		return err
	}
	if err := checkRange(s, 0, size); err != nil {
		return err
	}
	if err := checkRange(t, 0, size); err != nil {
		return err
	}
	copy(t.words[:size/4], s.words[:size/4])
	return nil
}
