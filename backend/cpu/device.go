// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package cpu

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/strepitus"
	"github.com/gogpu/strepitus/backend"
	"github.com/gogpu/strepitus/gpucore"
	"github.com/gogpu/strepitus/internal/kernel"
	"github.com/gogpu/strepitus/internal/parallel"
)

func init() {
	backend.Register(backend.BackendCPU, func(o backend.Options) (gpucore.Device, error) {
		return New(WithWorkers(o.Workers)), nil
	})
}

// DefaultMaxBufferSize is the largest buffer the device allocates.
const DefaultMaxBufferSize = 1 << 32

// Option configures a Device.
type Option func(*Device)

// WithWorkers sets the worker count; 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(d *Device) { d.workers = n }
}

// WithMaxBufferSize caps buffer allocations. Larger requests fail with
// gpucore.ErrOutOfMemory.
func WithMaxBufferSize(n uint64) Option {
	return func(d *Device) { d.maxBuffer = n }
}

type buffer struct {
	desc  gpucore.BufferDesc
	words []uint32
}

type program struct {
	src    gpucore.ProgramSource
	kernel *kernel.Kernel
}

// Device is the CPU implementation of gpucore.Device.
type Device struct {
	workers   int
	maxBuffer uint64
	pool      *parallel.WorkerPool

	mu       sync.Mutex
	nextID   uint64
	buffers  map[gpucore.BufferID]*buffer
	programs map[gpucore.ProgramID]*program
	log      []Command
	lost     bool
}

var (
	_ gpucore.Device          = (*Device)(nil)
	_ gpucore.SourceValidator = (*Device)(nil)
)

// New creates a CPU device.
func New(opts ...Option) *Device {
	d := &Device{
		maxBuffer: DefaultMaxBufferSize,
		buffers:   make(map[gpucore.BufferID]*buffer),
		programs:  make(map[gpucore.ProgramID]*program),
	}
	for _, o := range opts {
		o(d)
	}
	d.pool = parallel.NewWorkerPool(d.workers)
	return d
}

// Name returns "cpu".
func (d *Device) Name() string { return backend.BackendCPU }

// Workers returns the size of the worker pool.
func (d *Device) Workers() int { return d.pool.Workers() }

func (d *Device) newID() uint64 {
	d.nextID++
	return d.nextID
}

// ValidateSource checks that src has a kernel and a plausible WGSL shape.
func (d *Device) ValidateSource(src gpucore.ProgramSource) error {
	if _, ok := kernel.Lookup(src.Name); !ok {
		return fmt.Errorf("%w: %q", gpucore.ErrUnknownProgram, src.Name)
	}
	if !strings.Contains(src.Source, "@compute") {
		return fmt.Errorf("%w: %s: no @compute entry point", gpucore.ErrShaderCompile, src.Name)
	}
	if !strings.Contains(src.Source, "fn "+src.Entry()) {
		return fmt.Errorf("%w: %s: entry point %q not found", gpucore.ErrShaderCompile, src.Name, src.Entry())
	}
	if err := checkBalanced(src.Source); err != nil {
		return fmt.Errorf("%w: %s: %v", gpucore.ErrShaderCompile, src.Name, err)
	}
	return nil
}

// checkBalanced reports unbalanced brackets outside line comments.
func checkBalanced(s string) error {
	var stack []byte
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}
	line := 1
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\n':
			line++
		case '/':
			if i+1 < len(s) && s[i+1] == '/' {
				for i < len(s) && s[i] != '\n' {
					i++
				}
				line++
			}
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[c] {
				return fmt.Errorf("line %d: unexpected %q", line, c)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("unclosed %q", stack[len(stack)-1])
	}
	return nil
}

// CreateProgram validates src and binds it to its kernel.
func (d *Device) CreateProgram(src gpucore.ProgramSource) (gpucore.ProgramID, error) {
	if err := d.ValidateSource(src); err != nil {
		return gpucore.InvalidID, err
	}
	k, _ := kernel.Lookup(src.Name)
	if len(src.Layout) != k.Slots {
		return gpucore.InvalidID, fmt.Errorf("%w: %s: layout has %d bindings, kernel expects %d",
			gpucore.ErrShaderCompile, src.Name, len(src.Layout), k.Slots)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lost {
		return gpucore.InvalidID, gpucore.ErrDeviceLost
	}
	id := gpucore.ProgramID(d.newID())
	d.programs[id] = &program{src: src, kernel: k}
	return id, nil
}

// DestroyProgram releases a program.
func (d *Device) DestroyProgram(id gpucore.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.programs, id)
}

// CreateBuffer allocates a zero-filled buffer.
func (d *Device) CreateBuffer(desc gpucore.BufferDesc) (gpucore.BufferID, error) {
	if desc.Size%4 != 0 {
		return gpucore.InvalidID, fmt.Errorf("cpu: buffer %q: size %d is not a multiple of 4", desc.Label, desc.Size)
	}
	if desc.Size > d.maxBuffer {
		return gpucore.InvalidID, fmt.Errorf("%w: buffer %q: %d bytes", gpucore.ErrOutOfMemory, desc.Label, desc.Size)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lost {
		return gpucore.InvalidID, gpucore.ErrDeviceLost
	}
	id := gpucore.BufferID(d.newID())
	d.buffers[id] = &buffer{desc: desc, words: make([]uint32, desc.Size/4)}
	return id, nil
}

// DestroyBuffer releases a buffer.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.buffers, id)
}

func (d *Device) bufferLocked(id gpucore.BufferID) (*buffer, error) {
	if d.lost {
		return nil, gpucore.ErrDeviceLost
	}
	b, ok := d.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d", gpucore.ErrInvalidID, id)
	}
	return b, nil
}

func checkRange(b *buffer, offset, size uint64) error {
	if offset%4 != 0 || size%4 != 0 {
		return fmt.Errorf("cpu: buffer %q: unaligned access at %d+%d", b.desc.Label, offset, size)
	}
	if offset+size > b.desc.Size {
		return fmt.Errorf("cpu: buffer %q: access %d+%d exceeds size %d", b.desc.Label, offset, size, b.desc.Size)
	}
	return nil
}

// WriteBuffer uploads data at offset.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.bufferLocked(id)
	if err != nil {
		return err
	}
	if err := checkRange(b, offset, uint64(len(data))); err != nil {
		return err
	}
	copy(b.words[offset/4:], kernel.BytesToWords(data))
	return nil
}

// ReadBuffer copies bytes back from a MapRead buffer.
func (d *Device) ReadBuffer(ctx context.Context, id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.bufferLocked(id)
	if err != nil {
		return nil, err
	}
	if !b.desc.Usage.Has(gpucore.BufferUsageMapRead) {
		return nil, fmt.Errorf("cpu: buffer %q is not mappable", b.desc.Label)
	}
	if err := checkRange(b, offset, size); err != nil {
		return nil, err
	}
	return kernel.WordsToBytes(b.words[offset/4 : (offset+size)/4]), nil
}

// BeginCommands starts a command batch.
func (d *Device) BeginCommands(label string) (gpucore.CommandEncoder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lost {
		return nil, gpucore.ErrDeviceLost
	}
	return &encoder{dev: d, label: label}, nil
}

// Destroy stops the worker pool and releases every resource.
func (d *Device) Destroy() {
	d.mu.Lock()
	if d.lost {
		d.mu.Unlock()
		return
	}
	d.lost = true
	live := len(d.buffers) + len(d.programs)
	d.buffers = map[gpucore.BufferID]*buffer{}
	d.programs = map[gpucore.ProgramID]*program{}
	d.mu.Unlock()

	d.pool.Close()
	if live > 0 {
		strepitus.Logger().Debug("cpu: destroyed device with live resources", "count", live)
	}
}

// LiveResources returns the number of buffers and programs not yet destroyed.
func (d *Device) LiveResources() (buffers, programs int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buffers), len(d.programs)
}
