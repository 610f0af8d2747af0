// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/strepitus"
	"github.com/gogpu/strepitus/backend"
	"github.com/gogpu/strepitus/gpucore"
)

func init() {
	backend.Register(backend.BackendWGPU, func(backend.Options) (gpucore.Device, error) {
		return New()
	})
}

// DefaultTimeout bounds the wait for a submitted batch.
const DefaultTimeout = 5 * time.Second

// DefaultCompileCacheSize is the number of compiled sources a device keeps.
const DefaultCompileCacheSize = 64

// Option configures a Device.
type Option func(*Device)

// WithCompileCache sets how many compiled sources are kept.
func WithCompileCache(size int) Option {
	return func(dev *Device) {
		if size > 0 {
			dev.spirv = newSPIRVCache(size)
		}
	}
}

// WithTimeout sets the batch completion timeout.
func WithTimeout(d time.Duration) Option {
	return func(dev *Device) {
		if d > 0 {
			dev.timeout = d
		}
	}
}

type buffer struct {
	desc gpucore.BufferDesc
	buf  hal.Buffer
}

type program struct {
	src        gpucore.ProgramSource
	module     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

// Device is a gpucore.Device backed by a HAL device.
type Device struct {
	mu       sync.Mutex
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	external bool
	adapter  string
	limits   gputypes.Limits
	timeout  time.Duration

	spirv *spirvCache

	nextID    uint64
	buffers   map[gpucore.BufferID]*buffer
	programs  map[gpucore.ProgramID]*program
	lost      bool
	destroyed bool
}

var (
	_ gpucore.Device          = (*Device)(nil)
	_ gpucore.SourceValidator = (*Device)(nil)
)

func newDevice(opts []Option) *Device {
	d := &Device{
		timeout:  DefaultTimeout,
		limits:   gputypes.DefaultLimits(),
		spirv:    newSPIRVCache(DefaultCompileCacheSize),
		buffers:  make(map[gpucore.BufferID]*buffer),
		programs: make(map[gpucore.ProgramID]*program),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// New opens the first discrete or integrated Vulkan adapter, falling back
// to any adapter.
func New(opts ...Option) (*Device, error) {
	d := newDevice(opts)

	b, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not compiled in", backend.ErrBackendNotAvailable)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %v", backend.ErrBackendNotAvailable, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no GPU adapters found", backend.ErrBackendNotAvailable)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	open, err := selected.Adapter.Open(gputypes.Features(0), d.limits)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %v", backend.ErrBackendNotAvailable, err)
	}

	d.instance = instance
	d.device = open.Device
	d.queue = open.Queue
	d.adapter = selected.Info.Name
	strepitus.Logger().Info("wgpu: device opened", "adapter", d.adapter, "type", selected.Info.DeviceType)
	return d, nil
}

// NewFromProvider shares the device of a host application. The provider
// must also expose HalDevice() and HalQueue() returning hal.Device and
// hal.Queue. Destroy does not release a shared device.
func NewFromProvider(p gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, errors.New("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, errors.New("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, errors.New("wgpu: provider HalQueue is not hal.Queue")
	}

	d := newDevice(opts)
	d.device = device
	d.queue = queue
	d.external = true
	d.adapter = "shared"
	return d, nil
}

// Name returns "wgpu".
func (d *Device) Name() string { return backend.BackendWGPU }

// Adapter returns the adapter name.
func (d *Device) Adapter() string { return d.adapter }

func (d *Device) newID() uint64 {
	d.nextID++
	return d.nextID
}

func (d *Device) checkLocked() error {
	if d.lost || d.destroyed {
		return gpucore.ErrDeviceLost
	}
	return nil
}

// CreateProgram compiles src and builds its pipeline.
func (d *Device) CreateProgram(src gpucore.ProgramSource) (gpucore.ProgramID, error) {
	entries, err := layoutEntries(src.Layout)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("%w: %s: %v", gpucore.ErrShaderCompile, src.Name, err)
	}
	words, err := d.spirv.compile(src)
	if err != nil {
		return gpucore.InvalidID, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLocked(); err != nil {
		return gpucore.InvalidID, err
	}

	p := &program{src: src}
	fail := func(what string, err error) (gpucore.ProgramID, error) {
		d.destroyProgramLocked(p)
		return gpucore.InvalidID, fmt.Errorf("%w: %s: %s: %v", gpucore.ErrShaderCompile, src.Name, what, err)
	}

	if p.module, err = d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  src.Name,
		Source: hal.ShaderSource{SPIRV: words},
	}); err != nil {
		return fail("shader module", err)
	}
	if p.bindLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   src.Name + "_bind_layout",
		Entries: entries,
	}); err != nil {
		return fail("bind group layout", err)
	}
	if p.pipeLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            src.Name + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	}); err != nil {
		return fail("pipeline layout", err)
	}
	if p.pipeline, err = d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   src.Name,
		Layout:  p.pipeLayout,
		Compute: hal.ComputeState{Module: p.module, EntryPoint: src.Entry()},
	}); err != nil {
		return fail("compute pipeline", err)
	}

	id := gpucore.ProgramID(d.newID())
	d.programs[id] = p
	return id, nil
}

func (d *Device) destroyProgramLocked(p *program) {
	if p.pipeline != nil {
		d.device.DestroyComputePipeline(p.pipeline)
	}
	if p.pipeLayout != nil {
		d.device.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.bindLayout != nil {
		d.device.DestroyBindGroupLayout(p.bindLayout)
	}
	if p.module != nil {
		d.device.DestroyShaderModule(p.module)
	}
}

// DestroyProgram releases a program.
func (d *Device) DestroyProgram(id gpucore.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.programs[id]; ok {
		d.destroyProgramLocked(p)
		delete(d.programs, id)
	}
}

// CreateBuffer allocates a buffer and clears it to zero.
func (d *Device) CreateBuffer(desc gpucore.BufferDesc) (gpucore.BufferID, error) {
	if desc.Size == 0 || desc.Size%4 != 0 {
		return gpucore.InvalidID, fmt.Errorf("wgpu: buffer %q: size %d is not a positive multiple of 4", desc.Label, desc.Size)
	}
	if desc.Size > d.limits.MaxBufferSize {
		return gpucore.InvalidID, fmt.Errorf("%w: buffer %q: %d bytes exceeds limit %d",
			gpucore.ErrOutOfMemory, desc.Label, desc.Size, d.limits.MaxBufferSize)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLocked(); err != nil {
		return gpucore.InvalidID, err
	}
	hb, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: gputypes.BufferUsage(desc.Usage) | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("%w: buffer %q: %v", gpucore.ErrOutOfMemory, desc.Label, err)
	}
	if err := d.clearLocked(hb, desc.Size); err != nil {
		d.device.DestroyBuffer(hb)
		return gpucore.InvalidID, err
	}
	id := gpucore.BufferID(d.newID())
	d.buffers[id] = &buffer{desc: desc, buf: hb}
	return id, nil
}

func (d *Device) clearLocked(b hal.Buffer, size uint64) error {
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "clear"})
	if err != nil {
		return fmt.Errorf("wgpu: clear: %w", err)
	}
	defer enc.Destroy()
	if err := enc.BeginEncoding("clear"); err != nil {
		return fmt.Errorf("wgpu: clear: %w", err)
	}
	enc.ClearBuffer(b, 0, size)
	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: clear: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmd)
	return d.submitLocked(context.Background(), cmd)
}

// DestroyBuffer releases a buffer.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b, ok := d.buffers[id]; ok {
		d.device.DestroyBuffer(b.buf)
		delete(d.buffers, id)
	}
}

func (d *Device) bufferLocked(id gpucore.BufferID) (*buffer, error) {
	b, ok := d.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d", gpucore.ErrInvalidID, id)
	}
	return b, nil
}

func checkRange(b *buffer, offset, size uint64) error {
	if offset%4 != 0 || size%4 != 0 {
		return fmt.Errorf("wgpu: buffer %q: unaligned access at %d+%d", b.desc.Label, offset, size)
	}
	if offset+size > b.desc.Size {
		return fmt.Errorf("wgpu: buffer %q: range %d+%d exceeds size %d", b.desc.Label, offset, size, b.desc.Size)
	}
	return nil
}

// WriteBuffer uploads data through the queue.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLocked(); err != nil {
		return err
	}
	b, err := d.bufferLocked(id)
	if err != nil {
		return err
	}
	if err := checkRange(b, offset, uint64(len(data))); err != nil {
		return err
	}
	if err := d.queue.WriteBuffer(b.buf, offset, data); err != nil {
		return fmt.Errorf("wgpu: write %q: %w", b.desc.Label, err)
	}
	return nil
}

// ReadBuffer maps a MapRead buffer and copies the range out.
func (d *Device) ReadBuffer(ctx context.Context, id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLocked(); err != nil {
		return nil, err
	}
	b, err := d.bufferLocked(id)
	if err != nil {
		return nil, err
	}
	if !b.desc.Usage.Has(gpucore.BufferUsageMapRead) {
		return nil, fmt.Errorf("wgpu: buffer %q is not mappable", b.desc.Label)
	}
	if err := checkRange(b, offset, size); err != nil {
		return nil, err
	}
	m, err := d.device.MapBuffer(b.buf, offset, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map %q: %w", b.desc.Label, err)
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(m.Ptr), size))
	if err := d.device.UnmapBuffer(b.buf); err != nil {
		return nil, fmt.Errorf("wgpu: unmap %q: %w", b.desc.Label, err)
	}
	return out, nil
}

// submitLocked submits one command buffer and polls until the queue has
// completed it.
func (d *Device) submitLocked(ctx context.Context, cmd hal.CommandBuffer) error {
	idx, err := d.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		d.lost = true
		return fmt.Errorf("%w: submit: %v", gpucore.ErrDeviceLost, err)
	}
	deadline := time.Now().Add(d.timeout)
	wait := 20 * time.Microsecond
	for d.queue.PollCompleted() < idx {
		if err := ctx.Err(); err != nil {
			// The batch still runs; drain it so its resources can be freed.
			_ = d.device.WaitIdle()
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d after %s", gpucore.ErrTimeout, idx, d.timeout)
		}
		time.Sleep(wait)
		if wait < time.Millisecond {
			wait *= 2
		}
	}
	return nil
}

// BeginCommands starts a command batch.
func (d *Device) BeginCommands(label string) (gpucore.CommandEncoder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLocked(); err != nil {
		return nil, err
	}
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("wgpu: %s: %w", label, err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		enc.Destroy()
		return nil, fmt.Errorf("wgpu: %s: %w", label, err)
	}
	return &encoder{dev: d, label: label, enc: enc}, nil
}

// LiveResources returns the number of buffers and programs not yet destroyed.
func (d *Device) LiveResources() (buffers, programs int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buffers), len(d.programs)
}

// Destroy releases every resource and, unless the device is shared, the
// device itself. It is idempotent.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	d.destroyed = true
	_ = d.device.WaitIdle()
	for id, p := range d.programs {
		d.destroyProgramLocked(p)
		delete(d.programs, id)
	}
	for id, b := range d.buffers {
		d.device.DestroyBuffer(b.buf)
		delete(d.buffers, id)
	}
	if !d.external {
		d.device.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
