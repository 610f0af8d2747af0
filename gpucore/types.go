// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucore

// Resource IDs
//
// These opaque IDs represent device resources. Each device implementation
// maintains a mapping between IDs and actual backend resources.

// BufferID is an opaque handle to a device buffer.
type BufferID uint64

// ProgramID is an opaque handle to a compiled compute program.
type ProgramID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageMapRead indicates the buffer can be read back to the host.
	BufferUsageMapRead BufferUsage = 1 << 0

	// BufferUsageCopySrc indicates the buffer can be used as a copy source.
	BufferUsageCopySrc BufferUsage = 1 << 2

	// BufferUsageCopyDst indicates the buffer can be used as a copy destination.
	BufferUsageCopyDst BufferUsage = 1 << 3

	// BufferUsageUniform indicates the buffer can be bound as a uniform block.
	BufferUsageUniform BufferUsage = 1 << 6

	// BufferUsageStorage indicates the buffer can be bound as storage.
	BufferUsageStorage BufferUsage = 1 << 7
)

// Has reports whether all bits of f are set.
func (u BufferUsage) Has(f BufferUsage) bool { return u&f == f }

// BindingType specifies the type of a program binding.
type BindingType uint32

// Binding types.
const (
	// BindingUniform is a uniform buffer binding.
	BindingUniform BindingType = iota + 1

	// BindingReadOnlyStorage is a read-only storage buffer binding.
	BindingReadOnlyStorage

	// BindingStorage is a read-write storage buffer binding.
	BindingStorage
)

func (t BindingType) String() string {
	switch t {
	case BindingUniform:
		return "uniform"
	case BindingReadOnlyStorage:
		return "read-only-storage"
	case BindingStorage:
		return "storage"
	}
	return "unknown"
}

// BarrierKind selects which writes a barrier makes visible.
type BarrierKind uint32

// Barrier kinds.
const (
	// BarrierStorage orders storage buffer writes before later reads.
	BarrierStorage BarrierKind = iota + 1

	// BarrierImageAccess orders output writes before copies and sampling.
	BarrierImageAccess
)

func (k BarrierKind) String() string {
	switch k {
	case BarrierStorage:
		return "storage"
	case BarrierImageAccess:
		return "image-access"
	}
	return "unknown"
}

// BufferDesc describes a buffer.
type BufferDesc struct {
	// Label is an optional debug label.
	Label string

	// Size is the buffer size in bytes. It must be a multiple of 4.
	Size uint64

	// Usage is the bitmask of BufferUsage flags.
	Usage BufferUsage
}

// ProgramSource describes a compute program.
type ProgramSource struct {
	// Name identifies the program, e.g. "noise_perlin". Devices without a
	// shader compiler use it to select the kernel.
	Name string

	// Source is the complete WGSL source.
	Source string

	// EntryPoint is the compute entry point, "main" when empty.
	EntryPoint string

	// Layout lists the binding types of group 0 in binding order.
	Layout []BindingType

	// WorkgroupSize is the @workgroup_size declared by the source.
	WorkgroupSize [3]uint32
}

// Entry returns the entry point name.
func (s *ProgramSource) Entry() string {
	if s.EntryPoint == "" {
		return "main"
	}
	return s.EntryPoint
}

// Binding attaches a buffer to a binding slot of group 0.
type Binding struct {
	Slot   uint32
	Buffer BufferID
}

// DispatchDesc describes one compute dispatch.
type DispatchDesc struct {
	// Label is an optional debug label.
	Label string

	// Program is the compute program to run.
	Program ProgramID

	// Bindings must cover every slot of the program layout.
	Bindings []Binding

	// Groups is the workgroup count in x, y and z.
	Groups [3]uint32
}

// WorkgroupCount returns ceil(n / size), the number of workgroups needed to
// cover n items.
func WorkgroupCount(n, size uint32) uint32 {
	if size == 0 {
		return 0
	}
	return (n + size - 1) / size
}
